package gateway

import "math/rand"

// Event names a user action the demo mode comments on.
type Event string

const (
	EventTaskCompleted   Event = "taskCompleted"
	EventTaskDeferred    Event = "taskDeferred"
	EventTaskAdded       Event = "taskAdded"
	EventSubstackCreated Event = "substackCreated"
)

var demoMessages = map[Event][]string{
	EventTaskCompleted: {
		"Great job! In a real app, this would sync to your backend.",
		"Task completed! This is how satisfying it feels to finish something.",
		"Nice work! One less thing on your mind.",
		"Completed! Ready for the next challenge?",
	},
	EventTaskDeferred: {
		"Task moved to bottom of stack. It'll come back when you're ready.",
		"No worries! Sometimes later is better than never.",
		"Deferred successfully. Focus on what's urgent first.",
		"Task postponed. You can tackle it when the time is right.",
	},
	EventTaskAdded: {
		"New task added! It's been queued up for you.",
		"Task created! Ready to tackle it?",
		"Added to your stack! One more step toward your goals.",
		"New task ready! You've got this!",
	},
	EventSubstackCreated: {
		"Substack created! Break big tasks into smaller wins.",
		"Great way to organize! Substacks make complex work manageable.",
		"Substack ready! Divide and conquer approach activated.",
		"Perfect! Breaking it down makes it less overwhelming.",
	},
}

// RandomMessage returns a feedback line for an event. Purely cosmetic.
func (d *Demo) RandomMessage(event Event) string {
	msgs := demoMessages[event]
	if len(msgs) == 0 {
		return ""
	}
	return msgs[rand.Intn(len(msgs))]
}
