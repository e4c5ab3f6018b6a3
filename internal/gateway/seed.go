package gateway

import (
	"time"

	"github.com/google/uuid"
	"github.com/onejobco/onejob/internal/model"
)

// SeedTasks returns the fixed demo data set: a believable stack with two
// substacks and a few already-completed tasks for the completed view.
func SeedTasks() []model.Task {
	now := time.Now()

	seed := func(title, description string, age time.Duration, order int) model.Task {
		t := model.NewTask(uuid.NewString(), title, description, order)
		t.CreatedAt = now.Add(-age)
		t.Source = "Demo"
		return t
	}
	seedSub := func(name string, titles ...[2]string) model.Substack {
		sub := model.NewSubstack(uuid.NewString(), name)
		for i, pair := range titles {
			st := model.NewTask(uuid.NewString(), pair[0], pair[1], i+1)
			sub.Tasks = append(sub.Tasks, st)
		}
		return sub
	}
	seedDone := func(title, description string, createdAge, completedAge time.Duration) model.Task {
		t := model.NewTask(uuid.NewString(), title, description, 0)
		t.CreatedAt = now.Add(-createdAge)
		t.Source = "Demo"
		t.MarkDone(now.Add(-completedAge))
		return t
	}

	login := seed("Fix the login bug on staging",
		"Users can't log in with special characters in passwords. Check the auth validation logic and add proper escaping.",
		2*time.Hour, 1)
	login.Substacks = []model.Substack{seedSub("Backend fixes",
		[2]string{"Review password validation regex", "Check if special characters are being escaped properly"},
		[2]string{"Add unit tests for edge cases", "Test passwords with @, #, $, % symbols"},
	)}

	groceries := seed("Buy groceries for weekend",
		"Need milk, eggs, bread, and ingredients for pasta dinner with friends on Saturday.",
		15*time.Minute, 4)
	groceries.Substacks = []model.Substack{seedSub("Shopping list",
		[2]string{"Dairy: Milk, eggs, cheese", "Get the organic stuff from the back"},
		[2]string{"Pasta ingredients: tomatoes, basil, garlic", "Fresh basil from the herb section"},
		[2]string{"Wine for dinner", "Something Italian to pair with pasta"},
	)}

	return []model.Task{
		login,
		seed("Write documentation for the new API endpoints",
			"Document the user management endpoints we added last sprint. Include examples and error codes.",
			time.Hour, 2),
		seed("Review Sarah's pull request",
			"She added the dark mode toggle. Need to test it on different browsers and provide feedback.",
			30*time.Minute, 3),
		groceries,
		seed("Prepare presentation for Monday's meeting",
			"Create slides about Q1 performance metrics and Q2 goals. Include the new user acquisition charts.",
			5*time.Minute, 5),
		seedDone("Update Node.js to latest version",
			"Upgrade from v16 to v18 and test all dependencies",
			3*24*time.Hour, 2*24*time.Hour),
		seedDone("Call mom for her birthday",
			"Don't forget to wish her happy birthday and ask about the garden",
			7*24*time.Hour, 6*24*time.Hour),
		seedDone("Set up CI/CD pipeline for new project",
			"Configure GitHub Actions for automated testing and deployment",
			10*24*time.Hour, 9*24*time.Hour),
	}
}
