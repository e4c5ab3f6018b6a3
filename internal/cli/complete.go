package cli

import (
	"fmt"

	"github.com/onejobco/onejob/internal/gateway"
	"github.com/onejobco/onejob/internal/store"
	"github.com/spf13/cobra"
)

var completeCmd = &cobra.Command{
	Use:   "complete [task]",
	Short: "Mark a task as done",
	Long: `Mark a task as completed. The task can be named by its stack
position, an id prefix, or part of its title.

Examples:
  onejob complete 1
  onejob complete "login bug"
  onejob complete 1 --undo`,
	Args: cobra.ExactArgs(1),
	RunE: runComplete,
}

var completeUndo bool

func init() {
	completeCmd.Flags().BoolVar(&completeUndo, "undo", false, "Put a completed task back on the stack")
}

func runComplete(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	task, err := resolveTask(cmd.Context(), s, args[0])
	if err != nil {
		return err
	}

	if completeUndo {
		if err := s.ctrl.Reopen(cmd.Context(), store.TopLevel, task.ID); err != nil {
			return err
		}
		fmt.Printf("○ Reopened: %q\n", task.Title)
		return nil
	}

	if err := s.ctrl.Complete(cmd.Context(), store.TopLevel, task.ID); err != nil {
		return err
	}
	fmt.Printf("✓ Completed: %q\n", task.Title)
	s.feedback(gateway.EventTaskCompleted)
	return nil
}
