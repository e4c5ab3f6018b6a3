package cli

import (
	"fmt"

	"github.com/onejobco/onejob/internal/gateway"
	"github.com/onejobco/onejob/internal/store"
	"github.com/spf13/cobra"
)

var deferCmd = &cobra.Command{
	Use:   "defer [task]",
	Short: "Push a task to the bottom of the stack",
	Long: `Defer a task. It moves to the end of the active queue and its
deferral count goes up, so chronically postponed work stays visible.

Examples:
  onejob defer 1
  onejob defer "groceries"`,
	Args: cobra.ExactArgs(1),
	RunE: runDefer,
}

func runDefer(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	task, err := resolveTask(cmd.Context(), s, args[0])
	if err != nil {
		return err
	}

	if err := s.ctrl.Defer(cmd.Context(), store.TopLevel, task.ID); err != nil {
		return err
	}
	fmt.Printf("↓ Deferred: %q\n", task.Title)
	s.feedback(gateway.EventTaskDeferred)
	return nil
}
