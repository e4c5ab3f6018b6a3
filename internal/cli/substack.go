package cli

import (
	"fmt"

	"github.com/onejobco/onejob/internal/gateway"
	"github.com/onejobco/onejob/internal/store"
	"github.com/spf13/cobra"
)

var substackCmd = &cobra.Command{
	Use:   "substack [task] [name]",
	Short: "Create a substack under a task",
	Long: `Create a named substack under a task, for breaking a big card
into smaller steps.

Examples:
  onejob substack 1 "Backend fixes"`,
	Args: cobra.ExactArgs(2),
	RunE: runSubstack,
}

func runSubstack(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	task, err := resolveTask(cmd.Context(), s, args[0])
	if err != nil {
		return err
	}

	name := args[1]
	if err := s.ctrl.CreateSubstack(cmd.Context(), store.TopLevel, task.ID, name); err != nil {
		return err
	}
	fmt.Printf("✓ Created substack %q under %q\n", name, task.Title)
	s.feedback(gateway.EventSubstackCreated)
	return nil
}
