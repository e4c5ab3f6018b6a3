package cli

import (
	"fmt"

	"github.com/onejobco/onejob/internal/store"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [task]",
	Short: "Delete a task",
	Long: `Delete a task and its substacks permanently.

Examples:
  onejob delete 3
  onejob delete "old presentation"`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	task, err := resolveTask(cmd.Context(), s, args[0])
	if err != nil {
		return err
	}

	if err := s.ctrl.Remove(cmd.Context(), store.TopLevel, task.ID); err != nil {
		return err
	}
	fmt.Printf("✗ Deleted: %q\n", task.Title)
	return nil
}
