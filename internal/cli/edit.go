package cli

import (
	"fmt"

	"github.com/onejobco/onejob/internal/store"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit [task]",
	Short: "Edit a task's title or description",
	Long: `Edit a task in place. Editing never changes the task's position
on the stack or its completion state.

Examples:
  onejob edit 1 --title "Fix the login bug on prod"
  onejob edit 2 -d "waiting on Sarah"`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var (
	editTitle       string
	editDescription string
)

func init() {
	editCmd.Flags().StringVarP(&editTitle, "title", "t", "", "New title")
	editCmd.Flags().StringVarP(&editDescription, "description", "d", "", "New description")
}

func runEdit(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	task, err := resolveTask(cmd.Context(), s, args[0])
	if err != nil {
		return err
	}

	var title, description *string
	if cmd.Flags().Changed("title") {
		title = &editTitle
	}
	if cmd.Flags().Changed("description") {
		description = &editDescription
	}
	if title == nil && description == nil {
		return fmt.Errorf("nothing to change: pass --title and/or --description")
	}

	if err := s.ctrl.UpdateFields(cmd.Context(), store.TopLevel, task.ID, title, description); err != nil {
		return err
	}
	fmt.Printf("✓ Updated: %q\n", task.Title)
	return nil
}
