package cli

import (
	"fmt"
	"strings"

	"github.com/onejobco/onejob/internal/gateway"
	"github.com/onejobco/onejob/internal/store"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a task to the bottom of the stack",
	Long: `Add a new task. It joins the end of the active queue.

Examples:
  onejob add "Buy groceries"
  onejob add "Review PR" -d "the big refactor one"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var addDescription string

func init() {
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Task description")
}

func runAdd(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	title := strings.Join(args, " ")
	if err := s.ctrl.AddTask(cmd.Context(), store.TopLevel, title, addDescription); err != nil {
		return err
	}

	fmt.Printf("✓ Added: %q\n", title)
	s.feedback(gateway.EventTaskAdded)
	return nil
}
