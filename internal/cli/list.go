package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/onejobco/onejob/internal/model"
	"github.com/onejobco/onejob/internal/store"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the task stack",
	Long: `Show the stack, top card first.

Examples:
  onejob list
  onejob list --all`,
	RunE: runList,
}

var listAll bool

func init() {
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Include completed tasks")
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()
	return printStack(cmd, s, listAll)
}

// printStack loads the snapshot and prints it, top card first
func printStack(cmd *cobra.Command, s *session, includeDone bool) error {
	if err := s.ctrl.Refresh(cmd.Context()); err != nil {
		return err
	}
	r := s.ctrl.Render(store.TopLevel)

	if len(r.Active) == 0 {
		fmt.Println("Stack is empty. Add a task with 'onejob add'.")
	}
	for i, task := range r.Active {
		marker := "○"
		if i == 0 {
			marker = "▶"
		}
		line := fmt.Sprintf("%s %2d. %s", marker, i+1, task.Title)
		if task.DeferralCount > 0 {
			line += fmt.Sprintf("  (deferred x%d)", task.DeferralCount)
		}
		if n := len(task.Substacks); n > 0 {
			line += fmt.Sprintf("  [%d substack]", n)
		}
		fmt.Println(line)
	}

	if includeDone && len(r.Completed) > 0 {
		fmt.Println("\nCompleted:")
		for _, task := range r.Completed {
			fmt.Printf("✓ %s\n", task.Title)
		}
	}
	return nil
}

// resolveTask finds a task by stack position, id prefix, or title
// substring. The position is 1-based over the active list.
func resolveTask(ctx context.Context, s *session, arg string) (model.Task, error) {
	if err := s.ctrl.Refresh(ctx); err != nil {
		return model.Task{}, err
	}
	r := s.ctrl.Render(store.TopLevel)

	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(r.Active) {
			return model.Task{}, fmt.Errorf("no task at position %d", n)
		}
		return r.Active[n-1], nil
	}

	all := append(append([]model.Task{}, r.Active...), r.Completed...)
	var matches []model.Task
	for _, task := range all {
		if strings.HasPrefix(task.ID, arg) {
			matches = append(matches, task)
		}
	}
	if len(matches) == 0 {
		needle := strings.ToLower(arg)
		for _, task := range all {
			if strings.Contains(strings.ToLower(task.Title), needle) {
				matches = append(matches, task)
			}
		}
	}

	switch len(matches) {
	case 0:
		return model.Task{}, fmt.Errorf("no task matches %q", arg)
	case 1:
		return matches[0], nil
	default:
		return model.Task{}, fmt.Errorf("%q is ambiguous (%d matches)", arg, len(matches))
	}
}
