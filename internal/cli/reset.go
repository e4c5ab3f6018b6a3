package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the demo seed data",
	Long:  `Throw away all demo-mode changes and restore the seed data set.`,
	RunE:  runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	if s.demo == nil {
		return fmt.Errorf("reset only applies to demo mode")
	}
	if err := s.demo.Reset(); err != nil {
		return err
	}
	fmt.Println("✓ Demo data restored")
	return nil
}
