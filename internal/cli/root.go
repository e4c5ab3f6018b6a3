package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/onejobco/onejob/internal/config"
	"github.com/onejobco/onejob/internal/controller"
	"github.com/onejobco/onejob/internal/gateway"
	"github.com/onejobco/onejob/internal/logger"
	"github.com/onejobco/onejob/internal/store"
	"github.com/onejobco/onejob/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	modeFlag   string
	serverURL  string
	logLevel   string
	logFile    string
	logConsole bool
)

// cfg is populated by the root PersistentPreRunE before any command runs
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "onejob",
	Short: "OneJob - one task at a time",
	Long: `OneJob shows your tasks as a stack of cards: deal with the top one,
or defer it to the bottom and move on.

Run 'onejob' without arguments to launch the interactive TUI. Demo mode
works entirely offline; remote mode talks to a task server.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			logger.Warn("Failed to load config, using defaults", logger.F("error", err))
			loaded = config.DefaultConfig()
		}
		cfg = loaded

		// Override with CLI flags if provided
		configChanged := false
		if cmd.Flags().Changed("mode") {
			cfg.Mode = modeFlag
			configChanged = true
		}
		if cmd.Flags().Changed("server") {
			cfg.ServerURL = serverURL
			configChanged = true
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
			configChanged = true
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
			configChanged = true
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
			configChanged = true
		}
		if configChanged {
			if err := cfg.Save(); err != nil {
				logger.Warn("Failed to save config", logger.F("error", err))
			}
		}

		if cfg.Mode != config.ModeDemo && cfg.Mode != config.ModeRemote {
			return fmt.Errorf("unknown mode %q (want %q or %q)", cfg.Mode, config.ModeDemo, config.ModeRemote)
		}

		logConfig := logger.Config{
			Level:    logger.ParseLevel(cfg.LogLevel),
			FilePath: cfg.LogFile,
			MaxSize:  10 * 1024 * 1024, // 10MB
			Console:  cfg.LogConsole,
		}
		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("OneJob started",
			logger.F("command", cmd.Name()),
			logger.F("mode", cfg.Mode))
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.close()

		// Piped output gets the plain list instead of the TUI
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return printStack(cmd, s, false)
		}

		logger.Info("Launching TUI")
		m := tui.NewModel(s.ctrl, s.demo)
		p := tea.NewProgram(m, tea.WithAltScreen())

		if _, err := p.Run(); err != nil {
			logger.Error("TUI error", logger.F("error", err))
			return fmt.Errorf("failed to run TUI: %w", err)
		}

		logger.Info("TUI exited normally")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("OneJob exiting", logger.F("command", cmd.Name()))
		logger.Close()
	},
}

// session bundles the pieces every command needs. demo is nil in remote
// mode.
type session struct {
	ctrl  *controller.Controller
	store *store.Store
	demo  *gateway.Demo
	close func()
}

// newSession builds the gateway for the configured mode and wires the
// controller around it.
func newSession() (*session, error) {
	st := store.New()

	switch cfg.Mode {
	case config.ModeRemote:
		gw := gateway.NewRemote(cfg.ServerURL)
		return &session{
			ctrl:  controller.New(gw, st),
			store: st,
			close: func() {},
		}, nil
	default:
		path := cfg.DemoDBPath
		if path == "" {
			var err error
			if path, err = gateway.DefaultDemoPath(); err != nil {
				return nil, err
			}
		}
		demo, err := gateway.OpenDemo(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open demo store: %w", err)
		}
		return &session{
			ctrl:  controller.New(demo, st),
			store: st,
			demo:  demo,
			close: func() { _ = demo.Close() },
		}, nil
	}
}

// feedback prints the demo mode's commentary for an event, if any
func (s *session) feedback(event gateway.Event) {
	if s.demo == nil {
		return
	}
	if msg := s.demo.RandomMessage(event); msg != "" {
		fmt.Println(msg)
	}
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&modeFlag, "mode", "", "Backend mode (demo, remote)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Task server base URL (remote mode)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(deferCmd)
	rootCmd.AddCommand(substackCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(resetCmd)
}
