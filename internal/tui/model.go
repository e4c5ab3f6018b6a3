package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/onejobco/onejob/internal/controller"
	"github.com/onejobco/onejob/internal/gateway"
	"github.com/onejobco/onejob/internal/logger"
	"github.com/onejobco/onejob/internal/store"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAddTask
	ModeAddSubstack
	ModeEditTask
	ModeHelp
)

// Model is the main TUI model. It renders the controller's view of one
// scope at a time: the top-level stack, or one open substack.
type Model struct {
	ctrl *controller.Controller
	demo *gateway.Demo // nil in remote mode; used for demo commentary

	scope       store.Scope
	parentTitle string // title of the task whose substack is open

	// UI state
	width         int
	height        int
	mode          Mode
	subCursor     int // highlighted substack on the top card
	showCompleted bool

	// Input
	input    textinput.Model
	targetID string // task the open input modal applies to

	message string
}

// NewModel creates a new TUI model
func NewModel(ctrl *controller.Controller, demo *gateway.Demo) Model {
	logger.Info("Initializing TUI model")

	ti := textinput.New()
	ti.Placeholder = "Enter task..."
	ti.CharLimit = 256
	ti.Width = 50

	return Model{
		ctrl:  ctrl,
		demo:  demo,
		scope: store.TopLevel,
		mode:  ModeNormal,
		input: ti,
	}
}

// render pulls the current view for the open scope
func (m Model) render() controller.Render {
	return m.ctrl.Render(m.scope)
}
