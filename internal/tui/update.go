package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/onejobco/onejob/internal/gateway"
	"github.com/onejobco/onejob/internal/logger"
	"github.com/onejobco/onejob/internal/store"
)

// changesMsg signals that the controller's visible state may have moved
type changesMsg struct{}

// opDoneMsg reports the outcome of an async backend operation
type opDoneMsg struct {
	event gateway.Event
	err   error
}

// Init kicks off the first load and starts listening for change signals
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.waitForChanges())
}

// waitForChanges listens for controller change signals
func (m Model) waitForChanges() tea.Cmd {
	return func() tea.Msg {
		<-m.ctrl.Changes()
		return changesMsg{}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	return m.opCmd("", func(ctx context.Context) error {
		return m.ctrl.Refresh(ctx)
	})
}

// opCmd runs a backend operation off the UI loop
func (m Model) opCmd(event gateway.Event, op func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{event: event, err: op(context.Background())}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changesMsg:
		// The view re-derives everything from the controller; just keep
		// listening.
		return m, m.waitForChanges()

	case opDoneMsg:
		if msg.err != nil {
			m.message = msg.err.Error()
			logger.Warn("Operation failed", logger.F("error", msg.err))
			return m, nil
		}
		if msg.event != "" && m.demo != nil {
			m.message = m.demo.RandomMessage(msg.event)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeAddTask, ModeAddSubstack, ModeEditTask:
			return m.updateInput(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	r := m.render()
	m.message = ""

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Escape):
		if !m.scope.IsTopLevel() {
			m.scope = store.TopLevel
			m.parentTitle = ""
			m.subCursor = 0
		}
		return m, nil

	case key.Matches(msg, keys.Refresh):
		return m, m.refreshCmd()

	case key.Matches(msg, keys.Completed):
		m.showCompleted = !m.showCompleted
		return m, nil

	case key.Matches(msg, keys.Complete):
		if len(r.Active) == 0 {
			return m, nil
		}
		id := r.Active[0].ID
		scope := m.scope
		return m, m.opCmd(gateway.EventTaskCompleted, func(ctx context.Context) error {
			return m.ctrl.Complete(ctx, scope, id)
		})

	case key.Matches(msg, keys.Defer):
		if len(r.Active) < 2 {
			// Deferring the only card is a no-op
			return m, nil
		}
		id := r.Active[0].ID
		scope := m.scope
		return m, m.opCmd(gateway.EventTaskDeferred, func(ctx context.Context) error {
			return m.ctrl.Defer(ctx, scope, id)
		})

	case key.Matches(msg, keys.Add):
		m.mode = ModeAddTask
		m.input.Placeholder = "Enter task..."
		m.input.SetValue("")
		m.input.Focus()
		return m, nil

	case key.Matches(msg, keys.Substack):
		if !m.scope.IsTopLevel() || len(r.Active) == 0 {
			return m, nil
		}
		m.mode = ModeAddSubstack
		m.targetID = r.Active[0].ID
		m.input.Placeholder = "Substack name..."
		m.input.SetValue("")
		m.input.Focus()
		return m, nil

	case key.Matches(msg, keys.Edit):
		if !m.scope.IsTopLevel() || len(r.Active) == 0 {
			return m, nil
		}
		m.mode = ModeEditTask
		m.targetID = r.Active[0].ID
		m.input.Placeholder = "Title..."
		m.input.SetValue(r.Active[0].Title)
		m.input.Focus()
		return m, nil

	case key.Matches(msg, keys.Delete):
		if !m.scope.IsTopLevel() || len(r.Active) == 0 {
			return m, nil
		}
		id := r.Active[0].ID
		return m, m.opCmd("", func(ctx context.Context) error {
			return m.ctrl.Remove(ctx, store.TopLevel, id)
		})

	case key.Matches(msg, keys.Left), key.Matches(msg, keys.Right):
		if len(r.Active) == 0 || len(r.Active[0].Substacks) == 0 {
			return m, nil
		}
		delta := 1
		if key.Matches(msg, keys.Left) {
			delta = -1
		}
		m.subCursor = clamp(m.subCursor+delta, 0, len(r.Active[0].Substacks)-1)
		return m, nil

	case key.Matches(msg, keys.Open):
		if !m.scope.IsTopLevel() || len(r.Active) == 0 {
			return m, nil
		}
		subs := r.Active[0].Substacks
		if len(subs) == 0 {
			return m, nil
		}
		cursor := clamp(m.subCursor, 0, len(subs)-1)
		m.scope = store.SubstackScope(subs[cursor].ID)
		m.parentTitle = r.Active[0].Title
		m.subCursor = 0
		return m, nil

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
		return m, nil
	}

	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.targetID = ""
		m.input.Blur()
		return m, nil

	case msg.Type == tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		mode, targetID := m.mode, m.targetID
		m.mode = ModeNormal
		m.targetID = ""
		m.input.Blur()
		if value == "" {
			return m, nil
		}

		scope := m.scope
		switch mode {
		case ModeAddTask:
			return m, m.opCmd(gateway.EventTaskAdded, func(ctx context.Context) error {
				return m.ctrl.AddTask(ctx, scope, value, "")
			})
		case ModeAddSubstack:
			return m, m.opCmd(gateway.EventSubstackCreated, func(ctx context.Context) error {
				return m.ctrl.CreateSubstack(ctx, scope, targetID, value)
			})
		case ModeEditTask:
			return m, m.opCmd("", func(ctx context.Context) error {
				return m.ctrl.UpdateFields(ctx, scope, targetID, &value, nil)
			})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
