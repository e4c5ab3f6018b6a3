package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.mode == ModeHelp {
		return m.renderHelp()
	}

	header := m.renderHeader()
	body := m.renderStack()
	statusBar := m.renderStatusBar()

	content := lipgloss.JoinVertical(lipgloss.Left, header, body)

	if m.mode == ModeAddTask || m.mode == ModeAddSubstack || m.mode == ModeEditTask {
		modal := m.renderModal()
		content = lipgloss.Place(
			m.width, m.height-2,
			lipgloss.Center, lipgloss.Center,
			modal,
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, statusBar)
}

func (m Model) renderHeader() string {
	title := "OneJob"
	if !m.scope.IsTopLevel() {
		title = fmt.Sprintf("OneJob ▸ %s", truncate(m.parentTitle, 40))
	}
	return HeaderStyle.Render(title)
}

func (m Model) renderStack() string {
	r := m.render()
	var s strings.Builder

	switch {
	case r.Loading && len(r.Active) == 0:
		s.WriteString(HelpStyle.Render("Loading...") + "\n")
	case r.Err != "":
		s.WriteString(ErrorStyle.Render("Could not load tasks: "+r.Err) + "\n")
		s.WriteString(HelpStyle.Render("r retry") + "\n")
	case len(r.Active) == 0:
		s.WriteString(HelpStyle.Render("Stack is empty. Press 'a' to add a task.") + "\n")
	default:
		s.WriteString(m.renderCard() + "\n")

		// Next up
		if len(r.Active) > 1 {
			s.WriteString(HelpStyle.Render("Next up:") + "\n")
			for i, task := range r.Active[1:] {
				if i >= 5 {
					s.WriteString(QueueItemStyle.Render(fmt.Sprintf("… and %d more", len(r.Active)-6)) + "\n")
					break
				}
				line := truncate(task.Title, m.width-8)
				if task.DeferralCount > 0 {
					line += fmt.Sprintf(" (x%d)", task.DeferralCount)
				}
				s.WriteString(QueueItemStyle.Render("○ "+line) + "\n")
			}
		}
	}

	if m.showCompleted && len(r.Completed) > 0 {
		s.WriteString("\n" + DoneHeaderStyle.Render(fmt.Sprintf("Completed (%d)", len(r.Completed))) + "\n")
		for _, task := range r.Completed {
			s.WriteString(DoneStyle.Render("✓ "+truncate(task.Title, m.width-8)) + "\n")
		}
	}

	return s.String()
}

// renderCard draws the top of the stack as a card
func (m Model) renderCard() string {
	r := m.render()
	task := r.Active[0]

	cardWidth := clamp(m.width-8, 30, 70)

	var lines []string
	lines = append(lines, CardTitleStyle.Render(truncate(task.Title, cardWidth-6)))
	if task.Description != "" {
		lines = append(lines, CardDescStyle.Render(truncate(task.Description, cardWidth-6)))
	}
	if task.DeferralCount > 0 {
		lines = append(lines, DeferralBadgeStyle.Render(fmt.Sprintf("deferred x%d", task.DeferralCount)))
	}

	if len(task.Substacks) > 0 && m.scope.IsTopLevel() {
		var chips []string
		cursor := clamp(m.subCursor, 0, len(task.Substacks)-1)
		for i, sub := range task.Substacks {
			label := fmt.Sprintf("%s (%d)", sub.Name, len(sub.Tasks))
			if i == cursor {
				chips = append(chips, SubstackSelectedStyle.Render(label))
			} else {
				chips = append(chips, SubstackStyle.Render(label))
			}
		}
		lines = append(lines, "")
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, chips...))
	}

	return CardStyle.Width(cardWidth).Render(strings.Join(lines, "\n"))
}

func (m Model) renderModal() string {
	var prompt string
	switch m.mode {
	case ModeAddTask:
		prompt = "New task"
	case ModeAddSubstack:
		prompt = "New substack"
	case ModeEditTask:
		prompt = "Edit title"
	}

	content := HeaderStyle.Render(prompt) + "\n\n" +
		m.input.View() + "\n\n" +
		HelpStyle.Render("enter save · esc cancel")
	return ModalStyle.Render(content)
}

func (m Model) renderStatusBar() string {
	if m.message != "" {
		return StatusBarStyle.Width(m.width).Render(MessageStyle.Render(m.message))
	}

	hints := []string{"x complete", "d defer", "a add"}
	if m.scope.IsTopLevel() {
		hints = append(hints, "s substack", "enter open")
	} else {
		hints = append(hints, "esc back")
	}
	hints = append(hints, "c completed", "? help", "q quit")
	return StatusBarStyle.Width(m.width).Render(strings.Join(hints, " · "))
}

func (m Model) renderHelp() string {
	rows := []struct{ key, desc string }{
		{"x", "complete the top card"},
		{"d", "defer the top card to the bottom of the stack"},
		{"a", "add a task to the bottom of the stack"},
		{"s", "create a substack under the top card"},
		{"e", "edit the top card's title"},
		{"D", "delete the top card"},
		{"←/→", "pick a substack on the top card"},
		{"enter", "open the picked substack"},
		{"esc", "back to the top-level stack"},
		{"c", "toggle the completed list"},
		{"r", "reload from the backend"},
		{"q", "quit"},
	}

	var s strings.Builder
	s.WriteString(HeaderStyle.Render("Keys") + "\n\n")
	for _, row := range rows {
		s.WriteString(fmt.Sprintf("  %-7s %s\n", row.key, HelpStyle.Render(row.desc)))
	}
	s.WriteString("\n" + HelpStyle.Render("press any key to close"))
	return ModalStyle.Render(s.String())
}
