package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Primary   = lipgloss.Color("#4ECDC4")
	Accent    = lipgloss.Color("#FFB347")
	Completed = lipgloss.Color("#95E1A3")
	Danger    = lipgloss.Color("#FF6B6B")
	Surface   = lipgloss.Color("#16213e")
	Text      = lipgloss.Color("#FFFFFF")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
)

// Styles
var (
	// Header
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	// The top card
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 3)

	CardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Text)

	CardDescStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	DeferralBadgeStyle = lipgloss.NewStyle().
				Foreground(Accent)

	// Substack chips on the card
	SubstackStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Padding(0, 1)

	SubstackSelectedStyle = lipgloss.NewStyle().
				Foreground(Text).
				Background(Surface).
				Bold(true).
				Padding(0, 1)

	// Next-up list under the card
	QueueItemStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1)

	// Completed tasks
	DoneStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Strikethrough(true).
			Padding(0, 1)

	DoneHeaderStyle = lipgloss.NewStyle().
			Foreground(Completed).
			Bold(true).
			Padding(0, 1)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	MessageStyle = lipgloss.NewStyle().
			Foreground(Completed).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Danger).
			Padding(0, 1)

	// Input modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)
