package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/studyplan/planner/internal/domain"
)

// Colors defines the color palette for the TUI.
var Colors = struct {
	// Base colors
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Error      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Background lipgloss.Color

	// Title/text colors
	TitleNormal   lipgloss.Color
	TitleSelected lipgloss.Color
	DescNormal    lipgloss.Color

	// Status colors
	Pending    lipgloss.Color
	InProgress lipgloss.Color
	Completed  lipgloss.Color

	// Priority colors
	Low    lipgloss.Color
	Medium lipgloss.Color
	High   lipgloss.Color
}{
	Primary:    lipgloss.Color("#6C5CE7"), // Purple
	Secondary:  lipgloss.Color("#A29BFE"), // Lavender
	Muted:      lipgloss.Color("#636E72"), // Gray
	Error:      lipgloss.Color("#D63031"), // Red
	Success:    lipgloss.Color("#00B894"), // Green
	Warning:    lipgloss.Color("#FDCB6E"), // Yellow
	Background: lipgloss.Color("#2D3436"), // Dark gray

	TitleNormal:   lipgloss.Color("#DFE6E9"), // Light gray
	TitleSelected: lipgloss.Color("#FFEAA7"), // Yellow (selected)
	DescNormal:    lipgloss.Color("#636E72"), // Gray

	Pending:    lipgloss.Color("#74B9FF"), // Light blue
	InProgress: lipgloss.Color("#FDCB6E"), // Yellow
	Completed:  lipgloss.Color("#00B894"), // Green

	Low:    lipgloss.Color("#74B9FF"), // Light blue
	Medium: lipgloss.Color("#FDCB6E"), // Yellow
	High:   lipgloss.Color("#D63031"), // Red
}

// Styles contains all the lipgloss styles for the TUI.
type Styles struct {
	// App
	App lipgloss.Style

	// Header
	Header     lipgloss.Style
	HeaderText lipgloss.Style
	HeaderInfo lipgloss.Style

	// Rows
	Row         lipgloss.Style
	RowSelected lipgloss.Style
	RowGrabbed  lipgloss.Style
	RowID       lipgloss.Style
	RowMuted    lipgloss.Style
	Cursor      lipgloss.Style

	// Status badges
	StatusPending    lipgloss.Style
	StatusInProgress lipgloss.Style
	StatusCompleted  lipgloss.Style

	// Priority badges
	PriorityLow    lipgloss.Style
	PriorityMedium lipgloss.Style
	PriorityHigh   lipgloss.Style

	// Forms
	FieldLabel        lipgloss.Style
	FieldLabelFocused lipgloss.Style
	FieldError        lipgloss.Style
	Section           lipgloss.Style
	Total             lipgloss.Style

	// Help
	Help lipgloss.Style

	// Footer
	Footer lipgloss.Style

	// Dialog
	Dialog      lipgloss.Style
	DialogTitle lipgloss.Style

	// Notifications
	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style

	// Error
	ErrorMsg lipgloss.Style
}

// DefaultStyles returns the default styles for the TUI.
func DefaultStyles() Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary).
			MarginBottom(1),

		HeaderText: lipgloss.NewStyle().
			Bold(true),

		HeaderInfo: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		Row: lipgloss.NewStyle().
			Foreground(Colors.TitleNormal),

		RowSelected: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.TitleSelected),

		RowGrabbed: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Secondary),

		RowID: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Width(5),

		RowMuted: lipgloss.NewStyle().
			Foreground(Colors.DescNormal),

		Cursor: lipgloss.NewStyle().
			Foreground(Colors.TitleSelected).
			Bold(true),

		StatusPending: lipgloss.NewStyle().
			Foreground(Colors.Pending),

		StatusInProgress: lipgloss.NewStyle().
			Foreground(Colors.InProgress),

		StatusCompleted: lipgloss.NewStyle().
			Foreground(Colors.Completed),

		PriorityLow: lipgloss.NewStyle().
			Foreground(Colors.Low),

		PriorityMedium: lipgloss.NewStyle().
			Foreground(Colors.Medium),

		PriorityHigh: lipgloss.NewStyle().
			Foreground(Colors.High).
			Bold(true),

		FieldLabel: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Width(18),

		FieldLabelFocused: lipgloss.NewStyle().
			Foreground(Colors.Primary).
			Bold(true).
			Width(18),

		FieldError: lipgloss.NewStyle().
			Foreground(Colors.Error).
			PaddingLeft(18),

		Section: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Secondary).
			MarginTop(1),

		Total: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.TitleNormal),

		Help: lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Colors.Muted),

		Footer: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		Dialog: lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Colors.Error),

		DialogTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Error),

		ToastSuccess: lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(Colors.Background).
			Background(Colors.Success),

		ToastError: lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(Colors.TitleNormal).
			Background(Colors.Error),

		ErrorMsg: lipgloss.NewStyle().
			Foreground(Colors.Error).
			Bold(true),
	}
}

// StatusStyle returns the style for a given status.
func (s Styles) StatusStyle(status domain.Status) lipgloss.Style {
	switch status {
	case domain.StatusInProgress:
		return s.StatusInProgress
	case domain.StatusCompleted:
		return s.StatusCompleted
	default:
		return s.StatusPending
	}
}

// PriorityStyle returns the style for a given priority.
func (s Styles) PriorityStyle(p domain.Priority) lipgloss.Style {
	switch p {
	case domain.PriorityLow:
		return s.PriorityLow
	case domain.PriorityHigh:
		return s.PriorityHigh
	default:
		return s.PriorityMedium
	}
}

// StatusIcon returns an icon for a given status.
func StatusIcon(status domain.Status) string {
	switch status {
	case domain.StatusPending:
		return "○"
	case domain.StatusInProgress:
		return "●"
	case domain.StatusCompleted:
		return "✓"
	default:
		return "?"
	}
}
