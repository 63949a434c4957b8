package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette - coherent with charmbracelet style
var (
	Primary   = lipgloss.Color("#7D56F4") // Purple (charmbracelet brand)
	Success   = lipgloss.Color("#50FA7B") // Green
	Warning   = lipgloss.Color("#FFB86C") // Orange
	Error     = lipgloss.Color("#FF5555") // Red
	Muted     = lipgloss.Color("#6272A4") // Muted blue-gray
	Text      = lipgloss.Color("#F8F8F2") // Light text
)

// Base styles
var (
	// Title style for headers
	Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFDF5")).
		Background(Primary).
		Padding(0, 1).
		Bold(true)

	// Normal text
	NormalText = lipgloss.NewStyle().
			Foreground(Text)

	// Muted text
	MutedText = lipgloss.NewStyle().
			Foreground(Muted)

	// Success text
	SuccessText = lipgloss.NewStyle().
			Foreground(Success)

	// Warning text
	WarningText = lipgloss.NewStyle().
			Foreground(Warning)

	// Error text
	ErrorText = lipgloss.NewStyle().
			Foreground(Error)

	// Spinner
	Spinner = lipgloss.NewStyle().
		Foreground(Primary)
)

// Symbols
var (
	CheckMark = lipgloss.NewStyle().Foreground(Success).SetString("✓")
	CrossMark = lipgloss.NewStyle().Foreground(Error).SetString("✗")
)

// Reconciliation status styles
var (
	StatusCurrent = lipgloss.NewStyle().
			Foreground(Success)

	StatusOutdated = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	StatusMissing = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	StatusAmbiguous = lipgloss.NewStyle().
			Foreground(Warning)

	LibraryBadge = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)
)

// FormatStatus returns a styled reconciliation status
func FormatStatus(status string) string {
	switch status {
	case "current":
		return StatusCurrent.Render("current")
	case "outdated", "disambiguated":
		return StatusOutdated.Render("↑ " + status)
	case "upstream-missing":
		return StatusMissing.Render("not in catalog")
	case "multi-outdated":
		return StatusAmbiguous.Render("ambiguous")
	case "unmanaged":
		return MutedText.Render("unmanaged")
	default:
		return MutedText.Render(status)
	}
}

// FormatLibrary returns a styled "lib" indicator
func FormatLibrary() string {
	return LibraryBadge.Render("lib")
}

// FormatSuccess formats a success message
func FormatSuccess(msg string) string {
	return CheckMark.String() + " " + SuccessText.Render(msg)
}

// FormatError formats an error message
func FormatError(msg string) string {
	return CrossMark.String() + " " + ErrorText.Render(msg)
}

// FormatWarning formats a warning message
func FormatWarning(msg string) string {
	return WarningText.Render("! " + msg)
}
