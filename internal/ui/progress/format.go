package progress

import (
	"fmt"
	"io"

	"github.com/bnema/esoctl/internal/ui/styles"
)

// Printer writes styled step lines for non-interactive output
type Printer struct {
	w io.Writer
}

// NewPrinter creates a Printer writing to w
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Step prints a step with the appropriate icon and styling
func (p *Printer) Step(state State, message string) {
	_, _ = fmt.Fprintln(p.w, FormatStep(state, message))
}

// Complete prints a completed step
func (p *Printer) Complete(message string) {
	p.Step(StateComplete, message)
}

// Error prints an error step
func (p *Printer) Error(message string) {
	p.Step(StateError, message)
}

// Skipped prints a step that had nothing to do
func (p *Printer) Skipped(message string) {
	p.Step(StateSkipped, message)
}

// Warning prints a warning message
func (p *Printer) Warning(message string) {
	_, _ = fmt.Fprintln(p.w, FormatWarning(message))
}

// Title prints a title/header
func (p *Printer) Title(title string) {
	_, _ = fmt.Fprintf(p.w, "%s\n\n", styles.NormalText.Bold(true).Render(title))
}

// Detail prints an indented detail line
func (p *Printer) Detail(detail string) {
	arrow := IconStyleArrow.Render(GetIcons().Arrow)
	_, _ = fmt.Fprintf(p.w, "    %s %s\n", arrow, styles.MutedText.Render(detail))
}

// Summary prints a summary line
func (p *Printer) Summary(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, "\n  %s\n", styles.MutedText.Render(fmt.Sprintf(format, args...)))
}

// FormatStep returns a formatted step string
func FormatStep(state State, message string) string {
	return fmt.Sprintf("  %s %s", StyledIcon(state), StepStyle(state).Render(message))
}

// FormatSuccess returns a formatted success string
func FormatSuccess(message string) string {
	return FormatStep(StateComplete, message)
}

// FormatError returns a formatted error string
func FormatError(message string) string {
	return FormatStep(StateError, message)
}

// FormatWarning returns a formatted warning string
func FormatWarning(message string) string {
	icon := IconStyleWarning.Render(GetIcons().Warning)
	return fmt.Sprintf("  %s %s", icon, styles.WarningText.Render(message))
}

// FormatProgressLine formats a line like "Downloading 3/12: Foo Bar"
func FormatProgressLine(icon, action string, current, total int, name string) string {
	count := styles.MutedText.Render(fmt.Sprintf("%d/%d", current, total))
	return fmt.Sprintf("  %s %s %s: %s", icon, action, count, styles.NormalText.Bold(true).Render(name))
}
