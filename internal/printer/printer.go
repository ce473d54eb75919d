package printer

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Style definitions for consistent console output across the application.
var (
	boldStyle  = lipgloss.NewStyle().Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // Red
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // Cyan
)

// SetNoColor switches all styles to plain text when disabled is true and
// back to the detected terminal profile otherwise.
func SetNoColor(disabled bool) {
	if disabled {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.EnvColorProfile())
}

// Render functions return styled strings without printing.

// Bold returns text with bold styling.
func Bold(text string) string {
	return boldStyle.Render(text)
}

// Error returns text with error (red) styling.
func Error(text string) string {
	return errorStyle.Render(text)
}

// Info returns text with info (cyan) styling.
func Info(text string) string {
	return infoStyle.Render(text)
}

// Field renders a "label: value" line with a styled label and bold value.
func Field(label, value string) string {
	return fmt.Sprintf("%s %s", Info(label+":"), Bold(value))
}

// PrintError writes text with error styling and a newline to w.
func PrintError(w io.Writer, text string) {
	fmt.Fprintln(w, Error(text))
}
