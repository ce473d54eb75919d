// Package printer styles console output with lipgloss.
package printer
