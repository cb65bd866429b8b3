package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("37"))            // dark green
	success2Style = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))             // green
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))             // red
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))            // yellow
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))            // blue
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))            // cyan
	debugStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))           // light grey
	streamStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))           // grey
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")) // purple
	keyStyle      = lipgloss.NewStyle().Width(16).Foreground(lipgloss.Color("250"))
)

var StyleSymbols = map[string]string{
	"pass":    "✓",
	"fail":    "✗",
	"warning": "!",
	"pending": "◉",
	"info":    "ℹ",
	"arrow":   "→",
	"bullet":  "•",
	"hline":   "━",
}

// stdout is where the one-shot Print helpers write.
var stdout io.Writer = os.Stdout

func PrintSuccess(text string) {
	fmt.Fprintln(stdout, successStyle.Render(StyleSymbols["pass"]+" "+text))
}
func PrintError(text string) {
	fmt.Fprintln(stdout, errorStyle.Render(StyleSymbols["fail"]+" "+text))
}
func PrintWarning(text string) {
	fmt.Fprintln(stdout, warningStyle.Render(StyleSymbols["warning"]+" "+text))
}
func PrintInfo(text string) {
	fmt.Fprintln(stdout, infoStyle.Render(text))
}
func PrintHeader(text string) {
	fmt.Fprintln(stdout, headerStyle.Render(text))
}

// PrintKeyValue prints an aligned "key value" row used by status style commands.
func PrintKeyValue(key, value string) {
	fmt.Fprintf(stdout, "  %s %s\n", keyStyle.Render(key), value)
}

func FSuccess(text string) string {
	return successStyle.Render(text)
}
func FWarning(text string) string {
	return warningStyle.Render(text)
}
func FDebug(text string) string {
	return debugStyle.Render(text)
}
