package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// PrintProgressBar renders current/total as a fixed width bar followed by the
// percentage.
func PrintProgressBar(current, total int64, width int) string {
	if width <= 0 {
		width = 30
	}
	if total <= 0 {
		total = 1
	}
	current = max(0, min(current, total))
	percent := float64(current) / float64(total)
	filled := max(0, min(int(percent*float64(width)), width))
	bar := StyleSymbols["bullet"] + strings.Repeat(StyleSymbols["hline"], filled)
	if filled < width {
		bar += strings.Repeat(" ", width-filled)
	}
	bar += StyleSymbols["bullet"]
	return debugStyle.Render(fmt.Sprintf("%s %.1f%% %s ", bar, percent*100, StyleSymbols["bullet"]))
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalSize(w io.Writer) (width, height int) {
	width, height = 80, 24
	f, ok := w.(*os.File)
	if !ok {
		return width, height
	}
	if tw, th, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 && th > 0 {
		return tw, th
	}
	return width, height
}

func wrapText(text string, width, indent int) []string {
	maxWidth := width - indent - 2
	if maxWidth <= 10 {
		maxWidth = 80
	}
	if utf8.RuneCountInString(text) <= maxWidth {
		return []string{text}
	}
	var lines []string
	var current strings.Builder
	count := 0
	for _, r := range text {
		if count == maxWidth {
			lines = append(lines, current.String())
			current.Reset()
			count = 0
		}
		current.WriteRune(r)
		count++
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
