package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/gompdf/pagebind/pkg/api"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorGray   = lipgloss.Color("245")
	colorWhite  = lipgloss.Color("255")
	colorDim    = lipgloss.Color("240")
)

var (
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconArrow   = "→"
)

// printSummary reports a finished bind on w.
func printSummary(w io.Writer, out, format string, result *api.Result) {
	fmt.Fprintln(w, styleSuccess.Render(iconSuccess)+" Bound "+strconv.Itoa(result.Book.Len())+" pages")
	fmt.Fprintln(w, "  "+styleDim.Render(iconArrow)+" "+styleValue.Render(out))
	if result.Title != "" {
		printKeyValue(w, "title", result.Title)
	}
	printKeyValue(w, "format", format)
	printKeyValue(w, "pages", styleNumber.Render(strconv.Itoa(result.Book.Len())))
	printKeyValue(w, "pass", styleDim.Render(result.PassID))

	diags := result.Book.Diagnostics
	if len(diags) == 0 {
		return
	}
	fmt.Fprintln(w, styleWarning.Render(iconWarning)+" "+styleWarning.Render(fmt.Sprintf("%d diagnostics", len(diags))))
	for _, d := range diags {
		fmt.Fprintln(w, "  "+styleDim.Render(d.String()))
	}
}

func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleKey.Render(key)+" "+styleValue.Render(value))
}
