package trace

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
)

// OutputFormatter renders events for human-readable display.
type OutputFormatter struct {
	writer   io.Writer
	useColor bool
}

// NewOutputFormatter creates a formatter; color is enabled when writing to
// a terminal.
func NewOutputFormatter(w io.Writer) *OutputFormatter {
	if w == nil {
		w = os.Stdout
	}
	useColor := false
	if f, ok := w.(*os.File); ok {
		stat, err := f.Stat()
		useColor = err == nil && (stat.Mode()&os.ModeCharDevice) != 0
	}
	return &OutputFormatter{writer: w, useColor: useColor}
}

// Handler returns a Handler that prints each event.
func (f *OutputFormatter) Handler() Handler {
	return func(event Event) {
		if line := f.Format(event); line != "" {
			fmt.Fprintln(f.writer, line)
		}
	}
}

// Format converts an event to one display line.
func (f *OutputFormatter) Format(event Event) string {
	latency := ""
	if event.Latency > 0 {
		latency = fmt.Sprintf(" (%s)", event.Latency)
	}

	var tag string
	switch event.Name {
	case DomainWarning, RefineWarning, LabelSkipped:
		tag = f.paint(color.FgYellow, "[warn]")
	case CacheHit:
		tag = f.paint(color.FgGreen, "[cache]")
	case CacheMiss:
		tag = f.paint(color.FgCyan, "[cache]")
	default:
		tag = f.paint(color.FgBlue, "[plan]")
	}
	return fmt.Sprintf("%s %s%s%s", tag, event.Name, formatData(event.Data), latency)
}

func (f *OutputFormatter) paint(attr color.Attribute, s string) string {
	if !f.useColor {
		return s
	}
	return color.New(attr).Sprint(s)
}

func formatData(data map[string]interface{}) string {
	if len(data) == 0 {
		return ""
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, data[k])
	}
	return " " + strings.Join(parts, " ")
}
