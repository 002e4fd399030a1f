package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiGray   = "\033[90m"
)

var colors = true

// DisableColors turns off ANSI escapes in formatted diagnostics.
func DisableColors() { colors = false }

// EnableColors turns ANSI escapes back on.
func EnableColors() { colors = true }

func paint(style, s string) string {
	if !colors {
		return s
	}
	return style + s + ansiReset
}

// Format renders the diagnostic for a terminal: a header line, then the
// config source or wire position, the detail, the cause and a hint.
func (e *Diagnostic) Format() string {
	var b strings.Builder
	e.writeHeader(&b)
	e.writeSource(&b)
	e.writeWirePosition(&b)
	if e.Detail != "" {
		for _, l := range wrapText(e.Detail, 70) {
			fmt.Fprintf(&b, "  %s\n", l)
		}
		b.WriteByte('\n')
	}
	if e.Wrapped != nil {
		fmt.Fprintf(&b, "  %s%s\n\n", paint(ansiYellow, "Cause: "), e.Wrapped)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s%s\n\n", paint(ansiCyan, "Hint: "), e.Suggestion)
	}
	return b.String()
}

func (e *Diagnostic) writeHeader(b *strings.Builder) {
	label := "ERROR:"
	if e.Code != "" {
		label = "ERROR " + e.Code + ":"
	}
	fmt.Fprintf(b, "\n%s %s\n\n", paint(ansiRed+ansiBold, label), paint(ansiBold, e.Message))
}

// writeSource prints the file position and, when loaded, the lines around it
// with the failing line marked.
func (e *Diagnostic) writeSource(b *strings.Builder) {
	if e.Location == nil {
		return
	}
	fmt.Fprintf(b, "  %s\n\n", paint(ansiCyan, e.Location.String()))
	if len(e.Context) == 0 {
		return
	}

	first := max(e.Location.Line-len(e.Context)/2, 1)
	for i, text := range e.Context {
		n := first + i
		marker := "  "
		if n == e.Location.Line {
			marker = paint(ansiRed, "> ")
		}
		fmt.Fprintf(b, "  %s%4d %s %s\n", marker, n, paint(ansiGray, "|"), text)
		if n == e.Location.Line && e.Location.Column > 0 {
			pad := strings.Repeat(" ", e.Location.Column-1)
			fmt.Fprintf(b, "         %s %s%s\n", paint(ansiGray, "|"), pad, paint(ansiRed, "^"))
		}
	}
	b.WriteByte('\n')
}

func (e *Diagnostic) writeWirePosition(b *strings.Builder) {
	var parts []string
	if e.Path != "" {
		parts = append(parts, paint(ansiCyan, e.Path))
	}
	if e.Offset >= 0 {
		parts = append(parts, paint(ansiGray, fmt.Sprintf("at byte %d", e.Offset)))
	}
	if len(parts) > 0 {
		fmt.Fprintf(b, "  %s\n\n", strings.Join(parts, " "))
	}
}

// FormatCompact returns a compact single-line error format.
func (e *Diagnostic) FormatCompact() string {
	var b strings.Builder

	if e.Location != nil {
		b.WriteString(e.Location.String())
		b.WriteString(": ")
	}
	if e.Code != "" {
		b.WriteString(e.Code)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Path != "" {
		b.WriteString(" (")
		b.WriteString(e.Path)
		b.WriteString(")")
	}

	return b.String()
}

type jsonLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

type jsonDiagnostic struct {
	Code       string        `json:"code,omitempty"`
	Category   Category      `json:"category"`
	Message    string        `json:"message"`
	Detail     string        `json:"detail,omitempty"`
	Location   *jsonLocation `json:"location,omitempty"`
	Path       string        `json:"path,omitempty"`
	Offset     *int          `json:"offset,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
	Cause      string        `json:"cause,omitempty"`
}

// FormatJSON returns the error as a JSON object.
func (e *Diagnostic) FormatJSON() string {
	out := jsonDiagnostic{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Path:       e.Path,
		Suggestion: e.Suggestion,
	}
	if e.Location != nil {
		out.Location = &jsonLocation{File: e.Location.File, Line: e.Location.Line, Column: e.Location.Column}
	}
	if e.Offset >= 0 {
		off := e.Offset
		out.Offset = &off
	}
	if e.Wrapped != nil {
		out.Cause = e.Wrapped.Error()
	}
	b, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, e.Error())
	}
	return string(b)
}

// wrapText breaks text into lines of at most width bytes, splitting on
// whitespace. A single word longer than width gets its own line.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	lines := []string{words[0]}
	for _, w := range words[1:] {
		last := &lines[len(lines)-1]
		if len(*last)+1+len(w) > width {
			lines = append(lines, w)
			continue
		}
		*last += " " + w
	}
	return lines
}

// PrintError writes err to stderr.
func PrintError(err error) {
	Fprint(os.Stderr, err)
}

// Fprint writes err to w, formatted when it is a Diagnostic.
func Fprint(w io.Writer, err error) {
	var d *Diagnostic
	if stderrors.As(err, &d) {
		io.WriteString(w, d.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", paint(ansiRed+ansiBold, "ERROR:"), err)
}
