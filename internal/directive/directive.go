// Package directive parses the annotations embedded in a fenced code block:
// an optional filename header and highlight regions delimited by marker lines.
//
// Parsing never fails. Malformed or unterminated markers degrade to partial or
// no highlighting.
package directive

import (
	"encoding/json"
	"strings"

	"github.com/ezerfernandes/mdmark/internal/marker"
)

// Role is the classification of one body line.
type Role int

const (
	Body Role = iota
	Marker
	Highlighted
)

func (r Role) String() string {
	switch r {
	case Marker:
		return "marker"
	case Highlighted:
		return "highlighted"
	default:
		return "body"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Line classifies the body line at Index. Kind is only meaningful when Role
// is Highlighted.
type Line struct {
	Index int         `json:"index"`
	Role  Role        `json:"role"`
	Kind  marker.Kind `json:"kind"`
}

// MarshalJSON omits kind for lines that are not highlighted.
func (l Line) MarshalJSON() ([]byte, error) {
	out := struct {
		Index int          `json:"index"`
		Role  Role         `json:"role"`
		Kind  *marker.Kind `json:"kind,omitempty"`
	}{Index: l.Index, Role: l.Role}

	if l.Role == Highlighted {
		out.Kind = &l.Kind
	}

	return json.Marshal(out)
}

// Section is a closed highlight region. StartLine and EndLine are the indexes
// of its open and close marker lines; Content is the text between them, with
// "\n" line breaks whatever the block used.
type Section struct {
	Kind      marker.Kind `json:"kind"`
	StartLine int         `json:"start_line"`
	EndLine   int         `json:"end_line"`
	Content   string      `json:"content"`
}

// Result is the outcome of parsing one code block.
type Result struct {
	// FileTitle is the name declared by the filename directive, empty if none.
	FileTitle     string    `json:"file_title,omitempty"`
	Body          string    `json:"body"`
	HasHighlights bool      `json:"has_highlights"`
	Lines         []Line    `json:"lines"`
	Sections      []Section `json:"sections"`
}

// Parse extracts the filename directive from text, then classifies every
// remaining line using the marker grammar of lang.
func Parse(lang, text string) *Result {
	set := marker.Resolve(lang)
	res := &Result{Body: text}

	if start, end, name, ok := set.FindFilename(text); ok {
		res.FileTitle = name
		res.Body = stripLine(text, start, end)
	}

	if len(res.Body) == 0 {
		return res
	}

	classify(set, res)

	return res
}

// stripLine removes text[start:end] together with its line terminator. If the
// remaining text then starts with an empty line, that line goes too.
func stripLine(text string, start, end int) string {
	switch {
	case end < len(text) && text[end] == '\n':
		end++
	case start > 0 && text[start-1] == '\n':
		start--
	}

	body := text[:start] + text[end:]

	switch {
	case strings.HasPrefix(body, "\r\n"):
		return body[2:]
	case strings.HasPrefix(body, "\n"):
		return body[1:]
	}

	return body
}

type scanner struct {
	open    bool
	kind    marker.Kind
	start   int
	collect []string
}

func classify(set marker.Set, res *Result) {
	lines := strings.Split(res.Body, "\n")
	res.Lines = make([]Line, len(lines))

	var sc scanner

	for i, text := range lines {
		line := Line{Index: i, Role: Body}

		if kind, ok := set.Open(text); ok {
			// A second open marker replaces the pending one.
			res.HasHighlights = true
			sc = scanner{open: true, kind: kind, start: i}
			line.Role = Marker
		} else if set.Close(text) {
			if sc.open {
				line.Role = Marker
				res.Sections = append(res.Sections, Section{
					Kind:      sc.kind,
					StartLine: sc.start,
					EndLine:   i,
					Content:   strings.Join(sc.collect, "\n"),
				})
				sc = scanner{}
			}
		} else if sc.open {
			line.Role = Highlighted
			line.Kind = sc.kind
			sc.collect = append(sc.collect, strings.TrimSuffix(text, "\r"))
		}

		res.Lines[i] = line
	}
}

// Code returns the body without its marker lines.
func (r *Result) Code() string {
	if !r.HasHighlights {
		return r.Body
	}

	lines := strings.Split(r.Body, "\n")
	kept := make([]string, 0, len(lines))

	for i, line := range lines {
		if r.Lines[i].Role != Marker {
			kept = append(kept, line)
		}
	}

	return strings.Join(kept, "\n")
}

// Highlighted returns the sections of the given kind in document order.
func (r *Result) Highlighted(kind marker.Kind) []Section {
	var out []Section

	for _, s := range r.Sections {
		if s.Kind == kind {
			out = append(out, s)
		}
	}

	return out
}
