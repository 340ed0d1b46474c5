// Package clip selects the text of parsed code blocks that a user may copy.
//
// Remove sections are never offered: their content is code the reader is
// told to delete.
package clip

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ezerfernandes/mdmark/internal/directive"
	"github.com/ezerfernandes/mdmark/internal/marker"
)

var (
	// ErrNoSection is returned by [Section] for an index out of range.
	ErrNoSection = errors.New("no such section")
	// ErrNotCopyable is returned by [Section] for a remove section.
	ErrNotCopyable = errors.New("section is not copyable")
)

// Copyable returns the sections of res that can be copied, in document order.
func Copyable(res *directive.Result) []directive.Section {
	var out []directive.Section

	for _, s := range res.Sections {
		if s.Kind != marker.Remove {
			out = append(out, s)
		}
	}

	return out
}

// Changes returns the content of every copyable section joined by newlines.
// When there is nothing to copy it returns the whole code and false.
func Changes(res *directive.Result) (string, bool) {
	sections := Copyable(res)
	if len(sections) == 0 {
		return All(res), false
	}

	parts := make([]string, len(sections))
	for i, s := range sections {
		parts[i] = s.Content
	}

	return strings.Join(parts, "\n"), true
}

// Section returns the content of the n-th section of res.
func Section(res *directive.Result, n int) (string, error) {
	if n < 0 || n >= len(res.Sections) {
		return "", fmt.Errorf("%w: %d of %d", ErrNoSection, n, len(res.Sections))
	}

	s := res.Sections[n]
	if s.Kind == marker.Remove {
		return "", fmt.Errorf("%w: %d (%s)", ErrNotCopyable, n, s.Kind)
	}

	return s.Content, nil
}

// Kind returns the content of every section of the given kind joined by
// newlines.
func Kind(res *directive.Result, kind marker.Kind) (string, error) {
	if kind == marker.Remove {
		return "", fmt.Errorf("%w: %s sections", ErrNotCopyable, kind)
	}

	sections := res.Highlighted(kind)
	if len(sections) == 0 {
		return "", fmt.Errorf("%w: no %s section", ErrNoSection, kind)
	}

	parts := make([]string, len(sections))
	for i, s := range sections {
		parts[i] = s.Content
	}

	return strings.Join(parts, "\n"), nil
}

// All returns the directive-free code of res.
func All(res *directive.Result) string {
	return res.Code()
}
