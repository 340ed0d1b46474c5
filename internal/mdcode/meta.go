package mdcode

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/shlex"
)

// Meta holds the attributes written after the language in a fence info
// string, either as JSON or as shell-quoted key=value words.
type Meta map[string]interface{}

// Get returns the value of name as a string, or "" if absent.
func (m Meta) Get(name string) string {
	value, has := m[name]
	if !has {
		return ""
	}

	if s, ok := value.(string); ok {
		return s
	}

	return fmt.Sprint(value)
}

// Has reports whether name is present.
func (m Meta) Has(name string) bool {
	_, has := m[name]

	return has
}

var (
	reJSON     = regexp.MustCompile(`^\s*{\s*["}]`)
	reBrackets = regexp.MustCompile(`^\s*{(.*)}\s*$`)
)

// parseMeta accepts `{"k": "v"}`, `{k=v flag}` and `k=v flag`. Bare words
// become boolean flags.
func parseMeta(input []byte) (Meta, error) {
	meta := make(Meta)

	if len(input) == 0 {
		return meta, nil
	}

	if reJSON.Match(input) {
		if err := json.Unmarshal(input, &meta); err != nil {
			return nil, err
		}

		return meta, nil
	}

	if subs := reBrackets.FindSubmatch(input); subs != nil {
		input = subs[1]
	}

	words, err := shlex.Split(string(input))
	if err != nil {
		return nil, err
	}

	for _, word := range words {
		key, value, found := strings.Cut(word, "=")

		switch {
		case len(key) == 0:
			continue
		case found:
			meta[key] = value
		default:
			meta[key] = true
		}
	}

	return meta, nil
}
