// Package marker resolves the comment-token family used by code block
// directives for a given language tag.
package marker

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Kind is the flavour of a highlight region.
type Kind int

const (
	Default Kind = iota
	Add
	Modify
	Remove
)

var kindNames = [...]string{"highlight", "add", "modify", "remove"}

// ErrUnknownKind is returned by [ParseKind] for names that are not a highlight kind.
var ErrUnknownKind = errors.New("unknown highlight kind")

// Kinds lists every highlight kind in token scan order.
var Kinds = []Kind{Default, Add, Modify, Remove}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseKind returns the kind with the given directive name.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if strings.EqualFold(name, n) {
			return Kind(i), nil
		}
	}

	return Default, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Family is a comment syntax.
type Family int

const (
	CStyle Family = iota
	Hash
	Markup
)

func (f Family) String() string {
	switch f {
	case Hash:
		return "hash"
	case Markup:
		return "markup"
	default:
		return "c-style"
	}
}

// Token holds the open and close spellings of one highlight kind. Both are
// matched as substrings of a line.
type Token struct {
	Kind  Kind
	Open  string
	Close string
}

// Set is the concrete directive grammar for one language.
type Set struct {
	Family   Family
	Filename *regexp.Regexp
	Tokens   []Token
}

// FindFilename returns the byte offsets of the first filename directive line
// in text and the trimmed name it declares.
func (s Set) FindFilename(text string) (int, int, string, bool) {
	loc := s.Filename.FindStringSubmatchIndex(text)
	if loc == nil {
		return 0, 0, "", false
	}

	return loc[0], loc[1], strings.TrimSpace(text[loc[2]:loc[3]]), true
}

// Open returns the kind whose open token occurs in line.
func (s Set) Open(line string) (Kind, bool) {
	for _, tok := range s.Tokens {
		if strings.Contains(line, tok.Open) {
			return tok.Kind, true
		}
	}

	return Default, false
}

// Close reports whether line holds the close token of any kind.
func (s Set) Close(line string) bool {
	for _, tok := range s.Tokens {
		if strings.Contains(line, tok.Close) {
			return true
		}
	}

	return false
}

func tokens(prefix string) []Token {
	toks := make([]Token, 0, len(Kinds))

	for _, kind := range Kinds {
		toks = append(toks, Token{
			Kind:  kind,
			Open:  prefix + " [" + kind.String() + "]",
			Close: prefix + " [/" + kind.String() + "]",
		})
	}

	return toks
}

var (
	markupSet = Set{
		Family:   Markup,
		Filename: regexp.MustCompile(`(?m)^<!--[[:blank:]]*filename:[[:blank:]]*(.*?)(?:[[:blank:]]*-->)?[[:blank:]]*\r?$`),
		Tokens:   tokens("<!--"),
	}
	hashSet = Set{
		Family:   Hash,
		Filename: regexp.MustCompile(`(?m)^#[[:blank:]]*filename:[[:blank:]]*(.*?)[[:blank:]]*\r?$`),
		Tokens:   tokens("#"),
	}
	cStyleSet = Set{
		Family:   CStyle,
		Filename: regexp.MustCompile(`(?m)^(?://|#|<!--)[[:blank:]]*filename:[[:blank:]]*(.*?)(?:[[:blank:]]*-->)?[[:blank:]]*\r?$`),
		Tokens:   tokens("//"),
	}
)

// Resolve returns the directive grammar for a fenced code block language tag.
// Unknown and empty tags get the C-style grammar.
func Resolve(lang string) Set {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "html", "xml":
		return markupSet
	case "python", "ruby":
		return hashSet
	default:
		return cStyleSet
	}
}
