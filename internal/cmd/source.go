package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ezerfernandes/mdmark/internal/directive"
	"github.com/ezerfernandes/mdmark/internal/mdcode"
	"github.com/spf13/cobra"
)

var (
	errTooManyArgs    = errors.New("at most one markdown file may be given")
	errMissingCommand = errors.New("command is required after '--'")
)

// checkargs allows one optional source file before an optional "--".
func checkargs(cmd *cobra.Command, args []string) error {
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		args = args[:dash]
	}

	if len(args) > 1 {
		return errTooManyArgs
	}

	return nil
}

func source(args []string) string {
	if len(args) == 0 {
		return defaultSource
	}

	return args[0]
}

// script returns the words after "--" as one command line and the arguments
// before it.
func script(cmd *cobra.Command, args []string) (string, []string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return "", args
	}

	return strings.Join(args[dash:], " "), args[:dash]
}

func readSource(filename string, opts *options) ([]byte, error) {
	if filename == stdinSource {
		src, err := io.ReadAll(opts.stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}

		return src, nil
	}

	return os.ReadFile(filename)
}

// entry is a selected block with its parsed directives.
type entry struct {
	block *mdcode.Block
	res   *directive.Result
	title string
}

func (opts *options) annotate(block *mdcode.Block) *entry {
	res := block.Directives(opts.cache)

	e := &entry{block: block, res: res, title: block.Title(res)}

	opts.log.Debug().
		Int("block", block.Index).
		Str("lang", block.Lang).
		Str("title", e.title).
		Bool("highlights", res.HasHighlights).
		Int("sections", len(res.Sections)).
		Msg("parsed block")

	return e
}

// walk calls walker for every block selected by the filter.
func walk(source []byte, opts *options, walker func(e *entry) error) (bool, []byte, error) {
	return mdcode.Walk(source, func(block *mdcode.Block) error {
		e := opts.annotate(block)

		if !opts.filter(block, e.title) {
			return nil
		}

		return walker(e)
	})
}

func selected(source []byte, opts *options) ([]*entry, error) {
	var entries []*entry

	_, _, err := walk(source, opts, func(e *entry) error {
		entries = append(entries, e)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

var errHasDirectives = errors.New("code blocks carry directives")
