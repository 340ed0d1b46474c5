package cmd

import (
	_ "embed"
	"errors"
	"fmt"
	"io"

	"github.com/ezerfernandes/mdmark/internal/clip"
	"github.com/ezerfernandes/mdmark/internal/marker"
	"github.com/spf13/cobra"
)

//go:embed help/copy.md
var copyHelp string

var errNoBlock = errors.New("no matching code block")

type copyMode struct {
	block   int
	section int
	kind    string
	all     bool
}

func copyCmd(opts *options) *cobra.Command {
	var mode copyMode

	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:     "copy [flags] [filename]",
		Aliases: []string{"c"},
		Short:   "Print the copyable text of a code block",
		Long:    copyHelp,
		Args:    checkargs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return copyRun(source(args), opts, cmd.OutOrStdout(), mode)
		},

		DisableAutoGenTag: true,
	}

	cmd.Flags().IntVarP(&mode.block, "block", "b", -1, "document index of the block (default: first selected block)")
	cmd.Flags().IntVarP(&mode.section, "section", "s", -1, "copy a single highlight section")
	cmd.Flags().BoolVarP(&mode.all, "all", "a", false, "copy the whole block without directives")
	cmd.Flags().StringVarP(&mode.kind, "kind", "k", "", "copy the sections of one kind (highlight, add, modify)")
	cmd.MarkFlagsMutuallyExclusive("section", "all", "kind")

	return cmd
}

func copyRun(filename string, opts *options, out io.Writer, mode copyMode) error {
	src, err := readSource(filename, opts)
	if err != nil {
		return err
	}

	entries, err := selected(src, opts)
	if err != nil {
		return err
	}

	e := pick(entries, mode.block)
	if e == nil {
		return errNoBlock
	}

	var text string

	switch {
	case mode.all:
		text = clip.All(e.res)
		opts.status("copied block %d%s\n", e.block.Index, titleLabel(e.title))
	case mode.section >= 0:
		if text, err = clip.Section(e.res, mode.section); err != nil {
			return fmt.Errorf("block %d: %w", e.block.Index, err)
		}

		opts.status("copied section %d of block %d%s\n", mode.section, e.block.Index, titleLabel(e.title))
	case len(mode.kind) != 0:
		kind, err := marker.ParseKind(mode.kind)
		if err != nil {
			return err
		}

		if text, err = clip.Kind(e.res, kind); err != nil {
			return fmt.Errorf("block %d: %w", e.block.Index, err)
		}

		opts.status("copied %s sections of block %d%s\n", kind, e.block.Index, titleLabel(e.title))
	default:
		var changes bool

		text, changes = clip.Changes(e.res)
		if changes {
			opts.status("copied changes of block %d%s\n", e.block.Index, titleLabel(e.title))
		} else {
			opts.status("no highlighted changes, copied block %d%s\n", e.block.Index, titleLabel(e.title))
		}
	}

	_, err = fmt.Fprintln(out, text)

	return err
}

func pick(entries []*entry, index int) *entry {
	for _, e := range entries {
		if index < 0 || e.block.Index == index {
			return e
		}
	}

	return nil
}

func titleLabel(title string) string {
	if len(title) != 0 {
		return " (" + title + ")"
	}

	return ""
}
