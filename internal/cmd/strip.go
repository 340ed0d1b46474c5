package cmd

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/spf13/cobra"
)

//go:embed help/strip.md
var stripHelp string

type stripMode struct {
	diff  bool
	check bool
}

func stripCmd(opts *options) *cobra.Command {
	var mode stripMode

	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:   "strip [flags] [filename]",
		Short: "Remove filename and highlight directives from code blocks",
		Long:  stripHelp,
		Args:  checkargs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return stripRun(source(args), opts, cmd.OutOrStdout(), mode)
		},

		DisableAutoGenTag: true,
	}

	cmd.Flags().BoolVar(&mode.diff, "diff", false, "print a unified diff instead of rewriting the file")
	cmd.Flags().BoolVar(&mode.check, "check", false, "fail if any selected block carries directives")
	cmd.MarkFlagsMutuallyExclusive("diff", "check")

	return cmd
}

func stripRun(filename string, opts *options, out io.Writer, mode stripMode) error {
	src, err := readSource(filename, opts)
	if err != nil {
		return err
	}

	var stripped int

	modified, result, err := walk(src, opts, func(e *entry) error {
		code := e.res.Code()
		if code == e.block.Text() {
			return nil
		}

		stripped++

		opts.status("block %d%s: L%d-%d\n", e.block.Index, titleLabel(e.title), e.block.StartLine, e.block.EndLine)

		if !mode.check {
			e.block.SetText(code)
		}

		return nil
	})
	if err != nil {
		return err
	}

	switch {
	case mode.check:
		if stripped > 0 {
			return fmt.Errorf("%w: %d block(s) in %s", errHasDirectives, stripped, filename)
		}

		return nil
	case !modified:
		opts.status("no directives in %s\n", filename)

		return nil
	case mode.diff:
		_, err = fmt.Fprint(out, unifiedDiff(filename, src, result))

		return err
	case filename == stdinSource:
		_, err = out.Write(result)

		return err
	}

	opts.status("stripped %d block(s) in %s\n", stripped, filename)

	return os.WriteFile(filename, result, fileMode)
}

func unifiedDiff(filename string, before, after []byte) string {
	edits := myers.ComputeEdits(span.URIFromPath(filename), string(before), string(after))

	return fmt.Sprint(gotextdiff.ToUnified(filename, filename, string(before), edits))
}
