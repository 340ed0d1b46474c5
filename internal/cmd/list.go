package cmd

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ezerfernandes/mdmark/internal/directive"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
)

//go:embed help/list.md
var listHelp string

func listCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:     "list [flags] [filename]",
		Aliases: []string{"ls"},
		Short:   "List code blocks with their titles and highlight sections",
		Long:    listHelp,
		Args:    checkargs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRun(source(args), opts, cmd.OutOrStdout(), asJSON)
		},

		DisableAutoGenTag: true,
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print parse results as JSON")

	return cmd
}

type listing struct {
	Index     int    `json:"index"`
	Lang      string `json:"lang"`
	Title     string `json:"title,omitempty"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`

	*directive.Result
}

func listRun(filename string, opts *options, out io.Writer, asJSON bool) error {
	src, err := readSource(filename, opts)
	if err != nil {
		return err
	}

	entries, err := selected(src, opts)
	if err != nil {
		return err
	}

	if asJSON {
		listings := make([]listing, 0, len(entries))

		for _, e := range entries {
			listings = append(listings, listing{
				Index:     e.block.Index,
				Lang:      e.block.Lang,
				Title:     e.title,
				StartLine: e.block.StartLine,
				EndLine:   e.block.EndLine,
				Result:    e.res,
			})
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(listings)
	}

	tbl := table.New("#", "Lang", "Title", "Lines", "Highlights", "Sections").WithWriter(out)

	for _, e := range entries {
		tbl.AddRow(
			e.block.Index,
			e.block.Lang,
			e.title,
			fmt.Sprintf("%d-%d", e.block.StartLine, e.block.EndLine),
			yesNo(e.res.HasHighlights),
			sectionSummary(e.res),
		)
	}

	tbl.Print()

	opts.status("%d block(s) in %s\n", len(entries), filename)

	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}

func sectionSummary(res *directive.Result) string {
	if len(res.Sections) == 0 {
		return "-"
	}

	summary := ""

	for i, s := range res.Sections {
		if i > 0 {
			summary += ","
		}

		summary += fmt.Sprintf("%d:%s", i, s.Kind)
	}

	return summary
}
