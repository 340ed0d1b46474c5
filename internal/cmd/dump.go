package cmd

import (
	_ "embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

//go:embed help/dump.md
var dumpHelp string

// writeFS is the destination of dumped blocks. Paths are slash separated and
// relative to the destination root.
type writeFS interface {
	MkdirAll(path string, perm fs.FileMode) error
	WriteFile(path string, data []byte, perm fs.FileMode) error
}

type dirFS string

func (d dirFS) MkdirAll(name string, perm fs.FileMode) error {
	return os.MkdirAll(filepath.Join(string(d), filepath.FromSlash(name)), perm)
}

func (d dirFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(filepath.Join(string(d), filepath.FromSlash(name)), data, perm)
}

func dumpCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:     "dump [flags] [filename]",
		Aliases: []string{"d"},
		Short:   "Write code blocks to files named after their titles",
		Long:    dumpHelp,
		Args:    checkargs,
		RunE: func(_ *cobra.Command, args []string) error {
			src, err := readSource(source(args), opts)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(opts.dir, dirMode); err != nil {
				return err
			}

			return dumpRun(src, opts, dirFS(opts.dir))
		},

		DisableAutoGenTag: true,
	}

	dirFlag(cmd, opts)

	return cmd
}

func dirFlag(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", opts.dir, "output directory")
}

func dumpRun(src []byte, opts *options, dst writeFS) error {
	entries, err := selected(src, opts)
	if err != nil {
		return err
	}

	written := make(map[string]int)

	for _, e := range entries {
		name := dumpName(e)

		if prev, ok := written[name]; ok {
			opts.status("block %d overwrites block %d in %s\n", e.block.Index, prev, name)
		}

		if dir := path.Dir(name); dir != "." {
			if err := dst.MkdirAll(dir, dirMode); err != nil {
				return fmt.Errorf("block %d: %w", e.block.Index, err)
			}
		}

		code := e.res.Code()
		if len(code) != 0 {
			code += "\n"
		}

		if err := dst.WriteFile(name, []byte(code), fileMode); err != nil {
			return fmt.Errorf("block %d: %w", e.block.Index, err)
		}

		written[name] = e.block.Index

		opts.status("block %d -> %s\n", e.block.Index, name)
	}

	return nil
}

// dumpName returns a slash separated path that cannot escape the destination.
func dumpName(e *entry) string {
	if len(e.title) != 0 {
		name := strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(e.title)), "/")
		if len(name) != 0 {
			return name
		}
	}

	return fmt.Sprintf("block_%d%s", e.block.Index, langExtension(e.block.Lang))
}

func langExtension(lang string) string {
	if len(lang) > 0 {
		return "." + strings.ToLower(lang)
	}

	return ".txt"
}
