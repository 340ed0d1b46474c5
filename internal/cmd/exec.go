package cmd

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

//go:embed help/exec.md
var execHelp string

type blockFile struct {
	index    int
	lang     string
	title    string
	tempPath string
}

type shell struct {
	dir    string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func execCmd(opts *options) *cobra.Command {
	var batch bool

	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:     "exec [flags] [filename] [-- command]",
		Aliases: []string{"e"},
		Short:   "Execute shell commands on individual code blocks",
		Long:    execHelp,
		Args:    checkargs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scr, args := script(cmd, args)
			if len(scr) == 0 {
				return errMissingCommand
			}

			if !cmd.Flag("dir").Changed {
				dir, err := os.MkdirTemp(".", "mdmark-exec-")
				if err != nil {
					return err
				}

				opts.dir = dir

				if !opts.keep {
					defer os.RemoveAll(dir)
				}
			}

			absDir, err := filepath.Abs(opts.dir)
			if err != nil {
				return err
			}

			src, err := readSource(source(args), opts)
			if err != nil {
				return err
			}

			sh := &shell{dir: absDir, stdin: opts.stdin, stdout: cmd.OutOrStdout(), stderr: cmd.ErrOrStderr()}

			if batch {
				return execBatch(src, opts, sh, scr)
			}

			return execPerBlock(source(args), src, opts, sh, scr)
		},

		DisableAutoGenTag: true,
	}

	dirFlag(cmd, opts)

	cmd.Flags().BoolVar(&batch, "batch", false, "run command once for all files instead of once per block")
	cmd.Flags().BoolVarP(&opts.keep, "keep", "k", false, "don't remove temporary directory")

	return cmd
}

func execPerBlock(filename string, src []byte, opts *options, sh *shell, scr string) error {
	var failures int

	_, _, err := walk(src, opts, func(e *entry) error {
		file := writeBlockFile(e, sh.dir, opts)
		if file == nil {
			return nil
		}

		opts.status("--- block %d (%s%s) : L%d-%d : %s ---\n",
			file.index, file.lang, titleLabel(file.title), e.block.StartLine, e.block.EndLine, filepath.Base(filename))

		exitCode, err := sh.run(expandCommand(scr, file, sh.dir))
		if err != nil {
			return err
		}

		if exitCode != 0 {
			failures++

			opts.log.Warn().Int("block", file.index).Int("exit", exitCode).Msg("command failed")
		}

		return nil
	})
	if err != nil {
		return err
	}

	if failures > 0 {
		return fmt.Errorf("%d block(s) failed", failures)
	}

	return nil
}

func execBatch(src []byte, opts *options, sh *shell, scr string) error {
	var files []*blockFile

	_, _, err := walk(src, opts, func(e *entry) error {
		if file := writeBlockFile(e, sh.dir, opts); file != nil {
			files = append(files, file)
		}

		return nil
	})
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return nil
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.tempPath
	}

	expanded := strings.ReplaceAll(scr, "{}", strings.Join(paths, " "))
	expanded = strings.ReplaceAll(expanded, "{dir}", sh.dir)

	opts.status("--- batch (%d blocks) ---\n", len(files))

	exitCode, err := sh.run(expanded)
	if err != nil {
		return err
	}

	if exitCode != 0 {
		return fmt.Errorf("command exited with %d", exitCode)
	}

	return nil
}

// writeBlockFile stores the directive-free code of a block in dir. Failures
// are reported and the block is skipped.
func writeBlockFile(e *entry, dir string, opts *options) *blockFile {
	file := &blockFile{
		index: e.block.Index,
		lang:  e.block.Lang,
		title: e.title,
	}

	file.tempPath = filepath.Join(dir, tempFilename(e))

	if err := os.MkdirAll(filepath.Dir(file.tempPath), dirMode); err != nil {
		opts.status("warning: failed to create directory for block %d: %v\n", file.index, err)

		return nil
	}

	code := e.res.Code()
	if len(code) != 0 {
		code += "\n"
	}

	if err := os.WriteFile(file.tempPath, []byte(code), fileMode); err != nil {
		opts.status("warning: failed to write block %d: %v\n", file.index, err)

		return nil
	}

	return file
}

func tempFilename(e *entry) string {
	if len(e.title) != 0 {
		return fmt.Sprintf("%d_%s", e.block.Index, filepath.Base(filepath.FromSlash(e.title)))
	}

	return fmt.Sprintf("block_%d%s", e.block.Index, langExtension(e.block.Lang))
}

func expandCommand(scr string, file *blockFile, dir string) string {
	return strings.NewReplacer(
		"{}", file.tempPath,
		"{lang}", file.lang,
		"{index}", fmt.Sprint(file.index),
		"{file}", file.title,
		"{dir}", dir,
	).Replace(scr)
}

func (sh *shell) run(command string) (int, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return -1, err
	}

	runner, err := interp.New(interp.Dir(sh.dir), interp.StdIO(sh.stdin, sh.stdout, sh.stderr))
	if err != nil {
		return -1, err
	}

	err = runner.Run(context.TODO(), file)
	if err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			return int(status), nil
		}

		return -1, err
	}

	return 0, nil
}
