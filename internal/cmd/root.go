// Package cmd implements the mdmark command line.
package cmd

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/ezerfernandes/mdmark/internal/directive"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

//go:embed help/root.md
var rootHelp string

const (
	defaultSource = "README.md"
	stdinSource   = "-"

	fileMode = 0o600
	dirMode  = 0o750
)

type (
	statusFunc func(format string, args ...interface{})

	options struct {
		lang    []string
		file    string
		meta    map[string]string
		quiet   bool
		verbose bool
		dir     string
		keep    bool

		filter filterFunc
		status statusFunc
		log    zerolog.Logger
		cache  *directive.Cache
		stdin  io.Reader
	}
)

func (opts *options) createStatus(out io.Writer) {
	if opts.quiet {
		opts.status = func(string, ...interface{}) {}

		return
	}

	opts.status = func(format string, args ...interface{}) {
		fmt.Fprintf(out, format, args...)
	}
}

func (opts *options) createLogger(out io.Writer) {
	level := zerolog.WarnLevel
	if opts.verbose {
		level = zerolog.DebugLevel
	}

	opts.log = zerolog.New(zerolog.ConsoleWriter{Out: out, NoColor: true}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func rootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{ //nolint:exhaustruct
		Use:   "mdmark",
		Short: "Inspect annotated code blocks in Markdown documents",
		Long:  rootHelp,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			opts.createStatus(cmd.ErrOrStderr())
			opts.createLogger(cmd.ErrOrStderr())

			var err error

			opts.filter, err = filter(opts.lang, opts.file, opts.meta)

			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			opts.log.Debug().Int("parsed", opts.cache.Len()).Int("hits", opts.cache.Hits()).Msg("directive cache")
		},

		SilenceErrors:     true,
		SilenceUsage:      true,
		DisableAutoGenTag: true,
	}

	flags := root.PersistentFlags()
	flags.StringSliceVarP(&opts.lang, "lang", "l", opts.lang, "language glob patterns of selected blocks")
	flags.StringVarP(&opts.file, "file", "f", "", "glob pattern matched against block titles")
	flags.StringToStringVarP(&opts.meta, "meta", "m", nil, "info string metadata filters (key=glob)")
	flags.BoolVarP(&opts.quiet, "quiet", "q", opts.quiet, "suppress status messages")
	flags.BoolVarP(&opts.verbose, "verbose", "v", opts.verbose, "log parser diagnostics to stderr")

	root.AddCommand(
		listCmd(opts),
		copyCmd(opts),
		stripCmd(opts),
		dumpCmd(opts),
		execCmd(opts),
	)

	return root
}

func newOptions(cfg config, stdin io.Reader) *options {
	return &options{
		lang:    cfg.Lang,
		quiet:   cfg.Quiet,
		verbose: cfg.Verbose,
		dir:     cfg.Dir,
		cache:   directive.NewCache(),
		stdin:   stdin,
		log:     zerolog.Nop(),
	}
}

// Run executes the command line args, writing command output to stdout and
// diagnostics to stderr.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(configPaths()...)
	if err != nil {
		return err
	}

	root := rootCmd(newOptions(cfg, stdin))
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	return root.Execute()
}

// Execute runs the command line and exits with status 1 on failure.
func Execute(args []string, stdout, stderr io.Writer) {
	if err := Run(args, os.Stdin, stdout, stderr); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		os.Exit(1)
	}
}
