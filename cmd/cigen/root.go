package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/goliatone/go-cigen/internal/config"
	"github.com/goliatone/go-cigen/internal/logging"
	"github.com/goliatone/go-cigen/internal/prompt"
	"github.com/goliatone/go-cigen/pkg/travis"
)

const (
	cmdName = "cigen"
	cmdDesc = "Render .travis.yml from the embedded matrix template."
	cmdLong = cmdDesc + `

Without flags the builders 1 through 24 are expanded and the result is written
to ./.travis.yml, replacing any existing file.

Examples:
	# regenerate the CI descriptor in the current directory
	cigen

	# fail with a diff when the committed descriptor is out of date
	cigen --check

	# preview a smaller matrix
	cigen --first 1 --last 4 --stdout
`
)

type deps struct {
	Prompt prompt.PromptDriver
}

type options struct {
	configPath  string
	dir         string
	filename    string
	template    string
	first       int
	last        int
	stdout      bool
	check       bool
	noValidate  bool
	interactive bool
	logLevel    string
	logFormat   string
}

func newRootCmd(d deps) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          cmdName,
		Short:        cmdDesc,
		Long:         cmdLong,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, d, opts)
		},
	}

	bindFlags(cmd.Flags(), opts)
	return cmd
}

func bindFlags(flags *pflag.FlagSet, opts *options) {
	def := config.Default()

	flags.StringVar(&opts.configPath, "config", "", "YAML config file")
	flags.StringVar(&opts.dir, "dir", def.Dir, "output directory")
	flags.StringVar(&opts.filename, "filename", def.Filename, "output file name")
	flags.StringVar(&opts.template, "template", "", "custom template file (default embedded)")
	flags.IntVar(&opts.first, "first", def.First, "first builder number")
	flags.IntVar(&opts.last, "last", def.Last, "last builder number, inclusive")
	flags.BoolVar(&opts.stdout, "stdout", false, "print the rendered output instead of writing it")
	flags.BoolVar(&opts.check, "check", false, "exit non-zero with a diff when the output is stale")
	flags.BoolVar(&opts.noValidate, "no-validate", false, "skip parsing the output as YAML")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "confirm before overwriting a changed file")
	flags.StringVar(&opts.logLevel, "log-level", string(logging.LevelInfo),
		"log level, one of: ["+strings.Join(logging.AllLevels, ", ")+"]")
	flags.StringVar(&opts.logFormat, "log-format", string(logging.FormatText),
		"log format, one of: ["+strings.Join(logging.AllFormats, ", ")+"]")
}

// loggedError marks an error already reported through the command logger.
type loggedError struct {
	err error
}

func (e loggedError) Error() string { return e.err.Error() }

func (e loggedError) Unwrap() error { return e.err }

func run(cmd *cobra.Command, d deps, opts *options) error {
	handler, err := logging.CreateHandlerWithStrings(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
	if err != nil {
		return fmt.Errorf("create log handler: %w", err)
	}
	logger := slog.New(handler)

	if err := generate(cmd, d, opts, logger); err != nil {
		msg := "generation failed"
		if errors.Is(err, travis.ErrStale) {
			msg = "output is stale"
		}
		logger.Error(msg, slog.Any("err", err))
		return loggedError{err: err}
	}
	return nil
}

func generate(cmd *cobra.Command, d deps, opts *options, logger *slog.Logger) error {
	cfg, err := resolveConfig(cmd.Flags(), opts)
	if err != nil {
		return err
	}
	logger.Debug("resolved config",
		slog.String("dir", cfg.Dir),
		slog.String("filename", cfg.Filename),
		slog.Int("first", cfg.First),
		slog.Int("last", cfg.Last),
		slog.String("template", cfg.Template),
	)

	genOpts := []travis.Option{
		travis.WithLogger(logger),
		travis.WithGlobals(cfg.Vars),
	}
	if cfg.Template != "" {
		genOpts = append(genOpts, travis.WithTemplateFile(cfg.Template))
	}
	gen, err := travis.New(genOpts...)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	req := travis.Request{
		Dir:            cfg.Dir,
		Filename:       cfg.Filename,
		Params:         cfg.Params(),
		Check:          opts.check,
		DryRun:         opts.stdout || opts.interactive,
		SkipValidation: opts.noValidate,
	}

	res, err := gen.Generate(ctx, req)
	switch {
	case errors.Is(err, travis.ErrStale):
		fmt.Fprint(cmd.OutOrStdout(), res.Diff)
		return err
	case err != nil:
		return err
	case opts.check:
		logger.Info("up to date", slog.String("path", res.Path))
		return nil
	case opts.stdout:
		_, err := cmd.OutOrStdout().Write(res.Data)
		return err
	}

	if opts.interactive {
		return confirmAndWrite(cmd, d, gen, res, logger)
	}
	return nil
}

func confirmAndWrite(cmd *cobra.Command, d deps, gen *travis.Generator, res travis.Result, logger *slog.Logger) error {
	if _, err := os.Stat(res.Path); err == nil && res.Changed {
		ok, err := prompt.ConfirmOverwrite(cmd.Context(), d.Prompt, res.Path, res.Diff)
		if err != nil {
			return err
		}
		if !ok {
			logger.Info("kept existing file", slog.String("path", res.Path))
			return nil
		}
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", res.Path, err)
	}

	if err := gen.Write(res.Path, res.Data); err != nil {
		return err
	}
	logger.Info("generated", slog.String("path", res.Path), slog.Int("entries", res.Entries))
	return nil
}

// resolveConfig layers explicitly set flags over the config file, which in
// turn sits over the defaults.
func resolveConfig(flags *pflag.FlagSet, opts *options) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if flags.Changed("dir") {
		cfg.Dir = opts.dir
	}
	if flags.Changed("filename") {
		cfg.Filename = opts.filename
	}
	if flags.Changed("template") {
		cfg.Template = opts.template
	}
	if flags.Changed("first") {
		cfg.First = opts.first
	}
	if flags.Changed("last") {
		cfg.Last = opts.last
	}
	return cfg, cfg.Validate()
}
