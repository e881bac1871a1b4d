package travis

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-cigen/pkg/render/template"
	"github.com/goliatone/go-cigen/pkg/render/template/gotemplate"
)

// Option configures a Generator.
type Option func(*Generator) error

// WithTemplate replaces the embedded template with inline source.
func WithTemplate(source string) Option {
	return func(g *Generator) error {
		g.source = source
		g.name = ""
		g.sourceName = "inline"
		return nil
	}
}

// WithTemplateFile renders the template at path. Its directory becomes the
// engine base dir so includes resolve next to it.
func WithTemplateFile(path string) Option {
	return func(g *Generator) error {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("travis: read template %s: %w", path, err)
		}
		if info.IsDir() {
			return fmt.Errorf("travis: read template %s: is a directory", path)
		}
		g.baseDir = filepath.Dir(path)
		g.sourceName = path
		if filepath.Ext(path) != "" {
			g.source = ""
			g.name = filepath.Base(path)
			return nil
		}
		// The engine appends its extension to names without one, so these
		// are rendered inline.
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("travis: read template %s: %w", path, err)
		}
		g.source = string(data)
		g.name = ""
		return nil
	}
}

// WithGlobals seeds values every render sees, below Params.
func WithGlobals(vars map[string]any) Option {
	return func(g *Generator) error {
		if len(vars) == 0 {
			return nil
		}
		if g.globals == nil {
			g.globals = make(map[string]any, len(vars))
		}
		for key, value := range vars {
			g.globals[key] = value
		}
		return nil
	}
}

// WithKeepTrailingNewline keeps the final newline of the rendered template.
// By default one trailing newline is dropped, as Jinja does.
func WithKeepTrailingNewline(keep bool) Option {
	return func(g *Generator) error {
		g.keepTrailingNewline = keep
		return nil
	}
}

// WithRenderer swaps the template engine.
func WithRenderer(renderer template.TemplateRenderer) Option {
	return func(g *Generator) error {
		if renderer == nil {
			return errors.New("travis: renderer is nil")
		}
		g.renderer = renderer
		return nil
	}
}

// WithLogger sets the logger used for progress messages.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) error {
		if logger != nil {
			g.logger = logger
		}
		return nil
	}
}

// WithRequired overrides the bindings that must be present before
// rendering. The default is the builders sequence.
func WithRequired(names ...string) Option {
	return func(g *Generator) error {
		g.required = g.required[:0]
		for _, name := range names {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				g.required = append(g.required, trimmed)
			}
		}
		return nil
	}
}

// Generator renders a template against Params and persists the result.
type Generator struct {
	renderer template.TemplateRenderer
	// name selects a template from the engine loaders; source is rendered
	// inline when name is empty.
	name       string
	source     string
	sourceName string
	baseDir    string
	globals    map[string]any
	required   []string
	logger     *slog.Logger

	keepTrailingNewline bool
}

// Request describes one generation run.
type Request struct {
	// Dir is the output directory, "." when empty.
	Dir string
	// Filename defaults to DefaultFilename.
	Filename string
	Params   Params
	// Check compares against the file on disk and returns ErrStale instead
	// of writing when they differ.
	Check bool
	// DryRun renders and validates without writing.
	DryRun bool
	// SkipValidation disables the YAML parse of the rendered output.
	SkipValidation bool
}

// Result reports what a run produced.
type Result struct {
	Path string
	Data []byte
	// Entries is the number of matrix.include entries, zero when validation
	// was skipped.
	Entries int
	// Changed is true when Data differs from the file previously on disk.
	Changed bool
	Diff    string
	Written bool
}

// New builds a Generator around the embedded template and a pongo2 engine.
func New(options ...Option) (*Generator, error) {
	g := &Generator{
		name:       DefaultTemplateName,
		sourceName: DefaultTemplateName,
		required:   []string{BuildersParam},
		logger:     slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		if err := opt(g); err != nil {
			return nil, err
		}
	}

	if g.renderer == nil {
		engine, err := gotemplate.New(g.engineOptions()...)
		if err != nil {
			return nil, fmt.Errorf("travis: template engine: %w", err)
		}
		g.renderer = engine
	} else if len(g.globals) > 0 {
		if err := g.renderer.GlobalContext(g.globals); err != nil {
			return nil, fmt.Errorf("travis: apply globals: %w", err)
		}
	}
	return g, nil
}

func (g *Generator) engineOptions() []gotemplate.Option {
	opts := []gotemplate.Option{
		gotemplate.WithAutoescape(false),
		gotemplate.WithGlobalData(g.globals),
	}
	if g.baseDir != "" {
		opts = append(opts,
			gotemplate.WithBaseDir(g.baseDir),
			gotemplate.WithExtension(filepath.Ext(g.name)),
		)
	} else {
		opts = append(opts, gotemplate.WithFS(TemplatesFS()))
	}
	return opts
}

// Render resolves every directive in the template against params.
func (g *Generator) Render(ctx context.Context, params Params) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := params.context()
	for _, name := range g.required {
		_, bound := data[name]
		_, global := g.globals[name]
		if !bound && !global {
			return nil, fmt.Errorf("%w: %q", ErrMissingParameter, name)
		}
	}

	var (
		out string
		err error
	)
	if g.name != "" {
		out, err = g.renderer.RenderTemplate(g.name, data)
	} else {
		out, err = g.renderer.RenderString(g.source, data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTemplate, g.sourceName, err)
	}
	if !g.keepTrailingNewline {
		out = trimTrailingNewline(out)
	}

	g.logger.Debug("rendered template",
		slog.String("template", g.sourceName),
		slog.Int("builders", len(params.Builders)),
		slog.Int("bytes", len(out)),
	)
	return []byte(out), nil
}

// Write stores data at path, truncating any existing file. The file is
// closed on every path and a failed close is reported.
func (g *Generator) Write(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrWrite, cerr)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	g.logger.Debug("wrote output", slog.String("path", path), slog.Int("bytes", len(data)))
	return nil
}

// Generate renders req.Params, validates the output, compares it with the
// file on disk and writes it unless the request is a check or a dry run.
func (g *Generator) Generate(ctx context.Context, req Request) (Result, error) {
	res := Result{Path: OutputPath(req.Dir, req.Filename)}

	data, err := g.Render(ctx, req.Params)
	if err != nil {
		return res, err
	}
	res.Data = data

	if !req.SkipValidation {
		desc, err := Validate(data)
		if err != nil {
			return res, err
		}
		res.Entries = desc.Entries()
	}

	res.Diff, err = Diff(res.Path, data)
	switch {
	case err != nil && (req.Check || req.DryRun):
		return res, err
	case err != nil:
		// Unreadable but possibly writable: overwrite like any other file.
		g.logger.Debug("existing output not readable", slog.String("path", res.Path), slog.Any("err", err))
		res.Changed = true
	default:
		_, statErr := os.Stat(res.Path)
		res.Changed = res.Diff != "" || errors.Is(statErr, fs.ErrNotExist)
	}

	if req.Check {
		if res.Changed {
			return res, fmt.Errorf("%w: %s", ErrStale, res.Path)
		}
		return res, nil
	}
	if req.DryRun {
		return res, nil
	}

	if err := g.Write(res.Path, data); err != nil {
		return res, err
	}
	res.Written = true

	g.logger.Info("generated",
		slog.String("path", res.Path),
		slog.Int("entries", res.Entries),
		slog.Bool("changed", res.Changed),
	)
	return res, nil
}

func trimTrailingNewline(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return s[:len(s)-2]
	}
	return strings.TrimSuffix(s, "\n")
}

// OutputPath joins dir and filename, applying the defaults.
func OutputPath(dir, filename string) string {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if strings.TrimSpace(filename) == "" {
		filename = DefaultFilename
	}
	return filepath.Join(dir, filename)
}
