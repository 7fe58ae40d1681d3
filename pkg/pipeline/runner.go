package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/simtrans/simtrans/pkg/cache"
	"github.com/simtrans/simtrans/pkg/errors"
	"github.com/simtrans/simtrans/pkg/mesh"
	"github.com/simtrans/simtrans/pkg/model"
	"github.com/simtrans/simtrans/pkg/observability"
	"github.com/simtrans/simtrans/pkg/render/nodelink"
	"github.com/simtrans/simtrans/pkg/resolve"
	"github.com/simtrans/simtrans/pkg/sdf"
	"github.com/simtrans/simtrans/pkg/tmpl"
	"github.com/simtrans/simtrans/pkg/vrml"
)

// Config holds the settings a Runner is built from.
type Config struct {
	Cache       cache.Cache // mesh decode cache; nil disables caching
	SearchPaths []string    // roots for model:// and package:// URIs
	TemplateDir string      // overrides for the embedded templates
	Parallelism int         // concurrent mesh writes; defaults to DefaultParallelism
	Strict      bool        // fail on dangling references when reading
}

// Runner reads models and writes them in other formats.
//
// The Runner holds no per-conversion state, so one Runner can serve
// several conversions, including concurrent ones.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
	Config Config

	resolver  *resolve.Resolver
	meshes    *mesh.Registry
	templates *tmpl.Set
}

// NewRunner builds a runner from cfg. A nil cache becomes a NullCache and a
// nil logger discards output.
func NewRunner(cfg Config, logger *log.Logger) (*Runner, error) {
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNullCache()
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = DefaultParallelism
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	templates, err := tmpl.New(cfg.TemplateDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load templates from %s", cfg.TemplateDir)
	}
	return &Runner{
		Cache:     cfg.Cache,
		Logger:    logger,
		Config:    cfg,
		resolver:  &resolve.Resolver{SearchPaths: cfg.SearchPaths},
		meshes:    mesh.NewRegistry(sdf.DefaultCodecs(), mesh.WithCache(cfg.Cache), mesh.WithLogger(logger)),
		templates: templates,
	}, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// Read parses the model at path.
func (r *Runner) Read(ctx context.Context, path string) (*model.Body, error) {
	return r.read(ctx, path, r.Config.Strict)
}

func (r *Runner) read(ctx context.Context, path string, strict bool) (*model.Body, error) {
	if _, err := InputFormat(path); err != nil {
		return nil, err
	}
	reader := sdf.NewReader(
		sdf.WithResolver(r.resolver),
		sdf.WithRegistry(r.meshes),
		sdf.WithLogger(r.Logger),
		sdf.WithStrict(strict),
	)
	return reader.Read(ctx, path)
}

// Writer writes a body to a file.
type Writer interface {
	Write(ctx context.Context, body *model.Body, outputPath string) error
}

// Writer returns the writer for a model format.
func (r *Runner) Writer(format string) (Writer, error) {
	switch format {
	case FormatVRML:
		return vrml.NewWriter(r.templates, r.meshes.Codecs(),
			vrml.WithLogger(r.Logger), vrml.WithParallelism(r.Config.Parallelism)), nil
	case FormatSDF:
		return sdf.NewWriter(r.templates, r.meshes.Codecs(),
			sdf.WithWriterLogger(r.Logger), sdf.WithParallelism(r.Config.Parallelism)), nil
	}
	return nil, errors.WithToken(errors.ErrCodeInvalidFormat, format, "no writer for format %q", format)
}

// Convert reads opts.Input and writes it to opts.Output in the format the
// output extension names.
//
// When the model was read but writing failed, Convert returns the partial
// Result along with the error. Its Files lists every path the write may have
// touched, since mesh side files are exported before the tree is built.
func (r *Runner) Convert(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	format, _ := OutputFormat(opts.Output)
	w, err := r.Writer(format)
	if err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()

	hooks.OnReadStart(ctx, opts.Input)
	readStart := time.Now()
	body, err := r.read(ctx, opts.Input, opts.Strict || r.Config.Strict)
	if err != nil {
		hooks.OnReadComplete(ctx, opts.Input, 0, 0, time.Since(readStart), err)
		return nil, fmt.Errorf("read %s: %w", opts.Input, err)
	}
	result := &Result{Body: body, Format: format, Output: opts.Output, Stats: newStats(body)}
	result.Stats.ReadTime = time.Since(readStart)
	hooks.OnReadComplete(ctx, opts.Input, result.Stats.Links, result.Stats.Joints, result.Stats.ReadTime, nil)

	r.Logger.Info("read model",
		"name", body.Name,
		"links", result.Stats.Links,
		"joints", result.Stats.Joints,
		"meshes", result.Stats.Meshes,
		"duration", result.Stats.ReadTime)

	if err := os.MkdirAll(filepath.Dir(opts.Output), 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create output directory")
	}

	result.Files = append([]string{opts.Output}, r.sideFiles(body, filepath.Dir(opts.Output))...)

	hooks.OnWriteStart(ctx, opts.Output, format)
	writeStart := time.Now()
	if err := w.Write(ctx, body, opts.Output); err != nil {
		hooks.OnWriteComplete(ctx, opts.Output, format, 0, time.Since(writeStart), err)
		return result, fmt.Errorf("write %s: %w", opts.Output, err)
	}
	result.Stats.WriteTime = time.Since(writeStart)
	hooks.OnWriteComplete(ctx, opts.Output, format, len(result.Files), result.Stats.WriteTime, nil)

	r.Logger.Info("wrote model",
		"output", opts.Output,
		"format", format,
		"files", len(result.Files),
		"duration", result.Stats.WriteTime)

	return result, nil
}

// sideFiles lists the mesh files a writer produces for body in dir.
func (r *Runner) sideFiles(body *model.Body, dir string) []string {
	seen := make(map[string]bool)
	var files []string
	for _, s := range body.Meshes() {
		if seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		for _, c := range r.meshes.Codecs() {
			files = append(files, filepath.Join(dir, s.Name+c.Ext()))
		}
	}
	slices.Sort(files)
	return files
}

// Graph reads opts.Input and renders its kinematic diagram.
func (r *Runner) Graph(ctx context.Context, opts GraphOptions) ([]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	body, err := r.read(ctx, opts.Input, opts.Strict || r.Config.Strict)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", opts.Input, err)
	}

	start := time.Now()
	dot := nodelink.ToDOT(body, nodelink.Options{Detailed: opts.Detailed})

	var data []byte
	switch opts.Format {
	case FormatDOT:
		data = []byte(dot)
	case FormatSVG:
		data, err = nodelink.RenderSVG(ctx, dot)
	case FormatPDF:
		data, err = nodelink.RenderPDF(ctx, dot)
	case FormatPNG:
		data, err = nodelink.RenderPNG(ctx, dot, opts.Scale)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", opts.Format, err)
	}

	r.Logger.Info("rendered graph",
		"format", opts.Format,
		"links", len(body.Links),
		"joints", len(body.Joints),
		"duration", time.Since(start))
	return data, nil
}
