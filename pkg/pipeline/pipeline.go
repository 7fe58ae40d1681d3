// Package pipeline provides the read → convert → write pipeline for simtrans.
//
// The CLI drives every command through a [Runner], which owns the mesh
// registry, the URI resolver, the template set and the cache. Keeping this
// in one place means convert, graph, inspect and watch mode all read models
// the same way.
//
// # Usage
//
//	runner, err := pipeline.NewRunner(pipeline.Config{Parallelism: 4}, logger)
//	if err != nil {
//	    return err
//	}
//	defer runner.Close()
//
//	result, err := runner.Convert(ctx, pipeline.Options{
//	    Input:  "arm/model.sdf",
//	    Output: "out/arm.wrl",
//	})
//
// The output format is chosen by the output file's extension: .wrl and
// .vrml write VRML, .sdf writes SDF. Anything else fails with
// INVALID_FORMAT before the input is read.
package pipeline

import (
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/simtrans/simtrans/pkg/errors"
	"github.com/simtrans/simtrans/pkg/model"
)

const (
	// DefaultParallelism bounds concurrent mesh side-file writes.
	DefaultParallelism = 4

	// DefaultScale is the PNG rasterization scale for graph output.
	DefaultScale = 2.0
)

// Model formats.
const (
	FormatSDF  = "sdf"
	FormatVRML = "vrml"
)

// Graph formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPDF = "pdf"
	FormatPNG = "png"
)

var (
	inputExts = map[string]string{
		".sdf": FormatSDF,
	}
	outputExts = map[string]string{
		".wrl":  FormatVRML,
		".vrml": FormatVRML,
		".sdf":  FormatSDF,
	}
	graphExts = map[string]string{
		".dot": FormatDOT,
		".gv":  FormatDOT,
		".svg": FormatSVG,
		".pdf": FormatPDF,
		".png": FormatPNG,
	}
)

// InputFormat returns the model format read from path.
func InputFormat(path string) (string, error) {
	return formatOf(path, inputExts, "input")
}

// OutputFormat returns the model format written to path.
func OutputFormat(path string) (string, error) {
	return formatOf(path, outputExts, "output")
}

// GraphFormat returns the diagram format written to path.
func GraphFormat(path string) (string, error) {
	return formatOf(path, graphExts, "graph")
}

func formatOf(path string, exts map[string]string, kind string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := exts[ext]; ok {
		return f, nil
	}
	known := make([]string, 0, len(exts))
	for e := range exts {
		known = append(known, e)
	}
	slices.Sort(known)
	token := ext
	if token == "" {
		token = filepath.Base(path)
	}
	return "", errors.WithToken(errors.ErrCodeInvalidFormat, token,
		"invalid %s format: %q (must be one of: %s)", kind, token, strings.Join(known, ", "))
}

// Options configures a single conversion.
type Options struct {
	Input  string // SDF file
	Output string // destination; extension picks the writer
	Strict bool   // fail on dangling parent/child references
}

// Validate checks the paths and their extensions.
func (o *Options) Validate() error {
	if o.Input == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "input path is required")
	}
	if o.Output == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "output path is required")
	}
	if _, err := InputFormat(o.Input); err != nil {
		return err
	}
	if _, err := OutputFormat(o.Output); err != nil {
		return err
	}
	if samePath(o.Input, o.Output) {
		return errors.WithToken(errors.ErrCodeInvalidConfig, o.Output, "output would overwrite input: %s", o.Output)
	}
	return nil
}

// GraphOptions configures a kinematic diagram render.
type GraphOptions struct {
	Input    string
	Format   string  // one of the Format* graph constants
	Detailed bool    // add mass, visuals, axis and limits to labels
	Scale    float64 // PNG scale; defaults to DefaultScale
	Strict   bool
}

// ValidateAndSetDefaults checks the options and fills in zero values.
func (o *GraphOptions) ValidateAndSetDefaults() error {
	if o.Input == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "input path is required")
	}
	if _, err := InputFormat(o.Input); err != nil {
		return err
	}
	if o.Format == "" {
		o.Format = FormatSVG
	}
	switch o.Format {
	case FormatDOT, FormatSVG, FormatPDF, FormatPNG:
	default:
		return errors.WithToken(errors.ErrCodeInvalidFormat, o.Format,
			"invalid graph format: %q (must be one of: dot, svg, pdf, png)", o.Format)
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	return nil
}

// Result is the outcome of a conversion.
type Result struct {
	Body   *model.Body
	Format string
	Output string
	Files  []string // output file followed by mesh side files
	Stats  Stats
}

// Stats summarizes a conversion.
type Stats struct {
	Links     int
	Joints    int
	Meshes    int
	ReadTime  time.Duration
	WriteTime time.Duration
}

func newStats(b *model.Body) Stats {
	s := Stats{Links: len(b.Links), Joints: len(b.Joints)}
	for range b.Meshes() {
		s.Meshes++
	}
	return s
}

func samePath(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return aa == bb
}
