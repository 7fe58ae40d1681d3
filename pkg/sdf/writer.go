package sdf

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/simtrans/simtrans/pkg/mesh"
	"github.com/simtrans/simtrans/pkg/model"
	"github.com/simtrans/simtrans/pkg/tmpl"
)

// TemplateName is the template rendered by Writer.
const TemplateName = "sdf.xml"

// Writer renders bodies as SDF. Mesh visuals are exported next to the
// output file and referenced by the first codec's extension.
type Writer struct {
	renderer    tmpl.Renderer
	codecs      []mesh.Codec
	logger      *log.Logger
	parallelism int
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithWriterLogger sets the writer's logger.
func WithWriterLogger(l *log.Logger) WriterOption {
	return func(w *Writer) { w.logger = l }
}

// WithParallelism bounds the number of concurrent mesh file writes.
func WithParallelism(n int) WriterOption {
	return func(w *Writer) { w.parallelism = n }
}

// NewWriter returns a writer that renders through r and exports meshes with
// codecs.
func NewWriter(r tmpl.Renderer, codecs []mesh.Codec, opts ...WriterOption) *Writer {
	w := &Writer{
		renderer:    r,
		codecs:      codecs,
		logger:      log.NewWithOptions(io.Discard, log.Options{}),
		parallelism: 4,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Write exports the mesh side files and renders body to outputPath.
func (w *Writer) Write(ctx context.Context, body *model.Body, outputPath string) error {
	var targets []mesh.Target
	for _, s := range body.Meshes() {
		targets = append(targets, mesh.Target{Name: s.Name, Data: s.Primitive.(*model.Mesh).Data})
	}
	files, err := mesh.Export(ctx, w.codecs, filepath.Dir(outputPath), targets, w.parallelism)
	if err != nil {
		return fmt.Errorf("export meshes: %w", err)
	}
	for _, f := range files {
		w.logger.Debug("wrote mesh", "path", f)
	}

	ext := ".dae"
	if len(w.codecs) > 0 {
		ext = w.codecs[0].Ext()
	}
	data := map[string]any{"Body": body, "MeshExt": ext}

	if err := tmpl.RenderFile(w.renderer, outputPath, TemplateName, data); err != nil {
		return err
	}
	w.logger.Debug("wrote sdf", "path", outputPath, "links", len(body.Links), "joints", len(body.Joints))
	return nil
}
