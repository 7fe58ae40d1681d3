// Package vrml writes robot models as VRML97 scenes in the OpenHRP
// Joint/Segment convention.
//
// VRML nests every link inside the joint that moves it, so the writer first
// converts the body into a tree with the kinematics package. The root link
// hangs off a fixed joint named after it. Mesh geometry is emitted inline as
// IndexedFaceSet nodes and also exported as side files, one per registered
// codec, named <shape><ext> in the output directory.
package vrml

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"

	"github.com/simtrans/simtrans/pkg/kinematics"
	"github.com/simtrans/simtrans/pkg/mesh"
	"github.com/simtrans/simtrans/pkg/model"
	"github.com/simtrans/simtrans/pkg/tmpl"
)

// TemplateName is the template rendered by Writer.
const TemplateName = "vrml.wrl"

// Writer renders bodies as VRML.
type Writer struct {
	renderer    tmpl.Renderer
	codecs      []mesh.Codec
	logger      *log.Logger
	parallelism int
}

// Option configures a Writer.
type Option func(*Writer)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(w *Writer) { w.logger = l }
}

// WithParallelism bounds the number of concurrent mesh file writes.
func WithParallelism(n int) Option {
	return func(w *Writer) { w.parallelism = n }
}

// NewWriter returns a writer that renders through r and exports meshes with
// codecs.
func NewWriter(r tmpl.Renderer, codecs []mesh.Codec, opts ...Option) *Writer {
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

// Write exports the mesh side files, converts body to a tree and renders it
// to outputPath. Side files written before a failure are left in place.
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

	root, err := kinematics.Convert(body)
	if err != nil {
		return err
	}
	doc := newDocument(body.Name, root)

	if err := tmpl.RenderFile(w.renderer, outputPath, TemplateName, doc); err != nil {
		return err
	}
	w.logger.Debug("wrote vrml", "path", outputPath, "joints", len(doc.Joints))
	return nil
}

// document is the data handed to the template.
type document struct {
	Name   string
	Def    string
	Root   *segment
	Joints []*segment // depth-first, root first
}

// segment is a tree node with the identifiers the template needs.
type segment struct {
	Def       string // joint DEF name
	LinkDef   string // segment DEF name
	JointType string
	JointID   int // -1 for fixed joints
	Joint     *model.Joint
	Link      *model.Link
	Children  []*segment
}

func newDocument(name string, root *kinematics.Node) *document {
	defs := make(defNames)
	doc := &document{Name: name, Def: defs.take(name)}
	nextID := 0
	var build func(n *kinematics.Node) *segment
	build = func(n *kinematics.Node) *segment {
		s := &segment{
			Def:       defs.take(n.Joint.Name),
			LinkDef:   defs.take(n.Link.Name + "_link"),
			JointType: jointType(n.Joint.Type),
			JointID:   -1,
			Joint:     n.Joint,
			Link:      n.Link,
		}
		if n.Joint.Type != model.Fixed {
			s.JointID = nextID
			nextID++
		}
		doc.Joints = append(doc.Joints, s)
		for _, c := range n.Children {
			s.Children = append(s.Children, build(c))
		}
		return s
	}
	doc.Root = build(root)
	return doc
}

// jointType maps a joint type to its OpenHRP jointType token.
func jointType(t model.JointType) string {
	switch t {
	case model.Revolute, model.Screw:
		return "rotate"
	case model.Prismatic:
		return "slide"
	}
	return "fixed"
}

// defNames hands out DEF names unique within one file. A name whose
// identifier is taken gets the first free numeric suffix.
type defNames map[string]bool

func (d defNames) take(name string) string {
	base := ident(name)
	def := base
	for i := 2; d[def]; i++ {
		def = base + "_" + strconv.Itoa(i)
	}
	d[def] = true
	return def
}

// ident turns name into a valid VRML node name.
func ident(name string) string {
	if name == "" {
		return "_"
	}
	var b strings.Builder
	for i, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || r == '_'):
			b.WriteRune(r)
		case r < unicode.MaxASCII && unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
