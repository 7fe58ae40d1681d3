// Package sdf reads and writes robot descriptions in the Simulation
// Description Format.
//
// Only the subset needed for kinematic and visual conversion is handled:
// links with pose, inertial and visual geometry, and joints with type,
// pose, axis, dynamics, limit, parent and child. Collision, sensor and
// plugin elements are ignored.
//
// # Reading
//
//	r := sdf.NewReader(sdf.WithLogger(logger), sdf.WithResolver(resolve.FromEnv()))
//	body, err := r.Read(ctx, "model.sdf")
//
// Mesh references are resolved relative to the document directory and read
// through a [mesh.Registry]. By default the registry knows COLLADA and STL.
//
// # Writing
//
// [Writer] exports every mesh visual next to the output file and renders
// the body through the "sdf.xml" template.
package sdf

import (
	"bufio"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/simtrans/simtrans/pkg/errors"
	"github.com/simtrans/simtrans/pkg/mesh"
	"github.com/simtrans/simtrans/pkg/mesh/collada"
	"github.com/simtrans/simtrans/pkg/mesh/stl"
	"github.com/simtrans/simtrans/pkg/model"
	"github.com/simtrans/simtrans/pkg/resolve"
	"github.com/simtrans/simtrans/pkg/spatial"
)

// DefaultCodecs returns the mesh codecs used when no registry is given.
func DefaultCodecs() []mesh.Codec {
	return []mesh.Codec{collada.Codec{}, stl.Codec{}}
}

// Reader builds a model.Body from an SDF document.
type Reader struct {
	resolver *resolve.Resolver
	meshes   *mesh.Registry
	logger   *log.Logger
	strict   bool
}

// Option configures a Reader.
type Option func(*Reader)

// WithResolver sets the resolver for mesh URIs.
func WithResolver(res *resolve.Resolver) Option {
	return func(r *Reader) { r.resolver = res }
}

// WithRegistry sets the registry used to read mesh files.
func WithRegistry(reg *mesh.Registry) Option {
	return func(r *Reader) { r.meshes = reg }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Reader) { r.logger = l }
}

// WithStrict makes the reader validate the assembled body, so dangling
// parent/child references fail at read time instead of at conversion.
func WithStrict(strict bool) Option {
	return func(r *Reader) { r.strict = strict }
}

// NewReader returns a reader with the given options applied.
func NewReader(opts ...Option) *Reader {
	r := &Reader{
		resolver: &resolve.Resolver{},
		meshes:   mesh.NewRegistry(DefaultCodecs()),
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Read parses the SDF document at path.
func (r *Reader) Read(ctx context.Context, path string) (*model.Body, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithToken(errors.ErrCodeFileNotFound, path, "file not found: %s", path)
		}
		return nil, err
	}
	defer f.Close()
	return r.Decode(ctx, bufio.NewReader(f), filepath.Dir(path))
}

// Decode parses an SDF document from rd. Relative mesh references are
// resolved against baseDir.
func (r *Reader) Decode(ctx context.Context, rd io.Reader, baseDir string) (*model.Body, error) {
	m, err := decodeModel(rd)
	if err != nil {
		return nil, err
	}
	if m.Name == "" {
		return nil, errors.New(errors.ErrCodeParse, "model has no name")
	}

	body := &model.Body{Name: m.Name}
	for _, xl := range m.Links {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l, err := r.readLink(ctx, xl, baseDir)
		if err != nil {
			return nil, fmt.Errorf("link %q: %w", xl.Name, err)
		}
		body.Links = append(body.Links, l)
	}
	for _, xj := range m.Joints {
		j, err := readJoint(xj)
		if err != nil {
			return nil, fmt.Errorf("joint %q: %w", xj.Name, err)
		}
		body.Joints = append(body.Joints, j)
	}

	if r.strict {
		if err := body.Validate(); err != nil {
			return nil, err
		}
	}
	r.logger.Debug("read model", "name", body.Name, "links", len(body.Links), "joints", len(body.Joints))
	return body, nil
}

// decodeModel accepts both <sdf><model> and a bare <model> root.
func decodeModel(rd io.Reader) (*xmlModel, error) {
	dec := xml.NewDecoder(rd)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, errors.New(errors.ErrCodeParse, "empty document")
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "malformed XML")
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "sdf":
			var doc xmlDocument
			if err := dec.DecodeElement(&doc, &start); err != nil {
				return nil, errors.Wrap(errors.ErrCodeParse, err, "malformed XML")
			}
			if doc.Model == nil {
				return nil, errors.WithToken(errors.ErrCodeParse, "model", "document has no model element")
			}
			return doc.Model, nil
		case "model":
			var m xmlModel
			if err := dec.DecodeElement(&m, &start); err != nil {
				return nil, errors.Wrap(errors.ErrCodeParse, err, "malformed XML")
			}
			return &m, nil
		default:
			return nil, errors.WithToken(errors.ErrCodeParse, start.Name.Local,
				"unexpected root element <%s>", start.Name.Local)
		}
	}
}

func (r *Reader) readLink(ctx context.Context, xl xmlLink, baseDir string) (*model.Link, error) {
	if xl.Name == "" {
		return nil, errors.WithToken(errors.ErrCodeParse, "name", "link has no name")
	}
	l := &model.Link{Name: xl.Name}
	var err error
	if l.Pose, err = readPose(xl.Pose); err != nil {
		return nil, err
	}
	if xl.Inertial != nil {
		if l.Inertial, err = readInertial(xl.Inertial); err != nil {
			return nil, err
		}
	}
	for _, xv := range xl.Visuals {
		s, err := r.readShape(ctx, xv, baseDir)
		if err != nil {
			return nil, fmt.Errorf("visual %q: %w", xv.Name, err)
		}
		l.Visuals = append(l.Visuals, s)
	}
	return l, nil
}

func readInertial(xi *xmlInertial) (*model.Inertial, error) {
	mass, err := required("mass", xi.Mass)
	if err != nil {
		return nil, err
	}
	in := &model.Inertial{Mass: mass}
	if xi.Pose != nil {
		v, err := parseLeadingFloats("pose", *xi.Pose, 3)
		if err != nil {
			return nil, err
		}
		in.CenterOfMass = mgl64.Vec3{v[0], v[1], v[2]}
	}
	if xi.Inertia == nil {
		return nil, errors.WithToken(errors.ErrCodeParse, "inertia", "inertial has no inertia element")
	}
	t := xi.Inertia
	fields := []struct {
		name string
		text *string
		dst  *float64
	}{
		{"ixx", t.Ixx, &in.Inertia.Ixx},
		{"ixy", t.Ixy, &in.Inertia.Ixy},
		{"ixz", t.Ixz, &in.Inertia.Ixz},
		{"iyy", t.Iyy, &in.Inertia.Iyy},
		{"iyz", t.Iyz, &in.Inertia.Iyz},
		{"izz", t.Izz, &in.Inertia.Izz},
	}
	for _, f := range fields {
		if *f.dst, err = required(f.name, f.text); err != nil {
			return nil, err
		}
	}
	return in, nil
}

func readJoint(xj xmlJoint) (*model.Joint, error) {
	if xj.Name == "" {
		return nil, errors.WithToken(errors.ErrCodeParse, "name", "joint has no name")
	}
	typ, err := model.ParseJointType(xj.Type)
	if err != nil {
		return nil, err
	}
	j := &model.Joint{Name: xj.Name, Type: typ}
	if j.Pose, err = readPose(xj.Pose); err != nil {
		return nil, err
	}

	if a := xj.Axis; a != nil {
		if a.XYZ == nil {
			return nil, errors.WithToken(errors.ErrCodeParse, "xyz", "axis has no xyz element")
		}
		v, err := parseFloats("xyz", *a.XYZ, 3)
		if err != nil {
			return nil, err
		}
		axis := mgl64.Vec3{v[0], v[1], v[2]}
		j.Axis = &axis

		if d := a.Dynamics; d != nil {
			damping, err := required("damping", d.Damping)
			if err != nil {
				return nil, err
			}
			friction, err := required("friction", d.Friction)
			if err != nil {
				return nil, err
			}
			j.Dynamics = &model.Dynamics{Damping: damping, Friction: friction}
		}
		if l := a.Limit; l != nil {
			upper, err := required("upper", l.Upper)
			if err != nil {
				return nil, err
			}
			lower, err := required("lower", l.Lower)
			if err != nil {
				return nil, err
			}
			j.Limit = &model.Limit{Upper: upper, Lower: lower}
		}
	}

	if j.Parent, err = requiredText("parent", xj.Parent); err != nil {
		return nil, err
	}
	if j.Child, err = requiredText("child", xj.Child); err != nil {
		return nil, err
	}
	return j, nil
}

// readPose parses "x y z roll pitch yaw". An absent pose is the identity.
func readPose(text *string) (model.Pose, error) {
	if text == nil {
		return model.IdentityPose(), nil
	}
	v, err := parseFloats("pose", *text, 6)
	if err != nil {
		return model.Pose{}, err
	}
	t, q := spatial.Pose(v)
	return model.Pose{Translation: t, Rotation: q}, nil
}

func required(name string, text *string) (float64, error) {
	if text == nil {
		return 0, errors.WithToken(errors.ErrCodeParse, name, "missing <%s>", name)
	}
	v, err := parseFloats(name, *text, 1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

func requiredText(name string, text *string) (string, error) {
	if text == nil || strings.TrimSpace(*text) == "" {
		return "", errors.WithToken(errors.ErrCodeParse, name, "missing <%s>", name)
	}
	return strings.TrimSpace(*text), nil
}

// parseFloats parses exactly n whitespace-separated numbers.
func parseFloats(name, text string, n int) ([]float64, error) {
	fields := strings.Fields(text)
	if len(fields) != n {
		return nil, errors.WithToken(errors.ErrCodeParse, name,
			"<%s> needs %d value(s), got %d", name, n, len(fields))
	}
	return toFloats(name, fields)
}

// parseLeadingFloats parses a list of at least n numbers and returns the
// first n. The centre of mass is read this way from an inertial pose.
func parseLeadingFloats(name, text string, n int) ([]float64, error) {
	fields := strings.Fields(text)
	if len(fields) < n {
		return nil, errors.WithToken(errors.ErrCodeParse, name,
			"<%s> needs at least %d value(s), got %d", name, n, len(fields))
	}
	v, err := toFloats(name, fields)
	if err != nil {
		return nil, err
	}
	return v[:n], nil
}

func toFloats(name string, fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "<%s> value %q", name, f)
		}
		out[i] = v
	}
	return out, nil
}
