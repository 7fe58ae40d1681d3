package sdf

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/simtrans/simtrans/pkg/errors"
	"github.com/simtrans/simtrans/pkg/model"
)

// readShape builds a visual shape. The geometry element must hold one of
// mesh, box, cylinder or sphere; with several, the last one wins.
func (r *Reader) readShape(ctx context.Context, xv xmlVisual, baseDir string) (*model.Shape, error) {
	if xv.Name == "" {
		return nil, errors.WithToken(errors.ErrCodeParse, "name", "visual has no name")
	}
	s := &model.Shape{Name: xv.Name}
	var err error
	if s.Pose, err = readPose(xv.Pose); err != nil {
		return nil, err
	}
	if xv.Geometry == nil || len(xv.Geometry.Shapes) == 0 {
		return nil, errors.WithToken(errors.ErrCodeParse, "geometry", "visual has no geometry")
	}
	if n := len(xv.Geometry.Shapes); n > 1 {
		r.logger.Warn("geometry has several shapes, using the last", "visual", xv.Name, "count", n)
	}
	for _, g := range xv.Geometry.Shapes {
		if s.Primitive, err = r.readPrimitive(ctx, g, baseDir); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (r *Reader) readPrimitive(ctx context.Context, g xmlShape, baseDir string) (model.Primitive, error) {
	switch g.XMLName.Local {
	case "mesh":
		uri, err := requiredText("uri", g.URI)
		if err != nil {
			return nil, err
		}
		// Reject unknown formats before touching the filesystem.
		if _, err := r.meshes.Lookup(filepath.Ext(uri)); err != nil {
			return nil, err
		}
		path, err := r.resolver.Resolve(uri, baseDir)
		if err != nil {
			return nil, err
		}
		data, err := r.meshes.Read(ctx, path)
		if err != nil {
			return nil, err
		}
		r.logger.Debug("read mesh", "uri", uri, "path", path,
			"vertices", len(data.Vertices), "triangles", len(data.Triangles))
		return &model.Mesh{Data: data, Path: path}, nil

	case "box":
		if g.Size == nil {
			return nil, errors.WithToken(errors.ErrCodeParse, "size", "missing <size>")
		}
		v, err := parseFloats("size", *g.Size, 3)
		if err != nil {
			return nil, err
		}
		return &model.Box{X: v[0], Y: v[1], Z: v[2]}, nil

	case "cylinder":
		radius, err := required("radius", g.Radius)
		if err != nil {
			return nil, err
		}
		length, err := required("length", g.Length)
		if err != nil {
			return nil, err
		}
		return &model.Cylinder{Radius: radius, Height: length}, nil

	case "sphere":
		radius, err := required("radius", g.Radius)
		if err != nil {
			return nil, err
		}
		return &model.Sphere{Radius: radius}, nil
	}
	return nil, errors.Unsupported(errors.ErrCodeUnsupportedShapeType, strings.TrimSpace(g.XMLName.Local))
}
