package model

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/simtrans/simtrans/pkg/mesh"
)

// ShapeKind tags the active primitive of a Shape.
type ShapeKind int

const (
	KindMesh ShapeKind = iota
	KindBox
	KindCylinder
	KindSphere
)

func (k ShapeKind) String() string {
	switch k {
	case KindMesh:
		return "mesh"
	case KindBox:
		return "box"
	case KindCylinder:
		return "cylinder"
	case KindSphere:
		return "sphere"
	}
	return "unknown"
}

// Shape is a named visual element of a link.
type Shape struct {
	Name      string
	Pose      Pose
	Primitive Primitive
}

// Kind returns the tag of the shape's primitive.
func (s *Shape) Kind() ShapeKind { return s.Primitive.Kind() }

// Primitive is the closed set of shape geometries: *Mesh, *Box, *Cylinder
// and *Sphere.
type Primitive interface {
	Kind() ShapeKind
	primitive()
}

// Mesh is geometry loaded from an external mesh file.
type Mesh struct {
	Data *mesh.Data
	Path string // resolved source file
}

// Box is an axis-aligned box centered on the shape origin.
type Box struct {
	X, Y, Z float64
}

// Cylinder is aligned with the shape's Z axis and centered on its origin.
type Cylinder struct {
	Radius float64
	Height float64
}

// Sphere is centered on the shape origin.
type Sphere struct {
	Radius float64
}

func (*Mesh) Kind() ShapeKind     { return KindMesh }
func (*Box) Kind() ShapeKind      { return KindBox }
func (*Cylinder) Kind() ShapeKind { return KindCylinder }
func (*Sphere) Kind() ShapeKind   { return KindSphere }

func (*Mesh) primitive()     {}
func (*Box) primitive()      {}
func (*Cylinder) primitive() {}
func (*Sphere) primitive()   {}

// Size returns the box extents as a vector.
func (b *Box) Size() mgl64.Vec3 { return mgl64.Vec3{b.X, b.Y, b.Z} }
