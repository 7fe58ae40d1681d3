// Package mesh holds triangle mesh data and the codecs that move it in and
// out of external mesh files.
//
// A [Codec] handles one file extension. The [Registry] dispatches by the
// lower-cased extension of a path, so a robot description referencing
// "meshes/arm.DAE" is read by the COLLADA codec and one referencing
// "meshes/arm.obj" fails with UNSUPPORTED_MESH_FORMAT.
//
// Codec implementations live in subpackages:
//   - [github.com/simtrans/simtrans/pkg/mesh/collada]: .dae
//   - [github.com/simtrans/simtrans/pkg/mesh/stl]: .stl
package mesh

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Data is an indexed triangle mesh. Triangles index into Vertices with
// counter-clockwise winding for outward faces.
type Data struct {
	Name      string       `json:"name,omitempty"`
	Vertices  []mgl64.Vec3 `json:"vertices"`
	Triangles [][3]int     `json:"triangles"`
}

// Codec reads and writes one mesh file format.
type Codec interface {
	// Ext returns the lower-case file extension including the dot, e.g. ".stl".
	Ext() string
	// Read decodes the mesh stored at path.
	Read(path string) (*Data, error)
	// Write encodes d to path, replacing any existing file.
	Write(d *Data, path string) error
}

// Normal returns the unit face normal of triangle i, or the zero vector for
// a degenerate triangle.
func (d *Data) Normal(i int) mgl64.Vec3 {
	t := d.Triangles[i]
	a, b, c := d.Vertices[t[0]], d.Vertices[t[1]], d.Vertices[t[2]]
	n := b.Sub(a).Cross(c.Sub(a))
	if l := n.Len(); l > 0 {
		return n.Mul(1 / l)
	}
	return mgl64.Vec3{}
}

// Bounds returns the axis-aligned bounding box of the vertices. Both
// corners are zero for an empty mesh.
func (d *Data) Bounds() (lo, hi mgl64.Vec3) {
	if len(d.Vertices) == 0 {
		return lo, hi
	}
	lo, hi = d.Vertices[0], d.Vertices[0]
	for _, v := range d.Vertices[1:] {
		for i := range 3 {
			lo[i] = min(lo[i], v[i])
			hi[i] = max(hi[i], v[i])
		}
	}
	return lo, hi
}

// Builder accumulates triangles while merging identical vertex positions.
type Builder struct {
	data  Data
	index map[mgl64.Vec3]int
}

// NewBuilder returns an empty builder for a mesh named name.
func NewBuilder(name string) *Builder {
	return &Builder{data: Data{Name: name}, index: make(map[mgl64.Vec3]int)}
}

// Vertex returns the index of v, adding it if it was not seen before.
func (b *Builder) Vertex(v mgl64.Vec3) int {
	if i, ok := b.index[v]; ok {
		return i
	}
	i := len(b.data.Vertices)
	b.data.Vertices = append(b.data.Vertices, v)
	b.index[v] = i
	return i
}

// Triangle adds the triangle with corners a, b and c.
func (b *Builder) Triangle(a, c1, c2 mgl64.Vec3) {
	b.data.Triangles = append(b.data.Triangles, [3]int{b.Vertex(a), b.Vertex(c1), b.Vertex(c2)})
}

// Data returns the accumulated mesh.
func (b *Builder) Data() *Data {
	d := b.data
	return &d
}
