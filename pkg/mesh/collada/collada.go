// Package collada reads and writes the geometry part of COLLADA (.dae)
// documents.
//
// Reading collects every triangles and polylist primitive of every
// geometry in library_geometries into one indexed mesh. Scene-graph
// transforms, materials and texture coordinates are ignored. Writing emits a
// COLLADA 1.4.1 document with a single geometry instanced by one scene node.
package collada

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/simtrans/simtrans/pkg/mesh"
)

// Codec implements mesh.Codec for ".dae".
type Codec struct{}

// Ext returns ".dae".
func (Codec) Ext() string { return ".dae" }

// Read decodes the COLLADA document at path.
func (Codec) Read(path string) (*mesh.Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(bufio.NewReader(f))
}

// Write encodes d as a COLLADA document at path.
func (Codec) Write(d *mesh.Data, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := Encode(w, d); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type document struct {
	XMLName    xml.Name   `xml:"COLLADA"`
	Geometries []geometry `xml:"library_geometries>geometry"`
}

type geometry struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
	Mesh *struct {
		Sources   []source    `xml:"source"`
		Vertices  vertices    `xml:"vertices"`
		Triangles []primitive `xml:"triangles"`
		Polylists []primitive `xml:"polylist"`
	} `xml:"mesh"`
}

type source struct {
	ID       string `xml:"id,attr"`
	Floats   string `xml:"float_array"`
	Accessor struct {
		Stride int `xml:"stride,attr"`
	} `xml:"technique_common>accessor"`
}

type vertices struct {
	ID     string  `xml:"id,attr"`
	Inputs []input `xml:"input"`
}

type input struct {
	Semantic string `xml:"semantic,attr"`
	Source   string `xml:"source,attr"`
	Offset   int    `xml:"offset,attr"`
}

type primitive struct {
	Count  int     `xml:"count,attr"`
	Inputs []input `xml:"input"`
	VCount string  `xml:"vcount"`
	P      string  `xml:"p"`
}

// Decode reads a COLLADA document from r.
func Decode(r io.Reader) (*mesh.Data, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode collada: %w", err)
	}

	name := ""
	if len(doc.Geometries) > 0 {
		name = doc.Geometries[0].Name
	}
	b := mesh.NewBuilder(name)

	for _, g := range doc.Geometries {
		if g.Mesh == nil {
			continue
		}
		positions, err := positionsOf(g.Mesh.Sources, g.Mesh.Vertices)
		if err != nil {
			return nil, fmt.Errorf("geometry %s: %w", g.ID, err)
		}
		for _, p := range g.Mesh.Triangles {
			if err := addPrimitive(b, positions, p, g.Mesh.Vertices.ID, false); err != nil {
				return nil, fmt.Errorf("geometry %s: %w", g.ID, err)
			}
		}
		for _, p := range g.Mesh.Polylists {
			if err := addPrimitive(b, positions, p, g.Mesh.Vertices.ID, true); err != nil {
				return nil, fmt.Errorf("geometry %s: %w", g.ID, err)
			}
		}
	}
	return b.Data(), nil
}

func positionsOf(sources []source, v vertices) ([]mgl64.Vec3, error) {
	var ref string
	for _, in := range v.Inputs {
		if in.Semantic == "POSITION" {
			ref = strings.TrimPrefix(in.Source, "#")
		}
	}
	if ref == "" {
		return nil, fmt.Errorf("vertices %s: no POSITION input", v.ID)
	}
	for _, s := range sources {
		if s.ID != ref {
			continue
		}
		floats, err := parseFloats(s.Floats)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", s.ID, err)
		}
		stride := s.Accessor.Stride
		if stride < 3 {
			stride = 3
		}
		out := make([]mgl64.Vec3, 0, len(floats)/stride)
		for i := 0; i+2 < len(floats); i += stride {
			out = append(out, mgl64.Vec3{floats[i], floats[i+1], floats[i+2]})
		}
		return out, nil
	}
	return nil, fmt.Errorf("position source %q not found", ref)
}

func addPrimitive(b *mesh.Builder, positions []mgl64.Vec3, p primitive, verticesID string, poly bool) error {
	stride, offset := 1, -1
	for _, in := range p.Inputs {
		stride = max(stride, in.Offset+1)
		if in.Semantic == "VERTEX" && strings.TrimPrefix(in.Source, "#") == verticesID {
			offset = in.Offset
		}
	}
	if offset < 0 {
		return fmt.Errorf("primitive has no VERTEX input")
	}

	idx, err := parseInts(p.P)
	if err != nil {
		return err
	}
	corner := func(i int) (mgl64.Vec3, error) {
		k := i*stride + offset
		if k >= len(idx) || idx[k] < 0 || idx[k] >= len(positions) {
			return mgl64.Vec3{}, fmt.Errorf("index %d out of range", k)
		}
		return positions[idx[k]], nil
	}

	counts := []int(nil)
	if poly {
		if counts, err = parseInts(p.VCount); err != nil {
			return err
		}
	} else {
		counts = make([]int, len(idx)/stride/3)
		for i := range counts {
			counts[i] = 3
		}
	}

	// Polygons are fanned around their first corner.
	next := 0
	for _, n := range counts {
		first, err := corner(next)
		if err != nil {
			return err
		}
		for k := 1; k+1 < n; k++ {
			a, err := corner(next + k)
			if err != nil {
				return err
			}
			c, err := corner(next + k + 1)
			if err != nil {
				return err
			}
			b.Triangle(first, a, c)
		}
		next += n
	}
	return nil
}

func parseFloats(s string) ([]float64, error) {
	fields := strings.Fields(s)
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseInts(s string) ([]int, error) {
	fields := strings.Fields(s)
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
