// Package stl reads and writes STL surface triangulations.
//
// Both binary and ASCII files are read; files are always written in the
// binary form. Vertices shared between facets are merged on read so the
// result is an indexed mesh.
package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/simtrans/simtrans/pkg/mesh"
)

const (
	headerSize = 80
	facetSize  = 4*3*4 + 2 // normal + 3 vertices, float32 each, + attribute count
)

// Codec implements mesh.Codec for ".stl".
type Codec struct{}

// Ext returns ".stl".
func (Codec) Ext() string { return ".stl" }

// Read decodes the STL file at path.
func (Codec) Read(path string) (*mesh.Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(bytes.NewReader(raw), int64(len(raw)))
}

// Write encodes d as binary STL at path.
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

// Decode reads a binary or ASCII STL stream of the given size.
//
// A file that starts with "solid" may still be binary (several exporters
// write that word into the binary header), so the binary interpretation is
// preferred whenever the facet count in the header matches the size.
func Decode(r io.ReaderAt, size int64) (*mesh.Data, error) {
	if size >= headerSize+4 {
		var n [4]byte
		if _, err := r.ReadAt(n[:], headerSize); err != nil {
			return nil, err
		}
		count := int64(binary.LittleEndian.Uint32(n[:]))
		if headerSize+4+count*facetSize == size {
			return decodeBinary(io.NewSectionReader(r, 0, size), int(count))
		}
	}
	return decodeASCII(io.NewSectionReader(r, 0, size))
}

func decodeBinary(r io.Reader, count int) (*mesh.Data, error) {
	var header [headerSize + 4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	b := mesh.NewBuilder(strings.TrimRight(string(bytes.TrimRight(header[:headerSize], "\x00")), " "))

	buf := make([]byte, facetSize)
	var corners [3]mgl64.Vec3
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("facet %d: %w", i, err)
		}
		for v := range corners {
			for c := range 3 {
				const start = 3 * 4 // skip normal
				bits := binary.LittleEndian.Uint32(buf[start+12*v+4*c:])
				corners[v][c] = float64(math.Float32frombits(bits))
			}
		}
		b.Triangle(corners[0], corners[1], corners[2])
	}
	return b.Data(), nil
}

func decodeASCII(r io.Reader) (*mesh.Data, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		b       *mesh.Builder
		corners []mgl64.Vec3
		line    int
	)
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "solid":
			if b == nil {
				b = mesh.NewBuilder(strings.Join(fields[1:], " "))
			}
		case "vertex":
			if len(fields) != 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", line)
			}
			var v mgl64.Vec3
			for i := range 3 {
				f, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				v[i] = f
			}
			corners = append(corners, v)
		case "endloop":
			if len(corners) != 3 {
				return nil, fmt.Errorf("line %d: facet has %d vertices, want 3", line, len(corners))
			}
			if b == nil {
				b = mesh.NewBuilder("")
			}
			b.Triangle(corners[0], corners[1], corners[2])
			corners = corners[:0]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("not an STL file")
	}
	return b.Data(), nil
}

// Encode writes d as binary STL with per-facet normals.
func Encode(w io.Writer, d *mesh.Data) error {
	var header [headerSize]byte
	copy(header[:], d.Name)
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(d.Triangles))); err != nil {
		return err
	}

	buf := make([]byte, facetSize)
	put := func(off int, v mgl64.Vec3) {
		for c := range 3 {
			binary.LittleEndian.PutUint32(buf[off+4*c:], math.Float32bits(float32(v[c])))
		}
	}
	for i, t := range d.Triangles {
		put(0, d.Normal(i))
		for v := range 3 {
			put(12+12*v, d.Vertices[t[v]])
		}
		buf[facetSize-2], buf[facetSize-1] = 0, 0
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
