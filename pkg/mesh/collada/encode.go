package collada

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/simtrans/simtrans/pkg/mesh"
)

const namespace = "http://www.collada.org/2005/11/COLLADASchema"

type outDocument struct {
	XMLName      xml.Name    `xml:"COLLADA"`
	Xmlns        string      `xml:"xmlns,attr"`
	Version      string      `xml:"version,attr"`
	Asset        outAsset    `xml:"asset"`
	Geometries   []outGeom   `xml:"library_geometries>geometry"`
	VisualScenes []outScene  `xml:"library_visual_scenes>visual_scene"`
	Scene        outSceneRef `xml:"scene"`
}

type outAsset struct {
	Unit struct {
		Name  string  `xml:"name,attr"`
		Meter float64 `xml:"meter,attr"`
	} `xml:"unit"`
	UpAxis string `xml:"up_axis"`
}

type outGeom struct {
	ID   string  `xml:"id,attr"`
	Name string  `xml:"name,attr"`
	Mesh outMesh `xml:"mesh"`
}

type outMesh struct {
	Source    outSource    `xml:"source"`
	Vertices  outVertices  `xml:"vertices"`
	Triangles outTriangles `xml:"triangles"`
}

type outSource struct {
	ID     string `xml:"id,attr"`
	Floats struct {
		ID    string `xml:"id,attr"`
		Count int    `xml:"count,attr"`
		Data  string `xml:",chardata"`
	} `xml:"float_array"`
	Accessor struct {
		Source string     `xml:"source,attr"`
		Count  int        `xml:"count,attr"`
		Stride int        `xml:"stride,attr"`
		Params []outParam `xml:"param"`
	} `xml:"technique_common>accessor"`
}

type outParam struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
}

type outInput struct {
	Semantic string `xml:"semantic,attr"`
	Source   string `xml:"source,attr"`
	Offset   *int   `xml:"offset,attr,omitempty"`
}

type outVertices struct {
	ID    string   `xml:"id,attr"`
	Input outInput `xml:"input"`
}

type outTriangles struct {
	Count int      `xml:"count,attr"`
	Input outInput `xml:"input"`
	P     string   `xml:"p"`
}

type outScene struct {
	ID   string `xml:"id,attr"`
	Node struct {
		ID       string `xml:"id,attr"`
		Name     string `xml:"name,attr"`
		Instance struct {
			URL string `xml:"url,attr"`
		} `xml:"instance_geometry"`
	} `xml:"node"`
}

type outSceneRef struct {
	Instance struct {
		URL string `xml:"url,attr"`
	} `xml:"instance_visual_scene"`
}

// Encode writes d as a COLLADA 1.4.1 document. Element ids are derived from
// the mesh name so identical meshes produce identical files.
func Encode(w io.Writer, d *mesh.Data) error {
	id := sanitizeID(d.Name)

	var doc outDocument
	doc.Xmlns = namespace
	doc.Version = "1.4.1"
	doc.Asset.Unit.Name = "meter"
	doc.Asset.Unit.Meter = 1
	doc.Asset.UpAxis = "Z_UP"

	var g outGeom
	g.ID = id + "-mesh"
	g.Name = d.Name

	src := &g.Mesh.Source
	src.ID = id + "-positions"
	src.Floats.ID = src.ID + "-array"
	src.Floats.Count = 3 * len(d.Vertices)
	src.Floats.Data = joinVertices(d)
	src.Accessor.Source = "#" + src.Floats.ID
	src.Accessor.Count = len(d.Vertices)
	src.Accessor.Stride = 3
	src.Accessor.Params = []outParam{{"X", "float"}, {"Y", "float"}, {"Z", "float"}}

	g.Mesh.Vertices.ID = id + "-vertices"
	g.Mesh.Vertices.Input = outInput{Semantic: "POSITION", Source: "#" + src.ID}

	zero := 0
	g.Mesh.Triangles.Count = len(d.Triangles)
	g.Mesh.Triangles.Input = outInput{Semantic: "VERTEX", Source: "#" + g.Mesh.Vertices.ID, Offset: &zero}
	g.Mesh.Triangles.P = joinTriangles(d)
	doc.Geometries = []outGeom{g}

	var scene outScene
	scene.ID = "Scene"
	scene.Node.ID = id
	scene.Node.Name = d.Name
	scene.Node.Instance.URL = "#" + g.ID
	doc.VisualScenes = []outScene{scene}
	doc.Scene.Instance.URL = "#Scene"

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func joinVertices(d *mesh.Data) string {
	var sb strings.Builder
	for i, v := range d.Vertices {
		for c := range 3 {
			if i > 0 || c > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.FormatFloat(v[c], 'g', -1, 64))
		}
	}
	return sb.String()
}

func joinTriangles(d *mesh.Data) string {
	var sb strings.Builder
	for i, t := range d.Triangles {
		for c := range 3 {
			if i > 0 || c > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.Itoa(t[c]))
		}
	}
	return sb.String()
}

func sanitizeID(name string) string {
	if name == "" {
		return "mesh"
	}
	id := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.' {
			return r
		}
		return '_'
	}, name)
	if !unicode.IsLetter(rune(id[0])) && id[0] != '_' {
		id = "_" + id
	}
	return id
}
