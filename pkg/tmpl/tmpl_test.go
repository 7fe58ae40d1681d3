package tmpl

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/simtrans/simtrans/pkg/model"
)

func TestDefaultNames(t *testing.T) {
	names := Default().Names()
	for _, want := range []string{"sdf.xml", "vrml.wrl", "vrml-joint", "vrml-segment", "vrml-shape"} {
		if !slices.Contains(names, want) {
			t.Errorf("Names() = %v, missing %s", names, want)
		}
	}
}

func TestOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sdf.xml"), []byte(`model={{.}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "extra.txt"), []byte(`[{{include "sdf.xml" .}}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var buf bytes.Buffer
	if err := s.Render(&buf, "extra.txt", "arm"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "[model=arm]" {
		t.Errorf("Render = %q, want %q", buf.String(), "[model=arm]")
	}

	buf.Reset()
	if err := s.Render(&buf, "vrml.wrl", nil); err == nil {
		// vrml.wrl is still the embedded one and needs real data.
		t.Error("Render(vrml.wrl, nil) succeeded")
	}
}

func TestOverrideErrors(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("New(missing dir) succeeded")
	}

	dir := t.TempDir()
	_ = os.WriteFile(filepath.Join(dir, "bad.tmpl"), []byte(`{{if}}`), 0o644)
	if _, err := New(dir); err == nil {
		t.Error("New(dir with bad template) succeeded")
	}

	if err := Default().Render(&bytes.Buffer{}, "nope", nil); err == nil {
		t.Error("Render(nope) succeeded")
	}
}

func TestNum(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-2.5, "-2.5"},
		{0.1, "0.1"},
		{1e-7, "1e-07"},
	}
	for _, tt := range tests {
		if got := Num(tt.in); got != tt.want {
			t.Errorf("Num(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatting(t *testing.T) {
	if got := Vec(mgl64.Vec3{1, -2, 0.5}); got != "1 -2 0.5" {
		t.Errorf("Vec = %q", got)
	}
	if got := Rotation(mgl64.QuatIdent()); got != "0 0 1 0" {
		t.Errorf("Rotation(identity) = %q", got)
	}
	if got := RPY(model.NewPose(1, 2, 3, 0, 0, 0)); got != "1 2 3 0 0 0" {
		t.Errorf("RPY = %q", got)
	}
	if got := inertia(model.Inertia{Ixx: 1, Ixy: 2, Ixz: 3, Iyy: 4, Iyz: 5, Izz: 6}); got != "1 2 3 2 4 5 3 5 6" {
		t.Errorf("inertia = %q", got)
	}
	if got := Quote(`a "b" \c`); got != `"a \"b\" \\c"` {
		t.Errorf("Quote = %s", got)
	}
	if got := indent(2, "a\n\nb"); got != "  a\n\n  b" {
		t.Errorf("indent = %q", got)
	}
}

func TestShapePredicates(t *testing.T) {
	box := &model.Shape{Primitive: &model.Box{}}
	f := funcs()
	if !f["isBox"].(func(*model.Shape) bool)(box) {
		t.Error("isBox(box) = false")
	}
	if f["isMesh"].(func(*model.Shape) bool)(box) {
		t.Error("isMesh(box) = true")
	}
	if f["isSphere"].(func(*model.Shape) bool)(nil) {
		t.Error("isSphere(nil) = true")
	}
}

func TestRenderSDF(t *testing.T) {
	body := &model.Body{
		Name: "a&b",
		Links: []*model.Link{{
			Name: "base",
			Pose: model.IdentityPose(),
			Visuals: []*model.Shape{
				{Name: "c", Pose: model.IdentityPose(), Primitive: &model.Cylinder{Radius: 1, Height: 2}},
			},
		}},
	}
	var buf bytes.Buffer
	err := Default().Render(&buf, "sdf.xml", map[string]any{"Body": body, "MeshExt": ".dae"})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{`<model name="a&amp;b">`, "<radius>1</radius>", "<length>2</length>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
