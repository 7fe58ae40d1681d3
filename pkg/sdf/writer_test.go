package sdf

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/simtrans/simtrans/pkg/mesh"
	"github.com/simtrans/simtrans/pkg/model"
	"github.com/simtrans/simtrans/pkg/tmpl"
)

func TestWriteRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, err := decode(t, armSDF)
	if err != nil {
		t.Fatal(err)
	}
	src.Links[1].Visuals = append(src.Links[1].Visuals, &model.Shape{
		Name: "shell",
		Pose: model.IdentityPose(),
		Primitive: &model.Mesh{Data: &mesh.Data{
			Vertices:  []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			Triangles: [][3]int{{0, 1, 2}},
		}},
	})

	dir := t.TempDir()
	out := filepath.Join(dir, "arm.sdf")
	w := NewWriter(tmpl.Default(), DefaultCodecs())
	if err := w.Write(ctx, src, out); err != nil {
		t.Fatalf("Write: %v", err)
	}
	for _, name := range []string{"shell.dae", "shell.stl"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("side file %s: %v", name, err)
		}
	}
	text, _ := os.ReadFile(out)
	if !strings.Contains(string(text), "<uri>shell.dae</uri>") {
		t.Errorf("mesh not referenced as shell.dae:\n%s", text)
	}

	got, err := NewReader().Read(ctx, out)
	if err != nil {
		t.Fatalf("Read back: %v", err)
	}
	if got.Name != src.Name || len(got.Links) != len(src.Links) || len(got.Joints) != len(src.Joints) {
		t.Fatalf("round trip changed structure: %d links, %d joints", len(got.Links), len(got.Joints))
	}

	cyl := got.Links[0].Visuals[1]
	if !cyl.Pose.Rotation.OrientationEqualThreshold(src.Links[0].Visuals[1].Pose.Rotation, 1e-9) {
		t.Errorf("cylinder rotation %v, want %v", cyl.Pose.Rotation, src.Links[0].Visuals[1].Pose.Rotation)
	}
	if got.Links[0].Inertial.Inertia != src.Links[0].Inertial.Inertia {
		t.Errorf("inertia %+v, want %+v", got.Links[0].Inertial.Inertia, src.Links[0].Inertial.Inertia)
	}
	j := got.Joints[0]
	if j.Type != model.Revolute || *j.Limit != *src.Joints[0].Limit || *j.Dynamics != *src.Joints[0].Dynamics {
		t.Errorf("joint = %+v", j)
	}
	m, ok := got.Links[1].Visuals[1].Primitive.(*model.Mesh)
	if !ok || len(m.Data.Triangles) != 1 {
		t.Errorf("mesh visual = %#v", got.Links[1].Visuals[1].Primitive)
	}
}
