package resolve

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/simtrans/simtrans/pkg/errors"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolve(t *testing.T) {
	models := t.TempDir()
	doc := t.TempDir()
	touch(t, filepath.Join(models, "arm", "meshes", "link.dae"))
	touch(t, filepath.Join(doc, "meshes", "base.stl"))
	touch(t, filepath.Join(doc, "abs.stl"))

	r := &Resolver{SearchPaths: []string{t.TempDir(), models}}

	tests := []struct {
		name string
		uri  string
		want string
	}{
		{"model", "model://arm/meshes/link.dae", filepath.Join(models, "arm", "meshes", "link.dae")},
		{"package", "package://arm/meshes/link.dae", filepath.Join(models, "arm", "meshes", "link.dae")},
		{"relative", "meshes/base.stl", filepath.Join(doc, "meshes", "base.stl")},
		{"absolute", filepath.Join(doc, "abs.stl"), filepath.Join(doc, "abs.stl")},
		{"file", "file://" + filepath.ToSlash(filepath.Join(doc, "abs.stl")), filepath.Join(doc, "abs.stl")},
		{"own model", "model://robot/meshes/base.stl", filepath.Join(doc, "meshes", "base.stl")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.uri, doc)
			if err != nil {
				t.Fatalf("Resolve(%q) error: %v", tt.uri, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.uri, got, tt.want)
			}
		})
	}
}

func TestResolveErrors(t *testing.T) {
	r := &Resolver{}
	doc := t.TempDir()

	for _, uri := range []string{"model://arm/missing.dae", "missing.stl", "file:///no/such/file.stl"} {
		_, err := r.Resolve(uri, doc)
		if !errors.Is(err, errors.ErrCodeFileNotFound) {
			t.Errorf("Resolve(%q) error = %v, want FILE_NOT_FOUND", uri, err)
			continue
		}
		if errors.TokenOf(err) != uri {
			t.Errorf("token = %q, want %q", errors.TokenOf(err), uri)
		}
	}

	if _, err := r.Resolve("http://example.com/a.stl", doc); !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("http scheme error = %v, want PARSE_ERROR", err)
	}
	if _, err := r.Resolve("  ", doc); !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("empty reference error = %v, want PARSE_ERROR", err)
	}
}

func TestFromEnv(t *testing.T) {
	sep := string(os.PathListSeparator)
	t.Setenv(EnvGazeboModelPath, "/g1"+sep+sep+"/g2")
	t.Setenv(EnvROSPackagePath, "/r1")

	r := FromEnv("/extra")
	got := strings.Join(r.SearchPaths, ",")
	if got != "/extra,/g1,/g2,/r1" {
		t.Errorf("SearchPaths = %s", got)
	}
}
