package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/simtrans/simtrans/pkg/cache"
	"github.com/simtrans/simtrans/pkg/errors"
	"github.com/simtrans/simtrans/pkg/observability"
)

const pendulumSDF = `<?xml version="1.0"?>
<sdf version="1.5">
  <model name="pendulum">
    <link name="base">
      <inertial>
        <mass>1</mass>
        <inertia><ixx>1</ixx><ixy>0</ixy><ixz>0</ixz><iyy>1</iyy><iyz>0</iyz><izz>1</izz></inertia>
      </inertial>
      <visual name="plate">
        <geometry><box><size>1 1 0.1</size></box></geometry>
      </visual>
    </link>
    <link name="bob">
      <visual name="bob_shell">
        <geometry><mesh><uri>meshes/bob.stl</uri></mesh></geometry>
      </visual>
    </link>
    <joint name="swing" type="revolute">
      <parent>base</parent>
      <child>bob</child>
      <axis><xyz>1 0 0</xyz></axis>
    </joint>
  </model>
</sdf>`

const bobSTL = `solid bob
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
endsolid bob
`

// writeModel lays out a model directory and returns the SDF path.
func writeModel(t *testing.T, doc string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "meshes"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "meshes", "bob.stl"), []byte(bobSTL), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "model.sdf")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestRunner(t *testing.T, cfg Config) *Runner {
	t.Helper()
	r, err := NewRunner(cfg, nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"out/robot.wrl", FormatVRML, false},
		{"robot.VRML", FormatVRML, false},
		{"robot.sdf", FormatSDF, false},
		{"robot.urdf", "", true},
		{"robot", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := OutputFormat(tt.path)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidFormat) {
					t.Fatalf("OutputFormat(%q) err = %v, want INVALID_FORMAT", tt.path, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("OutputFormat(%q) = %q, %v; want %q", tt.path, got, err, tt.want)
			}
		})
	}
}

func TestGraphFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"g.dot", FormatDOT, false},
		{"g.gv", FormatDOT, false},
		{"g.svg", FormatSVG, false},
		{"g.PDF", FormatPDF, false},
		{"g.png", FormatPNG, false},
		{"g.jpg", "", true},
	}
	for _, tt := range tests {
		got, err := GraphFormat(tt.path)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("GraphFormat(%q) = %q, %v", tt.path, got, err)
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"valid", Options{Input: "a/model.sdf", Output: "b/robot.wrl"}, ""},
		{"missing input", Options{Output: "robot.wrl"}, errors.ErrCodeInvalidConfig},
		{"missing output", Options{Input: "model.sdf"}, errors.ErrCodeInvalidConfig},
		{"bad input ext", Options{Input: "robot.urdf", Output: "robot.wrl"}, errors.ErrCodeInvalidFormat},
		{"bad output ext", Options{Input: "model.sdf", Output: "robot.obj"}, errors.ErrCodeInvalidFormat},
		{"overwrite input", Options{Input: "model.sdf", Output: "./model.sdf"}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestGraphOptionsDefaults(t *testing.T) {
	opts := GraphOptions{Input: "model.sdf"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Format != FormatSVG {
		t.Errorf("Format = %q, want %q", opts.Format, FormatSVG)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale = %v, want %v", opts.Scale, DefaultScale)
	}

	opts = GraphOptions{Input: "model.sdf", Format: "gif"}
	if err := opts.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("gif format err = %v", err)
	}
}

func TestNewRunnerDefaults(t *testing.T) {
	r := newTestRunner(t, Config{})
	if r.Config.Parallelism != DefaultParallelism {
		t.Errorf("Parallelism = %d", r.Config.Parallelism)
	}
	if _, ok := r.Cache.(cache.NullCache); !ok {
		t.Errorf("Cache = %T, want NullCache", r.Cache)
	}
	if r.Logger == nil {
		t.Error("Logger is nil")
	}
}

func TestNewRunnerBadTemplateDir(t *testing.T) {
	_, err := NewRunner(Config{TemplateDir: filepath.Join(t.TempDir(), "missing")}, nil)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		output   string
		format   string
		contains []string
	}{
		{"robot.wrl", FormatVRML, []string{"DEF pendulum Humanoid", "DEF swing Joint", "jointType \"rotate\""}},
		{"robot.vrml", FormatVRML, []string{"DEF base Joint"}},
		{"robot.sdf", FormatSDF, []string{`<model name="pendulum">`, "<uri>bob_shell.dae</uri>"}},
	}
	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			input := writeModel(t, pendulumSDF)
			out := filepath.Join(t.TempDir(), "nested", tt.output)
			r := newTestRunner(t, Config{})

			res, err := r.Convert(context.Background(), Options{Input: input, Output: out})
			if err != nil {
				t.Fatalf("Convert: %v", err)
			}
			if res.Format != tt.format {
				t.Errorf("Format = %q, want %q", res.Format, tt.format)
			}
			if res.Stats.Links != 2 || res.Stats.Joints != 1 || res.Stats.Meshes != 1 {
				t.Errorf("Stats = %+v", res.Stats)
			}
			wantFiles := []string{
				out,
				filepath.Join(filepath.Dir(out), "bob_shell.dae"),
				filepath.Join(filepath.Dir(out), "bob_shell.stl"),
			}
			if len(res.Files) != len(wantFiles) {
				t.Fatalf("Files = %v, want %v", res.Files, wantFiles)
			}
			for i, f := range wantFiles {
				if res.Files[i] != f {
					t.Errorf("Files[%d] = %s, want %s", i, res.Files[i], f)
				}
				if _, err := os.Stat(f); err != nil {
					t.Errorf("missing %s: %v", f, err)
				}
			}

			text, _ := os.ReadFile(out)
			for _, s := range tt.contains {
				if !strings.Contains(string(text), s) {
					t.Errorf("output missing %q", s)
				}
			}
		})
	}
}

func TestConvertErrors(t *testing.T) {
	dangling := strings.Replace(pendulumSDF, "<child>bob</child>", "<child>ghost</child>", 1)
	diamond := strings.Replace(pendulumSDF, "</model>", `<joint name="loop" type="fixed"><parent>bob</parent><child>base</child></joint></model>`, 1)

	tests := []struct {
		name   string
		doc    string
		output string
		strict bool
		code   errors.Code
		token  string
	}{
		{"unknown extension", pendulumSDF, "robot.urdf", false, errors.ErrCodeInvalidFormat, ".urdf"},
		{"dangling strict", dangling, "robot.wrl", true, errors.ErrCodeDanglingReference, "ghost"},
		{"dangling lenient still fails tree conversion", dangling, "robot.wrl", false, errors.ErrCodeDanglingReference, "ghost"},
		{"no root", diamond, "robot.wrl", false, errors.ErrCodeNoRootFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := writeModel(t, tt.doc)
			out := filepath.Join(t.TempDir(), tt.output)
			r := newTestRunner(t, Config{})

			_, err := r.Convert(context.Background(), Options{Input: input, Output: out, Strict: tt.strict})
			if !errors.Is(err, tt.code) {
				t.Fatalf("Convert err = %v, want %s", err, tt.code)
			}
			if tt.token != "" && errors.TokenOf(err) != tt.token {
				t.Errorf("token = %q, want %q", errors.TokenOf(err), tt.token)
			}
			if _, err := os.Stat(out); !os.IsNotExist(err) {
				t.Errorf("output written despite error: %v", err)
			}
		})
	}
}

func TestConvertMissingInput(t *testing.T) {
	r := newTestRunner(t, Config{})
	dir := t.TempDir()
	_, err := r.Convert(context.Background(), Options{
		Input:  filepath.Join(dir, "absent.sdf"),
		Output: filepath.Join(dir, "robot.wrl"),
	})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestConvertUsesCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRunner(t, Config{Cache: fc})
	input := writeModel(t, pendulumSDF)
	out := filepath.Join(t.TempDir(), "robot.wrl")

	for i := range 2 {
		if _, err := r.Convert(context.Background(), Options{Input: input, Output: out}); err != nil {
			t.Fatalf("Convert #%d: %v", i, err)
		}
	}
	entries, err := os.ReadDir(fc.Dir())
	if err != nil || len(entries) == 0 {
		t.Errorf("cache dir empty after conversion: %v", err)
	}
}

func TestRead(t *testing.T) {
	r := newTestRunner(t, Config{})
	b, err := r.Read(context.Background(), writeModel(t, pendulumSDF))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if b.Name != "pendulum" || len(b.Links) != 2 {
		t.Errorf("body = %s with %d links", b.Name, len(b.Links))
	}

	if _, err := r.Read(context.Background(), "robot.urdf"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("urdf err = %v", err)
	}
}

func TestGraphDOT(t *testing.T) {
	r := newTestRunner(t, Config{})
	data, err := r.Graph(context.Background(), GraphOptions{
		Input:  writeModel(t, pendulumSDF),
		Format: FormatDOT,
	})
	if err != nil {
		t.Fatalf("Graph: %v", err)
	}
	dot := string(data)
	if !strings.HasPrefix(dot, `digraph "pendulum"`) {
		t.Errorf("dot = %s", dot)
	}
	if !strings.Contains(dot, `"base" -> "bob" [label="swing (revolute)"]`) {
		t.Errorf("missing joint edge:\n%s", dot)
	}
}

func TestWatch(t *testing.T) {
	input := writeModel(t, pendulumSDF)
	out := filepath.Join(filepath.Dir(input), "robot.wrl")
	r := newTestRunner(t, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan *Result, 8)
	done := make(chan error, 1)
	go func() {
		done <- r.Watch(ctx, Options{Input: input, Output: out}, 20*time.Millisecond, func(res *Result, err error) {
			if err != nil {
				t.Errorf("conversion: %v", err)
				return
			}
			results <- res
		})
	}()

	wait := func(what string) *Result {
		select {
		case res := <-results:
			return res
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %s", what)
			return nil
		}
	}

	wait("initial conversion")
	renamed := strings.Replace(pendulumSDF, `name="pendulum"`, `name="swinger"`, 1)
	if err := os.WriteFile(input, []byte(renamed), 0o644); err != nil {
		t.Fatal(err)
	}
	for {
		res := wait("reconversion")
		if res.Body.Name == "swinger" {
			break
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}

// twoRootsSDF exports the bob mesh but has a second chain, so tree
// conversion fails after the side files are written.
var twoRootsSDF = strings.Replace(pendulumSDF, "</model>", `<link name="x"/><link name="y"/>
    <joint name="slide" type="prismatic"><parent>x</parent><child>y</child></joint>
  </model>`, 1)

func TestConvertWriteErrorListsFiles(t *testing.T) {
	input := writeModel(t, twoRootsSDF)
	out := filepath.Join(t.TempDir(), "robot.wrl")
	r := newTestRunner(t, Config{})

	res, err := r.Convert(context.Background(), Options{Input: input, Output: out})
	if !errors.Is(err, errors.ErrCodeAmbiguousRoot) {
		t.Fatalf("err = %v, want AMBIGUOUS_ROOT", err)
	}
	if res == nil {
		t.Fatal("expected partial result")
	}
	want := []string{
		out,
		filepath.Join(filepath.Dir(out), "bob_shell.dae"),
		filepath.Join(filepath.Dir(out), "bob_shell.stl"),
	}
	if strings.Join(res.Files, ",") != strings.Join(want, ",") {
		t.Errorf("Files = %v, want %v", res.Files, want)
	}
}

func TestWatchIgnoresFilesOfFailedRun(t *testing.T) {
	input := writeModel(t, twoRootsSDF)
	out := filepath.Join(filepath.Dir(input), "robot.wrl")
	r := newTestRunner(t, Config{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var runs atomic.Int32
	err := r.Watch(ctx, Options{Input: input, Output: out}, 50*time.Millisecond, func(res *Result, err error) {
		runs.Add(1)
		if res != nil {
			t.Error("failed run should pass a nil result")
		}
		if !errors.Is(err, errors.ErrCodeAmbiguousRoot) {
			t.Errorf("err = %v, want AMBIGUOUS_ROOT", err)
		}
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if _, err := os.Stat(filepath.Join(filepath.Dir(input), "bob_shell.stl")); err != nil {
		t.Fatalf("side file not written: %v", err)
	}
	if n := runs.Load(); n != 1 {
		t.Errorf("conversion ran %d times without edits, want 1", n)
	}
}

// recordingHooks keeps the order of pipeline events.
type recordingHooks struct {
	observability.NoopPipelineHooks
	events []string
	errs   []error
}

func (h *recordingHooks) OnReadStart(_ context.Context, path string) {
	h.events = append(h.events, "read-start "+filepath.Base(path))
}

func (h *recordingHooks) OnReadComplete(_ context.Context, _ string, links, joints int, _ time.Duration, err error) {
	h.events = append(h.events, fmt.Sprintf("read-done %d/%d", links, joints))
	h.errs = append(h.errs, err)
}

func (h *recordingHooks) OnWriteStart(_ context.Context, path, format string) {
	h.events = append(h.events, "write-start "+filepath.Base(path)+" "+format)
}

func (h *recordingHooks) OnWriteComplete(_ context.Context, _, _ string, files int, _ time.Duration, err error) {
	h.events = append(h.events, fmt.Sprintf("write-done %d", files))
	h.errs = append(h.errs, err)
}

func TestConvertEmitsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	input := writeModel(t, pendulumSDF)
	out := filepath.Join(t.TempDir(), "robot.wrl")
	r := newTestRunner(t, Config{})
	if _, err := r.Convert(context.Background(), Options{Input: input, Output: out}); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	want := []string{"read-start model.sdf", "read-done 2/1", "write-start robot.wrl vrml", "write-done 3"}
	if strings.Join(hooks.events, "; ") != strings.Join(want, "; ") {
		t.Errorf("events = %v, want %v", hooks.events, want)
	}
	for _, err := range hooks.errs {
		if err != nil {
			t.Errorf("hook saw error %v", err)
		}
	}
}

func TestConvertHooksSeeReadError(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	dir := t.TempDir()
	r := newTestRunner(t, Config{})
	_, err := r.Convert(context.Background(), Options{
		Input:  filepath.Join(dir, "absent.sdf"),
		Output: filepath.Join(dir, "robot.wrl"),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(hooks.events) != 2 || len(hooks.errs) != 1 || hooks.errs[0] == nil {
		t.Errorf("events = %v errs = %v", hooks.events, hooks.errs)
	}
}
