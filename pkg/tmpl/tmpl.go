// Package tmpl renders output documents from text templates.
//
// The default templates are embedded in the binary:
//
//	vrml.wrl  tree-format robot model (OpenHRP-style Joint/Segment nodes)
//	sdf.xml   graph-format robot model
//
// [New] can load a directory whose files replace embedded templates of the
// same name, or add new named templates usable through "include".
//
// Besides the text/template builtins every template can call:
//
//	num      float formatted with the shortest exact representation
//	vec      mgl64.Vec3 as "x y z"
//	rotation mgl64.Quat as VRML axis-angle "x y z angle"
//	rpy      model.Pose as "x y z roll pitch yaw"
//	inertia  model.Inertia as nine row-major values
//	indent   prefix every non-empty line with n spaces
//	include  execute a named template and return its text
//	add      integer addition
//	xml      escape text for XML content and attributes
//	isMesh, isBox, isCylinder, isSphere  test a *model.Shape
package tmpl

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"text/template"
)

//go:embed templates/*
var defaults embed.FS

// Renderer renders a named template.
type Renderer interface {
	Render(w io.Writer, name string, data any) error
}

// Set is a Renderer backed by a text/template set. It is safe for
// concurrent use.
type Set struct {
	t *template.Template
}

// New returns the embedded templates, overridden by the files in dir when
// dir is not empty.
func New(dir string) (*Set, error) {
	s := &Set{}
	t := template.New("").Option("missingkey=error").Funcs(funcs()).Funcs(template.FuncMap{
		"include": s.include,
	})
	t, err := t.ParseFS(defaults, "templates/*")
	if err != nil {
		return nil, fmt.Errorf("parse embedded templates: %w", err)
	}
	if dir != "" {
		if err := overrideFrom(t, dir); err != nil {
			return nil, err
		}
	}
	s.t = t
	return s, nil
}

// Default returns the embedded templates. It panics if they do not parse.
func Default() *Set {
	s, err := New("")
	if err != nil {
		panic(err)
	}
	return s
}

func overrideFrom(t *template.Template, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read template dir: %w", err)
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		text, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		if _, err := t.New(e.Name()).Parse(string(text)); err != nil {
			return fmt.Errorf("parse template %s: %w", e.Name(), err)
		}
	}
	return nil
}

// Render executes the template called name with data.
func (s *Set) Render(w io.Writer, name string, data any) error {
	if s.t.Lookup(name) == nil {
		return fmt.Errorf("template %q not defined", name)
	}
	return s.t.ExecuteTemplate(w, name, data)
}

// Names returns the defined template names, sorted.
func (s *Set) Names() []string {
	var names []string
	for _, t := range s.t.Templates() {
		if t.Name() != "" {
			names = append(names, t.Name())
		}
	}
	sort.Strings(names)
	return names
}

func (s *Set) include(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderFile renders the template called name into the file at path,
// replacing it.
func RenderFile(r Renderer, path, name string, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := r.Render(w, name, data); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", name, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
