package tmpl

import (
	"strconv"
	"strings"
	"text/template"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/simtrans/simtrans/pkg/model"
	"github.com/simtrans/simtrans/pkg/spatial"
)

func funcs() template.FuncMap {
	return template.FuncMap{
		"num":      Num,
		"vec":      Vec,
		"rotation": Rotation,
		"rpy":      RPY,
		"inertia":  inertia,
		"indent":   indent,
		"add":      func(a, b int) int { return a + b },
		"xml":      template.HTMLEscapeString,
		"quote":    Quote,

		"isMesh":     isKind(model.KindMesh),
		"isBox":      isKind(model.KindBox),
		"isCylinder": isKind(model.KindCylinder),
		"isSphere":   isKind(model.KindSphere),
	}
}

// Num formats f with the fewest digits that parse back to f. Negative zero
// prints as 0.
func Num(f float64) string {
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Quote formats s as a VRML SFString, escaping double quotes and
// backslashes.
func Quote(s string) string {
	return `"` + vrmlEscaper.Replace(s) + `"`
}

var vrmlEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Vec formats v as "x y z".
func Vec(v mgl64.Vec3) string {
	return join(v[:]...)
}

// Rotation formats q as a VRML SFRotation, "x y z angle".
func Rotation(q mgl64.Quat) string {
	axis, angle := spatial.AxisAngle(q)
	return join(axis[0], axis[1], axis[2], angle)
}

// RPY formats p as "x y z roll pitch yaw".
func RPY(p model.Pose) string {
	r, pi, y := spatial.Euler(p.Rotation)
	t := p.Translation
	return join(t[0], t[1], t[2], r, pi, y)
}

func inertia(t model.Inertia) string {
	rows := t.Rows()
	return join(rows[:]...)
}

func indent(n int, s string) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}

func isKind(k model.ShapeKind) func(*model.Shape) bool {
	return func(s *model.Shape) bool { return s != nil && s.Primitive != nil && s.Kind() == k }
}

func join(fs ...float64) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = Num(f)
	}
	return strings.Join(parts, " ")
}
