package model

import "github.com/go-gl/mathgl/mgl64"

// Inertia is a symmetric 3x3 inertia tensor stored as its six independent
// entries.
type Inertia struct {
	Ixx, Ixy, Ixz float64
	Iyy, Iyz      float64
	Izz           float64
}

// At returns the tensor entry at row i, column j (0-based). At(i, j) and
// At(j, i) are always equal.
func (t Inertia) At(i, j int) float64 {
	if i > j {
		i, j = j, i
	}
	switch {
	case i == 0 && j == 0:
		return t.Ixx
	case i == 0 && j == 1:
		return t.Ixy
	case i == 0 && j == 2:
		return t.Ixz
	case i == 1 && j == 1:
		return t.Iyy
	case i == 1 && j == 2:
		return t.Iyz
	case i == 2 && j == 2:
		return t.Izz
	}
	panic("model: inertia index out of range")
}

// Matrix returns the full tensor.
func (t Inertia) Matrix() mgl64.Mat3 {
	return mgl64.Mat3{
		t.Ixx, t.Ixy, t.Ixz,
		t.Ixy, t.Iyy, t.Iyz,
		t.Ixz, t.Iyz, t.Izz,
	}
}

// Rows returns the tensor in row-major order, as VRML momentsOfInertia
// expects.
func (t Inertia) Rows() [9]float64 {
	var out [9]float64
	for i := range 3 {
		for j := range 3 {
			out[3*i+j] = t.At(i, j)
		}
	}
	return out
}
