// Package model defines the in-memory robot description shared by every
// reader and writer.
//
// A [Body] owns its links and joints in document order. Joints refer to
// links by name; they do not hold pointers, so a body read from a graph
// format can describe any link/joint graph, including ones that are not
// trees. Converting to a tree is the job of the kinematics package.
//
// Readers build a Body once. Writers only read it.
package model

import (
	"iter"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/simtrans/simtrans/pkg/errors"
	"github.com/simtrans/simtrans/pkg/spatial"
)

// Pose is a rigid transform.
type Pose struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
}

// IdentityPose returns the pose with no translation and no rotation.
func IdentityPose() Pose {
	return Pose{Rotation: mgl64.QuatIdent()}
}

// NewPose builds a pose from a translation and fixed-axis roll, pitch and
// yaw angles in radians.
func NewPose(x, y, z, roll, pitch, yaw float64) Pose {
	return Pose{
		Translation: mgl64.Vec3{x, y, z},
		Rotation:    spatial.Quat(roll, pitch, yaw),
	}
}

// IsIdentity reports whether p neither translates nor rotates.
func (p Pose) IsIdentity() bool {
	return p.Translation == (mgl64.Vec3{}) && p.Rotation.OrientationEqual(mgl64.QuatIdent())
}

// Body is a complete robot description.
type Body struct {
	Name   string
	Links  []*Link
	Joints []*Joint
}

// Link is a rigid body.
type Link struct {
	Name     string
	Pose     Pose
	Inertial *Inertial // nil when the document gave no inertial block
	Visuals  []*Shape
}

// Inertial holds the mass properties of a link.
type Inertial struct {
	Mass         float64
	CenterOfMass mgl64.Vec3
	Inertia      Inertia
}

// Dynamics holds the passive joint parameters.
type Dynamics struct {
	Damping  float64
	Friction float64
}

// Limit bounds the joint position.
type Limit struct {
	Upper float64
	Lower float64
}

// Joint connects a parent link to a child link.
type Joint struct {
	Name     string
	Type     JointType
	Pose     Pose
	Axis     *mgl64.Vec3 // nil when no axis was given
	Dynamics *Dynamics   // only set together with Axis
	Limit    *Limit      // only set together with Axis
	Parent   string      // link name
	Child    string      // link name
}

// Link returns the link named name.
func (b *Body) Link(name string) (*Link, bool) {
	for _, l := range b.Links {
		if l.Name == name {
			return l, true
		}
	}
	return nil, false
}

// Joint returns the joint named name.
func (b *Body) Joint(name string) (*Joint, bool) {
	for _, j := range b.Joints {
		if j.Name == name {
			return j, true
		}
	}
	return nil, false
}

// Meshes yields every mesh shape together with its link, in document order.
func (b *Body) Meshes() iter.Seq2[*Link, *Shape] {
	return func(yield func(*Link, *Shape) bool) {
		for _, l := range b.Links {
			for _, s := range l.Visuals {
				if _, ok := s.Primitive.(*Mesh); !ok {
					continue
				}
				if !yield(l, s) {
					return
				}
			}
		}
	}
}

// Validate checks that link names are unique and that every joint names an
// existing parent and child link.
func (b *Body) Validate() error {
	links := make(map[string]bool, len(b.Links))
	for _, l := range b.Links {
		if l.Name == "" {
			return errors.New(errors.ErrCodeParse, "link without a name")
		}
		if links[l.Name] {
			return errors.WithToken(errors.ErrCodeParse, l.Name, "duplicate link name %q", l.Name)
		}
		links[l.Name] = true
	}
	for _, j := range b.Joints {
		for _, ref := range []string{j.Parent, j.Child} {
			if !links[ref] {
				return errors.WithToken(errors.ErrCodeDanglingReference, ref,
					"joint %q refers to unknown link %q", j.Name, ref)
			}
		}
	}
	return nil
}
