package model

import "github.com/simtrans/simtrans/pkg/errors"

// JointType is the kind of motion a joint allows.
type JointType int

const (
	Fixed JointType = iota
	Revolute
	Prismatic
	Screw
)

var jointTypeNames = [...]string{
	Fixed:     "fixed",
	Revolute:  "revolute",
	Prismatic: "prismatic",
	Screw:     "screw",
}

// String returns the lower-case document token for t.
func (t JointType) String() string {
	if t < 0 || int(t) >= len(jointTypeNames) {
		return "unknown"
	}
	return jointTypeNames[t]
}

// ParseJointType maps a document token to a JointType. Tokens other than
// fixed, revolute, prismatic and screw fail with UNSUPPORTED_JOINT_TYPE
// carrying the token.
func ParseJointType(s string) (JointType, error) {
	for t, name := range jointTypeNames {
		if s == name {
			return JointType(t), nil
		}
	}
	return Fixed, errors.Unsupported(errors.ErrCodeUnsupportedJointType, s)
}
