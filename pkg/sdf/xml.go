package sdf

import "encoding/xml"

// Element types for decoding. Optional and required child elements are
// pointers so absence can be told apart from an empty value.

type xmlDocument struct {
	XMLName xml.Name  `xml:"sdf"`
	Version string    `xml:"version,attr"`
	Model   *xmlModel `xml:"model"`
}

type xmlModel struct {
	Name   string     `xml:"name,attr"`
	Links  []xmlLink  `xml:"link"`
	Joints []xmlJoint `xml:"joint"`
}

type xmlLink struct {
	Name     string       `xml:"name,attr"`
	Pose     *string      `xml:"pose"`
	Inertial *xmlInertial `xml:"inertial"`
	Visuals  []xmlVisual  `xml:"visual"`
}

type xmlInertial struct {
	Mass    *string `xml:"mass"`
	Pose    *string `xml:"pose"`
	Inertia *struct {
		Ixx *string `xml:"ixx"`
		Ixy *string `xml:"ixy"`
		Ixz *string `xml:"ixz"`
		Iyy *string `xml:"iyy"`
		Iyz *string `xml:"iyz"`
		Izz *string `xml:"izz"`
	} `xml:"inertia"`
}

type xmlVisual struct {
	Name     string       `xml:"name,attr"`
	Pose     *string      `xml:"pose"`
	Geometry *xmlGeometry `xml:"geometry"`
}

type xmlGeometry struct {
	Shapes []xmlShape `xml:",any"`
}

// xmlShape holds the fields of every supported geometry tag; XMLName
// selects which ones apply.
type xmlShape struct {
	XMLName xml.Name
	URI     *string `xml:"uri"`
	Size    *string `xml:"size"`
	Radius  *string `xml:"radius"`
	Length  *string `xml:"length"`
}

type xmlJoint struct {
	Name   string   `xml:"name,attr"`
	Type   string   `xml:"type,attr"`
	Pose   *string  `xml:"pose"`
	Axis   *xmlAxis `xml:"axis"`
	Parent *string  `xml:"parent"`
	Child  *string  `xml:"child"`
}

type xmlAxis struct {
	XYZ      *string `xml:"xyz"`
	Dynamics *struct {
		Damping  *string `xml:"damping"`
		Friction *string `xml:"friction"`
	} `xml:"dynamics"`
	Limit *struct {
		Upper *string `xml:"upper"`
		Lower *string `xml:"lower"`
	} `xml:"limit"`
}
