// Package pkg provides the core libraries for simtrans robot model conversion.
//
// # Overview
//
// simtrans reads a robot described in SDF, builds a format-neutral body
// model, and writes it back out as OpenHRP-style VRML97 or SDF 1.5 with
// the mesh visuals exported as COLLADA and STL side files.
//
// # Architecture
//
// The typical data flow through simtrans:
//
//	model.sdf
//	    ↓
//	[sdf] reader (XML, poses, geometry; mesh URIs via [resolve] and [mesh])
//	    ↓
//	[model] body (links, joints, shapes, inertia)
//	    ↓
//	[kinematics] tree (root link, parent/child joints)
//	    ↓
//	[vrml] or [sdf] writer ([tmpl] templates, [mesh] side files)
//
// [pipeline] wires these steps together behind a Runner that also handles
// caching, watch mode and kinematic diagrams ([render/nodelink]).
//
// # Quick Start
//
//	runner, err := pipeline.NewRunner(pipeline.Config{}, nil)
//	if err != nil {
//	    return err
//	}
//	defer runner.Close()
//
//	res, err := runner.Convert(ctx, pipeline.Options{
//	    Input:  "arm/model.sdf",
//	    Output: "out/arm.wrl",
//	})
//
// # Main Packages
//
// [model] - Links, joints, shapes and inertial properties. Poses use
// [spatial] transforms built on go-gl/mathgl.
//
// [sdf] - SDF reader and writer.
//
// [vrml] - VRML97 writer producing OpenHRP Humanoid/Joint/Segment nodes.
//
// [mesh] - Mesh codec registry with [mesh/stl] and [mesh/collada] codecs
// and a parallel exporter.
//
// [resolve] - model:// and package:// URI resolution against search paths.
//
// [kinematics] - Kinematic tree construction and validation.
//
// [cache] - File-backed cache for decoded meshes.
//
// [errors] - Structured errors with codes and offending tokens.
//
// [observability] - Hooks for pipeline and cache events.
//
// [render/nodelink] - Kinematic diagrams via Graphviz, with PDF and PNG
// conversion in [render].
//
// [model]: github.com/simtrans/simtrans/pkg/model
// [spatial]: github.com/simtrans/simtrans/pkg/spatial
// [sdf]: github.com/simtrans/simtrans/pkg/sdf
// [vrml]: github.com/simtrans/simtrans/pkg/vrml
// [mesh]: github.com/simtrans/simtrans/pkg/mesh
// [mesh/stl]: github.com/simtrans/simtrans/pkg/mesh/stl
// [mesh/collada]: github.com/simtrans/simtrans/pkg/mesh/collada
// [resolve]: github.com/simtrans/simtrans/pkg/resolve
// [kinematics]: github.com/simtrans/simtrans/pkg/kinematics
// [tmpl]: github.com/simtrans/simtrans/pkg/tmpl
// [cache]: github.com/simtrans/simtrans/pkg/cache
// [errors]: github.com/simtrans/simtrans/pkg/errors
// [observability]: github.com/simtrans/simtrans/pkg/observability
// [pipeline]: github.com/simtrans/simtrans/pkg/pipeline
// [render]: github.com/simtrans/simtrans/pkg/render
// [render/nodelink]: github.com/simtrans/simtrans/pkg/render/nodelink
package pkg
