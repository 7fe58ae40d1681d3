// Package resolve turns the file references found in robot descriptions into
// paths on the local filesystem.
//
// Supported forms:
//
//	model://arm/meshes/link.dae    searched as arm/meshes/link.dae in each search path
//	package://arm/meshes/link.dae  same lookup, ROS style
//	file:///abs/link.stl           scheme stripped
//	meshes/link.stl                joined to the referring document's directory
//	/abs/link.stl                  used as is
//
// Every form must name an existing file, otherwise resolution fails with
// FILE_NOT_FOUND carrying the original reference.
package resolve

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/simtrans/simtrans/pkg/errors"
)

// Environment variables consulted by FromEnv.
const (
	EnvGazeboModelPath = "GAZEBO_MODEL_PATH"
	EnvROSPackagePath  = "ROS_PACKAGE_PATH"
)

// Resolver resolves references against an ordered list of search paths.
// The zero value resolves only file:// URIs, absolute and relative paths.
type Resolver struct {
	SearchPaths []string
}

// FromEnv returns a resolver whose search paths are extra followed by the
// entries of GAZEBO_MODEL_PATH and ROS_PACKAGE_PATH.
func FromEnv(extra ...string) *Resolver {
	paths := append([]string(nil), extra...)
	for _, env := range []string{EnvGazeboModelPath, EnvROSPackagePath} {
		paths = append(paths, SplitList(os.Getenv(env))...)
	}
	return &Resolver{SearchPaths: paths}
}

// SplitList splits a path list in the platform format and drops empty entries.
func SplitList(s string) []string {
	var out []string
	for _, p := range filepath.SplitList(s) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Resolve returns the filesystem path for uri. Relative references are
// taken relative to baseDir.
func (r *Resolver) Resolve(uri, baseDir string) (string, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return "", errors.New(errors.ErrCodeParse, "empty file reference")
	}

	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		p := uri
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, filepath.FromSlash(p))
		}
		return exists(p, uri)
	}

	switch scheme {
	case "file":
		return exists(filepath.FromSlash(rest), uri)
	case "model", "package":
		rel := filepath.FromSlash(strings.TrimPrefix(rest, "/"))
		for _, dir := range r.SearchPaths {
			p := filepath.Join(dir, rel)
			if fileExists(p) {
				return p, nil
			}
		}
		// Fall back to the document directory, with and without the
		// model name, for models that are not installed.
		if p := filepath.Join(baseDir, rel); fileExists(p) {
			return p, nil
		}
		if _, sub, ok := strings.Cut(rel, string(filepath.Separator)); ok {
			if p := filepath.Join(baseDir, sub); fileExists(p) {
				return p, nil
			}
		}
		return "", errors.WithToken(errors.ErrCodeFileNotFound, uri,
			"%s not found in %d search path(s)", uri, len(r.SearchPaths))
	default:
		return "", errors.WithToken(errors.ErrCodeParse, uri, "unsupported URI scheme %q", scheme)
	}
}

func exists(p, uri string) (string, error) {
	if !fileExists(p) {
		return "", errors.WithToken(errors.ErrCodeFileNotFound, uri, "file not found: %s", p)
	}
	return p, nil
}

func fileExists(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && !fi.IsDir()
}
