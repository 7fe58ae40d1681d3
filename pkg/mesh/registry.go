package mesh

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/simtrans/simtrans/pkg/cache"
	"github.com/simtrans/simtrans/pkg/errors"
	"github.com/simtrans/simtrans/pkg/observability"
)

const cacheKeyType = "mesh"

// Registry maps file extensions to codecs. Registration order is kept:
// exporters write one side file per codec in that order.
//
// A Registry is safe for concurrent Read and Write calls once built.
type Registry struct {
	codecs []Codec
	byExt  map[string]Codec
	cache  cache.Cache
	logger *log.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithCache makes Read consult c before decoding a file.
func WithCache(c cache.Cache) RegistryOption {
	return func(r *Registry) { r.cache = c }
}

// WithLogger sets the logger used for cache hits and decode timings.
func WithLogger(l *log.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry returns a registry for codecs. A later codec with the same
// extension replaces an earlier one.
func NewRegistry(codecs []Codec, opts ...RegistryOption) *Registry {
	r := &Registry{
		byExt:  make(map[string]Codec),
		cache:  cache.NewNullCache(),
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, c := range codecs {
		ext := strings.ToLower(c.Ext())
		i := slices.IndexFunc(r.codecs, func(old Codec) bool { return strings.ToLower(old.Ext()) == ext })
		if i >= 0 {
			r.codecs[i] = c
		} else {
			r.codecs = append(r.codecs, c)
		}
		r.byExt[ext] = c
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Codecs returns the registered codecs in registration order.
func (r *Registry) Codecs() []Codec {
	return slices.Clone(r.codecs)
}

// Extensions returns the registered extensions in registration order.
func (r *Registry) Extensions() []string {
	exts := make([]string, len(r.codecs))
	for i, c := range r.codecs {
		exts[i] = strings.ToLower(c.Ext())
	}
	return exts
}

// Lookup returns the codec for ext (with or without the leading dot, any
// case). Unknown extensions fail with UNSUPPORTED_MESH_FORMAT.
func (r *Registry) Lookup(ext string) (Codec, error) {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if c, ok := r.byExt[ext]; ok {
		return c, nil
	}
	return nil, errors.Unsupported(errors.ErrCodeUnsupportedMeshFormat, ext)
}

// Read decodes the mesh at path with the codec registered for its
// extension. Decoded meshes are cached by file contents.
func (r *Registry) Read(ctx context.Context, path string) (*Data, error) {
	ext := strings.ToLower(filepath.Ext(path))
	codec, err := r.Lookup(ext)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithToken(errors.ErrCodeFileNotFound, path, "mesh file not found: %s", path)
		}
		return nil, fmt.Errorf("read mesh %s: %w", path, err)
	}
	key := cache.MeshKey(ext, raw)
	hooks := observability.Cache()

	if cached, hit, err := r.cache.Get(ctx, key); err == nil && hit {
		var d Data
		if err := json.Unmarshal(cached, &d); err == nil {
			r.logger.Debug("mesh cache hit", "path", path)
			hooks.OnCacheHit(ctx, cacheKeyType)
			return &d, nil
		}
	}
	hooks.OnCacheMiss(ctx, cacheKeyType)

	d, err := codec.Read(path)
	if err != nil {
		return nil, fmt.Errorf("decode mesh %s: %w", path, err)
	}
	r.logger.Debug("decoded mesh", "path", path, "vertices", len(d.Vertices), "triangles", len(d.Triangles))

	if encoded, err := json.Marshal(d); err == nil {
		if err := r.cache.Set(ctx, key, encoded, 0); err != nil {
			r.logger.Warn("mesh cache write failed", "path", path, "err", err)
		} else {
			hooks.OnCacheSet(ctx, cacheKeyType, len(encoded))
		}
	}
	return d, nil
}
