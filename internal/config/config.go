// Package config loads simtrans settings from a TOML file and the
// environment.
//
// Sources are applied in increasing priority: built-in defaults, the
// config file, environment variables, then command-line flags (applied by
// the CLI after Load returns). The file is looked up as ./simtrans.toml,
// then $XDG_CONFIG_HOME/simtrans/simtrans.toml; a missing file is not an
// error unless it was named explicitly.
//
//	[export]
//	parallelism = 8
//	template_dir = "templates"
//
//	[paths]
//	search = ["/opt/models"]
//
//	[cache]
//	enabled = true
//	dir = "/tmp/simtrans-cache"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/simtrans/simtrans/pkg/cache"
	"github.com/simtrans/simtrans/pkg/errors"
	"github.com/simtrans/simtrans/pkg/pipeline"
	"github.com/simtrans/simtrans/pkg/resolve"
)

// FileName is the config file looked up in the working and config
// directories.
const FileName = "simtrans.toml"

// EnvCacheDir overrides the cache directory.
const EnvCacheDir = "SIMTRANS_CACHE_DIR"

// Config is the full simtrans configuration.
type Config struct {
	Export ExportConfig `toml:"export"`
	Paths  PathsConfig  `toml:"paths"`
	Cache  CacheConfig  `toml:"cache"`
	Read   ReadConfig   `toml:"read"`

	// Source is the file the config was loaded from, empty for defaults.
	Source string `toml:"-"`
}

// ExportConfig controls writers.
type ExportConfig struct {
	Parallelism int    `toml:"parallelism"`
	TemplateDir string `toml:"template_dir"`
}

// Validate validates the export configuration.
func (c *ExportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Parallelism, validation.Required, validation.Min(1), validation.Max(256)),
		validation.Field(&c.TemplateDir, validation.By(isDir)),
	)
}

// PathsConfig lists the roots searched for model:// and package:// URIs.
type PathsConfig struct {
	Search []string `toml:"search"`
}

// Validate validates the search paths.
func (c *PathsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Search, validation.Each(validation.Required)),
	)
}

// CacheConfig controls the mesh cache.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.When(c.Enabled, validation.Required)),
	)
}

// ReadConfig controls the SDF reader.
type ReadConfig struct {
	Strict bool `toml:"strict"`
}

// Validate validates the whole configuration. Failures carry the
// INVALID_CONFIG code.
func (c *Config) Validate() error {
	sections := []struct {
		name string
		v    validation.Validatable
	}{
		{"export", &c.Export},
		{"paths", &c.Paths},
		{"cache", &c.Cache},
	}
	for _, s := range sections {
		if err := s.v.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid [%s] section", s.name)
		}
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	dir, err := CacheDir()
	if err != nil {
		dir = filepath.Join(os.TempDir(), appName)
	}
	return &Config{
		Export: ExportConfig{Parallelism: pipeline.DefaultParallelism},
		Cache:  CacheConfig{Enabled: true, Dir: dir},
	}
}

// Load builds the configuration from defaults, the config file and the
// environment, and validates it. When path is empty the default locations
// are tried and a missing file is ignored.
func Load(path string) (*Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = find()
	}
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
		cfg.Source = path
	}

	cfg.applyEnv(getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.WithToken(errors.ErrCodeFileNotFound, path, "config file not found: %s", path)
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.WithToken(errors.ErrCodeInvalidConfig, keys[0],
			"%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	// Relative template dirs are relative to the config file.
	if c.Export.TemplateDir != "" && !filepath.IsAbs(c.Export.TemplateDir) {
		c.Export.TemplateDir = filepath.Join(filepath.Dir(path), c.Export.TemplateDir)
	}
	return nil
}

// applyEnv appends model search paths and overrides the cache directory.
func (c *Config) applyEnv(getenv func(string) string) {
	for _, key := range []string{resolve.EnvGazeboModelPath, resolve.EnvROSPackagePath} {
		c.Paths.Search = append(c.Paths.Search, resolve.SplitList(getenv(key))...)
	}
	if dir := getenv(EnvCacheDir); dir != "" {
		c.Cache.Dir = dir
	}
}

// find returns the first config file that exists, or "".
func find() string {
	candidates := []string{FileName}
	if dir, err := ConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, FileName))
	}
	for _, p := range candidates {
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
			return p
		}
	}
	return ""
}

// NewCache opens the configured mesh cache, or a NullCache when caching is
// disabled.
func (c *Config) NewCache() (cache.Cache, error) {
	if !c.Cache.Enabled {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(c.Cache.Dir)
}

// Pipeline converts the configuration into runner settings.
func (c *Config) Pipeline(ch cache.Cache) pipeline.Config {
	return pipeline.Config{
		Cache:       ch,
		SearchPaths: c.Paths.Search,
		TemplateDir: c.Export.TemplateDir,
		Parallelism: c.Export.Parallelism,
		Strict:      c.Read.Strict,
	}
}

func isDir(value any) error {
	dir, _ := value.(string)
	if dir == "" {
		return nil
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("template directory %s: %w", dir, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("template directory %s is not a directory", dir)
	}
	return nil
}
