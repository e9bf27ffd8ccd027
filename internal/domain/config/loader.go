package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/wslup/internal/ports"
)

// Loader loads configuration through a FileSystem.
type Loader struct {
	fs ports.FileSystem
}

// NewLoader creates a new Loader.
func NewLoader(fs ports.FileSystem) *Loader {
	return &Loader{fs: fs}
}

// Load reads and validates the configuration at path. An empty path searches
// DefaultPaths and falls back to Default() when none exists. An explicit path
// that does not exist is an error.
func (l *Loader) Load(path string) (*Config, string, error) {
	if path == "" {
		for _, candidate := range DefaultPaths {
			expanded := ports.ExpandPath(candidate)
			if l.fs.Exists(expanded) {
				path = expanded
				break
			}
		}
		if path == "" {
			return Default(), "", nil
		}
	}

	path = ports.ExpandPath(path)
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || !l.fs.Exists(path) {
			return nil, path, NewConfigNotFoundError(path)
		}
		return nil, path, NewUserError(ErrCodeFilePermission, "cannot read configuration file").
			WithContext(path).
			WithUnderlying(err)
	}

	cfg, err := Parse(path, data)
	if err != nil {
		return nil, path, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Parse decodes data on top of Default(). The format follows the file
// extension of path. Unknown keys are rejected.
func Parse(path string, data []byte) (*Config, error) {
	cfg := Default()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, NewYAMLParseError(path, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, NewTOMLParseError(path, err)
		}
	default:
		return nil, NewUserError(ErrCodeConfigInvalid, fmt.Sprintf("unsupported configuration format %q", filepath.Ext(path))).
			WithContext(path).
			WithSuggestion("Use a .yaml, .yml or .toml file.")
	}

	return cfg, nil
}
