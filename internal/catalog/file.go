package catalog

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Load reads a catalog definition from a .yaml, .yml or .toml file and validates it.
func Load(path string, loc *time.Location) (*Catalog, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator's config
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	def, err := Decode(filepath.Ext(path), data)
	if err != nil {
		return nil, err
	}

	return New(def, loc)
}

// Decode parses a definition; ext selects the format.
func Decode(ext string, data []byte) (Definition, error) {
	var def Definition

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return Definition{}, &ConfigError{Field: "file", Reason: fmt.Sprintf("failed to parse YAML: %v", err)}
		}
	case ".toml":
		md, err := toml.Decode(string(data), &def)
		if err != nil {
			return Definition{}, &ConfigError{Field: "file", Reason: fmt.Sprintf("failed to parse TOML: %v", err)}
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Definition{}, &ConfigError{Field: undecoded[0].String(), Reason: "unknown key"}
		}
	default:
		return Definition{}, &ConfigError{Field: "file", Reason: fmt.Sprintf("unsupported catalog format %q", ext)}
	}

	return def, nil
}
