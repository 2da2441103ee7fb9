package mapping

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a mapping file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// String returns the conventional extension of the format, without the dot.
func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}

	return "json"
}

// ErrUnknownFormat is returned by ParseFormat for anything but json or yaml.
var ErrUnknownFormat = errors.New("unknown mapping format")

// ParseFormat accepts "json", "yaml" and "yml", in any case. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return FormatJSON, fmt.Errorf("%w: %q (want json or yaml)", ErrUnknownFormat, s)
	}
}

// FormatOf picks the format from the file extension. Anything but .yaml or .yml is JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadFile loads and parses a mapping file from the given path.
func LoadFile(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	m, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping file %s: %w", path, err)
	}

	return m, nil
}

// Parse parses data in the given format.
func Parse(data []byte, format Format) (*Mapping, error) {
	m := &Mapping{}

	var err error
	if format == FormatYAML {
		err = yaml.Unmarshal(data, m)
	} else {
		err = json.Unmarshal(data, m)
	}

	if err != nil {
		return nil, err
	}

	return m, nil
}

// Marshal serializes m in the given format.
func Marshal(m *Mapping, format Format) ([]byte, error) {
	if format == FormatYAML {
		return yaml.Marshal(m)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(data, '\n'), nil
}

// WriteFile writes m to path, creating missing parent directories.
func WriteFile(m *Mapping, path string) error {
	data, err := Marshal(m, FormatOf(path))
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write mapping file %s: %w", path, err)
	}

	return nil
}
