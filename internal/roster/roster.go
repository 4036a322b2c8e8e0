// Package roster decodes staff roster files for bulk import.
//
// A roster lists staff under a top-level "staff" key:
//
//	staff:
//	  - name: Jordan Lee
//	    email: jordan@example.com
//	    title: Support Lead
//	    department: support
//	    targets:
//	      tickets_closed: "40"
//
// The TOML form uses [[staff]] tables with the same keys.
package roster

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/example/pulse/internal/ports/primary"
)

// Format is a roster encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Entry is one staff member in a roster file.
type Entry struct {
	Name       string            `yaml:"name" toml:"name"`
	Email      string            `yaml:"email" toml:"email"`
	Title      string            `yaml:"title" toml:"title"`
	Department string            `yaml:"department" toml:"department"`
	Targets    map[string]string `yaml:"targets" toml:"targets"`
}

type document struct {
	Staff []Entry `yaml:"staff" toml:"staff"`
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unsupported roster extension %q (want .yaml, .yml or .toml)", filepath.Ext(path))
}

// Decode reads a roster in the given format.
func Decode(r io.Reader, format Format) ([]primary.CreateStaffRequest, error) {
	var doc document
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to decode yaml roster: %w", err)
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode toml roster: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported roster format %q", format)
	}

	reqs := make([]primary.CreateStaffRequest, 0, len(doc.Staff))
	for i, e := range doc.Staff {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("roster entry %d: name is required", i+1)
		}
		reqs = append(reqs, primary.CreateStaffRequest{
			Name:       strings.TrimSpace(e.Name),
			Email:      strings.TrimSpace(e.Email),
			Title:      e.Title,
			Department: e.Department,
			Targets:    e.Targets,
		})
	}
	return reqs, nil
}

// Load reads the roster file at path.
func Load(path string) ([]primary.CreateStaffRequest, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster: %w", err)
	}
	defer f.Close()

	return Decode(f, format)
}
