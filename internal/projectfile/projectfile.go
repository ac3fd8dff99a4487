// Package projectfile reads activity lists from YAML or JSON files.
//
// Both formats share one shape:
//
//	name: launch
//	activities:
//	  - activity: A
//	    predecessor: none
//	    et: 5
//
// A JSON file may also be a bare array of activities.
package projectfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/meikuraledutech/cpm"
)

// Format identifies a file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// File is a decoded project file.
type File struct {
	Name       string      `json:"name" yaml:"name"`
	Activities []cpm.Input `json:"activities" yaml:"activities"`
}

// FormatFor picks the format from the file extension. Unknown extensions are read as YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Load reads and decodes path. An unnamed project takes the file's base name.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("projectfile: %w", err)
	}
	f, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("projectfile: %s: %w", path, err)
	}
	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return f, nil
}

// Parse decodes data in the given format.
func Parse(data []byte, format Format) (*File, error) {
	var f File
	switch format {
	case FormatJSON:
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &f.Activities); err != nil {
				return nil, err
			}
			return &f, nil
		}
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	return &f, nil
}

// Project converts the file into a project with validated activities.
func (f *File) Project() (*cpm.Project, error) {
	activities, err := cpm.ParseInputs(f.Activities)
	if err != nil {
		return nil, err
	}
	return &cpm.Project{Name: f.Name, Activities: activities}, nil
}
