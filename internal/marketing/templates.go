package marketing

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultTemplatesYAML []byte

// Template is a named, ready-to-run form preset.
type Template struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	ContentType ContentType `json:"contentType" yaml:"contentType"`
	Inputs      Inputs      `json:"inputs" yaml:"inputs"`
}

type Library struct {
	templates []Template
}

// rawTemplate defers decoding of inputs so they land on top of DefaultInputs.
type rawTemplate struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	ContentType string    `yaml:"contentType"`
	Inputs      yaml.Node `yaml:"inputs"`
}

func ParseLibrary(data []byte) (*Library, error) {
	var raw []rawTemplate
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	lib := &Library{templates: make([]Template, 0, len(raw))}
	seen := make(map[string]struct{}, len(raw))
	for i, rt := range raw {
		name := strings.TrimSpace(rt.Name)
		if name == "" {
			return nil, fmt.Errorf("template #%d: name is required", i+1)
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("template %q: duplicate name", name)
		}
		seen[key] = struct{}{}

		ct, ok := ParseContentType(rt.ContentType)
		if !ok {
			return nil, fmt.Errorf("template %q: %w", name, &ConfigError{ContentType: ContentType(rt.ContentType)})
		}

		inputs := DefaultInputs()
		if rt.Inputs.Kind != 0 {
			if err := rt.Inputs.Decode(&inputs); err != nil {
				return nil, fmt.Errorf("template %q inputs: %w", name, err)
			}
		}

		lib.templates = append(lib.templates, Template{
			Name:        name,
			Description: strings.TrimSpace(rt.Description),
			ContentType: ct,
			Inputs:      inputs,
		})
	}
	return lib, nil
}

// LoadLibrary reads templates from path, or the embedded set when path is empty.
func LoadLibrary(path string) (*Library, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return ParseLibrary(defaultTemplatesYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}
	return ParseLibrary(data)
}

func (l *Library) All() []Template {
	if l == nil {
		return nil
	}
	return append([]Template(nil), l.templates...)
}

func (l *Library) Lookup(name string) (Template, bool) {
	if l == nil {
		return Template{}, false
	}
	name = strings.TrimSpace(name)
	for _, t := range l.templates {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Template{}, false
}
