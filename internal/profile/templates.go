package profile

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates/*.yaml
var templateFS embed.FS

// ErrUnknownTemplate is returned when no embedded template has the name.
var ErrUnknownTemplate = errors.New("unknown template")

// Template is a named preset that is merged into the current state with the
// LoadTemplate action.
type Template struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Patch       Patch  `json:"profile"`
}

type templateFile struct {
	Description string `yaml:"description"`
	Profile     Patch  `yaml:"profile"`
}

// Templates returns the embedded presets sorted by name.
func Templates() ([]Template, error) {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("reading templates: %w", err)
	}
	out := make([]Template, 0, len(entries))
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		t, err := parseTemplate(name, "templates/"+e.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// TemplateByName returns the embedded preset called name.
func TemplateByName(name string) (Template, error) {
	if name == "" || strings.ContainsAny(name, "/\\.") {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	t, err := parseTemplate(name, "templates/"+name+".yaml")
	if errors.Is(err, os.ErrNotExist) {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	return t, err
}

func parseTemplate(name, file string) (Template, error) {
	data, err := templateFS.ReadFile(file)
	if err != nil {
		return Template{}, err
	}
	var tf templateFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return Template{}, fmt.Errorf("parsing template %s: %w", name, err)
	}
	return Template{Name: name, Description: tf.Description, Patch: tf.Profile}, nil
}

// Decode parses a YAML or JSON profile document. Fields the document omits
// keep their initial values, so a file with no sections gets the default
// plan.
func Decode(data []byte) (State, error) {
	var p Patch
	if err := yaml.Unmarshal(data, &p); err != nil {
		return State{}, fmt.Errorf("decoding profile: %w", err)
	}
	return Reduce(Initial(), UpdateFields{Patch: p}), nil
}

// LoadFile reads and decodes a profile document from disk.
func LoadFile(name string) (State, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return State{}, fmt.Errorf("reading profile: %w", err)
	}
	return Decode(data)
}
