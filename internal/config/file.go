package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// sectionFile is a two-level YAML document. The config backend maps
// "github.username" to github: {username: ...}; the secret store maps
// service and account the same way. The file is re-read on every access
// so edits made by hand are picked up without a restart.
type sectionFile struct {
	path string
	perm os.FileMode
}

type sections map[string]map[string]any

func (f sectionFile) read() (sections, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return sections{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}
	doc := sections{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", f.path, err)
	}
	if doc == nil {
		doc = sections{}
	}
	return doc, nil
}

func (f sectionFile) get(section, key string) (any, bool, error) {
	doc, err := f.read()
	if err != nil {
		return nil, false, err
	}
	v, ok := doc[section][key]
	return v, ok, nil
}

func (f sectionFile) update(fn func(doc sections)) error {
	doc, err := f.read()
	if err != nil {
		return err
	}
	fn(doc)
	for name, sec := range doc {
		if len(sec) == 0 {
			delete(doc, name)
		}
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(f.path), err)
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, out, f.perm)
}

func (f sectionFile) set(section, key string, v any) error {
	return f.update(func(doc sections) {
		if doc[section] == nil {
			doc[section] = map[string]any{}
		}
		doc[section][key] = v
	})
}

func (f sectionFile) remove(section, key string) error {
	return f.update(func(doc sections) { delete(doc[section], key) })
}

// fileBackend is the ConfigBackend used outside macOS.
type fileBackend struct {
	file sectionFile
}

func newFileBackend(path string) *fileBackend {
	return &fileBackend{file: sectionFile{path: path, perm: 0o600}}
}

func splitKey(key string) (section, name string) {
	section, name, _ = strings.Cut(key, ".")
	return section, name
}

func (b *fileBackend) GetString(key string) (string, bool, error) {
	v, ok, err := b.file.get(splitKey(key))
	if !ok || err != nil {
		return "", ok, err
	}
	if s, isString := v.(string); isString {
		return s, true, nil
	}
	return fmt.Sprint(v), true, nil
}

func (b *fileBackend) GetInt(key string) (int, bool, error) {
	v, ok, err := b.file.get(splitKey(key))
	if !ok || err != nil {
		return 0, ok, err
	}
	switch val := v.(type) {
	case int:
		return val, true, nil
	case float64:
		if val < math.MinInt || val > math.MaxInt || val != math.Trunc(val) {
			return 0, true, fmt.Errorf("%s: %v is not an integer", key, val)
		}
		return int(val), true, nil
	case string:
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, true, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return i, true, nil
	default:
		return 0, true, fmt.Errorf("%s: unexpected %T", key, v)
	}
}

func (b *fileBackend) SetString(key, val string) error {
	section, name := splitKey(key)
	return b.file.set(section, name, val)
}

func (b *fileBackend) SetInt(key string, val int) error {
	section, name := splitKey(key)
	return b.file.set(section, name, val)
}

func (b *fileBackend) Delete(key string) error {
	return b.file.remove(splitKey(key))
}
