// Package msgcat renders human-readable messages for error codes from an
// embedded YAML catalog, optionally overridden from a directory.
package msgcat

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed messages.en.yaml
var defaultFiles embed.FS

const defaultFile = "messages.en.yaml"

// Catalog holds flattened dot-keys mapped to template text
type Catalog struct {
	mu   sync.RWMutex
	data map[string]string
}

// New loads the embedded messages and then applies overrides from dir if set
func New(overrideDir string) (*Catalog, error) {
	c := &Catalog{data: make(map[string]string)}

	raw, err := fs.ReadFile(defaultFiles, defaultFile)
	if err != nil {
		return nil, fmt.Errorf("reading embedded messages: %w", err)
	}
	if err := c.applyYAML(raw); err != nil {
		return nil, fmt.Errorf("parsing embedded messages: %w", err)
	}

	if strings.TrimSpace(overrideDir) != "" {
		if err := c.applyDir(overrideDir); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Default returns the embedded catalog. It panics if the embedded file is
// malformed, which the package tests rule out.
func Default() *Catalog {
	c, err := New("")
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) applyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading message dir: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		if err := c.applyYAML(b); err != nil {
			return fmt.Errorf("parsing %s: %w", name, err)
		}
	}
	return nil
}

func (c *Catalog) applyYAML(b []byte) error {
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return err
	}
	flat := make(map[string]string)
	if err := flatten(m, "", flat); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range flat {
		c.data[k] = v
	}
	return nil
}

func flatten(src any, prefix string, out map[string]string) error {
	switch v := src.(type) {
	case map[string]any:
		for k, vv := range v {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if err := flatten(vv, key, out); err != nil {
				return err
			}
		}
		return nil
	case string:
		if prefix == "" {
			return errors.New("string value without key")
		}
		out[prefix] = v
		return nil
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported value at %s: %T", prefix, v)
	}
}

// Render executes the template stored under key. Missing keys, in the catalog
// or in data, are errors.
func (c *Catalog) Render(key string, data any) (string, error) {
	c.mu.RLock()
	tpl, ok := c.data[key]
	c.mu.RUnlock()
	if !ok || strings.TrimSpace(tpl) == "" {
		return "", fmt.Errorf("message not found: %s", key)
	}

	t, err := template.New(key).Option("missingkey=error").Parse(tpl)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Message renders the text for an error code. It tries errors.CODE.REASON,
// then errors.CODE.default, then errors.CODE, and returns fallback when none
// renders.
func (c *Catalog) Message(code, reason string, params map[string]any, fallback string) string {
	keys := make([]string, 0, 3)
	if reason != "" {
		keys = append(keys, "errors."+code+"."+reason)
	}
	keys = append(keys, "errors."+code+".default", "errors."+code)

	if params == nil {
		params = map[string]any{}
	}
	for _, key := range keys {
		if msg, err := c.Render(key, params); err == nil {
			return msg
		}
	}
	return fallback
}
