package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads an action document from a JSON or YAML file into a generic
// tree. The extension picks the decoder; unknown extensions are sniffed.
func LoadFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open action: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(bytes.NewReader(data))
	case ".yaml", ".yml":
		return LoadYAML(bytes.NewReader(data))
	}
	return Load(bytes.NewReader(data))
}

// Load decodes JSON when the first non-space byte opens an object or array,
// and YAML otherwise.
func Load(r io.Reader) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read action: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return LoadJSON(bytes.NewReader(data))
	}
	return LoadYAML(bytes.NewReader(data))
}

// LoadJSON decodes one JSON value. Numbers are kept as json.Number so large
// integer constants survive unchanged.
func LoadJSON(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode json: trailing data after document")
	}
	return v, nil
}

// LoadYAML decodes one YAML document into the same tree shape JSON produces.
func LoadYAML(r io.Reader) (any, error) {
	var v any
	if err := yaml.NewDecoder(r).Decode(&v); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return normalize(v)
}

// normalize converts YAML mappings to map[string]any.
func normalize(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			t[k] = n
		}
		return t, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("decode yaml: non-string key %v", k)
			}
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[ks] = n
		}
		return out, nil
	case []any:
		for i, e := range t {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			t[i] = n
		}
		return t, nil
	}
	return v, nil
}
