// Package inputs decodes resolution inputs from YAML or JSON documents and
// layers several documents into one request.
package inputs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-hparams"
	"github.com/goliatone/go-hparams/internal/layering"
	"gopkg.in/yaml.v3"
)

// Document is the serialized form of a resolution request.
type Document struct {
	FinalVars  []string       `json:"final_vars,omitempty" yaml:"final_vars,omitempty"`
	Selections map[string]any `json:"selections,omitempty" yaml:"selections,omitempty"`
	Overrides  map[string]any `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// Request converts the document into an hparams.Request sharing no state
// with d.
func (d Document) Request() hparams.Request {
	return hparams.Request{
		FinalVars:  append([]string{}, d.FinalVars...),
		Selections: layering.Clone(d.Selections),
		Overrides:  layering.Clone(d.Overrides),
	}
}

// DecodeYAML reads one YAML document.
func DecodeYAML(r io.Reader) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return Document{}, nil
		}
		return Document{}, fmt.Errorf("inputs: decode yaml: %w", err)
	}
	return doc.normalized(), nil
}

// DecodeJSON reads one JSON document. Integral numbers decode as int64 and
// the rest as float64.
func DecodeJSON(r io.Reader) (Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return Document{}, nil
		}
		return Document{}, fmt.Errorf("inputs: decode json: %w", err)
	}
	return doc.normalized(), nil
}

// Load reads a document from path, picking the decoder from the extension.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("inputs: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return DecodeJSON(bytes.NewReader(data))
	case ".yaml", ".yml":
		return DecodeYAML(bytes.NewReader(data))
	default:
		return Document{}, fmt.Errorf("inputs: unsupported document extension %q", filepath.Ext(path))
	}
}

// Merge layers documents ordered from strongest to weakest. Selections and
// overrides are merged key by key, nested mappings recursively. FinalVars
// come from the strongest document that sets any.
func Merge(docs ...Document) Document {
	selections := make([]map[string]any, 0, len(docs))
	overrides := make([]map[string]any, 0, len(docs))
	var finalVars []string
	for _, doc := range docs {
		selections = append(selections, doc.Selections)
		overrides = append(overrides, doc.Overrides)
		if finalVars == nil && len(doc.FinalVars) > 0 {
			finalVars = append([]string{}, doc.FinalVars...)
		}
	}
	return Document{
		FinalVars:  finalVars,
		Selections: layering.MergeMaps(selections...),
		Overrides:  layering.MergeMaps(overrides...),
	}
}

func (d Document) normalized() Document {
	d.Selections = normalizeMap(d.Selections)
	d.Overrides = normalizeMap(d.Overrides)
	return d
}

func normalizeMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = normalizeValue(value)
	}
	return out
}

// normalizeValue rewrites decoder specific shapes: json.Number becomes int64
// or float64 and YAML maps with non-string keys are re-keyed by their string
// form.
func normalizeValue(value any) any {
	switch typed := value.(type) {
	case json.Number:
		if i, err := typed.Int64(); err == nil {
			return i
		}
		if f, err := typed.Float64(); err == nil {
			return f
		}
		return typed.String()
	case map[string]any:
		return normalizeMap(typed)
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprint(key)] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return value
	}
}
