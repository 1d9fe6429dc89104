// Package openapi renders the inputs a Config accepts as an OpenAPI 3.1
// document, one schema each for selections and overrides.
package openapi

import (
	"strings"

	"github.com/goliatone/go-hparams"
)

const openAPIVersion = "3.1.0"

// Info is the document info block.
type Info struct {
	Title       string
	Version     string
	Description string
}

// Generate builds the document for cfg. Selection schemas restrict choice
// parameters to their option keys; override schemas accept any value for
// choice parameters and the declared type for value parameters. Nested
// configs become nested objects.
func Generate(cfg *hparams.Config, info Info) map[string]any {
	if info.Title == "" {
		info.Title = cfg.Name()
	}
	if info.Version == "" {
		info.Version = "1.0.0"
	}
	descriptors := cfg.Describe()

	infoBlock := map[string]any{"title": info.Title, "version": info.Version}
	if info.Description != "" {
		infoBlock["description"] = info.Description
	}
	prefix := componentName(cfg.Name())
	return map[string]any{
		"openapi": openAPIVersion,
		"info":    infoBlock,
		"paths":   map[string]any{},
		"components": map[string]any{
			"schemas": map[string]any{
				prefix + "Selections": build(descriptors, selectionSchema),
				prefix + "Overrides":  build(descriptors, overrideSchema),
			},
		},
	}
}

type schemaFunc func(hparams.ParamDescriptor) (map[string]any, bool)

// build nests dotted descriptor paths into object schemas.
func build(descriptors []hparams.ParamDescriptor, schemaFor schemaFunc) map[string]any {
	root := object()
	for _, desc := range descriptors {
		schema, ok := schemaFor(desc)
		if !ok {
			continue
		}
		segments := strings.Split(desc.Path, ".")
		node := root
		for _, segment := range segments[:len(segments)-1] {
			props := node["properties"].(map[string]any)
			child, ok := props[segment].(map[string]any)
			if !ok {
				child = object()
				props[segment] = child
			}
			node = child
		}
		node["properties"].(map[string]any)[segments[len(segments)-1]] = schema
	}
	return root
}

func object() map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           map[string]any{},
		"additionalProperties": false,
	}
}

func selectionSchema(desc hparams.ParamDescriptor) (map[string]any, bool) {
	switch desc.Kind {
	case hparams.KindSelect:
		return withDefault(map[string]any{"enum": desc.Options}, desc), true
	case hparams.KindMultiSelect:
		return withDefault(map[string]any{
			"type":  "array",
			"items": map[string]any{"enum": desc.Options},
		}, desc), true
	case hparams.KindPropagate:
		return map[string]any{"type": "object"}, true
	default:
		return nil, false
	}
}

func overrideSchema(desc hparams.ParamDescriptor) (map[string]any, bool) {
	switch desc.Kind {
	case hparams.KindSelect, hparams.KindDerive:
		return map[string]any{}, true
	case hparams.KindMultiSelect:
		return map[string]any{"type": "array"}, true
	case hparams.KindTextInput, hparams.KindBoolInput, hparams.KindNumberInput, hparams.KindIntInput:
		return withDefault(scalar(desc.Kind, desc), desc), true
	case hparams.KindMultiText, hparams.KindMultiBool, hparams.KindMultiNumber, hparams.KindMultiInt:
		return withDefault(map[string]any{
			"type":  "array",
			"items": scalar(desc.Kind, desc),
		}, desc), true
	case hparams.KindPropagate:
		return map[string]any{"type": "object"}, true
	default:
		return nil, false
	}
}

func scalar(kind hparams.CallKind, desc hparams.ParamDescriptor) map[string]any {
	schema := map[string]any{}
	switch kind {
	case hparams.KindTextInput, hparams.KindMultiText:
		schema["type"] = "string"
	case hparams.KindBoolInput, hparams.KindMultiBool:
		schema["type"] = "boolean"
	case hparams.KindNumberInput, hparams.KindMultiNumber:
		schema["type"] = "number"
	case hparams.KindIntInput, hparams.KindMultiInt:
		schema["type"] = "integer"
	}
	if desc.Min != nil {
		schema["minimum"] = *desc.Min
	}
	if desc.Max != nil {
		schema["maximum"] = *desc.Max
	}
	return schema
}

func withDefault(schema map[string]any, desc hparams.ParamDescriptor) map[string]any {
	if desc.HasDefault {
		schema["default"] = desc.Default
	}
	return schema
}

func componentName(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if r == '_' || r == '-' || r == '.' || r == ' ' {
			upper = true
			continue
		}
		if upper {
			b.WriteString(strings.ToUpper(string(r)))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
