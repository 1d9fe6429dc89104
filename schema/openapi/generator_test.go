package openapi

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/goliatone/go-hparams"
)

func buildConfig(t *testing.T) *hparams.Config {
	t.Helper()
	size, err := hparams.NewSelect("size", []string{"small", "large"}, hparams.WithDefault("small"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	depth, err := hparams.NewIntInput("depth", 4, hparams.WithMin(1), hparams.WithMax(64))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tags, err := hparams.NewMultiText("tags", []string{"baseline"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	model := hparams.MustConfig("model", []hparams.Node{hparams.Param(size), hparams.Param(depth)})
	return hparams.MustConfig("train_run", []hparams.Node{
		hparams.NestConfig("model", model),
		hparams.Param(tags),
	})
}

func property(t *testing.T, schema map[string]any, path ...string) map[string]any {
	t.Helper()
	node := schema
	for _, key := range path {
		props, ok := node["properties"].(map[string]any)
		if !ok {
			t.Fatalf("expected properties at %v, got %#v", path, node)
		}
		next, ok := props[key].(map[string]any)
		if !ok {
			t.Fatalf("missing property %q in %#v", key, props)
		}
		node = next
	}
	return node
}

func TestGenerateSchemas(t *testing.T) {
	doc := Generate(buildConfig(t), Info{})

	if doc["openapi"] != "3.1.0" {
		t.Fatalf("expected openapi 3.1.0, got %v", doc["openapi"])
	}
	info := doc["info"].(map[string]any)
	if info["title"] != "train_run" {
		t.Fatalf("expected default title, got %v", info["title"])
	}
	schemas := doc["components"].(map[string]any)["schemas"].(map[string]any)

	selections := schemas["TrainRunSelections"].(map[string]any)
	size := property(t, selections, "model", "size")
	if !reflect.DeepEqual(size["enum"], []any{"small", "large"}) || size["default"] != "small" {
		t.Fatalf("unexpected size selection schema: %#v", size)
	}
	if _, ok := selections["properties"].(map[string]any)["tags"]; ok {
		t.Fatalf("expected value parameters excluded from selections")
	}

	overrides := schemas["TrainRunOverrides"].(map[string]any)
	depth := property(t, overrides, "model", "depth")
	if depth["type"] != "integer" || depth["minimum"] != 1.0 || depth["maximum"] != 64.0 || depth["default"] != 4 {
		t.Fatalf("unexpected depth override schema: %#v", depth)
	}
	tags := property(t, overrides, "tags")
	if tags["type"] != "array" || tags["items"].(map[string]any)["type"] != "string" {
		t.Fatalf("unexpected tags override schema: %#v", tags)
	}

	if _, err := json.Marshal(doc); err != nil {
		t.Fatalf("expected document to marshal, got %v", err)
	}
}
