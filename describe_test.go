package hparams

import (
	"reflect"
	"testing"
)

func TestConfigDescribe(t *testing.T) {
	data := Nest("data", func(Request) (map[string]any, error) { return map[string]any{}, nil })
	feats := mustMultiSelect(t, "feats", []string{"x", "y"})
	base := trainConfig(t)
	cfg, err := NewConfig("root", []Node{
		NestConfig("train", base),
		Param(feats),
		data,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := cfg.Describe()
	paths := make([]string, len(got))
	for i, desc := range got {
		paths[i] = desc.Path
	}
	want := []string{"data", "feats", "train.epochs", "train.model.depth", "train.model.size", "train.optimizer", "train.steps"}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("expected paths %v, got %v", want, paths)
	}

	byPath := map[string]ParamDescriptor{}
	for _, desc := range got {
		byPath[desc.Path] = desc
	}

	optimizer := byPath["train.optimizer"]
	if optimizer.Kind != KindSelect || !optimizer.HasDefault || optimizer.Default != "adam" {
		t.Fatalf("unexpected optimizer descriptor: %#v", optimizer)
	}
	if !reflect.DeepEqual(optimizer.Options, []any{"adam", "sgd"}) {
		t.Fatalf("expected sorted option keys, got %v", optimizer.Options)
	}

	depth := byPath["train.model.depth"]
	if depth.Min == nil || *depth.Min != 1 || depth.Max == nil || *depth.Max != 64 || depth.Default != 4 {
		t.Fatalf("unexpected depth descriptor: %#v", depth)
	}
	if byPath["train.steps"].Expression != "epochs * model.depth" {
		t.Fatalf("expected derive expression, got %#v", byPath["train.steps"])
	}
	if byPath["feats"].HasDefault || byPath["data"].Kind != KindPropagate {
		t.Fatalf("unexpected descriptors: %#v %#v", byPath["feats"], byPath["data"])
	}
}
