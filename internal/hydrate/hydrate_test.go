package hydrate

import (
	"errors"
	"strings"
	"testing"
)

type trainer struct {
	Optimizer string    `json:"optimizer"`
	Epochs    int       `json:"epochs"`
	Layers    []int     `json:"layers"`
	Model     modelSpec `json:"model"`
}

type modelSpec struct {
	Size    string  `json:"size"`
	Dropout float64 `json:"dropout"`
}

func TestDecoderDecodesNestedResult(t *testing.T) {
	result := map[string]any{
		"optimizer": "adam",
		"epochs":    10,
		"layers":    []any{64, 32},
		"model":     map[string]any{"size": "small", "dropout": 0.1},
	}

	got, err := NewDecoder[trainer]().Decode(Context{Config: "train"}, result)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if got.Optimizer != "adam" || got.Epochs != 10 || len(got.Layers) != 2 || got.Layers[1] != 32 {
		t.Fatalf("unexpected decoded value: %#v", got)
	}
	if got.Model.Size != "small" || got.Model.Dropout != 0.1 {
		t.Fatalf("unexpected nested value: %#v", got.Model)
	}
}

func TestDecoderHooksRunInOrder(t *testing.T) {
	result := map[string]any{"optimizer": "adam"}
	pre := func(_ Context, payload map[string]any) (map[string]any, error) {
		payload["optimizer"] = strings.ToUpper(payload["optimizer"].(string))
		return payload, nil
	}
	post := func(ctx Context, out *trainer) error {
		if ctx.Config != "train" {
			t.Fatalf("expected context config train, got %q", ctx.Config)
		}
		out.Epochs = 1
		return nil
	}

	got, err := NewDecoder(WithPreHook[trainer](pre), WithPostHook[trainer](post)).Decode(Context{Config: "train"}, result)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if got.Optimizer != "ADAM" || got.Epochs != 1 {
		t.Fatalf("expected hooks applied, got %#v", got)
	}
	if result["optimizer"] != "adam" {
		t.Fatalf("expected input untouched, got %v", result["optimizer"])
	}
}

func TestDecoderErrors(t *testing.T) {
	t.Run("nil result", func(t *testing.T) {
		if _, err := NewDecoder[trainer]().Decode(Context{Config: "train"}, nil); err == nil {
			t.Fatalf("expected error for nil result")
		}
	})

	t.Run("unknown fields", func(t *testing.T) {
		_, err := NewDecoder(WithDisallowUnknownFields[trainer]()).Decode(Context{Config: "train"}, map[string]any{"seed": 1})
		if err == nil || !strings.Contains(err.Error(), "seed") {
			t.Fatalf("expected unknown field error, got %v", err)
		}
	})

	t.Run("post hook", func(t *testing.T) {
		sentinel := errors.New("invalid")
		post := func(Context, *trainer) error { return sentinel }
		_, err := NewDecoder(WithPostHook[trainer](post)).Decode(Context{Config: "train"}, map[string]any{})
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected wrapped post-hook error, got %v", err)
		}
	})
}
