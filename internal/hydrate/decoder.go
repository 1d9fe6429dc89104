package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context names the resolution a result came from.
type Context struct {
	Config string
	RunID  string
}

// PreHook lets callers normalise a resolved result before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers adjust or validate the decoded struct.
type PostHook[T any] func(Context, *T) error

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts resolved parameter maps into typed structs.
type Decoder[T any] struct {
	preHooks     []PreHook
	postHooks    []PostHook[T]
	configureDec []func(*json.Decoder)
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithDisallowUnknownFields rejects result keys with no matching field.
func WithDisallowUnknownFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.DisallowUnknownFields()
		})
	}
}

// NewDecoder builds a Decoder from opts.
func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts result into T applying the configured hooks. result is
// never modified.
func (d *Decoder[T]) Decode(ctx Context, result map[string]any) (T, error) {
	var zero T
	if result == nil {
		return zero, fmt.Errorf("hydrate: result is nil for config %q", ctx.Config)
	}

	buffer, err := json.Marshal(result)
	if err != nil {
		return zero, fmt.Errorf("hydrate: marshal result for config %q: %w", ctx.Config, err)
	}

	if len(d.preHooks) > 0 {
		var current map[string]any
		if err := json.Unmarshal(buffer, &current); err != nil {
			return zero, fmt.Errorf("hydrate: clone result for config %q: %w", ctx.Config, err)
		}
		for _, hook := range d.preHooks {
			if hook == nil {
				continue
			}
			next, err := hook(ctx, current)
			if err != nil {
				return zero, fmt.Errorf("hydrate: pre-hook for config %q failed: %w", ctx.Config, err)
			}
			if next != nil {
				current = next
			}
		}
		if buffer, err = json.Marshal(current); err != nil {
			return zero, fmt.Errorf("hydrate: marshal result for config %q: %w", ctx.Config, err)
		}
	}

	var out T
	decoder := json.NewDecoder(bytes.NewReader(buffer))
	for _, configure := range d.configureDec {
		configure(decoder)
	}
	if err := decoder.Decode(&out); err != nil {
		return zero, fmt.Errorf("hydrate: decode config %q: %w", ctx.Config, err)
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &out); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for config %q failed: %w", ctx.Config, err)
		}
	}
	return out, nil
}
