package hparams

import (
	"github.com/go-playground/validator/v10"
	"github.com/goliatone/go-hparams/internal/hydrate"
)

// DecodeOption configures Decode.
type DecodeOption func(*decodeOptions)

type decodeOptions struct {
	config   string
	strict   bool
	validate *validator.Validate
}

// WithValidation runs go-playground/validator struct validation on the
// decoded value. Tags follow the `validate:"..."` convention.
func WithValidation() DecodeOption {
	return func(opts *decodeOptions) {
		opts.validate = validator.New(validator.WithRequiredStructEnabled())
	}
}

// WithValidator validates with a caller-configured validator instance.
func WithValidator(v *validator.Validate) DecodeOption {
	return func(opts *decodeOptions) {
		opts.validate = v
	}
}

// WithStrictDecode rejects result keys that T has no field for.
func WithStrictDecode() DecodeOption {
	return func(opts *decodeOptions) {
		opts.strict = true
	}
}

// WithDecodeConfig names the config in decode error messages.
func WithDecodeConfig(name string) DecodeOption {
	return func(opts *decodeOptions) {
		opts.config = name
	}
}

// Decode binds a resolved result to T through its json tags. Nested results
// decode into nested structs.
func Decode[T any](result map[string]any, opts ...DecodeOption) (T, error) {
	var cfg decodeOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	var decoderOpts []hydrate.DecoderOption[T]
	if cfg.strict {
		decoderOpts = append(decoderOpts, hydrate.WithDisallowUnknownFields[T]())
	}
	if cfg.validate != nil {
		decoderOpts = append(decoderOpts, hydrate.WithPostHook[T](func(_ hydrate.Context, out *T) error {
			return cfg.validate.Struct(out)
		}))
	}

	out, err := hydrate.NewDecoder(decoderOpts...).Decode(hydrate.Context{Config: cfg.config}, result)
	if err != nil {
		var zero T
		return zero, inputError(KindConfig, cfg.config, "decode %T", zero).wrap(err)
	}
	return out, nil
}
