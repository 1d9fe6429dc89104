package hparams

import "errors"

// SelectOption configures SelectCall and MultiSelectCall construction.
type SelectOption func(*selectConfig)

type selectConfig struct {
	def              any
	hasDefault       bool
	disableOverrides bool
}

// WithDefault sets the default option key. MultiSelectCall expects a sequence
// of keys. A nil value means no default.
func WithDefault(value any) SelectOption {
	return func(cfg *selectConfig) {
		cfg.def = value
		cfg.hasDefault = value != nil
	}
}

// WithOverridesDisabled rejects any override addressed to the parameter.
func WithOverridesDisabled() SelectOption {
	return func(cfg *selectConfig) {
		cfg.disableOverrides = true
	}
}

func applySelectOptions(opts []SelectOption) selectConfig {
	cfg := selectConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// SelectCall resolves a single choice from an OptionTable.
type SelectCall struct {
	baseCall
	options          OptionTable
	def              any
	hasDefault       bool
	disableOverrides bool
}

// NewSelect builds a single-choice parameter. options is a sequence or map
// accepted by NormalizeOptions.
func NewSelect(name string, options any, opts ...SelectOption) (*SelectCall, error) {
	base, err := newBaseCall(KindSelect, name)
	if err != nil {
		return nil, err
	}
	table, err := NormalizeOptions(name, options)
	if err != nil {
		return nil, withKind(err, KindSelect)
	}
	cfg := applySelectOptions(opts)
	call := &SelectCall{
		baseCall:         base,
		options:          table,
		def:              cfg.def,
		hasDefault:       cfg.hasDefault,
		disableOverrides: cfg.disableOverrides,
	}
	if call.hasDefault {
		if _, isSeq := sequenceOf(call.def); isSeq {
			return nil, configError(KindSelect, name, "default must not be a sequence").withValue(call.def)
		}
		if !table.Has(call.def) {
			return nil, configError(KindSelect, name, "default %v must be one of the options", call.def).
				withValue(call.def).withValid(table.Keys())
		}
	}
	return call, nil
}

// Options returns the normalized option table.
func (c *SelectCall) Options() OptionTable { return c.options.clone() }

// Default returns the default key and whether one was set.
func (c *SelectCall) Default() (any, bool) { return c.def, c.hasDefault }

// Execute resolves the parameter with overrides > selections > default.
func (c *SelectCall) Execute(selections, overrides map[string]any) (any, error) {
	value, _, err := c.resolve(selections, overrides)
	return value, err
}

func (c *SelectCall) resolve(selections, overrides map[string]any) (any, Source, error) {
	if override, ok := overrides[c.name]; ok {
		if c.disableOverrides {
			return nil, SourceOverride, configError(c.kind, c.name, "overrides are disabled for this parameter").withValue(override)
		}
		if items, isSeq := sequenceOf(override); isSeq {
			for _, item := range items {
				if c.options.Has(item) {
					return nil, SourceOverride, inputError(c.kind, c.name, "override %v is a sequence of options; a single value is expected", override).
						withValue(override).withValid(c.options.Keys())
				}
			}
		}
		if mapped, ok := c.options.Lookup(override); ok {
			return mapped, SourceOverride, nil
		}
		return override, SourceOverride, nil
	}

	if selected, ok := selections[c.name]; ok {
		if _, isSeq := sequenceOf(selected); isSeq {
			return nil, SourceSelection, inputError(c.kind, c.name, "selection must not be a sequence").withValue(selected)
		}
		mapped, ok := c.options.Lookup(selected)
		if !ok {
			return nil, SourceSelection, inputError(c.kind, c.name, "invalid selection %v, not in options", selected).
				withValue(selected).withValid(c.options.Keys())
		}
		return mapped, SourceSelection, nil
	}

	if c.hasDefault {
		mapped, _ := c.options.Lookup(c.def)
		return mapped, SourceDefault, nil
	}
	return nil, SourceUnknown, inputError(c.kind, c.name, "no overrides, selections, or default provided")
}

// MultiSelectCall resolves a sequence of choices from an OptionTable.
type MultiSelectCall struct {
	baseCall
	options          OptionTable
	def              []any
	hasDefault       bool
	disableOverrides bool
}

// NewMultiSelect builds a multi-choice parameter. The default, when given,
// must be a sequence whose every element is an option key.
func NewMultiSelect(name string, options any, opts ...SelectOption) (*MultiSelectCall, error) {
	base, err := newBaseCall(KindMultiSelect, name)
	if err != nil {
		return nil, err
	}
	table, err := NormalizeOptions(name, options)
	if err != nil {
		return nil, withKind(err, KindMultiSelect)
	}
	cfg := applySelectOptions(opts)
	call := &MultiSelectCall{
		baseCall:         base,
		options:          table,
		hasDefault:       cfg.hasDefault,
		disableOverrides: cfg.disableOverrides,
	}
	if cfg.hasDefault {
		items, isSeq := sequenceOf(cfg.def)
		if !isSeq {
			return nil, configError(KindMultiSelect, name, "default must be a sequence").withValue(cfg.def)
		}
		if invalid := missingKeys(table, items); len(invalid) > 0 {
			return nil, configError(KindMultiSelect, name, "default values %v must be options", invalid).
				withValue(invalid).withValid(table.Keys())
		}
		call.def = items
	}
	return call, nil
}

// Options returns the normalized option table.
func (c *MultiSelectCall) Options() OptionTable { return c.options.clone() }

// Default returns a copy of the default keys and whether they were set.
func (c *MultiSelectCall) Default() ([]any, bool) {
	if !c.hasDefault {
		return nil, false
	}
	return append([]any{}, c.def...), true
}

// Execute resolves the parameter to a []any with overrides > selections >
// default. Override elements outside the options pass through unchanged;
// selection elements must all be declared keys.
func (c *MultiSelectCall) Execute(selections, overrides map[string]any) (any, error) {
	value, _, err := c.resolve(selections, overrides)
	return value, err
}

func (c *MultiSelectCall) resolve(selections, overrides map[string]any) (any, Source, error) {
	if override, ok := overrides[c.name]; ok {
		if c.disableOverrides {
			return nil, SourceOverride, configError(c.kind, c.name, "overrides are disabled for this parameter").withValue(override)
		}
		items, isSeq := sequenceOf(override)
		if !isSeq {
			return nil, SourceOverride, inputError(c.kind, c.name, "override must be a sequence").withValue(override)
		}
		out := make([]any, len(items))
		for i, item := range items {
			if mapped, ok := c.options.Lookup(item); ok {
				out[i] = mapped
				continue
			}
			out[i] = item
		}
		return out, SourceOverride, nil
	}

	if selected, ok := selections[c.name]; ok {
		items, isSeq := sequenceOf(selected)
		if !isSeq {
			return nil, SourceSelection, inputError(c.kind, c.name, "selection must be a sequence").withValue(selected)
		}
		if invalid := missingKeys(c.options, items); len(invalid) > 0 {
			return nil, SourceSelection, inputError(c.kind, c.name, "invalid selections %v, not in options", invalid).
				withValue(invalid).withValid(c.options.Keys())
		}
		return c.mapKeys(items), SourceSelection, nil
	}

	if c.hasDefault {
		return c.mapKeys(c.def), SourceDefault, nil
	}
	return nil, SourceUnknown, inputError(c.kind, c.name, "no overrides, selections, or default provided")
}

func (c *MultiSelectCall) mapKeys(keys []any) []any {
	out := make([]any, len(keys))
	for i, key := range keys {
		out[i], _ = c.options.Lookup(key)
	}
	return out
}

func missingKeys(table OptionTable, items []any) []any {
	var missing []any
	for _, item := range items {
		if !table.Has(item) {
			missing = append(missing, item)
		}
	}
	return missing
}

func withKind(err error, kind CallKind) error {
	var pe *ParamError
	if errors.As(err, &pe) && pe.Kind == "" {
		pe.Kind = kind
	}
	return err
}
