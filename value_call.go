package hparams

import "reflect"

// ValueType is the accepted element type of a value call.
type ValueType int

const (
	TypeText ValueType = iota + 1
	TypeBool
	TypeNumber
	TypeInt
)

func (t ValueType) String() string {
	switch t {
	case TypeText:
		return "string"
	case TypeBool:
		return "bool"
	case TypeNumber:
		return "int or float"
	case TypeInt:
		return "int"
	default:
		return "unknown"
	}
}

func (t ValueType) numeric() bool {
	return t == TypeNumber || t == TypeInt
}

// Accepts reports whether value matches t. Booleans are never numbers.
func (t ValueType) Accepts(value any) bool {
	if value == nil {
		return false
	}
	switch reflect.ValueOf(value).Kind() {
	case reflect.String:
		return t == TypeText
	case reflect.Bool:
		return t == TypeBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return t == TypeNumber || t == TypeInt
	case reflect.Float32, reflect.Float64:
		return t == TypeNumber
	default:
		return false
	}
}

// ValueOption configures numeric value calls.
type ValueOption func(*Bounds)

// WithMin sets the inclusive lower bound.
func WithMin(min float64) ValueOption {
	return func(b *Bounds) {
		b.Min = &min
	}
}

// WithMax sets the inclusive upper bound.
func WithMax(max float64) ValueOption {
	return func(b *Bounds) {
		b.Max = &max
	}
}

func buildBounds(kind CallKind, name string, valueType ValueType, opts []ValueOption) (Bounds, error) {
	var bounds Bounds
	for _, opt := range opts {
		if opt != nil {
			opt(&bounds)
		}
	}
	if bounds.IsZero() {
		return bounds, nil
	}
	if !valueType.numeric() {
		return Bounds{}, configError(kind, name, "bounds require a numeric value type, got %s", valueType)
	}
	if !bounds.consistent() {
		return Bounds{}, configError(kind, name, "min %v is greater than max %v", *bounds.Min, *bounds.Max)
	}
	return bounds, nil
}

// SingleValueCall is a raw typed leaf: no options and no selections, only a
// default and an optional override.
type SingleValueCall struct {
	baseCall
	valueType ValueType
	def       any
	bounds    Bounds
}

// NewSingleValue builds a single value call labelled kind. The default must
// match valueType and satisfy the bounds.
func NewSingleValue(kind CallKind, name string, valueType ValueType, def any, opts ...ValueOption) (*SingleValueCall, error) {
	base, err := newBaseCall(kind, name)
	if err != nil {
		return nil, err
	}
	bounds, err := buildBounds(kind, name, valueType, opts)
	if err != nil {
		return nil, err
	}
	if _, isSeq := sequenceOf(def); isSeq || !valueType.Accepts(def) {
		return nil, configError(kind, name, "default value must be of type %s", valueType).withValue(def)
	}
	if err := bounds.Validate(def); err != nil {
		return nil, configError(kind, name, "default out of bounds").withValue(def).wrap(err)
	}
	return &SingleValueCall{baseCall: base, valueType: valueType, def: def, bounds: bounds}, nil
}

// NewTextInput builds a string parameter.
func NewTextInput(name string, def string) (*SingleValueCall, error) {
	return NewSingleValue(KindTextInput, name, TypeText, def)
}

// NewBoolInput builds a boolean parameter.
func NewBoolInput(name string, def bool) (*SingleValueCall, error) {
	return NewSingleValue(KindBoolInput, name, TypeBool, def)
}

// NewNumberInput builds an int-or-float parameter.
func NewNumberInput(name string, def any, opts ...ValueOption) (*SingleValueCall, error) {
	return NewSingleValue(KindNumberInput, name, TypeNumber, def, opts...)
}

// NewIntInput builds an integer parameter.
func NewIntInput(name string, def int, opts ...ValueOption) (*SingleValueCall, error) {
	return NewSingleValue(KindIntInput, name, TypeInt, def, opts...)
}

// ValueType returns the accepted type.
func (c *SingleValueCall) ValueType() ValueType { return c.valueType }

// Default returns the default value.
func (c *SingleValueCall) Default() any { return c.def }

// Bounds returns the numeric bounds (zero when unbounded).
func (c *SingleValueCall) Bounds() Bounds { return c.bounds }

// Execute returns the override when present, else the default.
func (c *SingleValueCall) Execute(selections, overrides map[string]any) (any, error) {
	value, _, err := c.resolve(selections, overrides)
	return value, err
}

func (c *SingleValueCall) resolve(selections, overrides map[string]any) (any, Source, error) {
	if _, ok := selections[c.name]; ok {
		return nil, SourceSelection, selectionsUnsupported(c.kind, c.name)
	}
	value, source := c.def, SourceDefault
	if override, ok := overrides[c.name]; ok {
		if _, isSeq := sequenceOf(override); isSeq {
			return nil, SourceOverride, inputError(c.kind, c.name, "override must not be a sequence").withValue(override)
		}
		if !c.valueType.Accepts(override) {
			return nil, SourceOverride, inputError(c.kind, c.name, "override must be of type %s", c.valueType).withValue(override)
		}
		value, source = override, SourceOverride
	}
	if err := c.bounds.Validate(value); err != nil {
		return nil, source, inputError(c.kind, c.name, "%s value out of bounds", source).withValue(value).wrap(err)
	}
	return value, source, nil
}

// MultiValueCall is the sequence form of SingleValueCall. It resolves to a
// fresh []any.
type MultiValueCall struct {
	baseCall
	valueType ValueType
	def       []any
	bounds    Bounds
}

// NewMultiValue builds a multi value call labelled kind. def must be a
// sequence whose elements all match valueType.
func NewMultiValue(kind CallKind, name string, valueType ValueType, def any, opts ...ValueOption) (*MultiValueCall, error) {
	base, err := newBaseCall(kind, name)
	if err != nil {
		return nil, err
	}
	bounds, err := buildBounds(kind, name, valueType, opts)
	if err != nil {
		return nil, err
	}
	items, isSeq := sequenceOf(def)
	if !isSeq || !allAccepted(valueType, items) {
		return nil, configError(kind, name, "default value must be a sequence of %s", valueType).withValue(def)
	}
	if err := bounds.Validate(items); err != nil {
		return nil, configError(kind, name, "default out of bounds").withValue(def).wrap(err)
	}
	return &MultiValueCall{baseCall: base, valueType: valueType, def: items, bounds: bounds}, nil
}

// NewMultiText builds a sequence-of-strings parameter.
func NewMultiText(name string, def []string) (*MultiValueCall, error) {
	return NewMultiValue(KindMultiText, name, TypeText, nonNil(def))
}

// NewMultiBool builds a sequence-of-booleans parameter.
func NewMultiBool(name string, def []bool) (*MultiValueCall, error) {
	return NewMultiValue(KindMultiBool, name, TypeBool, nonNil(def))
}

// NewMultiNumber builds a sequence-of-numbers parameter. def is any sequence
// of integers and floats.
func NewMultiNumber(name string, def any, opts ...ValueOption) (*MultiValueCall, error) {
	return NewMultiValue(KindMultiNumber, name, TypeNumber, def, opts...)
}

// NewMultiInt builds a sequence-of-integers parameter.
func NewMultiInt(name string, def []int, opts ...ValueOption) (*MultiValueCall, error) {
	return NewMultiValue(KindMultiInt, name, TypeInt, nonNil(def), opts...)
}

// ValueType returns the accepted element type.
func (c *MultiValueCall) ValueType() ValueType { return c.valueType }

// Default returns a copy of the default values.
func (c *MultiValueCall) Default() []any { return append([]any{}, c.def...) }

// Bounds returns the numeric bounds (zero when unbounded).
func (c *MultiValueCall) Bounds() Bounds { return c.bounds }

// Execute returns the override sequence when present, else the default.
func (c *MultiValueCall) Execute(selections, overrides map[string]any) (any, error) {
	value, _, err := c.resolve(selections, overrides)
	return value, err
}

func (c *MultiValueCall) resolve(selections, overrides map[string]any) (any, Source, error) {
	if _, ok := selections[c.name]; ok {
		return nil, SourceSelection, selectionsUnsupported(c.kind, c.name)
	}
	values, source := append([]any{}, c.def...), SourceDefault
	if override, ok := overrides[c.name]; ok {
		items, isSeq := sequenceOf(override)
		if !isSeq {
			return nil, SourceOverride, inputError(c.kind, c.name, "override must be a sequence").withValue(override)
		}
		if !allAccepted(c.valueType, items) {
			return nil, SourceOverride, inputError(c.kind, c.name, "all override values must be of type %s", c.valueType).withValue(override)
		}
		values, source = items, SourceOverride
	}
	if err := c.bounds.Validate(values); err != nil {
		return nil, source, inputError(c.kind, c.name, "%s value out of bounds", source).withValue(values).wrap(err)
	}
	return values, source, nil
}

func selectionsUnsupported(kind CallKind, name string) error {
	return configError(kind, name, "selections are not supported for %s; use overrides instead", kind)
}

func allAccepted(valueType ValueType, items []any) bool {
	for _, item := range items {
		if !valueType.Accepts(item) {
			return false
		}
	}
	return true
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
