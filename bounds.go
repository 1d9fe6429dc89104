package hparams

import "fmt"

// Bounds is an optional inclusive numeric range. Numeric value calls apply it
// to their default at construction and to every resolved value.
type Bounds struct {
	Min *float64
	Max *float64
}

// IsZero reports whether neither bound is set.
func (b Bounds) IsZero() bool {
	return b.Min == nil && b.Max == nil
}

// BoundsError reports a value outside Bounds.
type BoundsError struct {
	Value any
	Bound float64
	Upper bool
}

func (e *BoundsError) Error() string {
	if e.Upper {
		return fmt.Sprintf("value %v must be less than or equal to %v", e.Value, e.Bound)
	}
	return fmt.Sprintf("value %v must be greater than or equal to %v", e.Value, e.Bound)
}

// Validate checks a number or a sequence of numbers. The first offending
// element is reported. Unbounded ranges accept any value.
func (b Bounds) Validate(value any) error {
	if b.IsZero() {
		return nil
	}
	if items, ok := sequenceOf(value); ok {
		for _, item := range items {
			if err := b.check(item); err != nil {
				return err
			}
		}
		return nil
	}
	return b.check(value)
}

func (b Bounds) check(value any) error {
	number, ok := numberOf(value)
	if !ok {
		return fmt.Errorf("value %v is not a number", value)
	}
	if b.Min != nil && number < *b.Min {
		return &BoundsError{Value: value, Bound: *b.Min}
	}
	if b.Max != nil && number > *b.Max {
		return &BoundsError{Value: value, Bound: *b.Max, Upper: true}
	}
	return nil
}

func (b Bounds) consistent() bool {
	return b.Min == nil || b.Max == nil || *b.Min <= *b.Max
}
