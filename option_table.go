package hparams

import (
	"fmt"
	"math"
	"reflect"
	"sort"
)

// OptionTable is the canonical key → value mapping of a choice parameter.
// Keys are strings, integers, floats or booleans. Lookups compare keys by
// canonical value: every integer width is the same key, and a float with an
// integral value matches the equal integer, so JSON-decoded 1.0 selects 1.
type OptionTable struct {
	entries []optionEntry
	index   map[any]int
}

type optionEntry struct {
	key   any
	value any
}

// NormalizeOptions builds an OptionTable from a non-empty sequence (each
// element is its own key and value), a non-empty map, or an existing table.
// All failures are configuration errors naming the parameter.
func NormalizeOptions(name string, options any) (OptionTable, error) {
	switch typed := options.(type) {
	case nil:
		return OptionTable{}, missingOptions(name)
	case OptionTable:
		if typed.Len() == 0 {
			return OptionTable{}, missingOptions(name)
		}
		return typed.clone(), nil
	case *OptionTable:
		if typed == nil || typed.Len() == 0 {
			return OptionTable{}, missingOptions(name)
		}
		return typed.clone(), nil
	}

	if items, ok := sequenceOf(options); ok {
		if len(items) == 0 {
			return OptionTable{}, missingOptions(name)
		}
		if invalid := invalidKeys(items); len(invalid) > 0 {
			return OptionTable{}, invalidOptionKeys(name, invalid)
		}
		entries := make([]optionEntry, len(items))
		for i, item := range items {
			entries[i] = optionEntry{key: item, value: item}
		}
		return newOptionTable(name, entries)
	}

	rv := reflect.ValueOf(options)
	if rv.Kind() != reflect.Map {
		return OptionTable{}, configError("", name, "options must be a sequence or a mapping, got %T", options)
	}
	if rv.Len() == 0 {
		return OptionTable{}, missingOptions(name)
	}
	entries := make([]optionEntry, 0, rv.Len())
	keys := make([]any, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key := iter.Key().Interface()
		keys = append(keys, key)
		entries = append(entries, optionEntry{key: key, value: iter.Value().Interface()})
	}
	if invalid := invalidKeys(keys); len(invalid) > 0 {
		return OptionTable{}, invalidOptionKeys(name, invalid)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return lessKey(entries[i].key, entries[j].key)
	})
	return newOptionTable(name, entries)
}

func newOptionTable(name string, entries []optionEntry) (OptionTable, error) {
	table := OptionTable{
		entries: make([]optionEntry, 0, len(entries)),
		index:   make(map[any]int, len(entries)),
	}
	for _, entry := range entries {
		canonical, _ := canonicalKey(entry.key)
		if pos, exists := table.index[canonical]; exists {
			if valuesEqual(table.entries[pos].value, entry.value) {
				continue
			}
			return OptionTable{}, configError("", name, "duplicate option key %v", entry.key).withValue(entry.key)
		}
		table.index[canonical] = len(table.entries)
		table.entries = append(table.entries, entry)
	}
	return table, nil
}

func missingOptions(name string) error {
	return configError("", name, "options must be provided and cannot be empty")
}

func invalidOptionKeys(name string, invalid []any) error {
	return configError("", name, "option keys must be one of: string, int, float, bool; invalid items: %v", invalid).
		withValue(invalid)
}

// Len returns the number of options.
func (t OptionTable) Len() int {
	return len(t.entries)
}

// Keys returns the option keys in declaration order (sorted for map input).
func (t OptionTable) Keys() []any {
	out := make([]any, len(t.entries))
	for i, entry := range t.entries {
		out[i] = entry.key
	}
	return out
}

// Lookup returns the value mapped from key.
func (t OptionTable) Lookup(key any) (any, bool) {
	canonical, ok := canonicalKey(key)
	if !ok {
		return nil, false
	}
	pos, ok := t.index[canonical]
	if !ok {
		return nil, false
	}
	return t.entries[pos].value, true
}

// Has reports whether key is a declared option.
func (t OptionTable) Has(key any) bool {
	_, ok := t.Lookup(key)
	return ok
}

// Map returns a copy of the table keyed by the original keys.
func (t OptionTable) Map() map[any]any {
	out := make(map[any]any, len(t.entries))
	for _, entry := range t.entries {
		out[entry.key] = entry.value
	}
	return out
}

// Equal reports whether both tables hold the same keys mapped to the same
// values in the same order.
func (t OptionTable) Equal(other OptionTable) bool {
	if len(t.entries) != len(other.entries) {
		return false
	}
	for i := range t.entries {
		if !reflect.DeepEqual(t.entries[i], other.entries[i]) {
			return false
		}
	}
	return true
}

func (t OptionTable) clone() OptionTable {
	out := OptionTable{
		entries: make([]optionEntry, len(t.entries)),
		index:   make(map[any]int, len(t.index)),
	}
	copy(out.entries, t.entries)
	for key, pos := range t.index {
		out.index[key] = pos
	}
	return out
}

func invalidKeys(items []any) []any {
	var invalid []any
	for _, item := range items {
		if _, ok := canonicalKey(item); !ok {
			invalid = append(invalid, item)
		}
	}
	return invalid
}

// canonicalKey maps a valid option key onto a comparable canonical form.
func canonicalKey(key any) (any, bool) {
	if key == nil {
		return nil, false
	}
	rv := reflect.ValueOf(key)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return rv.Bool(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u <= math.MaxInt64 {
			return int64(u), true
		}
		return u, true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) {
			return nil, false
		}
		if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
			return int64(f), true
		}
		return f, true
	default:
		return nil, false
	}
}

// lessKey orders map-sourced keys: bools, numbers, then strings.
func lessKey(a, b any) bool {
	ca, _ := canonicalKey(a)
	cb, _ := canonicalKey(b)
	ra, rb := keyRank(ca), keyRank(cb)
	if ra != rb {
		return ra < rb
	}
	switch ra {
	case 0:
		return !ca.(bool) && cb.(bool)
	case 1:
		fa, _ := numberOf(ca)
		fb, _ := numberOf(cb)
		return fa < fb
	default:
		return fmt.Sprint(ca) < fmt.Sprint(cb)
	}
}

func keyRank(canonical any) int {
	switch canonical.(type) {
	case bool:
		return 0
	case int64, uint64, float64:
		return 1
	default:
		return 2
	}
}
