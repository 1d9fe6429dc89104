package hparams

import "sort"

// ParamDescriptor is a static description of one node for tooling such as
// CLIs, docs generators and UIs.
type ParamDescriptor struct {
	Path       string   `json:"path"`
	Kind       CallKind `json:"kind"`
	Options    []any    `json:"options,omitempty"`
	Default    any      `json:"default,omitempty"`
	HasDefault bool     `json:"has_default"`
	Min        *float64 `json:"min,omitempty"`
	Max        *float64 `json:"max,omitempty"`
	Expression string   `json:"expression,omitempty"`
}

// Describe lists every node of the config sorted by path. Nodes of nested
// configs bound with NestConfig use dotted paths; rules are not listed.
func (c *Config) Describe() []ParamDescriptor {
	out := c.describe("")
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (c *Config) describe(prefix string) []ParamDescriptor {
	var out []ParamDescriptor
	for _, s := range c.steps {
		path := prefix + s.name()
		switch typed := s.(type) {
		case paramStep:
			out = append(out, describeCall(path, typed.call))
		case deriveStep:
			out = append(out, ParamDescriptor{Path: path, Kind: KindDerive, Expression: typed.node.expression})
		case *nestStep:
			if typed.node.child != nil {
				out = append(out, typed.node.child.describe(path+".")...)
				continue
			}
			out = append(out, ParamDescriptor{Path: path, Kind: KindPropagate})
		}
	}
	return out
}

func describeCall(path string, call Call) ParamDescriptor {
	desc := ParamDescriptor{Path: path, Kind: call.Kind()}
	switch typed := call.(type) {
	case *SelectCall:
		desc.Options = typed.options.Keys()
		desc.Default, desc.HasDefault = typed.Default()
	case *MultiSelectCall:
		desc.Options = typed.options.Keys()
		if def, ok := typed.Default(); ok {
			desc.Default, desc.HasDefault = def, true
		}
	case *SingleValueCall:
		desc.Default, desc.HasDefault = typed.def, true
		desc.Min, desc.Max = typed.bounds.Min, typed.bounds.Max
	case *MultiValueCall:
		desc.Default, desc.HasDefault = typed.Default(), true
		desc.Min, desc.Max = typed.bounds.Min, typed.bounds.Max
	}
	return desc
}
