package layering

// MergeMaps composes input maps ordered from strongest to weakest. Keys from
// stronger layers win; when both layers hold a map[string]any under the same
// key the two maps are merged recursively. Slices and scalars are never
// merged, the strongest value is taken whole. Inputs are not modified.
func MergeMaps(layers ...map[string]any) map[string]any {
	merged := map[string]any{}
	for i := len(layers) - 1; i >= 0; i-- {
		merged = mergeInto(layers[i], merged)
	}
	return merged
}

func mergeInto(strong, weak map[string]any) map[string]any {
	out := make(map[string]any, len(strong)+len(weak))
	for key, value := range weak {
		out[key] = value
	}
	for key, value := range strong {
		strongMap, strongIsMap := value.(map[string]any)
		weakMap, weakIsMap := out[key].(map[string]any)
		if strongIsMap && weakIsMap {
			out[key] = mergeInto(strongMap, weakMap)
			continue
		}
		out[key] = Clone(value)
	}
	return out
}
