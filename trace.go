package hparams

import "encoding/json"

// Trace captures where every value of one resolution came from. Entries of
// nested configurations use dotted paths.
type Trace struct {
	Config  string       `json:"config"`
	RunID   string       `json:"run_id,omitempty"`
	Entries []TraceEntry `json:"entries"`
}

// TraceEntry records the provenance of one node.
type TraceEntry struct {
	Param  string   `json:"param"`
	Kind   CallKind `json:"kind"`
	Source Source   `json:"source"`
	Value  any      `json:"value,omitempty"`
}

// Lookup returns the entry recorded for param.
func (t Trace) Lookup(param string) (TraceEntry, bool) {
	for _, entry := range t.Entries {
		if entry.Param == param {
			return entry, true
		}
	}
	return TraceEntry{}, false
}

// Sources maps each traced param to its source.
func (t Trace) Sources() map[string]Source {
	out := make(map[string]Source, len(t.Entries))
	for _, entry := range t.Entries {
		out[entry.Param] = entry.Source
	}
	return out
}

func (t *Trace) add(entry TraceEntry) {
	t.Entries = append(t.Entries, entry)
}

func (t *Trace) addNested(prefix string, nested Trace) {
	for _, entry := range nested.Entries {
		entry.Param = prefix + "." + entry.Param
		t.Entries = append(t.Entries, entry)
	}
}

// ToJSON serialises the trace for logging or transport.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a payload produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
