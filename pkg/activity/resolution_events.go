package activity

import (
	"strings"
	"time"
)

const (
	// VerbResolved marks a completed resolution.
	VerbResolved = "hparams.resolved"
	// VerbResolveFailed marks a resolution that returned an error.
	VerbResolveFailed = "hparams.resolve_failed"
	// ObjectTypeConfig is the object type of resolution events.
	ObjectTypeConfig = "hparams.config"
)

// ResolutionInput describes one resolution of a configuration.
type ResolutionInput struct {
	ActorID    string
	TenantID   string
	RunID      string
	Config     string
	FinalVars  []string
	Sources    map[string]string
	Err        error
	Duration   time.Duration
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildResolutionEvent constructs the event for a finished resolution. The
// verb reflects whether input.Err is set.
func BuildResolutionEvent(input ResolutionInput) Event {
	verb := VerbResolved
	if input.Err != nil {
		verb = VerbResolveFailed
	}

	metadata := cloneMap(input.Metadata)
	metadata = ensureMetadata(metadata)
	metadata["config"] = input.Config
	metadata["duration_ms"] = input.Duration.Milliseconds()
	if len(input.FinalVars) > 0 {
		metadata["final_vars"] = append([]string{}, input.FinalVars...)
	}
	if len(input.Sources) > 0 {
		sources := make(map[string]string, len(input.Sources))
		for name, source := range input.Sources {
			sources[name] = source
		}
		metadata["sources"] = sources
	}
	if input.Err != nil {
		metadata["error"] = input.Err.Error()
	}

	objectID := strings.TrimSpace(input.RunID)
	if objectID == "" {
		objectID = strings.TrimSpace(input.Config)
	}
	if objectID == "" {
		objectID = ObjectTypeConfig
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: ObjectTypeConfig,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
