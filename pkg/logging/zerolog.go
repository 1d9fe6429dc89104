// Package logging adapts hparams resolution events to zerolog.
package logging

import (
	"github.com/goliatone/go-hparams"
	"github.com/rs/zerolog"
)

// Option configures the zerolog adapter.
type Option func(*Logger)

// WithNodeLevel sets the level used for successful node events. Config level
// events always log at info and failures at error.
func WithNodeLevel(level zerolog.Level) Option {
	return func(l *Logger) {
		l.nodeLevel = level
	}
}

// Logger writes ResolutionEvents as structured zerolog entries.
type Logger struct {
	log       zerolog.Logger
	nodeLevel zerolog.Level
}

// New returns an hparams.Logger backed by log.
func New(log zerolog.Logger, opts ...Option) *Logger {
	l := &Logger{log: log, nodeLevel: zerolog.DebugLevel}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

var _ hparams.Logger = (*Logger)(nil)

// LogResolution implements hparams.Logger.
func (l *Logger) LogResolution(event hparams.ResolutionEvent) {
	var entry *zerolog.Event
	switch {
	case event.Err != nil:
		entry = l.log.Error().Err(event.Err)
	case event.Param == "":
		entry = l.log.Info()
	default:
		entry = l.log.WithLevel(l.nodeLevel)
	}
	entry = entry.
		Str("config", event.Config).
		Str("run_id", event.RunID).
		Str("kind", string(event.Kind)).
		Dur("duration", event.Duration)
	if event.Param != "" {
		entry = entry.Str("param", event.Param).Str("source", string(event.Source))
		entry.Msg("hparams: node resolved")
		return
	}
	entry.Msg("hparams: config resolved")
}
