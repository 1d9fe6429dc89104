package hparams

import "time"

// ResolutionEvent describes one resolved node, or with an empty Param and
// KindConfig the resolution of a whole Config.
type ResolutionEvent struct {
	Config   string
	RunID    string
	Param    string
	Kind     CallKind
	Source   Source
	Duration time.Duration
	Err      error
}

// Logger records resolution events.
type Logger interface {
	LogResolution(ResolutionEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(ResolutionEvent)

// LogResolution implements Logger.
func (f LoggerFunc) LogResolution(event ResolutionEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogResolution(ResolutionEvent) {}
