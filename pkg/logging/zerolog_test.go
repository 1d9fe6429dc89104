package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-hparams"
	"github.com/rs/zerolog"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid json line %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestLoggerWritesNodeAndConfigEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := New(zerolog.New(&buf))

	logger.LogResolution(hparams.ResolutionEvent{
		Config:   "train",
		RunID:    "run-1",
		Param:    "optimizer",
		Kind:     hparams.KindSelect,
		Source:   hparams.SourceSelection,
		Duration: time.Millisecond,
	})
	logger.LogResolution(hparams.ResolutionEvent{Config: "train", RunID: "run-1", Kind: hparams.KindConfig})

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(lines))
	}
	node := lines[0]
	if node["level"] != "debug" || node["param"] != "optimizer" || node["source"] != "selection" || node["kind"] != "select" {
		t.Fatalf("unexpected node entry: %v", node)
	}
	if lines[1]["level"] != "info" || lines[1]["config"] != "train" {
		t.Fatalf("unexpected config entry: %v", lines[1])
	}
	if _, ok := lines[1]["param"]; ok {
		t.Fatalf("expected config entry without param, got %v", lines[1])
	}
}

func TestLoggerWritesErrorsAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(zerolog.New(&buf), WithNodeLevel(zerolog.InfoLevel))

	logger.LogResolution(hparams.ResolutionEvent{Config: "train", Param: "lr", Kind: hparams.KindNumberInput, Err: errors.New("boom")})

	lines := decodeLines(t, &buf)
	if len(lines) != 1 || lines[0]["level"] != "error" || lines[0]["error"] != "boom" {
		t.Fatalf("unexpected error entry: %v", lines)
	}
}
