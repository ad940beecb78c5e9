package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// recordingLogger collects events for assertions.
type recordingLogger struct {
	events []Event
}

func (r *recordingLogger) Log(event Event) {
	r.events = append(r.events, event)
}

func TestNoopLogger(t *testing.T) {
	// Must not panic, including as a zero value.
	var l NoopLogger
	l.Log(Event{Op: OpAttach, Key: "k1"})
}

func TestMultiLogger(t *testing.T) {
	a := &recordingLogger{}
	b := &recordingLogger{}

	multi := NewMultiLogger(a, b)
	multi.Log(Event{RegistryID: "r1", Op: OpStart, Key: "k1", Observers: 1})
	multi.Log(Event{RegistryID: "r1", Op: OpTeardown, Key: "k1"})

	if len(a.events) != 2 || len(b.events) != 2 {
		t.Fatalf("fan-out delivered %d/%d events, want 2/2", len(a.events), len(b.events))
	}
	if a.events[0].Op != OpStart || b.events[1].Op != OpTeardown {
		t.Error("fan-out did not preserve event content")
	}
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	adapter := NewSlogAdapter(logger)
	adapter.Log(Event{
		Timestamp:  time.Now(),
		RegistryID: "r1",
		Op:         OpStart,
		Key:        "k1",
		Observers:  1,
	})

	out := buf.String()
	for _, want := range []string{"registry_id=r1", "op=START", "key=k1", "observers=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("slog output missing %q:\n%s", want, out)
		}
	}
}

func TestSlogAdapterStartError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	adapter := NewSlogAdapter(logger)
	adapter.Log(Event{
		Timestamp:  time.Now(),
		RegistryID: "r1",
		Op:         OpStartError,
		Key:        "k1",
		Err:        "boom",
	})

	out := buf.String()
	if !strings.Contains(out, "op=START_ERROR") || !strings.Contains(out, "err=boom") {
		t.Errorf("slog output missing error attrs:\n%s", out)
	}
}
