package registry

import (
	"errors"
	"sync"
	"testing"

	"github.com/feedmux/feedmux-go/pkg/log"
)

// countingStart returns a StartFunc that counts starts and teardowns.
func countingStart(starts, teardowns *int) StartFunc {
	return func() (TeardownFunc, error) {
		*starts++
		return func() { *teardowns++ }, nil
	}
}

func TestAttachSingleFlight(t *testing.T) {
	reg := New()

	var starts, teardowns int
	start := countingStart(&starts, &teardowns)

	for i := 0; i < 5; i++ {
		if err := reg.Attach("k1", start); err != nil {
			t.Fatalf("Attach %d failed: %v", i, err)
		}
	}

	if starts != 1 {
		t.Errorf("start invoked %d times, want 1", starts)
	}
	if got := reg.Observers("k1"); got != 5 {
		t.Errorf("Observers(k1) = %d, want 5", got)
	}
	if !reg.Active("k1") {
		t.Error("Active(k1) = false, want true")
	}
}

func TestBalancedTeardown(t *testing.T) {
	reg := New()

	var starts, teardowns int
	start := countingStart(&starts, &teardowns)

	const n = 4
	for i := 0; i < n; i++ {
		if err := reg.Attach("k1", start); err != nil {
			t.Fatalf("Attach failed: %v", err)
		}
	}

	for i := 0; i < n-1; i++ {
		reg.Detach("k1")
		if teardowns != 0 {
			t.Fatalf("teardown ran after %d of %d detaches", i+1, n)
		}
	}

	reg.Detach("k1")
	if teardowns != 1 {
		t.Errorf("teardown invoked %d times, want 1", teardowns)
	}
	if reg.Active("k1") {
		t.Error("Active(k1) = true after last detach, want false")
	}
	if got := reg.Observers("k1"); got != 0 {
		t.Errorf("Observers(k1) = %d, want 0", got)
	}
}

func TestKeyIndependence(t *testing.T) {
	reg := New()

	var starts1, teardowns1, starts2, teardowns2 int
	if err := reg.Attach("k1", countingStart(&starts1, &teardowns1)); err != nil {
		t.Fatalf("Attach k1 failed: %v", err)
	}
	if err := reg.Attach("k2", countingStart(&starts2, &teardowns2)); err != nil {
		t.Fatalf("Attach k2 failed: %v", err)
	}

	reg.Detach("k1")

	if teardowns1 != 1 {
		t.Errorf("k1 teardowns = %d, want 1", teardowns1)
	}
	if teardowns2 != 0 {
		t.Errorf("k2 teardowns = %d, want 0 (unrelated key affected)", teardowns2)
	}
	if starts2 != 1 {
		t.Errorf("k2 starts = %d, want 1", starts2)
	}
	if !reg.Active("k2") {
		t.Error("Active(k2) = false, want true")
	}
}

func TestDetachUnknownKeyNoop(t *testing.T) {
	reg := New()
	reg.Detach("never-attached") // must not panic
	if got := reg.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
}

func TestOverDetachClamped(t *testing.T) {
	reg := New()

	var starts, teardowns int
	start := countingStart(&starts, &teardowns)

	if err := reg.Attach("k1", start); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	reg.Detach("k1")
	reg.Detach("k1") // extra detach is ignored
	reg.Detach("k1")

	if teardowns != 1 {
		t.Errorf("teardown invoked %d times, want 1", teardowns)
	}

	// Key must still be attachable and the count must not have gone
	// negative: a fresh attach starts from 1.
	if err := reg.Attach("k1", start); err != nil {
		t.Fatalf("re-Attach failed: %v", err)
	}
	if got := reg.Observers("k1"); got != 1 {
		t.Errorf("Observers(k1) after re-attach = %d, want 1", got)
	}
	if starts != 2 {
		t.Errorf("starts = %d, want 2 (fresh start after key went cold)", starts)
	}
}

func TestAttachEmptyKey(t *testing.T) {
	reg := New()
	err := reg.Attach("", func() (TeardownFunc, error) { return func() {}, nil })
	if !errors.Is(err, ErrEmptyKey) {
		t.Errorf("Attach(\"\") = %v, want ErrEmptyKey", err)
	}
}

func TestAttachNilStartColdKey(t *testing.T) {
	reg := New()

	if err := reg.Attach("k1", nil); !errors.Is(err, ErrNilStart) {
		t.Errorf("Attach cold key with nil start = %v, want ErrNilStart", err)
	}
	if got := reg.Observers("k1"); got != 0 {
		t.Errorf("Observers(k1) = %d after failed attach, want 0", got)
	}

	// A hot key does not need a start function.
	var starts, teardowns int
	if err := reg.Attach("k1", countingStart(&starts, &teardowns)); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if err := reg.Attach("k1", nil); err != nil {
		t.Errorf("Attach hot key with nil start = %v, want nil", err)
	}
	if got := reg.Observers("k1"); got != 2 {
		t.Errorf("Observers(k1) = %d, want 2", got)
	}
}

func TestStartErrorRollsBack(t *testing.T) {
	reg := New()

	startErr := errors.New("backend unavailable")
	fail := func() (TeardownFunc, error) { return nil, startErr }

	err := reg.Attach("k1", fail)
	if !errors.Is(err, startErr) {
		t.Fatalf("Attach = %v, want wrapped start error", err)
	}

	// All-or-nothing: no partial entry remains.
	if reg.Active("k1") {
		t.Error("Active(k1) = true after failed start, want false")
	}
	if got := reg.Observers("k1"); got != 0 {
		t.Errorf("Observers(k1) = %d after failed start, want 0", got)
	}

	// A later attach retries the start function.
	var starts, teardowns int
	if err := reg.Attach("k1", countingStart(&starts, &teardowns)); err != nil {
		t.Fatalf("retry Attach failed: %v", err)
	}
	if starts != 1 {
		t.Errorf("starts = %d on retry, want 1", starts)
	}
}

func TestNilTeardownRejected(t *testing.T) {
	reg := New()

	err := reg.Attach("k1", func() (TeardownFunc, error) { return nil, nil })
	if !errors.Is(err, ErrNilTeardown) {
		t.Errorf("Attach = %v, want ErrNilTeardown", err)
	}
	if reg.Active("k1") {
		t.Error("Active(k1) = true after rejected start, want false")
	}
}

func TestTeardownPanicRemovesEntry(t *testing.T) {
	reg := New()

	if err := reg.Attach("k1", func() (TeardownFunc, error) {
		return func() { panic("teardown bug") }, nil
	}); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("Detach should propagate the teardown panic")
			}
		}()
		reg.Detach("k1")
	}()

	// The key must not be stuck: both entries were removed before the
	// teardown ran, so re-attach works.
	if reg.Active("k1") {
		t.Error("Active(k1) = true after panicking teardown, want false")
	}
	var starts, teardowns int
	if err := reg.Attach("k1", countingStart(&starts, &teardowns)); err != nil {
		t.Fatalf("re-Attach failed: %v", err)
	}
	if starts != 1 {
		t.Errorf("starts = %d, want 1", starts)
	}
}

func TestClearAll(t *testing.T) {
	reg := New()

	var starts1, teardowns1, starts2, teardowns2 int
	if err := reg.Attach("k1", countingStart(&starts1, &teardowns1)); err != nil {
		t.Fatalf("Attach k1 failed: %v", err)
	}
	if err := reg.Attach("k1", nil); err != nil {
		t.Fatalf("Attach k1 failed: %v", err)
	}
	if err := reg.Attach("k2", countingStart(&starts2, &teardowns2)); err != nil {
		t.Fatalf("Attach k2 failed: %v", err)
	}

	reg.ClearAll()

	if teardowns1 != 1 || teardowns2 != 1 {
		t.Errorf("teardowns = %d/%d, want 1/1", teardowns1, teardowns2)
	}
	if got := reg.Len(); got != 0 {
		t.Errorf("Len() = %d after ClearAll, want 0", got)
	}

	// Subsequent attaches behave as first-time attaches.
	if err := reg.Attach("k1", countingStart(&starts1, &teardowns1)); err != nil {
		t.Fatalf("Attach after ClearAll failed: %v", err)
	}
	if starts1 != 2 {
		t.Errorf("starts1 = %d, want 2", starts1)
	}
	if got := reg.Observers("k1"); got != 1 {
		t.Errorf("Observers(k1) = %d, want 1", got)
	}
}

func TestKeysAndLen(t *testing.T) {
	reg := New()

	noop := func() (TeardownFunc, error) { return func() {}, nil }
	for _, key := range []string{"a", "b", "c"} {
		if err := reg.Attach(key, noop); err != nil {
			t.Fatalf("Attach %s failed: %v", key, err)
		}
	}

	if got := reg.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}

	seen := make(map[string]bool)
	for _, key := range reg.Keys() {
		seen[key] = true
	}
	for _, key := range []string{"a", "b", "c"} {
		if !seen[key] {
			t.Errorf("Keys() missing %q", key)
		}
	}
}

func TestConcurrentAttachDetach(t *testing.T) {
	reg := New()

	var mu sync.Mutex
	starts := 0
	teardowns := 0
	start := func() (TeardownFunc, error) {
		mu.Lock()
		starts++
		mu.Unlock()
		return func() {
			mu.Lock()
			teardowns++
			mu.Unlock()
		}, nil
	}

	const workers = 32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if err := reg.Attach("k1", start); err != nil {
					t.Errorf("Attach failed: %v", err)
					return
				}
				reg.Detach("k1")
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if starts != teardowns {
		t.Errorf("starts = %d, teardowns = %d, want equal", starts, teardowns)
	}
	if reg.Active("k1") {
		t.Error("Active(k1) = true after balanced concurrent use, want false")
	}
}

func TestLifecycleEvents(t *testing.T) {
	recorder := &recordingLogger{}
	reg := NewWithConfig(Config{Logger: recorder})

	noop := func() (TeardownFunc, error) { return func() {}, nil }
	if err := reg.Attach("k1", noop); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if err := reg.Attach("k1", nil); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	reg.Detach("k1")
	reg.Detach("k1")

	want := []log.Op{log.OpStart, log.OpAttach, log.OpDetach, log.OpTeardown}
	if len(recorder.events) != len(want) {
		t.Fatalf("recorded %d events, want %d", len(recorder.events), len(want))
	}
	for i, op := range want {
		if recorder.events[i].Op != op {
			t.Errorf("event %d: op = %v, want %v", i, recorder.events[i].Op, op)
		}
		if recorder.events[i].RegistryID != reg.ID() {
			t.Errorf("event %d: registry ID = %q, want %q", i, recorder.events[i].RegistryID, reg.ID())
		}
	}
	if recorder.events[1].Observers != 2 {
		t.Errorf("attach event observers = %d, want 2", recorder.events[1].Observers)
	}
}

type recordingLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *recordingLogger) Log(event log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}
