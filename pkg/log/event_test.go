package log

import (
	"testing"
	"time"
)

func TestOpString(t *testing.T) {
	cases := []struct {
		op   Op
		want string
	}{
		{OpAttach, "ATTACH"},
		{OpStart, "START"},
		{OpDetach, "DETACH"},
		{OpTeardown, "TEARDOWN"},
		{OpClear, "CLEAR"},
		{OpStartError, "START_ERROR"},
		{Op(99), "UNKNOWN"},
	}
	for _, c := range cases {
		if got := c.op.String(); got != c.want {
			t.Errorf("Op(%d).String() = %q, want %q", c.op, got, c.want)
		}
	}
}

func TestEventRoundTrip(t *testing.T) {
	event := Event{
		Timestamp: time.Now().UTC(),
		RegistryID: "0b39ab12-8ee6-4a0a-9c1d-1f6a2b3c4d5e",
		Op:        OpStart,
		Key:       "a1b2c3",
		Observers: 1,
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.RegistryID != event.RegistryID {
		t.Errorf("RegistryID = %q, want %q", decoded.RegistryID, event.RegistryID)
	}
	if decoded.Op != OpStart {
		t.Errorf("Op = %v, want OpStart", decoded.Op)
	}
	if decoded.Key != "a1b2c3" {
		t.Errorf("Key = %q, want %q", decoded.Key, "a1b2c3")
	}
	if decoded.Observers != 1 {
		t.Errorf("Observers = %d, want 1", decoded.Observers)
	}
	if !decoded.Timestamp.Equal(event.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", decoded.Timestamp, event.Timestamp)
	}
}

func TestEventRoundTripError(t *testing.T) {
	event := Event{
		Timestamp:  time.Now().UTC(),
		RegistryID: "r1",
		Op:         OpStartError,
		Key:        "k1",
		Err:        "dial feed: connection refused",
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	if decoded.Err != event.Err {
		t.Errorf("Err = %q, want %q", decoded.Err, event.Err)
	}
}
