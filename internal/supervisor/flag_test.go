package supervisor

import "testing"

func TestShutdownFlag(t *testing.T) {
	var f ShutdownFlag

	if f.Get() {
		t.Fatal("expected false initially")
	}

	f.Set()
	if !f.Get() {
		t.Fatal("expected true after Set")
	}

	// Idempotent: repeated Set has no additional visible effect.
	f.Set()
	if !f.Get() {
		t.Fatal("expected true after repeated Set")
	}
}
