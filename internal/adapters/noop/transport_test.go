package noop

import (
	"context"
	"testing"
)

func TestTransport_AlwaysSucceeds(t *testing.T) {
	tr := NewTransport()

	for _, path := range []string{"/track", "/account", "/invoice"} {
		outcome := tr.Send(context.Background(), path, []byte(`[{}]`))
		if !outcome.Success {
			t.Fatalf("Send(%s) failed: %v", path, outcome.Err)
		}
	}

	if got := tr.Calls(); got != 3 {
		t.Errorf("Calls() = %d, want 3", got)
	}
	if got := tr.Bytes(); got != 12 {
		t.Errorf("Bytes() = %d, want 12", got)
	}
	if !tr.Enabled() {
		t.Error("noop transport must report enabled")
	}
	if tr.Name() != "noop" {
		t.Errorf("Name() = %q, want noop", tr.Name())
	}
}
