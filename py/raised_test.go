package py

import (
	"testing"
)

func TestFetchRaisedDrainsPendingError(t *testing.T) {
	rt := newFake(t)
	snap := rt.Snapshot()

	if _, err := Len(rt, 7); err == nil {
		t.Fatal("Len(int) succeeded, want failure")
	}

	raised, ok := FetchRaised(rt)
	if !ok {
		t.Fatal("FetchRaised found nothing after a failed call")
	}
	if rt.ErrOccurred() {
		t.Error("pending slot not cleared by fetch")
	}

	if got := raised.String(); got != "TypeError: object of type 'int' has no len()" {
		t.Errorf("rendered = %q", got)
	}

	raised.Close()
	raised.Close() // idempotent
	rt.AssertNoLeaks(t, snap)
}

func TestFetchRaisedEmpty(t *testing.T) {
	rt := newFake(t)

	if raised, ok := FetchRaised(rt); ok {
		raised.Close()
		t.Fatal("FetchRaised reported an error on a clean runtime")
	}
}

func TestFetchRaisedOwnsTheTriple(t *testing.T) {
	rt := newFake(t)
	snap := rt.Snapshot()

	_, _ = Len(rt, 7)
	raised, ok := FetchRaised(rt)
	if !ok {
		t.Fatal("FetchRaised found nothing")
	}
	if raised.Value.IsNull() || raised.Type.IsNull() {
		t.Fatal("fetched triple has null members")
	}
	// Without Close the triple leaks; with it the heap is clean.
	if leaks := rt.Leaks(snap); len(leaks) == 0 {
		t.Error("unclosed fetch reported no leaks")
	}
	raised.Close()
	rt.AssertNoLeaks(t, snap)
}
