package pydusttest

import (
	"fmt"
	"sort"
	"testing"

	pydust "github.com/hosackm/ziggy-pydust"
)

// Snapshot captures the reference count of every live object at one moment.
type Snapshot map[pydust.Handle]int64

// Snapshot records the current heap state for later comparison.
func (f *Fake) Snapshot() Snapshot {
	s := make(Snapshot, len(f.heap))
	for h, o := range f.heap {
		s[h] = o.refs
	}
	return s
}

// LiveCount returns the number of live objects on the heap, including the
// runtime-held builtins.
func (f *Fake) LiveCount() int {
	return len(f.heap)
}

// Leaks compares the current heap against a snapshot and describes every
// object that is new or holds more references than before. Objects whose
// count dropped are not leaks; they were released by their other holders.
func (f *Fake) Leaks(before Snapshot) []string {
	var handles []pydust.Handle
	for h := range f.heap {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	var leaks []string
	for _, h := range handles {
		now := f.heap[h].refs
		was, existed := before[h]
		switch {
		case !existed && f.heap[h].immortal:
			// Lazily created runtime-held type objects are not leaks, but
			// extra references on them are.
			if now > 1 {
				leaks = append(leaks, fmt.Sprintf("handle %d (%s) gained %d reference(s)",
					h, f.reprText(h), now-1))
			}
		case !existed:
			leaks = append(leaks, fmt.Sprintf("handle %d (%s) allocated and never released (refs=%d)",
				h, f.reprText(h), now))
		case now > was:
			leaks = append(leaks, fmt.Sprintf("handle %d (%s) gained %d reference(s)",
				h, f.reprText(h), now-was))
		}
	}
	return leaks
}

// AssertNoLeaks fails the test when the heap holds more references than the
// snapshot recorded.
func (f *Fake) AssertNoLeaks(t testing.TB, before Snapshot) {
	t.Helper()
	for _, leak := range f.Leaks(before) {
		t.Errorf("leak: %s", leak)
	}
}
