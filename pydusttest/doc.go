// Package pydusttest provides an in-memory fake pydust.Runtime with real
// reference-count bookkeeping, suitable for testing bridge code without a
// Python build.
//
// The fake keeps every object in a heap keyed by handle and enforces the
// ownership discipline aggressively: releasing an unknown or already-dead
// handle panics, as does driving a runtime-held singleton to zero. Tests
// pair Snapshot with AssertNoLeaks to prove that an operation leaves the
// heap's reference counts exactly where it found them:
//
//	rt := pydusttest.New()
//	defer rt.Close()
//
//	snap := rt.Snapshot()
//	// ... exercise bridge code ...
//	rt.AssertNoLeaks(t, snap)
//
// Failure sentinels are produced two ways: naturally, by Python-ish
// semantics (len of an int raises TypeError), and by injection via
// FailNext, which makes the next named ABI call fail with a pending
// RuntimeError. Calls records the sequence of ABI operations so tests can
// assert that a failed step short-circuits the ones after it.
package pydusttest
