package engine

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/hosackm/ziggy-pydust/errors"
)

func TestRequiredExportsWellFormed(t *testing.T) {
	seen := make(map[string]bool, len(requiredExports))
	for _, name := range requiredExports {
		if !strings.HasPrefix(name, "pd_") {
			t.Errorf("export %q not in the shim namespace", name)
		}
		if seen[name] {
			t.Errorf("export %q listed twice", name)
		}
		seen[name] = true
	}
}

func TestNewRejectsInvalidModule(t *testing.T) {
	_, err := New(context.Background(), []byte("not a wasm module"), nil)
	if err == nil {
		t.Fatal("New accepted garbage bytes")
	}
	var be *errors.Error
	if !stderrors.As(err, &be) {
		t.Fatalf("error type = %T, want *errors.Error", err)
	}
	if be.Phase != errors.PhaseLoad {
		t.Errorf("phase = %q, want %q", be.Phase, errors.PhaseLoad)
	}
}

func TestNewRejectsEmptyModule(t *testing.T) {
	_, err := New(context.Background(), nil, &Config{MemoryLimitPages: 256})
	if err == nil {
		t.Fatal("New accepted an empty module")
	}
}

// A trap poisons the runtime. The ambiguous -1 conversions must then see a
// pending error, otherwise a trap sentinel reads as the legitimate value -1.
func TestFaultedRuntimeReportsPendingError(t *testing.T) {
	r := &WazeroRuntime{ctx: context.Background(), faulted: true}

	if !r.ErrOccurred() {
		t.Fatal("ErrOccurred = false on a faulted runtime")
	}
	if v := r.IntAsInt64(7); v != -1 {
		t.Errorf("IntAsInt64 = %d, want the -1 sentinel", v)
	}
	if v := r.FloatAsDouble(7); v != -1 {
		t.Errorf("FloatAsDouble = %v, want the -1 sentinel", v)
	}
	if n := r.Length(7); n != -1 {
		t.Errorf("Length = %d, want the -1 sentinel", n)
	}
	if h := r.Str(7); h != 0 {
		t.Errorf("Str = %d, want the null sentinel", h)
	}
}
