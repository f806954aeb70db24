package serverstate

import (
	"sync"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	prev := active
	UseStore(NewMemoryStore())
	defer UseStore(prev)

	if got := GetStatus(); got != "not_ready" {
		t.Fatalf("initial status = %q", got)
	}
	SetStatus("ready")
	if got := GetStatus(); got != "ready" {
		t.Fatalf("status = %q", got)
	}

	AddSurfaces(2)
	AddSurfaces(-1)
	if st := Snapshot(); st.Surfaces != 1 {
		t.Fatalf("surfaces = %d", st.Surfaces)
	}
	AddSurfaces(-5)
	if st := Snapshot(); st.Surfaces != 0 {
		t.Fatalf("surface count must floor at zero, got %d", st.Surfaces)
	}

	SetLastEvent("dragStarted")
	st := Snapshot()
	if st.LastEvent != "dragStarted" || st.Status != "ready" {
		t.Fatalf("snapshot = %#v", st)
	}
}

func TestAddSurfacesConcurrent(t *testing.T) {
	prev := active
	UseStore(NewMemoryStore())
	defer UseStore(prev)

	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			AddSurfaces(1)
		}()
	}
	wg.Wait()
	if got := Snapshot().Surfaces; got != n {
		t.Fatalf("surfaces = %d, want %d", got, n)
	}

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			AddSurfaces(-1)
		}()
	}
	wg.Wait()
	if got := Snapshot().Surfaces; got != 0 {
		t.Fatalf("surfaces = %d, want 0", got)
	}
}

func TestUseStoreNil(t *testing.T) {
	prev := active
	defer UseStore(prev)
	UseStore(nil)
	if active == nil {
		t.Fatalf("nil store must not replace the active store")
	}
}
