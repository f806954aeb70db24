package serverstate

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	rs, err := NewRedisStore(mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}

	prev := active
	UseStore(rs)
	defer UseStore(prev)

	if got := GetStatus(); got != "not_ready" {
		t.Fatalf("initial status = %q; want %q", got, "not_ready")
	}

	SetStatus("ready")
	AddSurfaces(1)
	SetLastEvent("updateRequirement")

	// a new store against the same instance sees the persisted state
	rs2, err := NewRedisStore(mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	st := rs2.Load()
	if st.Status != "ready" || st.Surfaces != 1 || st.LastEvent != "updateRequirement" {
		t.Fatalf("persisted state = %#v", st)
	}
}

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		url   string
		addrs int
		db    int
		tls   bool
	}{
		{"localhost:6379", 1, 0, false},
		{"redis://:pass@localhost:6379/1", 1, 1, false},
		{"redis://host1:6379,host2:6379/0", 2, 0, false},
		{"rediss://localhost:6380?db=2", 1, 2, true},
	}
	for _, tt := range tests {
		opts, err := parseRedisURL(tt.url)
		if err != nil {
			t.Fatalf("parseRedisURL(%q): %v", tt.url, err)
		}
		if len(opts.Addrs) != tt.addrs {
			t.Fatalf("%q addrs = %d; want %d", tt.url, len(opts.Addrs), tt.addrs)
		}
		if opts.DB != tt.db {
			t.Fatalf("%q db = %d; want %d", tt.url, opts.DB, tt.db)
		}
		if (opts.TLSConfig != nil) != tt.tls {
			t.Fatalf("%q tls = %v; want %v", tt.url, opts.TLSConfig != nil, tt.tls)
		}
	}
	if _, err := parseRedisURL("http://localhost"); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
}
