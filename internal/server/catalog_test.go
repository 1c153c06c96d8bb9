package server

import "testing"

func TestNewFileID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := newFileID()
		if ok, msg := validateFileID(id); !ok {
			t.Fatalf("generated id %q fails validation: %s", id, msg)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
