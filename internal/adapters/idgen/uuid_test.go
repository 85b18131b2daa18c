package idgen

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerator_Unique(t *testing.T) {
	g := NewUUIDGenerator()
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		id := g.NewID()
		if seen[id] {
			t.Fatalf("duplicate id after %d generations: %s", i, id)
		}
		seen[id] = true
	}
}

func TestUUIDGenerator_Version7(t *testing.T) {
	id, err := uuid.Parse(NewUUIDGenerator().NewID())
	if err != nil {
		t.Fatalf("not a valid uuid: %v", err)
	}
	if id.Version() != 7 {
		t.Errorf("expected version 7, got %d", id.Version())
	}
}

func TestUUIDGenerator_Ordered(t *testing.T) {
	g := NewUUIDGenerator()
	prev := g.NewID()

	for i := 0; i < 100; i++ {
		next := g.NewID()
		if next <= prev {
			t.Fatalf("ids not increasing: %s then %s", prev, next)
		}
		prev = next
	}
}
