package idgen_test

import (
	"regexp"
	"testing"

	"github.com/metagate/metagate/adapters/idgen"
)

// Deployment IDs become directory names, so the format matters as much as
// uniqueness.
var uuidV4 = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func TestUUID_New(t *testing.T) {
	g := idgen.UUID{}

	id := g.New()
	if !uuidV4.MatchString(id) {
		t.Errorf("ID %s doesn't match UUID v4 format", id)
	}
}

func TestUUID_New_Unique(t *testing.T) {
	g := idgen.UUID{}

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.New()
		if seen[id] {
			t.Errorf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestSequential_New(t *testing.T) {
	g := idgen.NewSequential("dep-")

	for i, want := range []string{"dep-1", "dep-2", "dep-3"} {
		if id := g.New(); id != want {
			t.Errorf("call %d: ID = %s, want %s", i+1, id, want)
		}
	}
}

func TestSequential_Reset(t *testing.T) {
	g := idgen.NewSequential("dep-")

	g.New()
	g.New()
	g.Reset()

	if id := g.New(); id != "dep-1" {
		t.Errorf("after reset ID = %s, want dep-1", id)
	}
}

func TestSequential_ConcurrentAccess(t *testing.T) {
	g := idgen.NewSequential("c-")

	done := make(chan struct{})
	ids := make(chan string, 1000)

	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				ids <- g.New()
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID: %s", id)
		}
		seen[id] = true
	}
	if len(seen) != 1000 {
		t.Errorf("expected 1000 unique IDs, got %d", len(seen))
	}
}
