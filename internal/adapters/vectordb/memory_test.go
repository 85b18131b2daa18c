package vectordb

import (
	"context"
	"math"
	"testing"
)

func TestInMemoryStore_StoreAndSearch(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	n, err := store.Store(ctx, "report.pdf", []string{
		"Quarterly revenue grew by twelve percent",
		"Office moved to a new building",
		"Revenue targets for next quarter",
	})
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 vectors, got %d", n)
	}

	results, err := store.Search(ctx, "What was the revenue growth?", 2)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Passage.Index == 1 {
			t.Errorf("unrelated passage ranked: %+v", r)
		}
	}
	if results[0].Score < results[1].Score {
		t.Error("results should be sorted by score")
	}
}

func TestInMemoryStore_NoOverlapNoResults(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	store.Store(ctx, "a.pdf", []string{"apples and pears"})

	results, _ := store.Search(ctx, "quantum chromodynamics", 5)
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestInMemoryStore_ReplaceDocument(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	store.Store(ctx, "a.pdf", []string{"old content here", "more old content"})
	n, _ := store.Store(ctx, "a.pdf", []string{"fresh content"})

	if n != 1 {
		t.Errorf("re-upload should replace passages, got %d", n)
	}
	results, _ := store.Search(ctx, "old", 5)
	if len(results) != 0 {
		t.Error("old passages should be gone")
	}
}

func TestInMemoryStore_SkipsEmptyChunks(t *testing.T) {
	store := NewInMemoryStore()
	n, _ := store.Store(context.Background(), "a.pdf", []string{"real words", "- . -", ""})

	if n != 1 {
		t.Errorf("expected 1 vector, got %d", n)
	}
}

func TestInMemoryStore_DeleteAndClear(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	store.Store(ctx, "a.pdf", []string{"alpha"})
	store.Store(ctx, "b.pdf", []string{"beta"})

	if docs := store.Documents(); len(docs) != 2 || docs[0] != "a.pdf" {
		t.Errorf("unexpected documents: %v", docs)
	}

	store.Delete(ctx, "a.pdf")
	if docs := store.Documents(); len(docs) != 1 || docs[0] != "b.pdf" {
		t.Errorf("unexpected documents after delete: %v", docs)
	}

	store.Clear(ctx)
	if len(store.Documents()) != 0 {
		t.Error("store should be empty after clear")
	}
}

func TestInMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewInMemoryStore().Store(ctx, "a.pdf", []string{"x"}); err == nil {
		t.Error("store should respect a canceled context")
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := termVector("red green")
	if s := cosineSimilarity(a, a); math.Abs(s-1) > 1e-9 {
		t.Errorf("identical vectors should score 1, got %f", s)
	}
	if s := cosineSimilarity(a, termVector("blue")); s != 0 {
		t.Errorf("disjoint vectors should score 0, got %f", s)
	}
	if s := cosineSimilarity(a, nil); s != 0 {
		t.Errorf("empty vector should score 0, got %f", s)
	}
}
