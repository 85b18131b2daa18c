// Package vectordb provides the passage index behind the development backend.
// Each passage is stored as a term-frequency vector and ranked by cosine similarity.
package vectordb

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

// Passage is one stored chunk of an uploaded document.
type Passage struct {
	ID       string
	Document string
	Index    int
	Text     string
	vector   map[string]float64
}

// Match is a search hit.
type Match struct {
	Passage Passage
	Score   float64
}

// InMemoryStore holds passages for the lifetime of the process.
type InMemoryStore struct {
	mu       sync.RWMutex
	passages map[string]Passage  // passageID -> passage
	docs     map[string][]string // document -> []passageID
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		passages: make(map[string]Passage),
		docs:     make(map[string][]string),
	}
}

// Store replaces the passages of document with chunks and returns how many
// vectors were created.
func (s *InMemoryStore) Store(ctx context.Context, document string, chunks []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteLocked(document)
	for i, text := range chunks {
		p := Passage{
			ID:       passageID(document, i),
			Document: document,
			Index:    i,
			Text:     text,
			vector:   termVector(text),
		}
		if len(p.vector) == 0 {
			continue
		}
		s.passages[p.ID] = p
		s.docs[document] = append(s.docs[document], p.ID)
	}
	return len(s.docs[document]), nil
}

// Search returns up to topK passages most similar to query. Passages sharing
// no term with the query are left out.
func (s *InMemoryStore) Search(ctx context.Context, query string, topK int) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := termVector(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []Match
	for _, p := range s.passages {
		if score := cosineSimilarity(q, p.vector); score > 0 {
			results = append(results, Match{Passage: p, Score: score})
		}
	}

	// Sort by score descending, then by position for stable output
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Passage.Document != results[j].Passage.Document {
			return results[i].Passage.Document < results[j].Passage.Document
		}
		return results[i].Passage.Index < results[j].Passage.Index
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Delete removes all passages of a document.
func (s *InMemoryStore) Delete(ctx context.Context, document string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLocked(document)
	return nil
}

func (s *InMemoryStore) deleteLocked(document string) {
	for _, id := range s.docs[document] {
		delete(s.passages, id)
	}
	delete(s.docs, document)
}

// Documents returns the stored document names in sorted order.
func (s *InMemoryStore) Documents() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.docs))
	for name := range s.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clear removes all data from the store.
func (s *InMemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.passages = make(map[string]Passage)
	s.docs = make(map[string][]string)
	return nil
}

// passageID creates a deterministic ID for a chunk.
func passageID(document string, index int) string {
	hash := sha256.Sum256([]byte(document + "#" + strconv.Itoa(index)))
	return hex.EncodeToString(hash[:8])
}

// termVector lowercases text and counts words of two or more letters or digits.
func termVector(text string) map[string]float64 {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	v := make(map[string]float64, len(words))
	for _, w := range words {
		if len([]rune(w)) < 2 {
			continue
		}
		v[w]++
	}
	return v
}

func cosineSimilarity(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for term, x := range a {
		dot += x * b[term]
		normA += x * x
	}
	for _, y := range b {
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
