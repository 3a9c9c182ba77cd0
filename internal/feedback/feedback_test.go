package feedback

import (
	"context"
	"testing"
	"time"
)

type memoryStore struct {
	records map[string]*Record
	recent  []Record
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]*Record)}
}

func (m *memoryStore) GetCorrection(ctx context.Context, hash string) (*Record, error) {
	return m.records[hash], nil
}

func (m *memoryStore) RecentCorrections(ctx context.Context, targetLanguage, userID string, limit int) ([]Record, error) {
	if len(m.recent) > limit {
		return m.recent[:limit], nil
	}
	return m.recent, nil
}

func (m *memoryStore) SaveCorrection(ctx context.Context, rec *Record) error {
	m.records[rec.Hash] = rec
	return nil
}

func TestHash_Deterministic(t *testing.T) {
	a := Hash("hello", "Korean", "user1")
	b := Hash("hello", "Korean", "user1")
	if a != b {
		t.Error("hash must be deterministic")
	}
	if Hash("hello", "Korean", "") == a {
		t.Error("user scope must change the hash")
	}
	if Hash("hello", "Japanese", "user1") == a {
		t.Error("target language must change the hash")
	}
}

func TestResolve_ExactMatch(t *testing.T) {
	store := newMemoryStore()
	rec := &Record{
		Hash:           Hash("hello world", "Korean", "user1"),
		SourceText:     "hello world",
		TargetLanguage: "Korean",
		UserID:         "user1",
		CorrectedText:  "안녕 세상",
		CreatedAt:      time.Now(),
	}
	store.SaveCorrection(context.Background(), rec)

	match, err := NewResolver(store).Resolve(context.Background(), "hello world", "Korean", "user1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match == nil || match.Kind != MatchExact {
		t.Fatalf("expected exact match, got %+v", match)
	}
	if match.Record.CorrectedText != "안녕 세상" {
		t.Errorf("unexpected correction: %q", match.Record.CorrectedText)
	}
}

func TestResolve_CrossUserExactMatch(t *testing.T) {
	store := newMemoryStore()
	store.SaveCorrection(context.Background(), &Record{
		Hash:          Hash("hello", "Korean", ""),
		SourceText:    "hello",
		CorrectedText: "안녕",
	})

	match, err := NewResolver(store).Resolve(context.Background(), "hello", "Korean", "someone")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match == nil || match.Kind != MatchExact {
		t.Fatalf("expected unscoped exact match to apply, got %+v", match)
	}
}

func TestResolve_SimilarMatch(t *testing.T) {
	store := newMemoryStore()
	store.recent = []Record{
		{SourceText: "the quick brown fox jumps", CorrectedText: "correction A"},
		{SourceText: "completely unrelated sentence here", CorrectedText: "correction B"},
	}

	match, err := NewResolver(store).Resolve(context.Background(),
		"the quick brown fox runs", "Korean", "user1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match == nil || match.Kind != MatchSimilar {
		t.Fatalf("expected similar match, got %+v", match)
	}
	if match.Record.CorrectedText != "correction A" {
		t.Errorf("expected highest-scoring candidate, got %q", match.Record.CorrectedText)
	}
}

func TestResolve_SimilarRequiresUserScope(t *testing.T) {
	store := newMemoryStore()
	store.recent = []Record{{SourceText: "the quick brown fox jumps"}}

	match, err := NewResolver(store).Resolve(context.Background(),
		"the quick brown fox runs", "Korean", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match != nil {
		t.Errorf("similar matching must not run without a user scope, got %+v", match)
	}
}

func TestResolve_BelowThresholdNoMatch(t *testing.T) {
	store := newMemoryStore()
	store.recent = []Record{{SourceText: "entirely different words appear within"}}

	match, err := NewResolver(store).Resolve(context.Background(),
		"the quick brown fox runs", "Korean", "user1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match != nil {
		t.Errorf("expected no match below threshold, got %+v", match)
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"a b c d", "a b c d", 1.0},
		{"a b c d", "a b c x", 0.75},
		{"a b", "c d", 0.0},
		{"", "a b", 0.0},
		{"Hello World", "hello world", 1.0},
	}
	for _, tt := range tests {
		if got := Similarity(tt.a, tt.b); got != tt.want {
			t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
