// Package feedback resolves learned correction overrides. A correction is a
// human-supplied replacement for a previous translation; exact matches
// bypass all providers, and fuzzy matches are accepted above a word-overlap
// similarity threshold.
package feedback

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Defaults for similar-match resolution. The 0.5 threshold is a policy
// parameter, not a contract; short texts clear it easily.
const (
	DefaultThreshold = 0.5
	DefaultRecentN   = 20
)

// Record is one stored correction.
type Record struct {
	Hash           string
	SourceText     string
	TargetLanguage string
	UserID         string // empty for cross-user corrections
	OriginalOutput string
	CorrectedText  string
	CreatedAt      time.Time
}

// Store is the persistence contract the resolver consults.
type Store interface {
	// GetCorrection returns the record stored under hash, or nil.
	GetCorrection(ctx context.Context, hash string) (*Record, error)

	// RecentCorrections returns up to limit most recent corrections for the
	// target language scoped to the user.
	RecentCorrections(ctx context.Context, targetLanguage, userID string, limit int) ([]Record, error)

	// SaveCorrection persists a record, replacing any entry with the same hash.
	SaveCorrection(ctx context.Context, rec *Record) error
}

// MatchKind tells the orchestrator how a correction was found.
type MatchKind string

const (
	MatchExact   MatchKind = "exact"
	MatchSimilar MatchKind = "similar"
)

// Match is a resolved correction override.
type Match struct {
	Record *Record
	Kind   MatchKind
}

// Resolver looks up correction overrides before any provider call.
type Resolver struct {
	store     Store
	threshold float64
	recentN   int
}

// NewResolver creates a resolver with default matching policy.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store, threshold: DefaultThreshold, recentN: DefaultRecentN}
}

// Hash keys a correction by source text and target language, optionally
// scoped to a user.
func Hash(text, targetLanguage, userID string) string {
	h := sha256.New()
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(targetLanguage))
	if userID != "" {
		h.Write([]byte{0})
		h.Write([]byte(userID))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Resolve finds the best correction override for the candidate text. Exact
// matches win outright; otherwise, with a user scope available, the most
// similar recent same-language correction above the threshold is returned.
// A nil match means orchestration proceeds to live translation.
func (r *Resolver) Resolve(ctx context.Context, text, targetLanguage, userID string) (*Match, error) {
	hashes := []string{Hash(text, targetLanguage, userID)}
	if userID != "" {
		hashes = append(hashes, Hash(text, targetLanguage, ""))
	}
	for _, hash := range hashes {
		rec, err := r.store.GetCorrection(ctx, hash)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return &Match{Record: rec, Kind: MatchExact}, nil
		}
	}

	if userID == "" {
		return nil, nil
	}

	recent, err := r.store.RecentCorrections(ctx, targetLanguage, userID, r.recentN)
	if err != nil {
		return nil, err
	}

	var best *Record
	bestScore := 0.0
	for i := range recent {
		score := Similarity(text, recent[i].SourceText)
		if score > bestScore {
			best = &recent[i]
			bestScore = score
		}
	}

	if best == nil || bestScore < r.threshold {
		return nil, nil
	}
	return &Match{Record: best, Kind: MatchSimilar}, nil
}

// Similarity computes word-overlap similarity between two texts:
// |intersection| / max(|set a|, |set b|), case-insensitive.
func Similarity(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for word := range setA {
		if setB[word] {
			intersection++
		}
	}

	larger := len(setA)
	if len(setB) > larger {
		larger = len(setB)
	}
	return float64(intersection) / float64(larger)
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		set[word] = true
	}
	return set
}
