// Package testutil provides shared mocks for orchestration tests. Every
// mock records its calls so tests can assert both results and interactions.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"codeberg.org/snonux/lingo/internal/feedback"
	"codeberg.org/snonux/lingo/internal/gateway"
	"codeberg.org/snonux/lingo/internal/speech"
	"codeberg.org/snonux/lingo/internal/translation"
)

// MockTranslationProvider implements translation.Provider with canned
// results. An optional Delay simulates a slow upstream for timeout tests.
type MockTranslationProvider struct {
	mu sync.Mutex

	ProviderName string
	Result       *translation.Result
	Err          error
	Delay        time.Duration

	Calls []translation.Request
}

// Translate records the call and returns the canned result after Delay,
// honoring context cancellation while waiting.
func (m *MockTranslationProvider) Translate(ctx context.Context, model translation.Model, req translation.Request) (*translation.Result, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result != nil {
		return m.Result, nil
	}
	return &translation.Result{Translation: fmt.Sprintf("translated(%s)", req.Text)}, nil
}

// Name returns the configured provider name.
func (m *MockTranslationProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// CallCount returns how many translate calls were recorded.
func (m *MockTranslationProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockSynthesizer implements speech.Synthesizer with canned audio.
type MockSynthesizer struct {
	mu sync.Mutex

	BackendName string
	Audio       []byte
	Err         error
	AvailErr    error

	Calls []speech.Request
}

// Synthesize records the call and returns the canned audio.
func (m *MockSynthesizer) Synthesize(ctx context.Context, req speech.Request) ([]byte, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Audio != nil {
		return m.Audio, nil
	}
	return []byte("mock-audio"), nil
}

// Name returns the configured backend name.
func (m *MockSynthesizer) Name() string {
	if m.BackendName == "" {
		return "mock-tts"
	}
	return m.BackendName
}

// Available returns the configured availability error.
func (m *MockSynthesizer) Available() error { return m.AvailErr }

// CallCount returns how many synthesize calls were recorded.
func (m *MockSynthesizer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockPublicCache is an in-memory public cache tier.
type MockPublicCache struct {
	mu      sync.Mutex
	entries map[string][2]string

	GetErr error
	SetErr error
	Gets   int
	Sets   int
}

func (m *MockPublicCache) key(text, lang string) string { return text + "\x00" + lang }

// GetPublicCache returns a previously stored entry.
func (m *MockPublicCache) GetPublicCache(ctx context.Context, text, targetLanguage string) (string, string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gets++
	if m.GetErr != nil {
		return "", "", false, m.GetErr
	}
	entry, ok := m.entries[m.key(text, targetLanguage)]
	if !ok {
		return "", "", false, nil
	}
	return entry[0], entry[1], true, nil
}

// SetPublicCache stores an entry.
func (m *MockPublicCache) SetPublicCache(ctx context.Context, text, targetLanguage, translated, pronunciation string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sets++
	if m.SetErr != nil {
		return m.SetErr
	}
	if m.entries == nil {
		m.entries = make(map[string][2]string)
	}
	m.entries[m.key(text, targetLanguage)] = [2]string{translated, pronunciation}
	return nil
}

// MockFeedbackStore is an in-memory feedback.Store.
type MockFeedbackStore struct {
	mu      sync.Mutex
	records map[string]*feedback.Record
	Saved   []*feedback.Record
}

// GetCorrection returns the record stored under hash, or nil.
func (m *MockFeedbackStore) GetCorrection(ctx context.Context, hash string) (*feedback.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[hash], nil
}

// RecentCorrections returns stored records matching language and user, in
// insertion order (newest last stored is returned first).
func (m *MockFeedbackStore) RecentCorrections(ctx context.Context, targetLanguage, userID string, limit int) ([]feedback.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []feedback.Record
	for i := len(m.Saved) - 1; i >= 0 && len(out) < limit; i-- {
		rec := m.Saved[i]
		if rec.TargetLanguage == targetLanguage && rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

// SaveCorrection stores a record under its hash.
func (m *MockFeedbackStore) SaveCorrection(ctx context.Context, rec *feedback.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records == nil {
		m.records = make(map[string]*feedback.Record)
	}
	m.records[rec.Hash] = rec
	m.Saved = append(m.Saved, rec)
	return nil
}

// MockKeyStore returns stored per-user provider keys.
type MockKeyStore struct {
	Keys map[string]string // "userID/provider" -> key
	Err  error
}

// UserAPIKey returns the configured key for userID and provider.
func (m *MockKeyStore) UserAPIKey(ctx context.Context, userID, provider string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Keys[userID+"/"+provider], nil
}

// MockUsageTracker records usage calls.
type MockUsageTracker struct {
	mu      sync.Mutex
	Err     error
	Tracked []string // "userID/kind/provider"
}

// Track records one usage event.
func (m *MockUsageTracker) Track(ctx context.Context, userID, kind string, count int, cost float64, provider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Tracked = append(m.Tracked, userID+"/"+kind+"/"+provider)
	return nil
}

// StaticVerifier accepts exactly one token.
type StaticVerifier struct {
	Token  string
	UserID string
}

// Verify matches the token against the configured one.
func (v *StaticVerifier) Verify(ctx context.Context, token string) (*gateway.Identity, error) {
	if token != v.Token || v.Token == "" {
		return nil, fmt.Errorf("invalid token")
	}
	return &gateway.Identity{UserID: v.UserID}, nil
}
