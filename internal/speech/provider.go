package speech

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Request describes one synthesis call.
type Request struct {
	Text     string
	Language string // BCP-47 style code, e.g. "ko-KR" or bare "ko"
	Voice    string // explicit voice name; empty means resolve from Language
	APIKey   string // optional caller-supplied credential override
}

// Synthesizer is the uniform contract all speech backends implement.
type Synthesizer interface {
	// Synthesize returns the audio bytes (MP3) for the given request.
	Synthesize(ctx context.Context, req Request) ([]byte, error)

	// Name returns the backend name.
	Name() string

	// Available reports whether the backend is configured and usable.
	Available() error
}

// Error kinds the orchestration layer distinguishes.
var (
	ErrMissingCredential = errors.New("speech credential missing")
	ErrInvalidCredential = errors.New("speech credential invalid")
	ErrRateLimited       = errors.New("speech provider rate limited")
)

// SynthesizerWithFallback wraps a primary backend with a fallback. Any
// primary failure is logged and hidden from the caller; only a fallback
// failure propagates.
type SynthesizerWithFallback struct {
	primary  Synthesizer
	fallback Synthesizer
	log      *zap.SugaredLogger
}

// NewSynthesizerWithFallback composes primary and fallback backends.
func NewSynthesizerWithFallback(primary, fallback Synthesizer, log *zap.SugaredLogger) *SynthesizerWithFallback {
	return &SynthesizerWithFallback{primary: primary, fallback: fallback, log: log}
}

// Synthesize tries the primary backend first and falls back on any error.
func (s *SynthesizerWithFallback) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	audio, err := s.primary.Synthesize(ctx, req)
	if err == nil {
		return audio, nil
	}

	s.log.Warnw("primary speech backend failed, falling back",
		"primary", s.primary.Name(), "fallback", s.fallback.Name(), "error", err)

	return s.fallback.Synthesize(ctx, req)
}

// Name identifies the composed backend pair.
func (s *SynthesizerWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", s.primary.Name(), s.fallback.Name())
}

// Available reports whether at least one backend is usable.
func (s *SynthesizerWithFallback) Available() error {
	primaryErr := s.primary.Available()
	if primaryErr == nil {
		return nil
	}
	fallbackErr := s.fallback.Available()
	if fallbackErr == nil {
		return nil
	}
	return fmt.Errorf("both speech backends unavailable: primary=%v, fallback=%v", primaryErr, fallbackErr)
}
