package translation

import (
	"context"
	"errors"
)

// Request describes a single translation to perform.
type Request struct {
	Text           string
	SourceLanguage string
	TargetLanguage string
	Quality        int    // ordinal 1-5
	Pronunciation  bool   // request phonetic guidance alongside the translation
	Instruction    string // optional caller-supplied contextual instruction
	APIKey         string // optional caller-supplied credential override
}

// Result is what every provider adapter returns. Fields are never nil;
// pronunciation is empty when not requested or not produced.
type Result struct {
	Translation   string
	Pronunciation string
}

// Provider is the uniform contract both adapter families implement.
type Provider interface {
	// Translate performs the translation for the given model. Implementations
	// retry transient failures internally.
	Translate(ctx context.Context, model Model, req Request) (*Result, error)

	// Name returns the provider family name.
	Name() string
}

// ErrMissingCredential is returned when an adapter has no API key to work
// with. The orchestrator treats it as a fallback trigger.
var ErrMissingCredential = errors.New("provider credential missing")

// ErrParse is returned when a provider's structured output cannot be decoded
// even after best-effort recovery.
var ErrParse = errors.New("unparseable provider output")
