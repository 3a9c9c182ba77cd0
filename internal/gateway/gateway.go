package gateway

import (
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"codeberg.org/snonux/lingo/internal/cache"
	"codeberg.org/snonux/lingo/internal/feedback"
	"codeberg.org/snonux/lingo/internal/speech"
	"codeberg.org/snonux/lingo/internal/translation"
)

// Config fixes the orchestration policy knobs.
type Config struct {
	// MaxTextLength is the hard input cap in runes; longer requests are
	// rejected before any provider call.
	MaxTextLength int

	// FastTimeout bounds the fast-provider attempt. On expiry the request
	// falls over to the deep adapter without surfacing the timeout.
	FastTimeout time.Duration

	// ShortSpeechThreshold routes synthesis: texts under it (in runes) prefer
	// the Google backend.
	ShortSpeechThreshold int

	// FastModelThreshold and CheapModelThreshold split auto model selection
	// by input length in runes.
	FastModelThreshold  int
	CheapModelThreshold int

	// MaxChunkLen bounds the playback chunks the gateway returns.
	MaxChunkLen int
}

// DefaultConfig returns the production policy.
func DefaultConfig() Config {
	return Config{
		MaxTextLength:        5000,
		FastTimeout:          5 * time.Second,
		ShortSpeechThreshold: 120,
		FastModelThreshold:   100,
		CheapModelThreshold:  500,
		MaxChunkLen:          200,
	}
}

// Deps collects every collaborator the gateway orchestrates. Optional
// collaborators may be nil; the gateway degrades gracefully without them.
type Deps struct {
	Log *zap.SugaredLogger

	Deep translation.Provider // OpenAI chat adapter
	Fast translation.Provider // Gemini adapter; nil when unconfigured

	GoogleTTS speech.Synthesizer
	OpenAITTS speech.Synthesizer

	Ephemeral     *cache.Cache
	Public        PublicCache        // nil disables the persistent tier
	Feedback      *feedback.Resolver // nil disables correction overrides
	FeedbackStore feedback.Store
	Keys          KeyStore      // nil disables per-user key lookups
	Usage         UsageTracker  // nil disables usage tracking
	Verifier      TokenVerifier // nil rejects all save-feedback calls
}

// Service is the orchestration engine behind every gateway operation.
type Service struct {
	cfg     Config
	deps    Deps
	breaker *gobreaker.CircuitBreaker
	speaker speech.Synthesizer // Google with OpenAI fallback
}

// New wires the orchestrator. The fast provider sits behind a circuit
// breaker so a flapping upstream stops consuming the timeout budget on
// every request.
func New(cfg Config, deps Deps) *Service {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "fast-translation",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			deps.Log.Infow("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	var speaker speech.Synthesizer
	switch {
	case deps.GoogleTTS != nil && deps.OpenAITTS != nil:
		speaker = speech.NewSynthesizerWithFallback(deps.GoogleTTS, deps.OpenAITTS, deps.Log)
	case deps.GoogleTTS != nil:
		speaker = deps.GoogleTTS
	default:
		speaker = deps.OpenAITTS
	}

	return &Service{cfg: cfg, deps: deps, breaker: breaker, speaker: speaker}
}
