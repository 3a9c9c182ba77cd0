package speech

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"codeberg.org/snonux/lingo/internal/retry"
)

// MaxInputLength is the longest text the OpenAI speech API accepts; longer
// input is truncated rather than rejected.
const MaxInputLength = 4096

// openAIVoices are the voices the speech API knows. Anything else maps to
// the default.
var openAIVoices = map[string]openai.SpeechVoice{
	"alloy":   openai.VoiceAlloy,
	"ash":     openai.VoiceAsh,
	"ballad":  openai.VoiceBallad,
	"coral":   openai.VoiceCoral,
	"echo":    openai.VoiceEcho,
	"fable":   openai.VoiceFable,
	"onyx":    openai.VoiceOnyx,
	"nova":    openai.VoiceNova,
	"shimmer": openai.VoiceShimmer,
	"verse":   openai.VoiceVerse,
	// The API accepts "sage" but the SDK has no constant for it yet.
	"sage": openai.SpeechVoice("sage"),
}

const defaultOpenAIVoice = openai.VoiceAlloy

// OpenAISynthesizer calls the OpenAI speech API directly. It accepts either
// the system-wide credential or a caller-supplied one per request.
type OpenAISynthesizer struct {
	apiKey string
	model  openai.SpeechModel
	log    *zap.SugaredLogger
}

// NewOpenAISynthesizer creates the OpenAI speech adapter.
func NewOpenAISynthesizer(apiKey string, log *zap.SugaredLogger) *OpenAISynthesizer {
	return &OpenAISynthesizer{
		apiKey: apiKey,
		model:  openai.TTSModel1,
		log:    log,
	}
}

// Name returns the backend name.
func (s *OpenAISynthesizer) Name() string {
	return "openai"
}

// Available reports whether a credential is configured.
func (s *OpenAISynthesizer) Available() error {
	if s.apiKey == "" {
		return ErrMissingCredential
	}
	return nil
}

// Synthesize produces MP3 audio. Transient failures are retried; HTTP 401
// and 429 map to distinct error kinds so the orchestration layer can react.
func (s *OpenAISynthesizer) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	apiKey := s.apiKey
	if req.APIKey != "" {
		apiKey = req.APIKey
	}
	if apiKey == "" {
		return nil, ErrMissingCredential
	}

	client := openai.NewClient(apiKey)

	speechReq := openai.CreateSpeechRequest{
		Model:          s.model,
		Input:          truncate(req.Text, MaxInputLength),
		Voice:          resolveOpenAIVoice(req.Voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	}

	return retry.Do(ctx, retry.DefaultAttempts, retry.SpeechBaseDelay,
		func(ctx context.Context) ([]byte, error) {
			resp, err := client.CreateSpeech(ctx, speechReq)
			if err != nil {
				return nil, mapOpenAIError(err)
			}
			defer resp.Close()

			audio, err := io.ReadAll(resp)
			if err != nil {
				return nil, fmt.Errorf("failed to read speech response: %w", err)
			}
			if len(audio) == 0 {
				return nil, fmt.Errorf("openai speech returned empty audio")
			}
			return audio, nil
		})
}

// mapOpenAIError converts API errors into the package's error kinds.
func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401:
			return fmt.Errorf("%w: %v", ErrInvalidCredential, err)
		case 429:
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
	}
	return fmt.Errorf("openai speech call failed: %w", err)
}

// resolveOpenAIVoice maps a requested voice name onto the API's voice set.
func resolveOpenAIVoice(voice string) openai.SpeechVoice {
	if v, ok := openAIVoices[voice]; ok {
		return v
	}
	return defaultOpenAIVoice
}

// truncate cuts s to at most maxLen runes.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
