package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const googleTTSEndpoint = "https://texttospeech.googleapis.com/v1/text:synthesize"

// GoogleSynthesizer calls the Google Cloud TTS REST API. It resolves a voice
// from the language code unless one is supplied explicitly; a voice whose
// language prefix contradicts the request is re-resolved to the
// same-language default.
type GoogleSynthesizer struct {
	apiKey     string
	httpClient *http.Client
	endpoint   string
	log        *zap.SugaredLogger
}

// NewGoogleSynthesizer creates the Google TTS adapter.
func NewGoogleSynthesizer(apiKey string, log *zap.SugaredLogger) *GoogleSynthesizer {
	return &GoogleSynthesizer{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   googleTTSEndpoint,
		log:        log,
	}
}

// Name returns the backend name.
func (s *GoogleSynthesizer) Name() string {
	return "google"
}

// Available reports whether a service credential is configured.
func (s *GoogleSynthesizer) Available() error {
	if s.apiKey == "" {
		return ErrMissingCredential
	}
	return nil
}

type googleSynthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string `json:"audioEncoding"`
	} `json:"audioConfig"`
}

type googleSynthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// Synthesize produces MP3 audio for the request.
func (s *GoogleSynthesizer) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	if s.apiKey == "" {
		return nil, ErrMissingCredential
	}

	voice := ResolveVoice(req.Language, req.Voice)
	languageCode := voiceLanguageCode(voice)

	var body googleSynthesizeRequest
	body.Input.Text = req.Text
	body.Voice.LanguageCode = languageCode
	body.Voice.Name = voice
	body.AudioConfig.AudioEncoding = "MP3"

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tts request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.endpoint+"?key="+s.apiKey, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build tts request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("google tts call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("google tts returned status %d: %s", resp.StatusCode, string(detail))
	}

	var decoded googleSynthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode tts response: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(decoded.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("failed to decode tts audio payload: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("google tts returned empty audio payload")
	}

	return audio, nil
}

// voiceLanguageCode derives the languageCode field from a voice name
// ("ko-KR-Neural2-A" → "ko-KR").
func voiceLanguageCode(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) >= 2 {
		return parts[0] + "-" + parts[1]
	}
	return voice
}
