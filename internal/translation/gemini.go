package translation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"codeberg.org/snonux/lingo/internal/retry"
)

// GeminiTranslator is the fast adapter: one role-less prompt, one shot.
// It trades configurability for latency and cost.
type GeminiTranslator struct {
	client *genai.Client
	log    *zap.SugaredLogger
}

// NewGeminiTranslator creates the fast adapter. The key may come from the
// service configuration or from a caller-supplied credential.
func NewGeminiTranslator(ctx context.Context, apiKey string, log *zap.SugaredLogger) (*GeminiTranslator, error) {
	if apiKey == "" {
		return nil, ErrMissingCredential
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiTranslator{client: client, log: log}, nil
}

// Name returns the provider family name.
func (t *GeminiTranslator) Name() string {
	return string(FamilyGemini)
}

// Translate performs a single-shot translation. When pronunciation is
// requested the model is asked for a two-field JSON object; if strict
// parsing fails, the first balanced {...} substring is tried, and as a last
// resort the raw text becomes the translation with empty pronunciation.
func (t *GeminiTranslator) Translate(ctx context.Context, model Model, req Request) (*Result, error) {
	client := t.client
	if req.APIKey != "" {
		override, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  req.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client for caller credential: %w", err)
		}
		client = override
	}

	profile := ProfileFor(req.Quality)
	budget := EffectiveBudget(profile, len(req.Text))

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(profile.Temperature),
		MaxOutputTokens: int32(budget),
	}
	if req.Pronunciation {
		config.ResponseMIMEType = "application/json"
	}

	prompt := buildGeminiPrompt(req)

	raw, err := retry.Do(ctx, retry.DefaultAttempts, retry.TranslationBaseDelay,
		func(ctx context.Context) (string, error) {
			resp, err := client.Models.GenerateContent(ctx, string(model), genai.Text(prompt), config)
			if err != nil {
				return "", fmt.Errorf("gemini call failed: %w", err)
			}
			text := resp.Text()
			if strings.TrimSpace(text) == "" {
				return "", fmt.Errorf("gemini returned empty response")
			}
			return text, nil
		})
	if err != nil {
		return nil, err
	}

	if !req.Pronunciation {
		return &Result{Translation: strings.TrimSpace(raw)}, nil
	}

	result, err := decodeResult(raw)
	if err == nil {
		return result, nil
	}
	if salvaged, ok := extractBalancedObject(raw); ok {
		if result, err := decodeResult(salvaged); err == nil {
			return result, nil
		}
	}

	// Last resort: treat the whole output as the translation.
	t.log.Warnw("gemini output not parseable as JSON, using raw text", "model", model)
	return &Result{Translation: strings.TrimSpace(raw)}, nil
}

// buildGeminiPrompt constructs the role-less prompt for the fast adapter.
func buildGeminiPrompt(req Request) string {
	var b strings.Builder

	source := req.SourceLanguage
	if source == "" {
		source = "the source language"
	}

	if req.Pronunciation {
		fmt.Fprintf(&b, "Translate the following text from %s to %s and transcribe the translation phonetically. ", source, req.TargetLanguage)
		b.WriteString(`Respond with only a JSON object of the form {"translated_text": "...", "pronunciation": "..."}.`)
	} else {
		fmt.Fprintf(&b, "Translate the following text from %s to %s. ", source, req.TargetLanguage)
		b.WriteString("Respond with only the translated text, nothing else.")
	}

	if req.Instruction != "" {
		b.WriteString("\nAdditional instruction: ")
		b.WriteString(req.Instruction)
	}

	b.WriteString("\n\nText: ")
	b.WriteString(req.Text)

	return b.String()
}
