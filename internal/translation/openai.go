package translation

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"codeberg.org/snonux/lingo/internal/retry"
)

// OpenAITranslator is the deep adapter: a structured system/user instruction
// pair with quality-tier-gated guidance and strict JSON output.
type OpenAITranslator struct {
	client *openai.Client
	log    *zap.SugaredLogger
}

// NewOpenAITranslator creates the deep adapter.
func NewOpenAITranslator(apiKey string, log *zap.SugaredLogger) (*OpenAITranslator, error) {
	if apiKey == "" {
		return nil, ErrMissingCredential
	}
	return &OpenAITranslator{
		client: openai.NewClient(apiKey),
		log:    log,
	}, nil
}

// Name returns the provider family name.
func (t *OpenAITranslator) Name() string {
	return string(FamilyOpenAI)
}

// Translate calls the chat completion API in strict JSON mode. A
// caller-supplied credential overrides the service key for this call only.
// On decode failure one best-effort extraction between the first '{' and
// last '}' is attempted before the parse error surfaces.
func (t *OpenAITranslator) Translate(ctx context.Context, model Model, req Request) (*Result, error) {
	client := t.client
	if req.APIKey != "" {
		client = openai.NewClient(req.APIKey)
	}

	profile := ProfileFor(req.Quality)
	budget := EffectiveBudget(profile, len(req.Text))

	chatReq := openai.ChatCompletionRequest{
		Model: string(model),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSystemInstruction(req)},
			{Role: openai.ChatMessageRoleUser, Content: buildUserInstruction(req)},
		},
		Temperature: profile.Temperature,
		MaxTokens:   budget,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	raw, err := retry.Do(ctx, retry.DefaultAttempts, retry.TranslationBaseDelay,
		func(ctx context.Context) (string, error) {
			resp, err := client.CreateChatCompletion(ctx, chatReq)
			if err != nil {
				return "", fmt.Errorf("openai call failed: %w", err)
			}
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("openai returned no choices")
			}
			return resp.Choices[0].Message.Content, nil
		})
	if err != nil {
		return nil, err
	}

	return decodeResult(raw)
}

// buildSystemInstruction assembles the system message: base persona, fixed
// rules, tier-gated extra guidance, and pronunciation guidance on request.
func buildSystemInstruction(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a professional translator producing natural %s.\n", req.TargetLanguage)
	b.WriteString("Rules:\n")
	b.WriteString("- Preserve proper nouns, URLs, and product/part codes verbatim.\n")
	b.WriteString("- Match the formality and register of the source text.\n")

	if req.Quality >= 3 {
		b.WriteString("- Keep terminology consistent across the whole text.\n")
	}
	if req.Quality >= 4 {
		b.WriteString("- Adapt idioms and cultural references so they read naturally to a native speaker.\n")
	}

	if req.Pronunciation {
		fmt.Fprintf(&b, "- Also transcribe the translated text phonetically so a non-reader of %s can pronounce it.\n", req.TargetLanguage)
		b.WriteString(`Respond with a JSON object: {"translated_text": "...", "pronunciation": "..."}.`)
	} else {
		b.WriteString(`Respond with a JSON object: {"translated_text": "..."}.`)
	}

	return b.String()
}

// buildUserInstruction is the caller's contextual instruction when present,
// else a default translate instruction.
func buildUserInstruction(req Request) string {
	if req.Instruction != "" {
		return fmt.Sprintf("%s\n\nText:\n%s", req.Instruction, req.Text)
	}
	return fmt.Sprintf("Translate this text to %s:\n%s", req.TargetLanguage, req.Text)
}
