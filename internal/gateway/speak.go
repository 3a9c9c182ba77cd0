package gateway

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"codeberg.org/snonux/lingo/internal/chunk"
	"codeberg.org/snonux/lingo/internal/feedback"
	"codeberg.org/snonux/lingo/internal/speech"
)

// Speak synthesizes the whole text in one call. Short texts and explicit
// requests prefer the Google backend (with OpenAI fallback); long texts go
// straight to OpenAI, which handles arbitrary lengths by truncation.
func (s *Service) Speak(ctx context.Context, req SpeakRequest) ([]byte, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errEmptyText
	}
	if utf8.RuneCountInString(req.Text) > s.cfg.MaxTextLength {
		return nil, errTextTooLong
	}

	audio, err := s.synthesizerFor(req).Synthesize(ctx, speech.Request{
		Text:     req.Text,
		Language: req.Language,
		Voice:    req.Voice,
		APIKey:   req.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	s.trackUsage(ctx, req.UserID, "speak", "speech")
	return audio, nil
}

// SpeakChunk synthesizes one playback chunk of a long text. An index past
// the final chunk returns a completed marker with no audio, which is how
// clients detect the end of the stream.
func (s *Service) SpeakChunk(ctx context.Context, req SpeakChunkRequest) (*SpeakChunkResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errEmptyText
	}
	if req.ChunkIndex < 0 {
		return nil, fmt.Errorf("%w: chunk index must not be negative", ErrValidation)
	}

	chunks := chunk.Split(req.Text, s.cfg.MaxChunkLen)
	if req.ChunkIndex >= len(chunks) {
		return &SpeakChunkResult{
			ChunkIndex:  req.ChunkIndex,
			TotalChunks: len(chunks),
			Completed:   true,
		}, nil
	}

	text := chunks[req.ChunkIndex]
	audio, err := s.synthesizerFor(req.SpeakRequest).Synthesize(ctx, speech.Request{
		Text:     text,
		Language: req.Language,
		Voice:    req.Voice,
		APIKey:   req.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	s.trackUsage(ctx, req.UserID, "speak-chunk", "speech")
	return &SpeakChunkResult{
		Audio:       audio,
		ChunkIndex:  req.ChunkIndex,
		TotalChunks: len(chunks),
		Text:        text,
		Completed:   req.ChunkIndex == len(chunks)-1,
	}, nil
}

// synthesizerFor picks the backend: forced Google, short texts through the
// Google-first fallback pair, everything else through OpenAI when present.
func (s *Service) synthesizerFor(req SpeakRequest) speech.Synthesizer {
	if req.UseGoogleTTS {
		return s.speaker
	}
	if utf8.RuneCountInString(req.Text) < s.cfg.ShortSpeechThreshold {
		return s.speaker
	}
	if s.deps.OpenAITTS != nil {
		return s.deps.OpenAITTS
	}
	return s.speaker
}

// SaveFeedback verifies the caller and stores a correction override keyed to
// their identity.
func (s *Service) SaveFeedback(ctx context.Context, req SaveFeedbackRequest) error {
	if s.deps.Verifier == nil {
		return ErrUnauthorized
	}
	identity, err := s.deps.Verifier.Verify(ctx, req.Token)
	if err != nil || identity == nil || identity.UserID == "" {
		return ErrUnauthorized
	}

	if strings.TrimSpace(req.Text) == "" || strings.TrimSpace(req.CorrectedText) == "" {
		return fmt.Errorf("%w: text and corrected text are required", ErrValidation)
	}
	if strings.TrimSpace(req.TargetLanguage) == "" {
		return errNoLanguage
	}

	rec := &feedback.Record{
		Hash:           feedback.Hash(req.Text, req.TargetLanguage, identity.UserID),
		SourceText:     req.Text,
		TargetLanguage: req.TargetLanguage,
		UserID:         identity.UserID,
		OriginalOutput: req.OriginalOutput,
		CorrectedText:  req.CorrectedText,
	}
	if err := s.deps.FeedbackStore.SaveCorrection(ctx, rec); err != nil {
		return fmt.Errorf("saving correction: %w", err)
	}

	s.trackUsage(ctx, identity.UserID, "save-feedback", "feedback")
	return nil
}
