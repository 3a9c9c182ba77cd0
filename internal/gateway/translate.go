package gateway

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"codeberg.org/snonux/lingo/internal/chunk"
	"codeberg.org/snonux/lingo/internal/feedback"
	"codeberg.org/snonux/lingo/internal/terminology"
	"codeberg.org/snonux/lingo/internal/translation"
)

// rawTranslation is what the cache tiers hold: provider output before any
// terminology substitution. Post-processing runs on every read path exactly
// once, so glossary replacements never nest on cache hits.
type rawTranslation struct {
	Translation   string
	Pronunciation string
	Model         string
	Provider      string
}

// Translate runs the full translation lifecycle: validation, correction
// override, cache tiers, provider selection with fast-path racing and deep
// fallback, terminology post-processing, chunking, cache write-back, and
// usage tracking.
func (s *Service) Translate(ctx context.Context, req TranslateRequest) (*TranslateResult, error) {
	if err := s.validateTranslate(req); err != nil {
		return nil, err
	}

	// A stored human correction beats every provider and cache tier.
	if match, err := s.resolveCorrection(ctx, req); err != nil {
		s.deps.Log.Warnw("correction lookup failed", "error", err)
	} else if match != nil {
		return s.correctionResult(req, match), nil
	}

	// Contextual requests are excluded from caching: the instruction changes
	// the output, but only the text and language key the tiers.
	cacheable := req.Instruction == ""
	if cacheable {
		if result := s.cachedResult(ctx, req); result != nil {
			return result, nil
		}
	}

	raw, usedUserKey, err := s.liveTranslate(ctx, req)
	if err != nil {
		return nil, err
	}

	result := s.assembleResult(req, raw)
	result.UsedUserKey = usedUserKey
	result.IsAITranslation = true

	if cacheable {
		s.storeResult(ctx, req, raw)
	}
	s.trackUsage(ctx, req.UserID, "translate", raw.Provider)

	return result, nil
}

func (s *Service) validateTranslate(req TranslateRequest) error {
	if strings.TrimSpace(req.Text) == "" {
		return errEmptyText
	}
	if utf8.RuneCountInString(req.Text) > s.cfg.MaxTextLength {
		return errTextTooLong
	}
	if strings.TrimSpace(req.TargetLanguage) == "" {
		return errNoLanguage
	}
	return nil
}

func (s *Service) resolveCorrection(ctx context.Context, req TranslateRequest) (*feedback.Match, error) {
	if s.deps.Feedback == nil {
		return nil, nil
	}
	return s.deps.Feedback.Resolve(ctx, req.Text, req.TargetLanguage, req.UserID)
}

// correctionResult turns a stored correction into a full result. Terminology
// is deliberately not applied: the human's exact wording wins.
func (s *Service) correctionResult(req TranslateRequest, match *feedback.Match) *TranslateResult {
	text := match.Record.CorrectedText
	return &TranslateResult{
		Translation:       text,
		Chunks:            chunk.Split(text, s.cfg.MaxChunkLen),
		Provider:          "feedback",
		FeedbackApplied:   true,
		FeedbackMatchType: string(match.Kind),
		QualityLevel:      req.Quality,
		IsAITranslation:   false,
	}
}

// cachedResult consults the persistent public tier first, then the
// process-local ephemeral tier. Both hold raw provider output; the hit is
// post-processed the same way a live result is.
func (s *Service) cachedResult(ctx context.Context, req TranslateRequest) *TranslateResult {
	if s.deps.Public != nil {
		translated, pronunciation, found, err := s.deps.Public.GetPublicCache(ctx, req.Text, req.TargetLanguage)
		if err != nil {
			s.deps.Log.Warnw("public cache lookup failed", "error", err)
		} else if found && (pronunciation != "" || !req.Pronunciation) {
			result := s.assembleResult(req, rawTranslation{
				Translation:   translated,
				Pronunciation: pronunciation,
				Model:         "cache",
				Provider:      "cache",
			})
			result.CacheHit = true
			result.IsAITranslation = true
			return result
		}
	}

	if s.deps.Ephemeral != nil {
		if value, ok := s.deps.Ephemeral.Get(s.ephemeralKey(req)); ok {
			if raw, ok := value.(rawTranslation); ok {
				result := s.assembleResult(req, raw)
				result.CacheHit = true
				result.IsAITranslation = true
				return result
			}
		}
	}

	return nil
}

// ephemeralKey keys the local tier on everything that shapes the output, so
// requests differing only in quality or pronunciation never collide. There
// is no instruction component: contextual requests never reach either tier.
func (s *Service) ephemeralKey(req TranslateRequest) string {
	sum := sha256.Sum256([]byte(req.Text))
	return fmt.Sprintf("translate|%s|%d|%t|%s|%s",
		strings.ToLower(req.TargetLanguage), req.Quality, req.Pronunciation,
		strings.ToLower(req.Domain), hex.EncodeToString(sum[:]))
}

// liveTranslate performs provider selection and the fast-with-fallback race.
// It returns the raw provider output plus whether a user-supplied credential
// served the winning call.
func (s *Service) liveTranslate(ctx context.Context, req TranslateRequest) (rawTranslation, bool, error) {
	model := s.selectModel(req)
	keys := s.lookupUserKeys(ctx, req)

	providerReq := translation.Request{
		Text:           req.Text,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		Quality:        req.Quality,
		Pronunciation:  req.Pronunciation,
		Instruction:    s.instructionFor(req),
	}

	if model.Family() == translation.FamilyGemini {
		fastReq := providerReq
		fastReq.APIKey = keys["gemini"]
		if result, ok := s.tryFast(ctx, model, fastReq); ok {
			return rawTranslation{
				Translation:   result.Translation,
				Pronunciation: result.Pronunciation,
				Model:         string(model),
				Provider:      s.deps.Fast.Name(),
			}, keys["gemini"] != "", nil
		}
		// Fast family failed or timed out; fall over to the cheap deep model.
		model = translation.ModelGPT4oMini
	}

	deepReq := providerReq
	deepReq.APIKey = keys["openai"]
	result, err := s.deps.Deep.Translate(ctx, model, deepReq)
	if err != nil {
		return rawTranslation{}, false, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	return rawTranslation{
		Translation:   result.Translation,
		Pronunciation: result.Pronunciation,
		Model:         string(model),
		Provider:      s.deps.Deep.Name(),
	}, keys["openai"] != "", nil
}

// selectModel normalizes the caller's model name and resolves auto selection
// by input length: short texts go to the fast family when it is configured,
// medium texts to the cheap deep model, long texts to the premium one.
// Quality shapes temperature and token ceilings inside the adapters, never
// the auto routing.
func (s *Service) selectModel(req TranslateRequest) translation.Model {
	model := translation.NormalizeModel(req.Model)
	if model != translation.ModelAuto {
		return model
	}

	length := utf8.RuneCountInString(req.Text)
	switch {
	case length < s.cfg.FastModelThreshold && s.deps.Fast != nil:
		return translation.ModelGeminiFlash
	case length < s.cfg.CheapModelThreshold:
		return translation.ModelGPT4oMini
	default:
		return translation.ModelGPT4o
	}
}

// lookupUserKeys fetches the caller's stored provider keys concurrently.
// Request-supplied keys win over stored ones; lookup failures degrade to the
// service credentials.
func (s *Service) lookupUserKeys(ctx context.Context, req TranslateRequest) map[string]string {
	keys := map[string]string{
		"openai": req.APIKeys["openai"],
		"gemini": req.APIKeys["gemini"],
	}
	if s.deps.Keys == nil || req.UserID == "" {
		return keys
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, provider := range []string{"openai", "gemini"} {
		if keys[provider] != "" {
			continue
		}
		wg.Add(1)
		go func(provider string) {
			defer wg.Done()
			key, err := s.deps.Keys.UserAPIKey(ctx, req.UserID, provider)
			if err != nil {
				s.deps.Log.Warnw("user key lookup failed", "provider", provider, "error", err)
				return
			}
			mu.Lock()
			keys[provider] = key
			mu.Unlock()
		}(provider)
	}
	wg.Wait()
	return keys
}

// tryFast runs the fast provider behind the circuit breaker under a hard
// timeout. Every failure mode, including the breaker being open, reports
// ok=false so the caller falls back silently.
func (s *Service) tryFast(ctx context.Context, model translation.Model, req translation.Request) (*translation.Result, bool) {
	if s.deps.Fast == nil {
		return nil, false
	}

	fastCtx, cancel := context.WithTimeout(ctx, s.cfg.FastTimeout)
	defer cancel()

	value, err := s.breaker.Execute(func() (interface{}, error) {
		return s.deps.Fast.Translate(fastCtx, model, req)
	})
	if err != nil {
		s.deps.Log.Warnw("fast provider failed, falling back",
			"model", model, "error", err)
		return nil, false
	}

	result, ok := value.(*translation.Result)
	if !ok || result == nil {
		return nil, false
	}
	return result, true
}

// instructionFor prepends the domain preamble to any caller instruction so
// the deep adapter sees the shop-floor context even on contextual requests.
func (s *Service) instructionFor(req TranslateRequest) string {
	preamble := terminology.Preamble(req.Domain)
	switch {
	case preamble == "":
		return req.Instruction
	case req.Instruction == "":
		return preamble
	default:
		return preamble + " " + req.Instruction
	}
}

// assembleResult applies terminology post-processing to the translation
// (never the pronunciation) and attaches playback chunks.
func (s *Service) assembleResult(req TranslateRequest, raw rawTranslation) *TranslateResult {
	translated := terminology.Apply(raw.Translation, req.Domain, req.TargetLanguage)
	return &TranslateResult{
		Translation:   translated,
		Pronunciation: raw.Pronunciation,
		Chunks:        chunk.Split(translated, s.cfg.MaxChunkLen),
		UsedModel:     raw.Model,
		Provider:      raw.Provider,
		QualityLevel:  req.Quality,
	}
}

// storeResult writes the raw provider output back to both cache tiers.
// Failures are logged only; caching never fails a request.
func (s *Service) storeResult(ctx context.Context, req TranslateRequest, raw rawTranslation) {
	if s.deps.Public != nil {
		if err := s.deps.Public.SetPublicCache(ctx, req.Text, req.TargetLanguage, raw.Translation, raw.Pronunciation); err != nil {
			s.deps.Log.Warnw("public cache write failed", "error", err)
		}
	}
	if s.deps.Ephemeral != nil {
		s.deps.Ephemeral.Set(s.ephemeralKey(req), raw)
	}
}

// trackUsage records one billable operation. Nil tracker and errors are both
// silent no-ops from the caller's point of view.
func (s *Service) trackUsage(ctx context.Context, userID, kind, provider string) {
	if s.deps.Usage == nil {
		return
	}
	if err := s.deps.Usage.Track(ctx, userID, kind, 1, 0, provider); err != nil {
		s.deps.Log.Warnw("usage tracking failed", "kind", kind, "error", err)
	}
}
