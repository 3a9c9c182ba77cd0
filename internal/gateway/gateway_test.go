package gateway_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/lingo/internal/cache"
	"codeberg.org/snonux/lingo/internal/feedback"
	"codeberg.org/snonux/lingo/internal/gateway"
	"codeberg.org/snonux/lingo/internal/testutil"
	"codeberg.org/snonux/lingo/internal/translation"
)

type fixture struct {
	deep     *testutil.MockTranslationProvider
	fast     *testutil.MockTranslationProvider
	google   *testutil.MockSynthesizer
	openai   *testutil.MockSynthesizer
	public   *testutil.MockPublicCache
	store    *testutil.MockFeedbackStore
	keys     *testutil.MockKeyStore
	usage    *testutil.MockUsageTracker
	verifier *testutil.StaticVerifier
}

func newFixture() *fixture {
	return &fixture{
		deep:     &testutil.MockTranslationProvider{ProviderName: "openai"},
		fast:     &testutil.MockTranslationProvider{ProviderName: "gemini"},
		google:   &testutil.MockSynthesizer{BackendName: "google", Audio: []byte("google-audio")},
		openai:   &testutil.MockSynthesizer{BackendName: "openai", Audio: []byte("openai-audio")},
		public:   &testutil.MockPublicCache{},
		store:    &testutil.MockFeedbackStore{},
		keys:     &testutil.MockKeyStore{},
		usage:    &testutil.MockUsageTracker{},
		verifier: &testutil.StaticVerifier{Token: "secret", UserID: "user1"},
	}
}

func (f *fixture) service(cfg gateway.Config) *gateway.Service {
	return gateway.New(cfg, gateway.Deps{
		Log:           zap.NewNop().Sugar(),
		Deep:          f.deep,
		Fast:          f.fast,
		GoogleTTS:     f.google,
		OpenAITTS:     f.openai,
		Ephemeral:     cache.New(time.Hour),
		Public:        f.public,
		Feedback:      feedback.NewResolver(f.store),
		FeedbackStore: f.store,
		Keys:          f.keys,
		Usage:         f.usage,
		Verifier:      f.verifier,
	})
}

func TestTranslateRejectsInvalidInput(t *testing.T) {
	f := newFixture()
	s := f.service(gateway.DefaultConfig())
	ctx := context.Background()

	cases := []struct {
		name string
		req  gateway.TranslateRequest
	}{
		{"empty text", gateway.TranslateRequest{Text: "   ", TargetLanguage: "Korean"}},
		{"oversized text", gateway.TranslateRequest{Text: strings.Repeat("a", 5001), TargetLanguage: "Korean"}},
		{"missing language", gateway.TranslateRequest{Text: "hello"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Translate(ctx, tc.req)
			if !errors.Is(err, gateway.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	if f.deep.CallCount() != 0 || f.fast.CallCount() != 0 {
		t.Errorf("rejected requests must not reach providers: deep=%d fast=%d",
			f.deep.CallCount(), f.fast.CallCount())
	}
}

func TestTranslateCachesRepeatedRequests(t *testing.T) {
	f := newFixture()
	s := f.service(gateway.DefaultConfig())
	ctx := context.Background()

	req := gateway.TranslateRequest{Text: "hello world", TargetLanguage: "Korean", Model: "gpt-4o-mini"}

	first, err := s.Translate(ctx, req)
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if first.CacheHit {
		t.Error("first call must not be a cache hit")
	}

	second, err := s.Translate(ctx, req)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if !second.CacheHit {
		t.Error("second identical call must hit the cache")
	}
	if second.Translation != first.Translation {
		t.Errorf("cached translation diverged: %q vs %q", second.Translation, first.Translation)
	}
	if f.deep.CallCount() != 1 {
		t.Errorf("expected exactly one provider call, got %d", f.deep.CallCount())
	}
}

func TestTranslateContextualRequestBypassesCache(t *testing.T) {
	f := newFixture()
	s := f.service(gateway.DefaultConfig())
	ctx := context.Background()

	f.public.SetPublicCache(ctx, "hello", "Korean", "cached translation", "")
	setsBefore := f.public.Sets

	result, err := s.Translate(ctx, gateway.TranslateRequest{
		Text: "hello", TargetLanguage: "Korean", Model: "gpt-4o-mini",
		Instruction: "formal register",
	})
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if result.CacheHit {
		t.Error("contextual request must not report a cache hit")
	}
	if f.deep.CallCount() != 1 {
		t.Errorf("contextual request must reach the provider, calls=%d", f.deep.CallCount())
	}
	if f.public.Sets != setsBefore {
		t.Error("contextual result must not be written to the public cache")
	}
	if got := f.deep.Calls[0].Instruction; got != "formal register" {
		t.Errorf("instruction not forwarded: %q", got)
	}
}

func TestTranslateExactCorrectionShortCircuits(t *testing.T) {
	f := newFixture()
	s := f.service(gateway.DefaultConfig())
	ctx := context.Background()

	f.store.SaveCorrection(ctx, &feedback.Record{
		Hash:           feedback.Hash("good morning", "Korean", "user1"),
		SourceText:     "good morning",
		TargetLanguage: "Korean",
		UserID:         "user1",
		CorrectedText:  "좋은 아침입니다",
	})

	result, err := s.Translate(ctx, gateway.TranslateRequest{
		Text: "good morning", TargetLanguage: "Korean", UserID: "user1",
	})
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if !result.FeedbackApplied || result.FeedbackMatchType != "exact" {
		t.Errorf("expected exact feedback match, got %+v", result)
	}
	if result.Translation != "좋은 아침입니다" {
		t.Errorf("unexpected translation: %q", result.Translation)
	}
	if result.IsAITranslation {
		t.Error("correction result must not be flagged as AI output")
	}
	if f.deep.CallCount() != 0 || f.fast.CallCount() != 0 {
		t.Error("correction match must skip all providers")
	}
}

func TestTranslateFastTimeoutFallsBackSilently(t *testing.T) {
	f := newFixture()
	f.fast.Delay = 500 * time.Millisecond
	f.deep.ProviderName = "openai"

	cfg := gateway.DefaultConfig()
	cfg.FastTimeout = 20 * time.Millisecond
	s := f.service(cfg)

	result, err := s.Translate(context.Background(), gateway.TranslateRequest{
		Text: "hello", TargetLanguage: "Korean", Model: "gemini",
	})
	if err != nil {
		t.Fatalf("fallback must hide the fast failure, got %v", err)
	}
	if result.UsedModel != "gpt-4o-mini" {
		t.Errorf("expected fallback to gpt-4o-mini, got %q", result.UsedModel)
	}
	if result.Provider != "openai" {
		t.Errorf("expected deep provider, got %q", result.Provider)
	}
	if f.fast.CallCount() != 1 || f.deep.CallCount() != 1 {
		t.Errorf("expected one call to each provider: fast=%d deep=%d",
			f.fast.CallCount(), f.deep.CallCount())
	}
}

func TestTranslateAppliesDomainTerminology(t *testing.T) {
	f := newFixture()
	f.deep.Result = &translation.Result{Translation: "The loss rate is too high"}
	s := f.service(gateway.DefaultConfig())

	result, err := s.Translate(context.Background(), gateway.TranslateRequest{
		Text: "tell me about loss", TargetLanguage: "Vietnamese",
		Model: "gpt-4o-mini", Domain: "manufacturing",
	})
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if !strings.Contains(result.Translation, "Thất thoát") {
		t.Errorf("terminology not applied: %q", result.Translation)
	}
}

func TestTranslateAutoModelSelection(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		quality int
		want    string
	}{
		{"short goes fast", "hi there", 0, "gemini-2.0-flash"},
		{"medium goes cheap", strings.Repeat("word ", 40), 0, "gpt-4o-mini"},
		{"long goes premium", strings.Repeat("word ", 200), 0, "gpt-4o"},
		{"quality does not preempt length routing", "hi there", 4, "gemini-2.0-flash"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			s := f.service(gateway.DefaultConfig())
			result, err := s.Translate(context.Background(), gateway.TranslateRequest{
				Text: tc.text, TargetLanguage: "Korean", Quality: tc.quality,
			})
			if err != nil {
				t.Fatalf("translate failed: %v", err)
			}
			if result.UsedModel != tc.want {
				t.Errorf("expected model %q, got %q", tc.want, result.UsedModel)
			}
		})
	}
}

func TestTranslateCacheHitDoesNotReapplyTerminology(t *testing.T) {
	f := newFixture()
	f.deep.Result = &translation.Result{Translation: "The SMD feeder failed"}
	s := f.service(gateway.DefaultConfig())
	ctx := context.Background()

	req := gateway.TranslateRequest{
		Text: "the machine part broke", TargetLanguage: "Vietnamese",
		Model: "gpt-4o-mini", Domain: "manufacturing",
	}

	first, err := s.Translate(ctx, req)
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if !strings.Contains(first.Translation, "linh kiện dán (SMD)") {
		t.Fatalf("terminology not applied on live call: %q", first.Translation)
	}

	second, err := s.Translate(ctx, req)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if !second.CacheHit {
		t.Fatal("second identical call must hit the cache")
	}
	if second.Translation != first.Translation {
		t.Errorf("cache hit must not re-substitute terms:\nfirst:  %q\nsecond: %q",
			first.Translation, second.Translation)
	}
	if f.deep.CallCount() != 1 {
		t.Errorf("expected exactly one provider call, got %d", f.deep.CallCount())
	}
}

func TestTranslateForwardsCallerCredential(t *testing.T) {
	f := newFixture()
	s := f.service(gateway.DefaultConfig())

	result, err := s.Translate(context.Background(), gateway.TranslateRequest{
		Text: "hello", TargetLanguage: "Korean", Model: "gpt-4o-mini",
		APIKeys: map[string]string{"openai": "sk-user-supplied"},
	})
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if got := f.deep.Calls[0].APIKey; got != "sk-user-supplied" {
		t.Errorf("caller credential not forwarded to the adapter, got %q", got)
	}
	if !result.UsedUserKey {
		t.Error("expected UsedUserKey when the caller key served the call")
	}
}

func TestTranslateForwardsFastFamilyCredential(t *testing.T) {
	f := newFixture()
	s := f.service(gateway.DefaultConfig())

	result, err := s.Translate(context.Background(), gateway.TranslateRequest{
		Text: "hello", TargetLanguage: "Korean", Model: "gemini",
		APIKeys: map[string]string{"gemini": "g-user-supplied"},
	})
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if got := f.fast.Calls[0].APIKey; got != "g-user-supplied" {
		t.Errorf("caller credential not forwarded to the fast adapter, got %q", got)
	}
	if !result.UsedUserKey {
		t.Error("expected UsedUserKey when the caller key served the call")
	}
}

func TestTranslateUsesStoredUserKey(t *testing.T) {
	f := newFixture()
	f.keys.Keys = map[string]string{"user1/openai": "sk-stored"}
	s := f.service(gateway.DefaultConfig())

	result, err := s.Translate(context.Background(), gateway.TranslateRequest{
		Text: "hello", TargetLanguage: "Korean", Model: "gpt-4o-mini", UserID: "user1",
	})
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if got := f.deep.Calls[0].APIKey; got != "sk-stored" {
		t.Errorf("stored user credential not forwarded, got %q", got)
	}
	if !result.UsedUserKey {
		t.Error("expected UsedUserKey when the stored key served the call")
	}
}

func TestTranslateServiceKeyDoesNotReportUserKey(t *testing.T) {
	f := newFixture()
	s := f.service(gateway.DefaultConfig())

	result, err := s.Translate(context.Background(), gateway.TranslateRequest{
		Text: "hello", TargetLanguage: "Korean", Model: "gpt-4o-mini",
	})
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if got := f.deep.Calls[0].APIKey; got != "" {
		t.Errorf("expected empty per-call credential, got %q", got)
	}
	if result.UsedUserKey {
		t.Error("UsedUserKey must be false when the service key served the call")
	}
}

func TestSpeakRoutesByLength(t *testing.T) {
	f := newFixture()
	s := f.service(gateway.DefaultConfig())
	ctx := context.Background()

	if _, err := s.Speak(ctx, gateway.SpeakRequest{Text: "short text", Language: "ko"}); err != nil {
		t.Fatalf("speak failed: %v", err)
	}
	if f.google.CallCount() != 1 {
		t.Errorf("short text must go through the Google-first pair, google=%d", f.google.CallCount())
	}

	long := strings.Repeat("a long sentence. ", 20)
	if _, err := s.Speak(ctx, gateway.SpeakRequest{Text: long, Language: "ko"}); err != nil {
		t.Fatalf("speak failed: %v", err)
	}
	if f.openai.CallCount() != 1 {
		t.Errorf("long text must go straight to OpenAI, openai=%d", f.openai.CallCount())
	}
}

func TestSpeakFallsBackWhenGoogleFails(t *testing.T) {
	f := newFixture()
	f.google.Err = errors.New("quota exhausted")
	s := f.service(gateway.DefaultConfig())

	audio, err := s.Speak(context.Background(), gateway.SpeakRequest{Text: "short", Language: "ko"})
	if err != nil {
		t.Fatalf("fallback must hide the primary failure, got %v", err)
	}
	if string(audio) != "openai-audio" {
		t.Errorf("expected fallback audio, got %q", audio)
	}
}

func TestSpeakChunkPaging(t *testing.T) {
	f := newFixture()
	cfg := gateway.DefaultConfig()
	cfg.MaxChunkLen = 30
	s := f.service(cfg)
	ctx := context.Background()

	text := "First sentence here. Second sentence here. Third sentence here."
	first, err := s.SpeakChunk(ctx, gateway.SpeakChunkRequest{
		SpeakRequest: gateway.SpeakRequest{Text: text, Language: "en"},
		ChunkIndex:   0,
	})
	if err != nil {
		t.Fatalf("speak-chunk failed: %v", err)
	}
	if first.Completed {
		t.Error("first chunk of several must not be marked completed")
	}
	if first.Audio == nil || first.Text == "" {
		t.Errorf("expected audio and text for chunk 0, got %+v", first)
	}
	if first.TotalChunks < 2 {
		t.Fatalf("expected multiple chunks, got %d", first.TotalChunks)
	}

	past, err := s.SpeakChunk(ctx, gateway.SpeakChunkRequest{
		SpeakRequest: gateway.SpeakRequest{Text: text, Language: "en"},
		ChunkIndex:   first.TotalChunks,
	})
	if err != nil {
		t.Fatalf("speak-chunk failed: %v", err)
	}
	if !past.Completed || past.Audio != nil {
		t.Errorf("index past the end must return a bare completed marker, got %+v", past)
	}
}

func TestSaveFeedbackRequiresValidToken(t *testing.T) {
	f := newFixture()
	s := f.service(gateway.DefaultConfig())
	ctx := context.Background()

	err := s.SaveFeedback(ctx, gateway.SaveFeedbackRequest{
		Token: "wrong", Text: "hello", TargetLanguage: "Korean", CorrectedText: "안녕하세요",
	})
	if !errors.Is(err, gateway.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(f.store.Saved) != 0 {
		t.Error("rejected feedback must not be stored")
	}

	err = s.SaveFeedback(ctx, gateway.SaveFeedbackRequest{
		Token: "secret", Text: "hello", TargetLanguage: "Korean",
		OriginalOutput: "안녕", CorrectedText: "안녕하세요",
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if len(f.store.Saved) != 1 || f.store.Saved[0].UserID != "user1" {
		t.Fatalf("expected one correction scoped to user1, got %+v", f.store.Saved)
	}
}
