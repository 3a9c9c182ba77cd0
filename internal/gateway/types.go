package gateway

// TranslateRequest is the gateway-level translation request, already decoded
// from the wire.
type TranslateRequest struct {
	Text           string
	SourceLanguage string
	TargetLanguage string
	Quality        int    // ordinal 1-5; 0 means default
	Pronunciation  bool   // request romanized pronunciation alongside the translation
	Instruction    string // caller-supplied contextual instruction; disables caching
	Domain         string // terminology domain, e.g. "manufacturing"
	Model          string // raw caller model name, normalized at ingress
	UserID         string // empty for anonymous callers
	APIKeys        map[string]string
}

// TranslateResult carries the translation plus the provenance flags callers
// display.
type TranslateResult struct {
	Translation       string
	Pronunciation     string
	Chunks            []string
	UsedModel         string
	Provider          string
	UsedUserKey       bool
	CacheHit          bool
	FeedbackApplied   bool
	FeedbackMatchType string
	QualityLevel      int
	IsAITranslation   bool
}

// SpeakRequest is one synthesis request.
type SpeakRequest struct {
	Text         string
	Language     string
	Voice        string
	UseGoogleTTS bool   // force the Google backend regardless of length
	APIKey       string // caller-supplied credential override
	UserID       string
}

// SpeakChunkRequest asks for one chunk of a long text's audio.
type SpeakChunkRequest struct {
	SpeakRequest
	ChunkIndex int
}

// SpeakChunkResult is one page of progressive audio playback. Audio is nil
// once ChunkIndex has run past the final chunk.
type SpeakChunkResult struct {
	Audio       []byte
	ChunkIndex  int
	TotalChunks int
	Text        string // the chunk that was synthesized
	Completed   bool
}

// SaveFeedbackRequest stores a human correction for a previous translation.
type SaveFeedbackRequest struct {
	Token          string
	Text           string
	TargetLanguage string
	OriginalOutput string
	CorrectedText  string
}
