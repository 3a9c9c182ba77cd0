package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"codeberg.org/snonux/lingo/internal/gateway"
)

// apiRequest is the union of all action payloads. Unknown fields are
// ignored so clients can evolve independently.
type apiRequest struct {
	Action string `json:"action"`

	// translate
	Text           string            `json:"text"`
	SourceLanguage string            `json:"source_language"`
	TargetLanguage string            `json:"target_language"`
	Quality        int               `json:"quality"`
	Pronunciation  bool              `json:"pronunciation"`
	Instruction    string            `json:"instruction"`
	Domain         string            `json:"domain"`
	Model          string            `json:"model"`
	UserID         string            `json:"user_id"`
	APIKeys        map[string]string `json:"api_keys"`

	// speak / speak-chunk
	Language     string `json:"language"`
	Voice        string `json:"voice"`
	VoiceName    string `json:"voiceName"` // wins over voice when both are set
	UseGoogleTTS bool   `json:"useGoogleTTS"`
	APIKey       string `json:"api_key"`
	ChunkIndex   int    `json:"chunkIndex"`

	// save-feedback
	Token          string `json:"token"`
	OriginalOutput string `json:"original_output"`
	CorrectedText  string `json:"corrected_text"`
}

func (r apiRequest) requestedVoice() string {
	if r.VoiceName != "" {
		return r.VoiceName
	}
	return r.Voice
}

type translateResponse struct {
	Translation         string   `json:"translation"`
	PronunciationHangul string   `json:"pronunciation_hangul,omitempty"`
	Chunks              []string `json:"chunks"`
	UsedModel           string   `json:"usedModel"`
	ModelProvider       string   `json:"modelProvider"`
	CacheHit            bool     `json:"cacheHit"`
	UsedUserKey         bool     `json:"usedUserKey"`
	FeedbackApplied     bool     `json:"feedbackApplied"`
	FeedbackMatchType   string   `json:"feedbackMatchType,omitempty"`
	QualityLevel        int      `json:"qualityLevel"`
	IsAITranslation     bool     `json:"isAITranslation"`
}

type speakChunkResponse struct {
	Audio       string `json:"audio,omitempty"` // base64 MP3
	ChunkIndex  int    `json:"chunkIndex"`
	TotalChunks int    `json:"totalChunks"`
	Text        string `json:"text,omitempty"`
	Completed   bool   `json:"completed"`
}

// handleAPI decodes the envelope and dispatches on the action field.
func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	var req apiRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON body: %w", err))
		return
	}

	switch req.Action {
	case "translate":
		s.handleTranslate(w, r, req)
	case "speak":
		s.handleSpeak(w, r, req)
	case "speak-chunk":
		s.handleSpeakChunk(w, r, req)
	case "save-feedback":
		s.handleSaveFeedback(w, r, req)
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown action %q", req.Action))
	}
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request, req apiRequest) {
	result, err := s.svc.Translate(r.Context(), gateway.TranslateRequest{
		Text:           req.Text,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		Quality:        req.Quality,
		Pronunciation:  req.Pronunciation,
		Instruction:    req.Instruction,
		Domain:         req.Domain,
		Model:          req.Model,
		UserID:         req.UserID,
		APIKeys:        req.APIKeys,
	})
	if err != nil {
		s.writeGatewayError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, translateResponse{
		Translation:         result.Translation,
		PronunciationHangul: result.Pronunciation,
		Chunks:              result.Chunks,
		UsedModel:           result.UsedModel,
		ModelProvider:       result.Provider,
		CacheHit:            result.CacheHit,
		UsedUserKey:         result.UsedUserKey,
		FeedbackApplied:     result.FeedbackApplied,
		FeedbackMatchType:   result.FeedbackMatchType,
		QualityLevel:        result.QualityLevel,
		IsAITranslation:     result.IsAITranslation,
	})
}

// handleSpeak streams the MP3 straight back; clients treat /api with
// action=speak as an audio source.
func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request, req apiRequest) {
	audio, err := s.svc.Speak(r.Context(), gateway.SpeakRequest{
		Text:         req.Text,
		Language:     req.Language,
		Voice:        req.requestedVoice(),
		UseGoogleTTS: req.UseGoogleTTS,
		APIKey:       req.APIKey,
		UserID:       req.UserID,
	})
	if err != nil {
		s.writeGatewayError(w, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}

func (s *Server) handleSpeakChunk(w http.ResponseWriter, r *http.Request, req apiRequest) {
	result, err := s.svc.SpeakChunk(r.Context(), gateway.SpeakChunkRequest{
		SpeakRequest: gateway.SpeakRequest{
			Text:         req.Text,
			Language:     req.Language,
			Voice:        req.requestedVoice(),
			UseGoogleTTS: req.UseGoogleTTS,
			APIKey:       req.APIKey,
			UserID:       req.UserID,
		},
		ChunkIndex: req.ChunkIndex,
	})
	if err != nil {
		s.writeGatewayError(w, err)
		return
	}

	resp := speakChunkResponse{
		ChunkIndex:  result.ChunkIndex,
		TotalChunks: result.TotalChunks,
		Text:        result.Text,
		Completed:   result.Completed,
	}
	if len(result.Audio) > 0 {
		resp.Audio = base64.StdEncoding.EncodeToString(result.Audio)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSaveFeedback(w http.ResponseWriter, r *http.Request, req apiRequest) {
	err := s.svc.SaveFeedback(r.Context(), gateway.SaveFeedbackRequest{
		Token:          req.Token,
		Text:           req.Text,
		TargetLanguage: req.TargetLanguage,
		OriginalOutput: req.OriginalOutput,
		CorrectedText:  req.CorrectedText,
	})
	if err != nil {
		s.writeGatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeGatewayError maps gateway error kinds onto HTTP status codes.
func (s *Server) writeGatewayError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, gateway.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, gateway.ErrUnauthorized):
		status = http.StatusUnauthorized
	}
	if status == http.StatusInternalServerError {
		s.log.Errorw("request failed", "error", err)
	}
	writeError(w, status, err)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
