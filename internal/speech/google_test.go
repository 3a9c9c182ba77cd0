package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestGoogleSynthesizer(t *testing.T, handler http.HandlerFunc) *GoogleSynthesizer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	s := NewGoogleSynthesizer("test-key", testLogger())
	s.endpoint = server.URL
	return s
}

func TestGoogleSynthesize_Success(t *testing.T) {
	var captured googleSynthesizeRequest
	s := newTestGoogleSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Error("expected API key in query string")
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		json.NewEncoder(w).Encode(googleSynthesizeResponse{
			AudioContent: base64.StdEncoding.EncodeToString([]byte("mp3 bytes")),
		})
	})

	audio, err := s.Synthesize(context.Background(), Request{Text: "안녕하세요", Language: "ko-KR"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(audio) != "mp3 bytes" {
		t.Errorf("unexpected audio: %q", audio)
	}
	if captured.Voice.Name != "ko-KR-Neural2-A" {
		t.Errorf("expected resolved Korean voice, got %q", captured.Voice.Name)
	}
	if captured.Voice.LanguageCode != "ko-KR" {
		t.Errorf("expected languageCode ko-KR, got %q", captured.Voice.LanguageCode)
	}
	if captured.AudioConfig.AudioEncoding != "MP3" {
		t.Errorf("expected MP3 encoding, got %q", captured.AudioConfig.AudioEncoding)
	}
}

func TestGoogleSynthesize_MissingCredential(t *testing.T) {
	s := NewGoogleSynthesizer("", testLogger())
	_, err := s.Synthesize(context.Background(), Request{Text: "hi", Language: "en"})
	if !errors.Is(err, ErrMissingCredential) {
		t.Errorf("expected ErrMissingCredential, got %v", err)
	}
	if s.Available() == nil {
		t.Error("expected Available to fail without a key")
	}
}

func TestGoogleSynthesize_NonSuccessStatus(t *testing.T) {
	s := newTestGoogleSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "quota exceeded"}`, http.StatusForbidden)
	})

	_, err := s.Synthesize(context.Background(), Request{Text: "hi", Language: "en"})
	if err == nil {
		t.Fatal("expected error for non-success status")
	}
}

func TestGoogleSynthesize_EmptyAudio(t *testing.T) {
	s := newTestGoogleSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(googleSynthesizeResponse{AudioContent: ""})
	})

	_, err := s.Synthesize(context.Background(), Request{Text: "hi", Language: "en"})
	if err == nil {
		t.Fatal("expected error for empty audio payload")
	}
}

func TestGoogleSynthesize_MismatchedVoiceReResolved(t *testing.T) {
	var captured googleSynthesizeRequest
	s := newTestGoogleSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		json.NewEncoder(w).Encode(googleSynthesizeResponse{
			AudioContent: base64.StdEncoding.EncodeToString([]byte("x")),
		})
	})

	_, err := s.Synthesize(context.Background(), Request{
		Text: "안녕", Language: "ko-KR", Voice: "en-US-Neural2-C",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.Voice.Name != "ko-KR-Neural2-A" {
		t.Errorf("expected re-resolved Korean voice, got %q", captured.Voice.Name)
	}
}
