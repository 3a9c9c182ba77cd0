package speech

import "strings"

// defaultVoices maps a language prefix to the default Google TTS voice.
var defaultVoices = map[string]string{
	"ko": "ko-KR-Neural2-A",
	"en": "en-US-Neural2-C",
	"vi": "vi-VN-Neural2-A",
	"ja": "ja-JP-Neural2-B",
	"zh": "cmn-CN-Standard-A",
	"es": "es-ES-Neural2-A",
	"fr": "fr-FR-Neural2-A",
	"de": "de-DE-Neural2-B",
}

// fallbackVoice is used when a language has no configured default.
const fallbackVoice = "en-US-Neural2-C"

// ResolveVoice picks the voice for a synthesis request. An explicit voice is
// honored unless its language prefix contradicts the requested language, in
// which case the same-language default wins.
func ResolveVoice(language, explicit string) string {
	prefix := languagePrefix(language)

	if explicit != "" {
		if prefix == "" || voiceMatchesLanguage(explicit, prefix) {
			return explicit
		}
		// Mismatched voice, re-resolve below.
	}

	if voice, ok := defaultVoices[prefix]; ok {
		return voice
	}
	return fallbackVoice
}

// languagePrefix extracts the primary subtag ("ko" from "ko-KR").
func languagePrefix(language string) string {
	language = strings.ToLower(strings.TrimSpace(language))
	if i := strings.IndexAny(language, "-_"); i > 0 {
		language = language[:i]
	}
	// Mandarin voices are named cmn-* while callers say "zh".
	if language == "zh" {
		return "zh"
	}
	return language
}

// voiceMatchesLanguage reports whether a voice name belongs to the language
// prefix, e.g. "ko-KR-Neural2-A" matches "ko".
func voiceMatchesLanguage(voice, prefix string) bool {
	v := strings.ToLower(voice)
	if prefix == "zh" {
		return strings.HasPrefix(v, "zh") || strings.HasPrefix(v, "cmn")
	}
	return strings.HasPrefix(v, prefix)
}
