// Package speech provides the text-to-speech adapters of the gateway: a
// Google Cloud TTS adapter with per-language voice resolution and an OpenAI
// speech adapter used as its transparent fallback.
package speech
