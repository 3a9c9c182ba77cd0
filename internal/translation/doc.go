// Package translation provides the translation provider adapters of the
// gateway: a fast single-shot Gemini adapter and a configurable OpenAI chat
// adapter, both returning a translation with optional phonetic guidance.
// It also owns model identifiers, quality profiles, and the token budget
// estimator used to bound provider calls.
package translation
