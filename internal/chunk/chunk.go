// Package chunk splits translated text into sentence-bounded segments used
// for progressive audio playback. Text is normalized (whitespace collapsed),
// cut at sentence-terminal punctuation, and greedily packed into chunks up
// to a maximum length. A single sentence longer than the maximum stays
// whole; splitting mid-sentence produces unnatural speech.
package chunk

import (
	"strings"
)

// DefaultMaxLen is the default maximum chunk length in runes.
const DefaultMaxLen = 200

// terminal runes that end a sentence. Includes CJK full stops since the
// gateway's primary targets are Korean and Vietnamese.
var terminalRunes = map[rune]bool{
	'.': true, '!': true, '?': true, '…': true,
	'。': true, '！': true, '？': true,
}

// Split breaks text into sentence-bounded chunks of at most maxLen runes.
// Joining the chunks with single spaces reconstructs the
// whitespace-normalized input. Splitting a chunk again yields the chunk
// itself.
func Split(text string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	normalized := normalize(text)
	if normalized == "" {
		return nil
	}

	sentences := splitSentences(normalized)

	var chunks []string
	var current strings.Builder
	currentLen := 0

	for _, sentence := range sentences {
		sentenceLen := len([]rune(sentence))

		// +1 accounts for the joining space.
		if currentLen > 0 && currentLen+1+sentenceLen > maxLen {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}

		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(sentence)
		currentLen += sentenceLen
	}

	if currentLen > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}

// normalize collapses whitespace runs to single spaces and trims the ends.
func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// splitSentences cuts normalized text after runs of sentence-terminal
// punctuation. Text without terminal punctuation is a single sentence.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)

	start := 0
	for i := 0; i < len(runes); i++ {
		if !terminalRunes[runes[i]] {
			continue
		}
		// Consume the whole punctuation run ("...", "?!").
		for i+1 < len(runes) && terminalRunes[runes[i+1]] {
			i++
		}
		sentence := strings.TrimSpace(string(runes[start : i+1]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = i + 1
	}

	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}

	return sentences
}
