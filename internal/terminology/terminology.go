// Package terminology enforces a fixed per-domain glossary on translated
// text. Terms are matched case-insensitively on word boundaries and replaced
// with the entry for the target language's bucket. Longer terms are applied
// first so that nested terms ("no insertion" vs "insertion") resolve
// deterministically.
package terminology

import (
	"regexp"
	"sort"
	"strings"
)

// Table maps a canonical term to its per-language replacements. Language
// buckets are plain language names ("vietnamese", "korean"), not locale
// codes.
type Table map[string]map[string]string

// profiles holds the built-in domain glossaries. The manufacturing table
// covers the SMT/assembly vocabulary the gateway is deployed for.
var profiles = map[string]Table{
	"manufacturing": {
		"SMD": {
			"vietnamese": "linh kiện dán (SMD)",
			"korean":     "표면실장부품(SMD)",
		},
		"loss": {
			"vietnamese": "Thất thoát",
			"korean":     "로스",
		},
		"feeder": {
			"vietnamese": "bộ cấp liệu (feeder)",
			"korean":     "피더",
		},
		"reflow": {
			"vietnamese": "lò hàn reflow",
			"korean":     "리플로우",
		},
		"defect": {
			"vietnamese": "lỗi sản phẩm",
			"korean":     "불량",
		},
		"yield": {
			"vietnamese": "tỷ lệ thành phẩm",
			"korean":     "수율",
		},
		"no insertion": {
			"vietnamese": "thiếu linh kiện",
			"korean":     "미삽",
		},
		"insertion": {
			"vietnamese": "cắm linh kiện",
			"korean":     "삽입",
		},
		"solder paste": {
			"vietnamese": "kem hàn",
			"korean":     "솔더 페이스트",
		},
	},
}

// languageBuckets maps bucket names to substrings recognized in a target
// language name. Ambiguous or unknown languages fall through unchanged.
var languageBuckets = map[string][]string{
	"vietnamese": {"vietnam", "viet"},
	"korean":     {"korea", "hangul"},
}

// rule pairs a glossary term with its precompiled word-boundary pattern.
type rule struct {
	term    string
	pattern *regexp.Regexp
}

// compiledRules holds each domain's rules in application order, compiled
// once at startup.
var compiledRules = func() map[string][]rule {
	out := make(map[string][]rule, len(profiles))
	for domain, table := range profiles {
		rules := make([]rule, 0, len(table))
		for _, term := range termsByLength(table) {
			rules = append(rules, rule{
				term:    term,
				pattern: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`),
			})
		}
		out[domain] = rules
	}
	return out
}()

// Apply substitutes every configured term of the given domain in text with
// its replacement for the target language. Unknown domains and languages
// are a no-op.
func Apply(text, domain, targetLanguage string) string {
	key := strings.ToLower(strings.TrimSpace(domain))
	table, ok := profiles[key]
	if !ok {
		return text
	}

	bucket := bucketFor(targetLanguage)
	if bucket == "" {
		return text
	}

	for _, r := range compiledRules[key] {
		replacement, ok := table[r.term][bucket]
		if !ok {
			continue
		}
		text = r.pattern.ReplaceAllString(text, replacement)
	}

	return text
}

// preambles holds the per-domain system preamble prepended to the deep
// adapter's contextual instruction when the domain is active.
var preambles = map[string]string{
	"manufacturing": "The text comes from an electronics manufacturing (SMT) context. " +
		"Use standard shop-floor terminology and keep part designators, machine names, and error codes verbatim.",
}

// Preamble returns the system preamble for a domain, or "" when the domain
// has no profile.
func Preamble(domain string) string {
	return preambles[strings.ToLower(strings.TrimSpace(domain))]
}

// Domains returns the names of all configured domain profiles.
func Domains() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// bucketFor resolves a free-form language name to a glossary bucket.
func bucketFor(targetLanguage string) string {
	lang := strings.ToLower(targetLanguage)
	for bucket, needles := range languageBuckets {
		for _, needle := range needles {
			if strings.Contains(lang, needle) {
				return bucket
			}
		}
	}
	return ""
}

// termsByLength returns the table's terms longest first, so nested terms are
// consumed by their longer variant before the shorter one is considered.
func termsByLength(table Table) []string {
	terms := make([]string, 0, len(table))
	for term := range table {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})
	return terms
}
