package recall

import (
	"regexp"
	"strings"
)

const maxQueryTerms = 20

var tokenPattern = regexp.MustCompile(`\w+`)

// stopWords is a small, deliberately conservative list; recall is
// better served by a false negative (keeping a marginal word) than by
// stripping a term the user actually meant to search on.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "from": true,
	"had": true, "has": true, "have": true, "he": true, "her": true,
	"his": true, "how": true, "i": true, "if": true, "in": true, "into": true,
	"is": true, "it": true, "its": true, "of": true, "on": true, "or": true,
	"our": true, "she": true, "that": true, "the": true, "their": true,
	"them": true, "then": true, "there": true, "these": true, "they": true,
	"this": true, "to": true, "was": true, "we": true, "were": true,
	"what": true, "when": true, "where": true, "which": true, "who": true,
	"will": true, "with": true, "you": true, "your": true,
}

var numericPattern = regexp.MustCompile(`^\d+$`)

// ExtractQuery lowercases the prompt, tokenizes on non-word
// boundaries, drops stop-words and pure numerics, deduplicates while
// preserving first-seen order, caps to 20 terms, and joins with " OR "
// for the lexical leg. An empty result falls back to the raw prompt so
// the lexical leg always has something to search with.
func ExtractQuery(prompt string) string {
	lower := strings.ToLower(prompt)
	tokens := tokenPattern.FindAllString(lower, -1)

	seen := make(map[string]bool, len(tokens))
	var terms []string
	for _, tok := range tokens {
		if stopWords[tok] || numericPattern.MatchString(tok) {
			continue
		}
		if seen[tok] {
			continue
		}
		seen[tok] = true
		terms = append(terms, tok)
		if len(terms) >= maxQueryTerms {
			break
		}
	}

	if len(terms) == 0 {
		return prompt
	}
	return strings.Join(terms, " OR ")
}
