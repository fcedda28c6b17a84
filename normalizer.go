package smartbot

import (
	"bufio"
	"os"
	"strings"
	"sync"
	"unicode"
)

// textNormalizer implements the Normalizer interface
type textNormalizer struct {
	corrections map[string]string
	mtx         sync.RWMutex
}

// NewNormalizer creates a Normalizer with the default misspelling table
func NewNormalizer() Normalizer {
	return &textNormalizer{
		corrections: sanitizeCorrections(defaultMisspellings()),
	}
}

// NewNormalizerWithTable creates a Normalizer with a custom misspelling table
func NewNormalizerWithTable(corrections map[string]string) Normalizer {
	return &textNormalizer{
		corrections: sanitizeCorrections(corrections),
	}
}

// NewNormalizerWithTableFile creates a Normalizer with misspellings loaded
// from a file and merged over the defaults (file entries win on conflict)
func NewNormalizerWithTableFile(path string) (Normalizer, error) {
	corrections := defaultMisspellings()

	if path != "" {
		custom, err := loadMisspellingsFromFile(path)
		if err != nil {
			return nil, err
		}
		for wrong, right := range custom {
			corrections[wrong] = right
		}
	}

	return NewNormalizerWithTable(corrections), nil
}

// Normalize lowercases, replaces every rune outside {letters, digits,
// whitespace} with a space, collapses whitespace and applies the misspelling
// table to every token. Deterministic and idempotent; always returns a
// string, possibly empty
func (tn *textNormalizer) Normalize(text string) string {
	tn.mtx.RLock()
	defer tn.mtx.RUnlock()

	stripped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, strings.ToLower(text))

	tokens := strings.Fields(stripped)
	for i, token := range tokens {
		if corrected, ok := tn.corrections[token]; ok {
			tokens[i] = corrected
		}
	}

	return strings.Join(tokens, " ")
}

// CorrectSpelling applies only the misspelling table. Tokens are lowered for
// the lookup; tokens without a table entry pass through verbatim. Whitespace
// runs collapse to a single space
func (tn *textNormalizer) CorrectSpelling(text string) string {
	tn.mtx.RLock()
	defer tn.mtx.RUnlock()

	tokens := strings.Fields(text)
	for i, token := range tokens {
		if corrected, ok := tn.corrections[strings.ToLower(token)]; ok {
			tokens[i] = corrected
		}
	}

	return strings.Join(tokens, " ")
}

// sanitizeCorrections canonicalizes table keys and values and resolves
// chained entries so that Normalize stays idempotent: every value must be a
// fixed point of the token substitution pass. Keys must canonicalize to a
// single token; entries forming a substitution cycle are dropped
func sanitizeCorrections(raw map[string]string) map[string]string {
	base := make(map[string]string, len(raw))

	for wrong, right := range raw {
		keyTokens := strings.Fields(canonicalizeText(wrong))
		value := canonicalizeText(right)
		if len(keyTokens) != 1 || value == "" {
			continue
		}

		key := keyTokens[0]
		if key == value {
			continue
		}
		base[key] = value
	}

	resolved := make(map[string]string, len(base))

	for key, value := range base {
		seen := map[string]Empty{value: {}}
		dropped := false

		for {
			next := substituteTokens(base, value)
			if next == value {
				break
			}
			if _, cycle := seen[next]; cycle {
				dropped = true
				break
			}
			seen[next] = Empty{}
			value = next
		}

		if !dropped && key != value {
			resolved[key] = value
		}
	}

	return resolved
}

// canonicalizeText runs the non-table normalization steps: lowercase,
// punctuation to spaces, whitespace collapse
func canonicalizeText(text string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, strings.ToLower(text))

	return strings.Join(strings.Fields(stripped), " ")
}

// substituteTokens applies one token-correction pass against the given table
func substituteTokens(table map[string]string, text string) string {
	tokens := strings.Fields(text)
	for i, token := range tokens {
		if corrected, ok := table[token]; ok {
			tokens[i] = corrected
		}
	}
	return strings.Join(tokens, " ")
}

// defaultMisspellings returns the built-in misspelling-to-correction table
func defaultMisspellings() map[string]string {
	return map[string]string{
		"teh":        "the",
		"recieve":    "receive",
		"wierd":      "weird",
		"definately": "definitely",
		"seperate":   "separate",
		"occured":    "occurred",
		"untill":     "until",
		"wich":       "which",
		"becuase":    "because",
		"beleive":    "believe",
		"freind":     "friend",
		"tommorow":   "tomorrow",
		"alot":       "a lot",
		"helo":       "hello",
		"helllo":     "hello",
		"hellp":      "help",
		"thanx":      "thanks",
		"thx":        "thanks",
		"pls":        "please",
		"plz":        "please",
		"u":          "you",
		"r":          "are",
		"ur":         "your",
		"wat":        "what",
		"wut":        "what",
		"gud":        "good",
		"gr8":        "great",
		"gooodbye":   "goodbye",
	}
}

// loadMisspellingsFromFile loads corrections from a text file, one
// "misspelling correction" pair per line; corrections may span several words
func loadMisspellingsFromFile(path string) (map[string]string, error) {
	file, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, err
	}
	defer file.Close()

	corrections := make(map[string]string)
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") { // Skip empty lines and comments
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		corrections[fields[0]] = strings.Join(fields[1:], " ")
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return corrections, nil
}
