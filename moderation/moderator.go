// Package moderation provides an optional word censor for public
// broadcasts. When no word list is configured the relay never touches the
// wire bytes.
package moderation

import (
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

// NewModerator builds an Aho-Corasick automaton over the lowercased word
// list. Matching is case-insensitive; replacement preserves the original
// text length so surrounding spacing is untouched.
func NewModerator(censoredWords []string, replacement rune) (*Moderator, error) {
	patterns := make([][]rune, len(censoredWords))
	for i, word := range censoredWords {
		patterns[i] = []rune(strings.ToLower(word))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, replacement: replacement}, nil
}

// Censor replaces every forbidden span with the replacement rune.
func (m *Moderator) Censor(original string) string {
	runes := []rune(original)
	lowered := make([]rune, len(runes))
	for i, r := range runes {
		lowered[i] = unicode.ToLower(r)
	}

	terms := m.matcher.MultiPatternSearch(lowered, false)
	if len(terms) == 0 {
		return original
	}

	for _, term := range terms {
		for i := term.Pos; i < term.Pos+len(term.Word) && i < len(runes); i++ {
			runes[i] = m.replacement
		}
	}
	return string(runes)
}
