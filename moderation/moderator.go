// Package moderation screens chat content before fan-out and
// persistence. Matching runs on a normalized view of the text (case and
// separator insensitive) while replacement is applied to the original
// runes, so spacing and casing around a censored span are preserved.
package moderation

import (
	"unicode"

	"relay-hub/errors"

	goahocorasick "github.com/anknown/ahocorasick"
)

type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

// NewModerator builds the Aho-Corasick automaton over the normalized
// word list. An empty list is rejected; callers wanting moderation off
// simply pass a nil *Moderator around.
func NewModerator(words []string, replacement rune) (*Moderator, error) {
	patterns := make([][]rune, 0, len(words))
	for _, word := range words {
		if normalized := normalize([]rune(word)); len(normalized) > 0 {
			patterns = append(patterns, normalized)
		}
	}
	if len(patterns) == 0 {
		return nil, errors.ErrEmptyWords
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: machine, replacement: replacement}, nil
}

// Censor replaces every forbidden span with the replacement rune.
// The input is returned untouched when nothing matches.
func (m *Moderator) Censor(original string) string {
	origRunes := []rune(original)
	normalized, origIdx := project(origRunes)
	if len(normalized) == 0 {
		return original
	}

	terms := m.matcher.MultiPatternSearch(normalized, false)
	if len(terms) == 0 {
		return original
	}

	for _, term := range terms {
		start := term.Pos
		end := start + len(term.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			origRunes[i] = m.replacement
		}
	}
	return string(origRunes)
}

// project builds the normalized rune stream plus a mapping from each
// normalized position back to its index in the original text.
func project(origRunes []rune) ([]rune, []int) {
	normalized := make([]rune, 0, len(origRunes))
	origIdx := make([]int, 0, len(origRunes))
	for i, r := range origRunes {
		if skippable(r) {
			continue
		}
		normalized = append(normalized, unicode.ToLower(r))
		origIdx = append(origIdx, i)
	}
	return normalized, origIdx
}

func normalize(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		if skippable(r) {
			continue
		}
		out = append(out, unicode.ToLower(r))
	}
	return out
}

func skippable(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
}
