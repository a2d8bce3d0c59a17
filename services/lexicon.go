package services

import "sort"

// Lexicon holds the full dictionary and the common-word subset. It is
// read-only after construction and shared across all rooms without
// locking.
type Lexicon struct {
	full    map[string]struct{}
	common  map[string]struct{}
	ordered []string
}

// NewLexicon builds a lexicon from the two word sets. The common subset is
// only used for difficulty scoring; validity is always judged against the
// full dictionary.
func NewLexicon(full, common map[string]struct{}) *Lexicon {
	ordered := make([]string, 0, len(full))
	for w := range full {
		ordered = append(ordered, w)
	}
	sort.Strings(ordered)
	return &Lexicon{full: full, common: common, ordered: ordered}
}

// Contains reports dictionary membership.
func (l *Lexicon) Contains(word string) bool {
	_, ok := l.full[word]
	return ok
}

// IsCommon reports membership in the common subset.
func (l *Lexicon) IsCommon(word string) bool {
	_, ok := l.common[word]
	return ok
}

// Words returns all dictionary words in stable order.
func (l *Lexicon) Words() []string { return l.ordered }

// Size returns (full, common) counts.
func (l *Lexicon) Size() (int, int) { return len(l.full), len(l.common) }
