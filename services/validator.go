package services

import (
	"strings"
	"time"
)

// Pure submission checks. The ordered anti-cheat pipeline lives in the
// room engine (see RoomService.SubmitWord); these helpers carry no state.

// NormalizeWord trims and lowercases player input.
func NormalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// CanBuildWord reports whether word is a sub-multiset of letters: every
// character may be used at most as many times as it appears in the bank.
// Anything outside a-z fails outright.
func CanBuildWord(word, letters string) bool {
	var bank [26]int
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		if c < 'a' || c > 'z' {
			continue
		}
		bank[c-'a']++
	}
	for i := 0; i < len(word); i++ {
		c := word[i]
		if c < 'a' || c > 'z' {
			return false
		}
		bank[c-'a']--
		if bank[c-'a'] < 0 {
			return false
		}
	}
	return true
}

// WordPoints maps word length to points.
func WordPoints(length int) int {
	switch {
	case length <= 3:
		return 1
	case length == 4:
		return 2
	case length == 5:
		return 4
	default:
		return 7
	}
}

// PruneRateWindow drops timestamps older than window from the sliding log
// and reports whether another submission is allowed right now. The caller
// records the new attempt itself, so a rejected attempt can still cost an
// entry.
func PruneRateWindow(log []time.Time, now time.Time, window time.Duration, limit int) ([]time.Time, bool) {
	cutoff := now.Add(-window)
	kept := log[:0]
	for _, t := range log {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept, len(kept) < limit
}
