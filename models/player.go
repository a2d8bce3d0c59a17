package models

import (
	"sort"
	"time"
)

// ScoredWord is one counted submission.
type ScoredWord struct {
	Text      string    `json:"text"`
	Points    int       `json:"points"`
	Timestamp time.Time `json:"timestamp"`
}

// Player is a room-scoped identity. It survives disconnects; reconnecting
// with the right token rebinds the same identity to a new transport.
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
	Score     int    `json:"score"`

	Words       []ScoredWord    `json:"words"`
	UsedWords   map[string]bool `json:"used_words"`
	LongestWord string          `json:"longest_word"`

	// Bcrypt hash of the reconnect secret. The plain token is returned to
	// the owning client exactly once and never stored.
	ReconnectHash string `json:"reconnect_hash,omitempty"`

	// Sliding window of recent submission instants for rate limiting.
	// Not persisted; losing it across a restart only resets the window.
	SubmitTimestamps []time.Time `json:"-"`

	JoinedAt time.Time `json:"joined_at"`
}

// ResetRound clears all per-round state ahead of a new round.
func (p *Player) ResetRound() {
	p.Score = 0
	p.Words = nil
	p.UsedWords = make(map[string]bool)
	p.LongestWord = ""
	p.SubmitTimestamps = nil
}

// RecordWord applies one accepted submission.
func (p *Player) RecordWord(word string, points int, now time.Time) {
	p.Words = append(p.Words, ScoredWord{Text: word, Points: points, Timestamp: now})
	if p.UsedWords == nil {
		p.UsedWords = make(map[string]bool)
	}
	p.UsedWords[word] = true
	p.Score += points
	if len(word) > len(p.LongestWord) {
		p.LongestWord = word
	}
}

// PlayerView is the public per-player shape; used words, submission
// timestamps and reconnect secrets are not exposed.
type PlayerView struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Connected   bool         `json:"connected"`
	Score       int          `json:"score"`
	Words       []ScoredWord `json:"words"`
	LongestWord string       `json:"longest_word"`
}

func (p *Player) View() PlayerView {
	return PlayerView{
		ID:          p.ID,
		Name:        p.Name,
		Connected:   p.Connected,
		Score:       p.Score,
		Words:       p.Words,
		LongestWord: p.LongestWord,
	}
}

// SortedWords flattens a word set into a sorted slice for stable output.
func SortedWords(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for w := range set {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
