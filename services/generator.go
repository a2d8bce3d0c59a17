package services

import (
	"math"
	"math/rand"
	"sync"

	"github.com/VarnikaKalani/anagram/models"
	"github.com/rs/zerolog"
)

// English letter-frequency weights for the sampler. Vowels and common
// consonants dominate; q/x/z/j barely ever show up.
var letterWeights = map[byte]int{
	'e': 12, 't': 9, 'a': 8, 'o': 8, 'i': 7, 'n': 7,
	's': 6, 'h': 6, 'r': 6, 'd': 4, 'l': 4,
	'c': 3, 'u': 3, 'm': 3,
	'w': 2, 'f': 2, 'g': 2, 'y': 2, 'p': 2, 'b': 2,
	'v': 1, 'k': 1, 'j': 1, 'x': 1, 'q': 1, 'z': 1,
}

const (
	maxLetterWeight = 12
	vowelLetters    = "aeiou"
	harshLetters    = "qxzjkvw"
	attemptBudget   = 120
	closeEnough     = 0.08
)

// modeConfig tunes the rejection sampler per difficulty mode.
type modeConfig struct {
	minVowels      int
	maxVowels      int
	maxRepeats     int
	blocked        string
	maxHarsh       int
	minCommon      int
	minShortCommon int
	needAnchor     bool
	minValid       int
	target         float64
	fallbacks      []string
}

var modeConfigs = map[models.GameMode]modeConfig{
	models.ModeEasy: {
		minVowels: 2, maxVowels: 4, maxRepeats: 2,
		blocked: "qxzjv", maxHarsh: 1,
		minCommon: 12, minShortCommon: 8, needAnchor: true, minValid: 15,
		target:    0.28,
		fallbacks: []string{"aemrst", "aelpst", "aelrst"},
	},
	models.ModeMedium: {
		minVowels: 2, maxVowels: 4, maxRepeats: 2,
		blocked: "qxz", maxHarsh: 2,
		minCommon: 8, minShortCommon: 5, needAnchor: true, minValid: 10,
		target:    0.38,
		fallbacks: []string{"aenrst", "aegnrt", "adeirs"},
	},
	models.ModeHard: {
		minVowels: 1, maxVowels: 4, maxRepeats: 3,
		blocked: "", maxHarsh: 3,
		minCommon: 4, minShortCommon: 3, needAnchor: false, minValid: 6,
		target:    0.50,
		fallbacks: []string{"eimprs", "ailnps", "deimnr"},
	},
}

// lastResortLetters always yields a playable round even if every fallback
// somehow fails its checks (e.g. a pathologically small external list).
const lastResortLetters = "aemrst"

// RoundMetrics are the quality signals computed for a candidate letter set.
type RoundMetrics struct {
	CountsByLength   map[int]int `json:"counts_by_length"`
	AnchorStrength   float64     `json:"anchor_strength"`
	ShortWordDensity float64     `json:"short_word_density"`
	ObscurityRatio   float64     `json:"obscurity_ratio"`
	DifficultyScore  float64     `json:"difficulty_score"`
}

// GeneratedRound is the output of one successful generation: the letter
// multiset, its complete solution set, and the metrics that selected it.
type GeneratedRound struct {
	Letters     string
	ValidWords  map[string]bool
	CommonWords map[string]bool
	Metrics     RoundMetrics
	Fallback    bool
}

// Generator produces difficulty-tuned letter sets. It never fails
// observably: when the attempt budget runs out it degrades to
// pre-validated fallback sets, then to a hard-coded last resort.
type Generator struct {
	lex *Lexicon
	log zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator builds a generator over the shared lexicon. The seed makes
// draws reproducible in tests; pass a time-derived seed in production.
func NewGenerator(lex *Lexicon, seed int64, log zerolog.Logger) *Generator {
	return &Generator{
		lex: lex,
		log: log.With().Str("component", "generator").Logger(),
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Generate returns a letter set and solution set for the given mode.
func (g *Generator) Generate(mode models.GameMode) *GeneratedRound {
	cfg, ok := modeConfigs[mode]
	if !ok {
		cfg = modeConfigs[models.ModeMedium]
	}

	var best *GeneratedRound
	bestDist := math.MaxFloat64

	for attempt := 0; attempt < attemptBudget; attempt++ {
		letters := g.drawLetters()
		if !lettersPassFilter(letters, cfg) {
			continue
		}
		cand := g.evaluate(letters)
		if !wordsPassFilter(cand, cfg) {
			continue
		}
		dist := math.Abs(cand.Metrics.DifficultyScore - cfg.target)
		if dist < closeEnough {
			g.log.Debug().Str("letters", letters).Int("attempt", attempt).
				Float64("difficulty", cand.Metrics.DifficultyScore).Msg("round accepted")
			return cand
		}
		if dist < bestDist || (dist == bestDist && betterTieBreak(cand, best)) {
			best, bestDist = cand, dist
		}
	}

	if best != nil {
		g.log.Debug().Str("letters", best.Letters).
			Float64("difficulty", best.Metrics.DifficultyScore).Msg("round accepted (best of budget)")
		return best
	}

	// Budget exhausted without a single passing candidate; degrade to the
	// hand-picked sets for this mode.
	for _, letters := range cfg.fallbacks {
		cand := g.evaluate(letters)
		if wordsPassFilter(cand, cfg) {
			cand.Fallback = true
			g.log.Warn().Str("letters", letters).Str("mode", string(mode)).Msg("using fallback letter set")
			return cand
		}
	}

	final := g.evaluate(lastResortLetters)
	final.Fallback = true
	g.log.Error().Str("mode", string(mode)).Msg("using last-resort letter set")
	return final
}

// drawLetters samples 6 letters by frequency weight.
func (g *Generator) drawLetters() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	total := 0
	for _, w := range letterWeights {
		total += w
	}
	buf := make([]byte, 0, models.LettersPerRound)
	for len(buf) < models.LettersPerRound {
		n := g.rng.Intn(total)
		for c := byte('a'); c <= 'z'; c++ {
			w := letterWeights[c]
			if n < w {
				buf = append(buf, c)
				break
			}
			n -= w
		}
	}
	return string(buf)
}

// evaluate computes the full solution set and quality metrics for letters.
func (g *Generator) evaluate(letters string) *GeneratedRound {
	valid := make(map[string]bool)
	common := make(map[string]bool)
	for _, w := range g.lex.Words() {
		if len(w) < models.MinWordLength || len(w) > models.MaxWordLength {
			continue
		}
		if !CanBuildWord(w, letters) {
			continue
		}
		valid[w] = true
		if g.lex.IsCommon(w) {
			common[w] = true
		}
	}
	return &GeneratedRound{
		Letters:     letters,
		ValidWords:  valid,
		CommonWords: common,
		Metrics:     computeMetrics(letters, valid, common),
	}
}

func computeMetrics(letters string, valid, common map[string]bool) RoundMetrics {
	counts := make(map[int]int)
	longestCommon := 0
	shortValid := 0
	for w := range common {
		counts[len(w)]++
		if len(w) > longestCommon {
			longestCommon = len(w)
		}
	}
	for w := range valid {
		if len(w) <= 4 {
			shortValid++
		}
	}

	// Anchor strength rewards at least one solid 5-6 letter common word.
	anchor := 0.0
	if longestCommon >= 5 {
		anchor = float64(longestCommon-4) / 2.0
	}

	shortDensity := 0.0
	obscurity := 1.0
	if len(valid) > 0 {
		shortDensity = float64(shortValid) / float64(len(valid))
		obscurity = 1.0 - float64(len(common))/float64(len(valid))
	}

	rare := 0.0
	vowels := 0
	for i := 0; i < len(letters); i++ {
		rare += 1.0 - float64(letterWeights[letters[i]])/maxLetterWeight
		if isVowel(letters[i]) {
			vowels++
		}
	}
	rare /= float64(len(letters))

	vowelPenalty := 0.0
	if vowels < 3 {
		vowelPenalty = float64(3-vowels) / 3.0
	}

	coverage := math.Min(1.0, float64(len(common))/20.0)

	score := 0.35*rare +
		0.15*vowelPenalty +
		0.25*(1.0-coverage) +
		0.10*(1.0-shortDensity) +
		0.15*obscurity

	return RoundMetrics{
		CountsByLength:   counts,
		AnchorStrength:   anchor,
		ShortWordDensity: shortDensity,
		ObscurityRatio:   obscurity,
		DifficultyScore:  score,
	}
}

// lettersPassFilter rejects degenerate draws before the expensive word
// scan: too few vowels, letter pile-ups, blocked rare letters, and harsh
// consonant clusters.
func lettersPassFilter(letters string, cfg modeConfig) bool {
	var counts [26]int
	vowels := 0
	harsh := 0
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		counts[c-'a']++
		if counts[c-'a'] > cfg.maxRepeats {
			return false
		}
		if isVowel(c) {
			vowels++
		}
		if indexByte(harshLetters, c) {
			harsh++
		}
		if indexByte(cfg.blocked, c) {
			return false
		}
	}
	if vowels < cfg.minVowels || vowels > cfg.maxVowels {
		return false
	}
	return harsh <= cfg.maxHarsh
}

// wordsPassFilter rejects candidates without enough common words, enough
// short common words, or an anchor word.
func wordsPassFilter(r *GeneratedRound, cfg modeConfig) bool {
	if len(r.ValidWords) < cfg.minValid {
		return false
	}
	if len(r.CommonWords) < cfg.minCommon {
		return false
	}
	shortCommon := 0
	for w := range r.CommonWords {
		if len(w) <= 4 {
			shortCommon++
		}
	}
	if shortCommon < cfg.minShortCommon {
		return false
	}
	if cfg.needAnchor && r.Metrics.AnchorStrength <= 0 {
		return false
	}
	return true
}

// betterTieBreak prefers the candidate with more common words, then more
// short words.
func betterTieBreak(a, b *GeneratedRound) bool {
	if b == nil {
		return true
	}
	if len(a.CommonWords) != len(b.CommonWords) {
		return len(a.CommonWords) > len(b.CommonWords)
	}
	return a.Metrics.ShortWordDensity > b.Metrics.ShortWordDensity
}

func isVowel(c byte) bool { return indexByte(vowelLetters, c) }

func indexByte(s string, c byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return true
		}
	}
	return false
}
