// Package words loads the two word lists the game runs on: the full
// dictionary and the "common" subset used for difficulty tuning. Embedded
// defaults keep the server runnable with no files configured; env vars
// point at replacement lists.
//
//	WORDS_FULL_FILE=/path/to/full.txt     one word per line
//	WORDS_COMMON_FILE=/path/to/common.txt subset of the full list
//
// Words are normalized to lowercase and filtered to 3-6 ASCII letters.
package words

import (
	"bufio"
	_ "embed"
	"errors"
	"os"
	"strings"
	"sync"
)

//go:embed common.txt
var embeddedCommon string

//go:embed extra.txt
var embeddedExtra string

var (
	initOnce   sync.Once
	fullSet    map[string]struct{}
	commonSet  map[string]struct{}
	initialErr error
)

// Init loads the word lists exactly once.
func Init() error {
	initOnce.Do(func() {
		fullPath := os.Getenv("WORDS_FULL_FILE")
		commonPath := os.Getenv("WORDS_COMMON_FILE")

		var full, common []string
		switch {
		case fullPath != "" && commonPath != "":
			var err error
			full, err = readWordFile(fullPath)
			if err != nil {
				initialErr = err
				return
			}
			common, err = readWordFile(commonPath)
			if err != nil {
				initialErr = err
				return
			}
		case fullPath != "":
			full, _ = readWordFile(fullPath)
			common = full
		default:
			common = normalizeLines(embeddedCommon)
			full = append(normalizeLines(embeddedExtra), common...)
		}

		fullSet = toSet(full)
		// The common list is a subset of the dictionary by construction;
		// enforce it anyway for externally supplied files.
		commonSet = make(map[string]struct{}, len(common))
		for _, w := range common {
			if _, ok := fullSet[w]; ok {
				commonSet[w] = struct{}{}
			}
		}

		if len(fullSet) == 0 {
			initialErr = errors.New("words: dictionary is empty")
		}
	})
	return initialErr
}

// Full returns the complete dictionary set.
func Full() map[string]struct{} { return fullSet }

// Common returns the common-word subset.
func Common() map[string]struct{} { return commonSet }

// Stats returns counts of loaded words: (full, common).
func Stats() (fullCount, commonCount int) {
	return len(fullSet), len(commonSet)
}

func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if w, ok := normalize(sc.Text()); ok {
			out = append(out, w)
		}
	}
	return out, sc.Err()
}

func normalizeLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if w, ok := normalize(line); ok {
			out = append(out, w)
		}
	}
	return out
}

func normalize(line string) (string, bool) {
	w := strings.TrimSpace(strings.ToLower(line))
	if len(w) < 3 || len(w) > 6 || !isAlpha(w) {
		return "", false
	}
	return w, true
}

func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
