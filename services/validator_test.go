package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWord(t *testing.T) {
	assert.Equal(t, "team", NormalizeWord("  TeAm "))
	assert.Equal(t, "steam", NormalizeWord("STEAM"))
	assert.Equal(t, "", NormalizeWord("   "))
}

func TestCanBuildWord(t *testing.T) {
	letters := "aemrst"

	assert.True(t, CanBuildWord("team", letters))
	assert.True(t, CanBuildWord("stream", letters))
	assert.True(t, CanBuildWord("mat", letters))

	// Each bank letter may be used at most once here.
	assert.False(t, CanBuildWord("tees", letters))
	assert.False(t, CanBuildWord("mamma", letters))

	// Letters outside the bank.
	assert.False(t, CanBuildWord("zebra", letters))

	// Non a-z input always fails.
	assert.False(t, CanBuildWord("te4m", letters))
	assert.False(t, CanBuildWord("te m", letters))
}

func TestCanBuildWordWithRepeats(t *testing.T) {
	assert.True(t, CanBuildWord("tee", "eetxyz"))
	assert.False(t, CanBuildWord("eee", "eetxyz"))
}

func TestWordPoints(t *testing.T) {
	assert.Equal(t, 1, WordPoints(3))
	assert.Equal(t, 2, WordPoints(4))
	assert.Equal(t, 4, WordPoints(5))
	assert.Equal(t, 7, WordPoints(6))
}

func TestPruneRateWindow(t *testing.T) {
	now := time.Now()
	window := 2 * time.Second
	limit := 5

	var log []time.Time
	for i := 0; i < limit; i++ {
		kept, allowed := PruneRateWindow(log, now, window, limit)
		assert.True(t, allowed, "submission %d should be allowed", i)
		log = append(kept, now)
	}

	// Window full.
	_, allowed := PruneRateWindow(log, now, window, limit)
	assert.False(t, allowed)

	// Entries age out of the window and free capacity again.
	later := now.Add(window + time.Millisecond)
	kept, allowed := PruneRateWindow(log, later, window, limit)
	assert.True(t, allowed)
	assert.Empty(t, kept)
}

func TestPruneRateWindowPartialExpiry(t *testing.T) {
	now := time.Now()
	window := 2 * time.Second
	log := []time.Time{
		now.Add(-3 * time.Second),
		now.Add(-1 * time.Second),
		now.Add(-500 * time.Millisecond),
	}
	kept, allowed := PruneRateWindow(log, now, window, 3)
	assert.True(t, allowed)
	assert.Len(t, kept, 2)
}
