package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonotonic_FollowsWallClock(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := NewMonotonic(func() time.Time { return base })

	assert.Equal(t, base, c.Now())
	assert.Equal(t, base, c.Last())
}

func TestMonotonic_WallClockStepsBack(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	wall := base
	c := NewMonotonic(func() time.Time { return wall })

	first := c.Now()
	wall = base.Add(-time.Hour)
	second := c.Now()

	assert.True(t, second.After(first))
	assert.Equal(t, first.Add(time.Microsecond), second)
}

func TestMonotonic_TruncatesAndConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("WIB", 7*60*60)
	wall := time.Date(2026, 1, 2, 10, 0, 0, 1999, loc)
	c := NewMonotonic(func() time.Time { return wall })

	got := c.Now()
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 1000, got.Nanosecond())
}

func TestMonotonic_ConcurrentCallsAreUnique(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := NewMonotonic(func() time.Time { return fixed })

	const goroutines, calls = 20, 50
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[time.Time]bool)
	)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < calls; j++ {
				ts := c.Now()
				mu.Lock()
				seen[ts] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines*calls)
}
