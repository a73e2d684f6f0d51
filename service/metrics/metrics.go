// Package metrics computes listening totals and top-N rankings over a
// play sequence.
package metrics

import (
	"math"
	"sort"

	"github.com/wavefm/replay/models"
)

const (
	// A play has to run at least 30 seconds to count toward rankings.
	qualifyingMs = 30_000
	topN         = 25
)

// counter accumulates values per key while remembering the order keys
// were first seen, so ranking ties break deterministically.
type counter struct {
	values map[string]int64
	order  []string
}

func newCounter() *counter {
	return &counter{values: make(map[string]int64)}
}

func (c *counter) add(key string, delta int64) {
	if key == "" {
		return
	}
	if _, seen := c.values[key]; !seen {
		c.order = append(c.order, key)
	}
	c.values[key] += delta
}

// top returns up to n keys sorted by descending value; equal values
// keep first-encounter order.
func (c *counter) top(n int) []models.StreamRank {
	ranked := make([]models.StreamRank, 0, len(c.order))
	for _, key := range c.order {
		ranked = append(ranked, models.StreamRank{Name: key, Value: c.values[key]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Value > ranked[j].Value
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func toHours(ms int64) float64 {
	return round2(float64(ms) / (1000 * 60 * 60))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func asTimeRanks(ranks []models.StreamRank) []models.TimeRank {
	out := make([]models.TimeRank, len(ranks))
	for i, r := range ranks {
		out[i] = models.TimeRank{Name: r.Name, Hours: toHours(r.Value)}
	}
	return out
}

// Compute aggregates totals and top-25 rankings. Total hours cover
// every play, skips included; rankings only count plays of at least 30
// seconds. Plays missing an artist or track name are left out of that
// ranking only.
func Compute(plays []models.PlayEvent) models.MetricsResult {
	var totalMs int64
	playsOver30s := 0

	artistStreams := newCounter()
	trackStreams := newCounter()
	artistTime := newCounter()
	trackTime := newCounter()

	for _, p := range plays {
		totalMs += p.MsPlayed
		if p.MsPlayed < qualifyingMs {
			continue
		}
		playsOver30s++
		artistStreams.add(p.ArtistName, 1)
		trackStreams.add(p.TrackName, 1)
		artistTime.add(p.ArtistName, p.MsPlayed)
		trackTime.add(p.TrackName, p.MsPlayed)
	}

	return models.MetricsResult{
		Totals: models.Totals{
			TotalHours:   toHours(totalMs),
			TotalPlays:   len(plays),
			PlaysOver30s: playsOver30s,
		},
		TopByStreams: models.RankingPair{
			Artists: artistStreams.top(topN),
			Tracks:  trackStreams.top(topN),
		},
		TopByTime: models.TimeRankingPair{
			Artists: asTimeRanks(artistTime.top(topN)),
			Tracks:  asTimeRanks(trackTime.top(topN)),
		},
	}
}
