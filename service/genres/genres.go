// Package genres combines play events with catalog genre data into a
// top-genres ranking and a month-bucketed evolution dataset.
//
// The two passes answer different questions on purpose: the ranking
// counts every genre a play touches (a play by a three-genre artist
// increments three counters), while the evolution chart assigns each
// play exactly one primary genre so the stacked series sum cleanly.
package genres

import (
	"sort"

	"github.com/wavefm/replay/models"
)

const (
	topN = 25

	// Named series kept in the stacked chart; everything else folds
	// into "other".
	coreSeriesLimit = 8

	fallbackGenre  = "unknown"
	overflowSeries = "other"
)

// tally counts per key, remembering first-encounter order so ranking
// ties resolve the same way on every run.
type tally struct {
	counts map[string]int64
	order  []string
}

func newTally() *tally {
	return &tally{counts: make(map[string]int64)}
}

func (t *tally) inc(key string) {
	if _, seen := t.counts[key]; !seen {
		t.order = append(t.order, key)
	}
	t.counts[key]++
}

func (t *tally) ranked() []models.GenreCount {
	out := make([]models.GenreCount, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, models.GenreCount{Genre: key, Streams: t.counts[key]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Streams > out[j].Streams
	})
	return out
}

// Aggregate walks the play sequence once per pass. Only plays with a
// resolvable track id participate; a play whose track resolved to no
// genre data counts as "unknown" in the evolution dataset and not at
// all in the ranking.
func Aggregate(plays []models.PlayEvent, trackGenres models.TrackGenres) models.GenreResult {
	genreStreams := newTally()
	primaryTotals := newTally()

	monthCounts := make(map[string]map[string]int64)
	var monthOrder []string

	for _, p := range plays {
		if p.TrackID == "" {
			continue
		}

		for _, g := range trackGenres.Genres[p.TrackID] {
			genreStreams.inc(g)
		}

		primary := trackGenres.Primary[p.TrackID]
		if primary == "" {
			primary = fallbackGenre
		}
		primaryTotals.inc(primary)

		month := p.Timestamp.Local().Format("2006-01")
		if monthCounts[month] == nil {
			monthCounts[month] = make(map[string]int64)
			monthOrder = append(monthOrder, month)
		}
		monthCounts[month][primary]++
	}

	topByStreams := genreStreams.ranked()
	if len(topByStreams) > topN {
		topByStreams = topByStreams[:topN]
	}

	core := primaryTotals.ranked()
	if len(core) > coreSeriesLimit {
		core = core[:coreSeriesLimit]
	}
	series := make([]string, 0, len(core)+1)
	coreSet := make(map[string]bool, len(core))
	for _, c := range core {
		series = append(series, c.Genre)
		coreSet[c.Genre] = true
	}
	series = append(series, overflowSeries)

	sort.Strings(monthOrder)

	byMonth := make([]models.EvolutionRow, 0, len(monthOrder))
	for _, month := range monthOrder {
		row := models.EvolutionRow{
			Month:  month,
			Counts: make(map[string]int64, len(coreSet)),
		}
		for genre := range coreSet {
			row.Counts[genre] = 0
		}
		for genre, count := range monthCounts[month] {
			if coreSet[genre] {
				row.Counts[genre] = count
			} else {
				row.Other += count
			}
		}
		byMonth = append(byMonth, row)
	}

	return models.GenreResult{
		TopByStreams: topByStreams,
		Evolution: models.Evolution{
			Series:  series,
			ByMonth: byMonth,
		},
	}
}
