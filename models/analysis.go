package models

import "encoding/json"

// Totals summarises a whole streaming history. TotalHours deliberately
// includes plays shorter than 30 seconds; the rankings do not.
type Totals struct {
	TotalHours   float64 `json:"totalHours"`
	TotalPlays   int     `json:"totalPlays"`
	PlaysOver30s int     `json:"playsOver30s"`
}

// StreamRank is a name ranked by play count.
type StreamRank struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// TimeRank is a name ranked by listening time in hours.
type TimeRank struct {
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
}

type RankingPair struct {
	Artists []StreamRank `json:"artists"`
	Tracks  []StreamRank `json:"tracks"`
}

type TimeRankingPair struct {
	Artists []TimeRank `json:"artists"`
	Tracks  []TimeRank `json:"tracks"`
}

// MetricsResult is the output of the metrics aggregator.
type MetricsResult struct {
	Totals       Totals          `json:"totals"`
	TopByStreams RankingPair     `json:"topByStreams"`
	TopByTime    TimeRankingPair `json:"topByTime"`
}

// TrackGenres maps track ids to the genre labels of their primary
// artist. Primary holds the first label, or "unknown" when the track
// or artist could not be resolved.
type TrackGenres struct {
	Genres  map[string][]string `json:"trackGenres"`
	Primary map[string]string   `json:"trackPrimaryGenre"`
}

// GenreCount is a genre ranked by the number of plays touching it.
type GenreCount struct {
	Genre   string `json:"genre"`
	Streams int64  `json:"streams"`
}

// EvolutionRow is one calendar month of the stacked genre chart: a
// count per core series plus an overflow bucket.
type EvolutionRow struct {
	Month  string
	Counts map[string]int64
	Other  int64
}

// MarshalJSON flattens the row into {"month": ..., "<genre>": n, ...,
// "other": n} as the chart consumes it. encoding/json sorts the map
// keys, so output is stable across runs.
func (r EvolutionRow) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Counts)+2)
	flat["month"] = r.Month
	for genre, count := range r.Counts {
		flat[genre] = count
	}
	flat["other"] = r.Other
	return json.Marshal(flat)
}

// Evolution is the month-bucketed primary-genre dataset. Series lists
// the core genres in rank order with "other" always appended last.
type Evolution struct {
	Series  []string       `json:"series"`
	ByMonth []EvolutionRow `json:"byMonth"`
}

// GenreResult is the output of the genre aggregator.
type GenreResult struct {
	TopByStreams []GenreCount `json:"topByStreams"`
	Evolution    Evolution    `json:"evolution"`
}

// AnalysisResult is the combined payload returned to the client.
type AnalysisResult struct {
	Metrics MetricsResult `json:"metrics"`
	Genres  GenreResult   `json:"genres"`
}
