package models

import (
	"strings"
	"time"
)

// PlayEvent is one entry from an exported Spotify streaming history file.
// Optional metadata fields are empty strings when the export omits them.
type PlayEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	MsPlayed   int64     `json:"msPlayed"`
	TrackName  string    `json:"trackName,omitempty"`
	ArtistName string    `json:"artistName,omitempty"`
	AlbumName  string    `json:"albumName,omitempty"`
	// TrackID is the bare id extracted from spotify_track_uri, or empty
	// when the event has no catalog match (podcasts, local files).
	TrackID string `json:"trackId,omitempty"`
}

// ExtractTrackID pulls the track id out of a spotify:track:<id> URI.
// Any other shape (wrong segment count, non-track namespace) yields
// ok == false.
func ExtractTrackID(uri string) (string, bool) {
	parts := strings.Split(uri, ":")
	if len(parts) == 3 && parts[1] == "track" && parts[2] != "" {
		return parts[2], true
	}
	return "", false
}
