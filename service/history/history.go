// Package history parses exported Spotify streaming history files into
// play events.
package history

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wavefm/replay/models"
)

// File is one uploaded export file.
type File struct {
	Name string
	Data []byte
}

// MalformedInputError reports a file whose top level is not a JSON
// array of plays.
type MalformedInputError struct {
	File string
	Err  error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("file %q is not an array of plays", e.File)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// rawPlay mirrors one row of the export format. Pointer fields
// distinguish absent/null metadata from empty strings.
type rawPlay struct {
	TS       string  `json:"ts"`
	MsPlayed *int64  `json:"ms_played"`
	Track    *string `json:"master_metadata_track_name"`
	Artist   *string `json:"master_metadata_album_artist_name"`
	Album    *string `json:"master_metadata_album_album_name"`
	TrackURI *string `json:"spotify_track_uri"`
}

// ParseFiles normalizes a set of export files into a single play
// sequence, preserving file order then in-file order. A file whose top
// level is not an array fails the whole parse; rows that are not
// well-formed objects or lack a usable timestamp are dropped silently,
// since partial exports are common.
func ParseFiles(files []File) ([]models.PlayEvent, error) {
	var plays []models.PlayEvent

	for _, f := range files {
		var rows []json.RawMessage
		if err := json.Unmarshal(f.Data, &rows); err != nil {
			return nil, &MalformedInputError{File: f.Name, Err: err}
		}

		for _, row := range rows {
			var raw rawPlay
			if err := json.Unmarshal(row, &raw); err != nil {
				continue
			}
			if raw.TS == "" {
				continue
			}
			ts, err := time.Parse(time.RFC3339, raw.TS)
			if err != nil {
				continue
			}

			play := models.PlayEvent{Timestamp: ts}
			if raw.MsPlayed != nil && *raw.MsPlayed > 0 {
				play.MsPlayed = *raw.MsPlayed
			}
			if raw.Track != nil {
				play.TrackName = *raw.Track
			}
			if raw.Artist != nil {
				play.ArtistName = *raw.Artist
			}
			if raw.Album != nil {
				play.AlbumName = *raw.Album
			}
			if raw.TrackURI != nil {
				if id, ok := models.ExtractTrackID(*raw.TrackURI); ok {
					play.TrackID = id
				}
			}

			plays = append(plays, play)
		}
	}

	return plays, nil
}
