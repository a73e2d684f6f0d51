package history

import (
	"errors"
	"testing"
	"time"
)

func TestParseFiles(t *testing.T) {
	t.Run("empty file list yields no plays and no error", func(t *testing.T) {
		plays, err := ParseFiles(nil)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(plays) != 0 {
			t.Errorf("Expected 0 plays, got %d", len(plays))
		}
	})

	t.Run("normalizes a full row", func(t *testing.T) {
		data := []byte(`[{
			"ts": "2023-05-15T12:00:00Z",
			"ms_played": 45000,
			"master_metadata_track_name": "Harvest Moon",
			"master_metadata_album_artist_name": "Neil Young",
			"master_metadata_album_album_name": "Harvest Moon",
			"spotify_track_uri": "spotify:track:0vFabeTqtOtj918sjc5vYo"
		}]`)

		plays, err := ParseFiles([]File{{Name: "a.json", Data: data}})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(plays) != 1 {
			t.Fatalf("Expected 1 play, got %d", len(plays))
		}

		p := plays[0]
		expectedTS := time.Date(2023, 5, 15, 12, 0, 0, 0, time.UTC)
		if !p.Timestamp.Equal(expectedTS) {
			t.Errorf("Expected timestamp %v, got %v", expectedTS, p.Timestamp)
		}
		if p.MsPlayed != 45000 {
			t.Errorf("Expected msPlayed 45000, got %d", p.MsPlayed)
		}
		if p.TrackName != "Harvest Moon" || p.ArtistName != "Neil Young" {
			t.Errorf("Unexpected metadata: %+v", p)
		}
		if p.TrackID != "0vFabeTqtOtj918sjc5vYo" {
			t.Errorf("Expected track id extracted, got %q", p.TrackID)
		}
	})

	t.Run("preserves file order then in-file order", func(t *testing.T) {
		fileA := []byte(`[{"ts":"2023-01-01T00:00:00Z","master_metadata_track_name":"one"},
			{"ts":"2023-01-02T00:00:00Z","master_metadata_track_name":"two"}]`)
		fileB := []byte(`[{"ts":"2022-01-01T00:00:00Z","master_metadata_track_name":"three"}]`)

		plays, err := ParseFiles([]File{
			{Name: "a.json", Data: fileA},
			{Name: "b.json", Data: fileB},
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		var names []string
		for _, p := range plays {
			names = append(names, p.TrackName)
		}
		expected := []string{"one", "two", "three"}
		for i := range expected {
			if names[i] != expected[i] {
				t.Fatalf("Expected order %v, got %v", expected, names)
			}
		}
	})

	t.Run("non-array top level fails naming the file", func(t *testing.T) {
		files := []File{
			{Name: "good.json", Data: []byte(`[]`)},
			{Name: "bad.json", Data: []byte(`{}`)},
		}

		_, err := ParseFiles(files)
		if err == nil {
			t.Fatal("Expected error for non-array file")
		}

		var malformed *MalformedInputError
		if !errors.As(err, &malformed) {
			t.Fatalf("Expected MalformedInputError, got %T", err)
		}
		if malformed.File != "bad.json" {
			t.Errorf("Expected offending file 'bad.json', got %q", malformed.File)
		}
	})

	t.Run("invalid JSON fails the same way", func(t *testing.T) {
		_, err := ParseFiles([]File{{Name: "trunc.json", Data: []byte(`[{"ts":`)}})

		var malformed *MalformedInputError
		if !errors.As(err, &malformed) {
			t.Fatalf("Expected MalformedInputError, got %v", err)
		}
	})

	t.Run("drops rows without a timestamp", func(t *testing.T) {
		data := []byte(`[
			{"ms_played": 60000, "master_metadata_track_name": "no ts"},
			{"ts": "", "master_metadata_track_name": "empty ts"},
			{"ts": "not a date", "master_metadata_track_name": "bad ts"},
			{"ts": "2023-05-15T12:00:00Z", "master_metadata_track_name": "kept"}
		]`)

		plays, err := ParseFiles([]File{{Name: "a.json", Data: data}})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(plays) != 1 || plays[0].TrackName != "kept" {
			t.Errorf("Expected only the row with a timestamp, got %+v", plays)
		}
	})

	t.Run("skips rows that are not objects", func(t *testing.T) {
		data := []byte(`[42, "nope", null, {"ts": "2023-05-15T12:00:00Z"}]`)

		plays, err := ParseFiles([]File{{Name: "a.json", Data: data}})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(plays) != 1 {
			t.Errorf("Expected 1 play, got %d", len(plays))
		}
	})

	t.Run("null and missing metadata map to empty fields", func(t *testing.T) {
		data := []byte(`[{
			"ts": "2023-05-15T12:00:00Z",
			"master_metadata_track_name": null,
			"spotify_track_uri": null
		}]`)

		plays, err := ParseFiles([]File{{Name: "a.json", Data: data}})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		p := plays[0]
		if p.TrackName != "" || p.ArtistName != "" || p.TrackID != "" {
			t.Errorf("Expected empty optional fields, got %+v", p)
		}
		if p.MsPlayed != 0 {
			t.Errorf("Expected msPlayed to default to 0, got %d", p.MsPlayed)
		}
	})

	t.Run("negative ms_played clamps to zero", func(t *testing.T) {
		data := []byte(`[{"ts": "2023-05-15T12:00:00Z", "ms_played": -500}]`)

		plays, err := ParseFiles([]File{{Name: "a.json", Data: data}})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if plays[0].MsPlayed != 0 {
			t.Errorf("Expected 0, got %d", plays[0].MsPlayed)
		}
	})

	t.Run("non-track URI leaves track id empty", func(t *testing.T) {
		data := []byte(`[{"ts": "2023-05-15T12:00:00Z", "spotify_track_uri": "spotify:episode:abc"}]`)

		plays, err := ParseFiles([]File{{Name: "a.json", Data: data}})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if plays[0].TrackID != "" {
			t.Errorf("Expected empty track id, got %q", plays[0].TrackID)
		}
	})
}
