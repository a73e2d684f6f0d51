package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/wavefm/replay/models"
)

func play(artist, track string, msPlayed int64) models.PlayEvent {
	return models.PlayEvent{
		Timestamp:  time.Date(2023, 5, 15, 12, 0, 0, 0, time.UTC),
		MsPlayed:   msPlayed,
		TrackName:  track,
		ArtistName: artist,
	}
}

func TestCompute_EmptyInput(t *testing.T) {
	result := Compute(nil)

	if result.Totals.TotalHours != 0 || result.Totals.TotalPlays != 0 || result.Totals.PlaysOver30s != 0 {
		t.Errorf("Expected zero totals, got %+v", result.Totals)
	}
	if len(result.TopByStreams.Artists) != 0 || len(result.TopByStreams.Tracks) != 0 {
		t.Errorf("Expected empty rankings, got %+v", result.TopByStreams)
	}
}

func TestCompute_QualifyingSplit(t *testing.T) {
	// Two qualifying plays for one artist, one skip for another.
	plays := []models.PlayEvent{
		play("Big Thief", "Simulation Swarm", 45000),
		play("Big Thief", "Simulation Swarm", 45000),
		play("Skipped Artist", "Skipped Track", 5000),
	}

	result := Compute(plays)

	if result.Totals.TotalPlays != 3 {
		t.Errorf("Expected totalPlays 3, got %d", result.Totals.TotalPlays)
	}
	if result.Totals.PlaysOver30s != 2 {
		t.Errorf("Expected playsOver30s 2, got %d", result.Totals.PlaysOver30s)
	}

	// 95000ms = 0.0264h, rounded to 0.03. Skips count toward hours.
	if result.Totals.TotalHours != 0.03 {
		t.Errorf("Expected totalHours 0.03, got %v", result.Totals.TotalHours)
	}

	artists := result.TopByStreams.Artists
	if len(artists) != 1 {
		t.Fatalf("Expected 1 ranked artist, got %d", len(artists))
	}
	if artists[0].Name != "Big Thief" || artists[0].Value != 2 {
		t.Errorf("Expected Big Thief with 2 streams, got %+v", artists[0])
	}
}

func TestCompute_RankingBounds(t *testing.T) {
	var plays []models.PlayEvent
	for i := 0; i < 40; i++ {
		artist := fmt.Sprintf("artist-%02d", i)
		// artist-00 gets 41 plays, artist-01 gets 40, ...
		for j := 0; j <= 40-i; j++ {
			plays = append(plays, play(artist, "track", 60000))
		}
	}

	result := Compute(plays)
	artists := result.TopByStreams.Artists

	if len(artists) != 25 {
		t.Fatalf("Expected ranking capped at 25, got %d", len(artists))
	}
	for i := 1; i < len(artists); i++ {
		if artists[i].Value > artists[i-1].Value {
			t.Fatalf("Ranking not non-increasing at %d: %+v", i, artists)
		}
	}
	if artists[0].Name != "artist-00" {
		t.Errorf("Expected artist-00 first, got %s", artists[0].Name)
	}
}

func TestCompute_TiesKeepEncounterOrder(t *testing.T) {
	plays := []models.PlayEvent{
		play("first-seen", "a", 60000),
		play("second-seen", "b", 60000),
		play("third-seen", "c", 60000),
	}

	result := Compute(plays)
	artists := result.TopByStreams.Artists

	expected := []string{"first-seen", "second-seen", "third-seen"}
	for i, name := range expected {
		if artists[i].Name != name {
			t.Fatalf("Expected tie order %v, got %+v", expected, artists)
		}
	}
}

func TestCompute_MissingKeysExcludedPerRanking(t *testing.T) {
	plays := []models.PlayEvent{
		{Timestamp: time.Now(), MsPlayed: 60000, TrackName: "instrumental"}, // no artist
		{Timestamp: time.Now(), MsPlayed: 60000, ArtistName: "someone"},    // no track
	}

	result := Compute(plays)

	if len(result.TopByStreams.Artists) != 1 || result.TopByStreams.Artists[0].Name != "someone" {
		t.Errorf("Expected only 'someone' in artist ranking, got %+v", result.TopByStreams.Artists)
	}
	if len(result.TopByStreams.Tracks) != 1 || result.TopByStreams.Tracks[0].Name != "instrumental" {
		t.Errorf("Expected only 'instrumental' in track ranking, got %+v", result.TopByStreams.Tracks)
	}
	if result.Totals.PlaysOver30s != 2 {
		t.Errorf("Both plays still qualify for totals, got %d", result.Totals.PlaysOver30s)
	}
}

func TestCompute_TimeRankingsInHours(t *testing.T) {
	plays := []models.PlayEvent{
		play("Khruangbin", "Maria También", 1_800_000), // 0.5h
		play("Khruangbin", "Maria También", 1_800_000), // 0.5h
		play("Sade", "Smooth Operator", 2_700_000),     // 0.75h
	}

	result := Compute(plays)
	artists := result.TopByTime.Artists

	if len(artists) != 2 {
		t.Fatalf("Expected 2 artists, got %d", len(artists))
	}
	if artists[0].Name != "Khruangbin" || artists[0].Hours != 1.0 {
		t.Errorf("Expected Khruangbin with 1.00h, got %+v", artists[0])
	}
	if artists[1].Name != "Sade" || artists[1].Hours != 0.75 {
		t.Errorf("Expected Sade with 0.75h, got %+v", artists[1])
	}
}
