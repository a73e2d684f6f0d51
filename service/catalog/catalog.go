// Package catalog resolves track ids to the genre labels of each
// track's primary artist via the Spotify Web API.
//
// Lookups run as two chained batched passes (tracks -> primary artist,
// artists -> genres). A failed batch degrades to empty results for its
// ids instead of failing the run; only credential and token problems
// are fatal.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wavefm/replay/models"
)

// ErrNoTrackIDs means the caller supplied an empty id set.
var ErrNoTrackIDs = errors.New("no track ids supplied")

const (
	// The tracks and artists endpoints accept at most 50 ids per call.
	batchSize = 50

	// Working-set cap; ids beyond it are silently ignored.
	maxTrackIDs = 5000

	// Batches in flight at once.
	maxConcurrentBatches = 4
)

type Service struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	tokens     *tokenSource
	apiURL     string
	logger     *slog.Logger
}

// New creates a catalog client. tokenURL and apiURL are configurable
// so tests can point at a fake catalog.
func New(clientID, clientSecret, tokenURL, apiURL string, logger *slog.Logger) *Service {
	return &Service{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), maxConcurrentBatches),
		tokens:  newTokenSource(clientID, clientSecret, tokenURL),
		apiURL:  strings.TrimRight(apiURL, "/"),
		logger:  logger,
	}
}

// TrackGenres maps a set of track ids to per-track genre lists and a
// designated primary genre. Input ids are deduplicated and capped at
// 5000; every surviving id appears in both result maps, falling back
// to an empty list / "unknown" when resolution fails.
func (s *Service) TrackGenres(ctx context.Context, trackIDs []string) (models.TrackGenres, error) {
	ids := dedupe(trackIDs)
	if len(ids) == 0 {
		return models.TrackGenres{}, ErrNoTrackIDs
	}
	if len(ids) > maxTrackIDs {
		ids = ids[:maxTrackIDs]
	}

	token, err := s.tokens.accessToken(ctx)
	if err != nil {
		return models.TrackGenres{}, err
	}

	trackArtist := s.resolvePrimaryArtists(ctx, token, ids)

	artistIDs := make([]string, 0, len(ids))
	seen := make(map[string]bool)
	for _, id := range ids {
		artistID := trackArtist[id]
		if artistID == "" || seen[artistID] {
			continue
		}
		seen[artistID] = true
		artistIDs = append(artistIDs, artistID)
	}

	artistGenres := s.resolveArtistGenres(ctx, token, artistIDs)

	result := models.TrackGenres{
		Genres:  make(map[string][]string, len(ids)),
		Primary: make(map[string]string, len(ids)),
	}
	for _, id := range ids {
		genres := []string{}
		if artistID := trackArtist[id]; artistID != "" {
			if g, ok := artistGenres[artistID]; ok {
				genres = g
			}
		}
		result.Genres[id] = genres
		if len(genres) > 0 {
			result.Primary[id] = genres[0]
		} else {
			result.Primary[id] = "unknown"
		}
	}
	return result, nil
}

// resolvePrimaryArtists maps each track id to its primary artist id.
// Ids in a failed batch map to "" rather than aborting the run.
func (s *Service) resolvePrimaryArtists(ctx context.Context, token string, trackIDs []string) map[string]string {
	out := make(map[string]string, len(trackIDs))
	var mu sync.Mutex

	s.eachBatch(trackIDs, func(batch []string) {
		var resp struct {
			Tracks []struct {
				ID      string `json:"id"`
				Artists []struct {
					ID string `json:"id"`
				} `json:"artists"`
			} `json:"tracks"`
		}
		err := s.getJSON(ctx, token, "/tracks?ids="+strings.Join(batch, ","), &resp)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			s.logger.Warn("track batch lookup failed", "tracks", len(batch), "error", err)
			for _, id := range batch {
				out[id] = ""
			}
			return
		}
		for _, t := range resp.Tracks {
			if t.ID == "" {
				continue
			}
			if len(t.Artists) > 0 {
				out[t.ID] = t.Artists[0].ID
			} else {
				out[t.ID] = ""
			}
		}
	})

	return out
}

// resolveArtistGenres maps each artist id to its genre labels, trimmed
// and lower-cased. Ids in a failed batch map to an empty list.
func (s *Service) resolveArtistGenres(ctx context.Context, token string, artistIDs []string) map[string][]string {
	out := make(map[string][]string, len(artistIDs))
	var mu sync.Mutex

	s.eachBatch(artistIDs, func(batch []string) {
		var resp struct {
			Artists []struct {
				ID     string   `json:"id"`
				Genres []string `json:"genres"`
			} `json:"artists"`
		}
		err := s.getJSON(ctx, token, "/artists?ids="+strings.Join(batch, ","), &resp)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			s.logger.Warn("artist batch lookup failed", "artists", len(batch), "error", err)
			for _, id := range batch {
				out[id] = []string{}
			}
			return
		}
		for _, a := range resp.Artists {
			if a.ID == "" {
				continue
			}
			out[a.ID] = normalizeGenres(a.Genres)
		}
	})

	return out
}

// eachBatch fans fn out over chunks of 50 ids with a bounded number of
// batches in flight, and waits for all of them. No id appears in more
// than one batch.
func (s *Service) eachBatch(ids []string, fn func(batch []string)) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrentBatches)

	for start := 0; start < len(ids); start += batchSize {
		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			fn(batch)
		}()
	}

	wg.Wait()
}

func (s *Service) getJSON(ctx context.Context, token, path string, v any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("spotify API error (%d): %s", resp.StatusCode, body)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

// dedupe drops empty and repeated ids, keeping first-encounter order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func normalizeGenres(genres []string) []string {
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		g = strings.ToLower(strings.TrimSpace(g))
		if g == "" {
			continue
		}
		out = append(out, g)
	}
	return out
}
