// Package analyzer drives the full upload -> metrics -> genre
// enrichment pipeline and exposes it over HTTP.
package analyzer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wavefm/replay/models"
	"github.com/wavefm/replay/service/genres"
	"github.com/wavefm/replay/service/history"
	"github.com/wavefm/replay/service/metrics"
)

// ErrNoFiles means the request carried no upload.
var ErrNoFiles = errors.New("no files uploaded")

// Enricher resolves track ids to genre data. Satisfied by
// *catalog.Service; tests substitute their own.
type Enricher interface {
	TrackGenres(ctx context.Context, trackIDs []string) (models.TrackGenres, error)
}

type Service struct {
	catalog Enricher
	logger  *slog.Logger
}

func New(catalog Enricher, logger *slog.Logger) *Service {
	return &Service{catalog: catalog, logger: logger}
}

// Analyze parses the uploaded files once, then computes metrics
// concurrently with the genre pipeline. The first fatal error
// short-circuits the run; per-batch catalog degradation does not reach
// this level.
func (s *Service) Analyze(ctx context.Context, files []history.File) (*models.AnalysisResult, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	plays, err := history.ParseFiles(files)
	if err != nil {
		return nil, err
	}

	metricsCh := make(chan models.MetricsResult, 1)
	go func() {
		metricsCh <- metrics.Compute(plays)
	}()

	trackGenres := models.TrackGenres{}
	if ids := collectTrackIDs(plays); len(ids) > 0 {
		trackGenres, err = s.catalog.TrackGenres(ctx, ids)
		if err != nil {
			return nil, err
		}
	}
	genreResult := genres.Aggregate(plays, trackGenres)

	s.logger.Info("analysis complete",
		"files", len(files),
		"plays", len(plays),
		"months", len(genreResult.Evolution.ByMonth))

	return &models.AnalysisResult{
		Metrics: <-metricsCh,
		Genres:  genreResult,
	}, nil
}

// collectTrackIDs gathers ids in first-encounter order. The catalog
// client dedupes again, but collecting unique ids here keeps the
// request payload proportional to the library, not the history.
func collectTrackIDs(plays []models.PlayEvent) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, p := range plays {
		if p.TrackID == "" || seen[p.TrackID] {
			continue
		}
		seen[p.TrackID] = true
		ids = append(ids, p.TrackID)
	}
	return ids
}
