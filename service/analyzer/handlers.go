package analyzer

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/wavefm/replay/service/catalog"
	"github.com/wavefm/replay/service/history"
)

// Uploaded exports are a few MB each; a full decade of history fits
// well under this.
const maxUploadBytes = 64 << 20

// HandleAnalyze accepts a multipart upload of streaming history files
// under the "files" field and returns the combined analysis.
func (s *Service) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, r, http.StatusBadRequest, errors.New("could not parse upload"))
		return
	}

	var files []history.File
	for _, header := range r.MultipartForm.File["files"] {
		f, err := header.Open()
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, err)
			return
		}
		files = append(files, history.File{Name: header.Filename, Data: data})
	}

	result, err := s.Analyze(r.Context(), files)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	jsonResponse(w, http.StatusOK, result)
}

// HandleTrackGenres resolves a caller-supplied id list, so a client
// that parsed its export locally can still run genre enrichment.
func (s *Service) HandleTrackGenres(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TrackIDs []string `json:"trackIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, r, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}

	result, err := s.catalog.TrackGenres(r.Context(), body.TrackIDs)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	jsonResponse(w, http.StatusOK, result)
}

// statusFor separates caller mistakes from server-side failures.
func statusFor(err error) int {
	var malformed *history.MalformedInputError
	switch {
	case errors.Is(err, ErrNoFiles),
		errors.Is(err, catalog.ErrNoTrackIDs),
		errors.As(err, &malformed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Service) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error(err.Error(), "method", r.Method, "uri", r.URL.RequestURI())
	}
	jsonResponse(w, status, map[string]string{"error": userMessage(err)})
}

// userMessage keeps the wire messages the front end already renders.
func userMessage(err error) string {
	var malformed *history.MalformedInputError
	switch {
	case errors.Is(err, ErrNoFiles):
		return "No files uploaded."
	case errors.Is(err, catalog.ErrNoTrackIDs):
		return "No trackIds provided."
	case errors.As(err, &malformed):
		return "File \"" + malformed.File + "\" is not an array of plays."
	default:
		return err.Error()
	}
}

func jsonResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}
