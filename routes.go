package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", app.home)
	mux.HandleFunc("POST /api/spotify/analyze", app.analyzer.HandleAnalyze)
	mux.HandleFunc("POST /api/spotify/track-genres", app.analyzer.HandleTrackGenres)

	standard := alice.New(app.recoverPanic, app.logRequest, commonHeaders)

	return standard.Then(mux)
}
