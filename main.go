package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/wavefm/replay/config"
	"github.com/wavefm/replay/service/analyzer"
	"github.com/wavefm/replay/service/catalog"
)

type application struct {
	logger   *slog.Logger
	analyzer *analyzer.Service
}

func main() {
	config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	catalogService := catalog.New(
		viper.GetString("spotify.client_id"),
		viper.GetString("spotify.client_secret"),
		viper.GetString("spotify.token_url"),
		viper.GetString("spotify.api_url"),
		logger,
	)

	app := &application{
		logger:   logger,
		analyzer: analyzer.New(catalogService, logger),
	}

	addr := fmt.Sprintf("%s:%s", viper.GetString("server.host"), viper.GetString("server.port"))

	srv := &http.Server{
		Addr:     addr,
		Handler:  app.routes(),
		ErrorLog: slog.NewLogLogger(logger.Handler(), slog.LevelError),
		// Uploads of a full decade of history run tens of MB.
		IdleTimeout:  time.Minute,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	logger.Info(fmt.Sprintf("starting server at: http://%s", addr))

	err := srv.ListenAndServe()
	logger.Error(err.Error())
	os.Exit(1)
}
