// replay-cli runs the streaming-history analysis against export files
// on disk, without going through the web server. Genre enrichment is
// optional and needs SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET set.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wavefm/replay/config"
	"github.com/wavefm/replay/models"
	"github.com/wavefm/replay/service/catalog"
	"github.com/wavefm/replay/service/genres"
	"github.com/wavefm/replay/service/history"
	"github.com/wavefm/replay/service/metrics"
)

var (
	numResults  int
	withGenres  bool
	quietOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "replay-cli",
	Short: "Analyze exported Spotify streaming history",
	Long: `Computes listening totals, top artists/tracks, and (optionally) a genre
breakdown from the Streaming_History_Audio_*.json files of a Spotify
extended streaming history export.`,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>...",
	Short: "Analyze one or more streaming history files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(args)
	},
}

func init() {
	cobra.OnInitialize(config.Load)

	analyzeCmd.Flags().IntVarP(&numResults, "number", "n", 10, "number of rows per ranking table")
	analyzeCmd.Flags().BoolVarP(&withGenres, "genres", "g", false, "resolve genres via the Spotify API")
	analyzeCmd.Flags().BoolVarP(&quietOutput, "quiet", "q", false, "only print the totals")
	rootCmd.AddCommand(analyzeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAnalyze(paths []string) error {
	files := make([]history.File, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files = append(files, history.File{Name: path, Data: data})
	}

	plays, err := history.ParseFiles(files)
	if err != nil {
		return err
	}

	result := metrics.Compute(plays)

	fmt.Printf("Total listening time: %.2f hours\n", result.Totals.TotalHours)
	fmt.Printf("Total plays: %d (%d over 30s)\n\n", result.Totals.TotalPlays, result.Totals.PlaysOver30s)

	if quietOutput {
		return nil
	}

	if err := renderStreamTable("Top artists by streams", result.TopByStreams.Artists); err != nil {
		return err
	}
	if err := renderStreamTable("Top tracks by streams", result.TopByStreams.Tracks); err != nil {
		return err
	}
	if err := renderTimeTable("Top artists by hours", result.TopByTime.Artists); err != nil {
		return err
	}
	if err := renderTimeTable("Top tracks by hours", result.TopByTime.Tracks); err != nil {
		return err
	}

	if withGenres {
		return renderGenres(plays)
	}
	return nil
}

func renderGenres(plays []models.PlayEvent) error {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalogService := catalog.New(
		viper.GetString("spotify.client_id"),
		viper.GetString("spotify.client_secret"),
		viper.GetString("spotify.token_url"),
		viper.GetString("spotify.api_url"),
		logger,
	)

	var ids []string
	for _, p := range plays {
		if p.TrackID != "" {
			ids = append(ids, p.TrackID)
		}
	}

	trackGenres, err := catalogService.TrackGenres(context.Background(), ids)
	if err != nil {
		return err
	}

	result := genres.Aggregate(plays, trackGenres)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Genre", "Streams"})
	for i, g := range result.TopByStreams {
		if i >= numResults {
			break
		}
		if err := table.Append([]string{g.Genre, strconv.FormatInt(g.Streams, 10)}); err != nil {
			return err
		}
	}
	fmt.Println("Top genres by streams")
	return table.Render()
}

func renderStreamTable(title string, rows []models.StreamRank) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Name", "Streams"})
	for i, r := range rows {
		if i >= numResults {
			break
		}
		if err := table.Append([]string{r.Name, strconv.FormatInt(r.Value, 10)}); err != nil {
			return err
		}
	}
	fmt.Println(title)
	return table.Render()
}

func renderTimeTable(title string, rows []models.TimeRank) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Name", "Hours"})
	for i, r := range rows {
		if i >= numResults {
			break
		}
		if err := table.Append([]string{r.Name, strconv.FormatFloat(r.Hours, 'f', 2, 64)}); err != nil {
			return err
		}
	}
	fmt.Println(title)
	return table.Render()
}
