package main

import "net/http"

// home serves the analyzer upload page. The rest of the site is static
// content and lives elsewhere; this page only needs a form that posts
// to the analyze endpoint.
func (app *application) home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")

	html := `
		<html>
		<head>
			<title>Replay - Spotify All-Time Analyzer</title>
			<style>
				body {
					font-family: Arial, sans-serif;
					max-width: 800px;
					margin: 0 auto;
					padding: 20px;
					line-height: 1.6;
				}
				h1 {
					color: #1DB954; /* Spotify green */
				}
				.card {
					border: 1px solid #ddd;
					border-radius: 8px;
					padding: 20px;
					margin-bottom: 20px;
				}
			</style>
		</head>
		<body>
			<h1>Replay - Spotify All-Time Analyzer</h1>

			<div class="card">
				<h2>Analyze your streaming history</h2>
				<p>Request your extended streaming history from Spotify, then upload the
				Streaming_History_Audio_*.json files here. You'll get your top artists and
				tracks, total listening hours, and how your taste in genres changed over time.</p>
				<form action="/api/spotify/analyze" method="post" enctype="multipart/form-data">
					<input type="file" name="files" accept=".json" multiple required>
					<button type="submit">Analyze</button>
				</form>
			</div>
		</body>
		</html>
	`

	w.Write([]byte(html))
}
