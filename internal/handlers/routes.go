package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/codebuildervaibhav/speech-insights/internal/logging"
)

// Routes bundles the handlers served by the API.
type Routes struct {
	Upload      *UploadHandler
	GDrive      *GDriveHandler
	YouTube     *YouTubeHandler
	Stream      *StreamHandler
	Analyze     *AnalyzeHandler
	Transcripts *TranscriptsHandler
	Jobs        *JobsHandler
	Logs        *logging.Buffer

	// MetricsPath and MetricsHandler are optional.
	MetricsPath    string
	MetricsHandler http.Handler
}

// Register mounts every route on app.
func (r Routes) Register(app *fiber.App) {
	app.Get("/health", Health)

	app.Post("/upload", r.Upload.Handle)
	app.Post("/gdrive", r.GDrive.Handle)
	app.Post("/youtube", r.YouTube.Handle)
	app.Post("/analyze", r.Analyze.Handle)

	app.Get("/ws/stream", websocket.New(r.Stream.Handle))

	app.Get("/transcripts", r.Transcripts.List)
	app.Get("/transcripts/:id/text", r.Transcripts.Text)
	app.Get("/transcripts/:id/metrics", r.Transcripts.Metrics)
	app.Get("/jobs/:id", r.Jobs.Get)

	app.Get("/logs", Logs(r.Logs))

	if r.MetricsHandler != nil && r.MetricsPath != "" {
		app.Get(r.MetricsPath, Metrics(r.MetricsHandler))
	}
}
