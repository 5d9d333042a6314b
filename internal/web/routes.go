package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/event-report/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	configHandler := handlers.NewConfigHandler(s.config)
	rh := s.reportHandler

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck)
		r.Get("/config", configHandler.Get)

		r.Route("/report", func(r chi.Router) {
			r.Get("/", rh.Get)
			r.Patch("/fields", rh.UpdateFields)
			r.Post("/undo", rh.Undo)
			r.Post("/generate", rh.Generate)

			// Attachments
			r.Post("/files/{slot}", rh.UploadFiles)
			r.Put("/files/{slot}/{index}", rh.ReplaceFile)
			r.Delete("/files/{slot}/{index}", rh.DeleteFile)
			r.Get("/files/{slot}/{index}/preview", rh.Preview)

			// Crop session
			r.Post("/files/{slot}/{index}/crop", rh.OpenCrop)
			r.Get("/crop", rh.GetCrop)
			r.Put("/crop", rh.FinalizeCrop)
			r.Delete("/crop", rh.CancelCrop)

			// Paginated preview and export
			r.Post("/preview", rh.EnterPreview)
			r.Delete("/preview", rh.ExitPreview)
			r.Get("/pages/{n}", rh.Page)
			r.Post("/export", rh.Export)
		})
	})

	s.router.Get("/", s.serveIndex)
}

// serveIndex serves a landing page pointing at the API.
func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>Event Report</title>
    <style>
        body { font-family: system-ui, sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; background: #f3f4f6; color: #1e3a8a; }
        .container { text-align: center; }
        p { color: #4b5563; }
        code { background: #e5e7eb; padding: 2px 8px; border-radius: 4px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Event Report</h1>
        <p>The report API is available at <a href="/api/v1/report">/api/v1/report</a></p>
        <p>Export from the command line with <code>event-report export report.yaml</code></p>
    </div>
</body>
</html>`))
}
