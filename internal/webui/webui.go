// Package webui serves the chat interface: credential entry and document
// upload in the sidebar, a streaming conversation panel in the middle.
package webui

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/docgpt-ai/docgpt/internal/history"
	"github.com/docgpt-ai/docgpt/internal/ingest"
	"github.com/docgpt-ai/docgpt/internal/session"
)

const sessionCookie = "docgpt_session"

// WebUI wires the chat surface to the session manager and the ingestion
// workflow.
type WebUI struct {
	manager  *session.Manager
	ingestor *ingest.Ingestor
	history  *history.Store // optional; nil disables the exchange log
	md       goldmark.Markdown
}

// New creates a WebUI.
func New(manager *session.Manager, ingestor *ingest.Ingestor, hist *history.Store) *WebUI {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(highlighting.WithStyle("github")),
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)

	return &WebUI{
		manager:  manager,
		ingestor: ingestor,
		history:  hist,
		md:       md,
	}
}

// RegisterRoutes mounts all UI routes onto the given router.
func (u *WebUI) RegisterRoutes(r chi.Router) {
	r.Get("/", u.ServeIndex)

	r.Route("/api", func(api chi.Router) {
		// Uploads embed documents synchronously and can be slow.
		api.Use(middleware.Timeout(5 * time.Minute))
		api.Post("/session/key", u.handleSetKey)
		api.Get("/session/transcript", u.handleTranscript)
		api.Get("/files", u.handleFiles)
		api.Post("/upload", u.handleUpload)
		api.Get("/stats", u.handleStats)
	})

	// The websocket manages its own lifetime; no timeout middleware.
	r.Get("/ws/chat", u.handleWebSocket)
}

// sessionFor resolves the caller's session from the session cookie,
// issuing a fresh cookie (and session) when none exists yet.
func (u *WebUI) sessionFor(w http.ResponseWriter, r *http.Request) *session.Session {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return u.manager.GetOrCreate(c.Value)
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return u.manager.GetOrCreate(id)
}
