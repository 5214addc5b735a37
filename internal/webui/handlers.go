package webui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/docgpt-ai/docgpt/internal/history"
	"github.com/docgpt-ai/docgpt/internal/llm"
	"github.com/docgpt-ai/docgpt/internal/session"
)

type keyRequest struct {
	APIKey string `json:"api_key"`
}

// transcriptMessage is one transcript entry in API form. HTML carries the
// markdown-rendered content for assistant messages.
type transcriptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	HTML    string `json:"html,omitempty"`
}

type uploadResult struct {
	FileName string `json:"file_name"`
	Status   string `json:"status"` // added | skipped | failed
	Error    string `json:"error,omitempty"`
}

type uploadResponse struct {
	Results []uploadResult `json:"results"`
	Error   string         `json:"error,omitempty"`
}

type statsResponse struct {
	Files    int `json:"files"`
	Sessions int `json:"sessions"`
	Messages int `json:"messages"`
}

func (u *WebUI) handleSetKey(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.APIKey == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "api_key is required"})
		return
	}

	sess := u.sessionFor(w, r)
	sess.SetCredential(req.APIKey)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (u *WebUI) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sess := u.sessionFor(w, r)

	msgs := sess.Transcript().Messages()
	out := make([]transcriptMessage, len(msgs))
	for i, m := range msgs {
		out[i] = transcriptMessage{Role: string(m.Role), Content: m.Content}
		if m.Role == llm.RoleAssistant {
			out[i].HTML = u.renderMarkdown(m.Content)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": out})
}

func (u *WebUI) handleFiles(w http.ResponseWriter, r *http.Request) {
	names, err := u.ingestor.Ledger().Load()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": names})
}

// handleUpload ingests the uploaded files in order, halting the batch on
// the first failure so a bad file (or a missing credential) never leaves
// later files half-processed.
func (u *WebUI) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	sess := u.sessionFor(w, r)
	ctx := r.Context()

	var resp uploadResponse
	for _, header := range r.MultipartForm.File["files"] {
		f, err := header.Open()
		if err != nil {
			resp.Results = append(resp.Results, uploadResult{FileName: header.Filename, Status: "failed", Error: err.Error()})
			resp.Error = err.Error()
			break
		}

		added, err := u.ingestor.Ingest(ctx, sess, header.Filename, f)
		f.Close()

		switch {
		case errors.Is(err, session.ErrMissingCredential):
			resp.Error = "Please enter your OpenAI API Key"
			u.logIngest(ctx, header.Filename, history.IngestFailed, resp.Error)
			writeJSON(w, http.StatusBadRequest, resp)
			return
		case err != nil:
			resp.Results = append(resp.Results, uploadResult{FileName: header.Filename, Status: "failed", Error: err.Error()})
			resp.Error = err.Error()
			u.logIngest(ctx, header.Filename, history.IngestFailed, err.Error())
		case added:
			resp.Results = append(resp.Results, uploadResult{FileName: header.Filename, Status: "added"})
			u.logIngest(ctx, header.Filename, history.IngestAdded, "")
		default:
			resp.Results = append(resp.Results, uploadResult{FileName: header.Filename, Status: "skipped"})
			u.logIngest(ctx, header.Filename, history.IngestSkipped, "already in knowledge base")
		}

		if resp.Error != "" {
			break
		}
	}

	status := http.StatusOK
	if resp.Error != "" {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, resp)
}

func (u *WebUI) handleStats(w http.ResponseWriter, r *http.Request) {
	names, err := u.ingestor.Ledger().Load()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	stats := statsResponse{
		Files:    len(names),
		Sessions: u.manager.Count(),
	}
	if u.history != nil {
		if count, err := u.history.MessageCount(r.Context()); err == nil {
			stats.Messages = count
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (u *WebUI) renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := u.md.Convert([]byte(content), &buf); err != nil {
		log.Printf("webui: markdown render: %v", err)
		return ""
	}
	return buf.String()
}

func (u *WebUI) logIngest(ctx context.Context, fileName string, status history.IngestStatus, detail string) {
	if u.history == nil {
		return
	}
	if err := u.history.LogIngest(ctx, fileName, status, detail); err != nil {
		log.Printf("webui: ingest log: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
