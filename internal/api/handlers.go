package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/FocuswithJustin/SchemaCanvas/core/dialect"
	"github.com/FocuswithJustin/SchemaCanvas/core/session"
	"github.com/FocuswithJustin/SchemaCanvas/internal/export"
	"github.com/FocuswithJustin/SchemaCanvas/internal/logging"
)

// maxBodyBytes caps request bodies. DDL documents are text; anything
// larger than this is not a schema.
const maxBodyBytes = 1 << 20

// SessionStatus describes the session after an operation.
type SessionStatus struct {
	State       string   `json:"state"`
	Dialect     string   `json:"dialect"`
	Fingerprint string   `json:"fingerprint"`
	Notices     []string `json:"notices,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	State   string `json:"state"`
	Dialect string `json:"dialect"`
	Tables  int    `json:"tables"`
}

// SettingsRequest is the request body for settings changes. Absent
// fields leave the corresponding setting untouched.
type SettingsRequest struct {
	Dialect                  *string `json:"dialect,omitempty"`
	CaseSensitiveIdentifiers *bool   `json:"caseSensitiveIdentifiers,omitempty"`
	UseInlineConstraints     *bool   `json:"useInlineConstraints,omitempty"`
}

var startTime = time.Now()

func handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "Endpoint not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"name":    "SchemaCanvas API",
		"version": "0.1.0",
		"endpoints": []string{
			"GET /health",
			"GET /schema",
			"GET /ddl",
			"POST /edit",
			"POST /apply",
			"POST /cancel",
			"POST /settings",
			"GET /export",
			"WS /ws",
		},
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "Only GET is allowed")
		return
	}

	sessionMu.Lock()
	info := HealthInfo{
		Status:  "healthy",
		Version: "0.1.0",
		Uptime:  time.Since(startTime).String(),
		State:   string(activeSession.State()),
		Dialect: string(activeSession.Dialect()),
		Tables:  len(activeSession.Graph().Tables),
	}
	sessionMu.Unlock()

	respondJSON(w, http.StatusOK, info)
}

// handleSchema returns the committed graph as a blueprint document.
func handleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "Only GET is allowed")
		return
	}

	sessionMu.Lock()
	data, err := activeSession.Graph().ToJSON()
	sessionMu.Unlock()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to encode schema")
		return
	}

	respondDocument(w, http.StatusOK, data)
}

// handleDDL returns the current DDL text buffer. During an edit this is
// the edited text, not the last committed generation.
func handleDDL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "Only GET is allowed")
		return
	}

	sessionMu.Lock()
	ddl := activeSession.DDL()
	fingerprint := activeSession.Fingerprint()
	sessionMu.Unlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Schema-Fingerprint", fingerprint)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, ddl)
}

// handleEdit replaces the edit buffer with the request body, opening an
// edit (with snapshot) first if the session is clean.
func handleEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "Only POST is allowed")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}

	sessionMu.Lock()
	defer sessionMu.Unlock()

	if activeSession.State() == session.Clean {
		if err := activeSession.BeginEdit(); err != nil {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
	}
	if err := activeSession.SetText(string(body)); err != nil {
		// LiveEditing pipeline failure: the buffer is kept, the error is
		// advisory. Anything else is a state conflict.
		if activeSession.State() == session.LiveEditing {
			logging.PipelineError("live_edit", err)
			respondJSON(w, http.StatusOK, sessionStatus())
			return
		}
		respondError(w, http.StatusConflict, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, sessionStatus())
}

// handleApply runs the repair/parse/reconcile pipeline over the edited
// text. Success commits the merged graph and returns it; parse failure
// returns 422 and leaves the session in its editing state.
func handleApply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "Only POST is allowed")
		return
	}

	sessionMu.Lock()
	defer sessionMu.Unlock()

	from := string(activeSession.State())
	if err := activeSession.Apply(); err != nil {
		if activeSession.State() == session.Clean {
			// Apply rejected outright: no edit in progress.
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		logging.PipelineError("apply", err)
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	data, err := activeSession.Graph().ToJSON()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to encode schema")
		return
	}

	logging.SessionTransition(from, string(session.Clean), "trigger", "apply")
	if warns := activeSession.Warnings(); len(warns) > 0 {
		logging.GenerationWarnings(string(activeSession.Dialect()), len(warns))
	}
	broadcastGraph(data)
	respondDocument(w, http.StatusOK, data)
}

// handleCancel discards the edit and restores the snapshot.
func handleCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "Only POST is allowed")
		return
	}

	sessionMu.Lock()
	defer sessionMu.Unlock()

	from := string(activeSession.State())
	if err := activeSession.Cancel(); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}

	logging.SessionTransition(from, string(session.Clean), "trigger", "cancel")
	respondJSON(w, http.StatusOK, sessionStatus())
}

// handleSettings changes dialect, identifier quoting, or constraint
// placement. Changes apply immediately on a clean session and are
// deferred with a notice while an edit is in progress.
func handleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "Only POST is allowed")
		return
	}

	var req SettingsRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid settings payload")
		return
	}

	sessionMu.Lock()
	defer sessionMu.Unlock()

	if req.Dialect != nil {
		if err := activeSession.SetDialect(dialect.Dialect(*req.Dialect)); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.CaseSensitiveIdentifiers != nil {
		activeSession.SetCaseSensitive(*req.CaseSensitiveIdentifiers)
	}
	if req.UseInlineConstraints != nil {
		activeSession.SetInlineConstraints(*req.UseInlineConstraints)
	}

	respondJSON(w, http.StatusOK, sessionStatus())
}

// handleExport serves the current DDL as a download named by the
// schema_<dialect>_<date>.sql convention.
func handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "Only GET is allowed")
		return
	}

	sessionMu.Lock()
	d := activeSession.Dialect()
	ddl := activeSession.DDL()
	fingerprint := activeSession.Fingerprint()
	sessionMu.Unlock()

	filename := export.Filename(d, time.Now(), false)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("X-Schema-Fingerprint", fingerprint)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, ddl)
}

// sessionStatus snapshots the session for a status response. Callers
// hold sessionMu.
func sessionStatus() SessionStatus {
	st := SessionStatus{
		State:       string(activeSession.State()),
		Dialect:     string(activeSession.Dialect()),
		Fingerprint: activeSession.Fingerprint(),
		Notices:     activeSession.Notices(),
	}
	for _, warn := range activeSession.Warnings() {
		st.Warnings = append(st.Warnings, warn.Error())
	}
	if err := activeSession.Err(); err != nil {
		st.Warnings = append(st.Warnings, err.Error())
	}
	return st
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondDocument writes pre-encoded JSON.
func respondDocument(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}
