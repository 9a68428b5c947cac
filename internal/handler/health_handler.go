package handler

import (
	"net/http"
	"time"

	"pharma-plus/internal/database"
)

// Banner is the plain-text body served at the root path.
const Banner = "Backend is running"

// HealthResponse reports process liveness and backing-store state.
type HealthResponse struct {
	OK       bool    `json:"ok"`
	Uptime   float64 `json:"uptime"`
	Database string  `json:"database"`
}

// HealthHandler serves liveness endpoints.
type HealthHandler struct {
	db      database.Pinger
	started time.Time
}

// NewHealthHandler creates a health handler. Uptime is measured from started.
func NewHealthHandler(db database.Pinger, started time.Time) *HealthHandler {
	return &HealthHandler{db: db, started: started}
}

// Health handles GET /api/health. It answers 200 while the process serves,
// even when the database is unreachable.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		OK:       true,
		Uptime:   time.Since(h.started).Seconds(),
		Database: database.State(r.Context(), h.db),
	})
}

// Root handles GET /.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(Banner))
}
