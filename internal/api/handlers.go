// Package api exposes the on-demand extraction endpoint consumed by the
// chat front end, plus batch-job management and stats.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/avtokat/encar-scraper/internal/database"
	"github.com/avtokat/encar-scraper/internal/jobs"
	"github.com/avtokat/encar-scraper/internal/models"
	"github.com/avtokat/encar-scraper/internal/scraper"
)

type Handlers struct {
	pipeline *scraper.Pipeline
	jobs     *jobs.Manager
	db       *database.DB // nil when persistence is disabled
	logger   *slog.Logger
}

func NewHandlers(pipeline *scraper.Pipeline, jobs *jobs.Manager, db *database.DB, logger *slog.Logger) *Handlers {
	return &Handlers{
		pipeline: pipeline,
		jobs:     jobs,
		db:       db,
		logger:   logger,
	}
}

// ExtractRequest asks for one listing by URL or by bare item id.
type ExtractRequest struct {
	URL string `json:"url"`
	ID  string `json:"id"`
}

// ExtractResponse carries the extracted listing or a short human-readable
// failure message. Internal errors never leak raw to the chat front end.
type ExtractResponse struct {
	Listing *models.Listing `json:"listing,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// userFacingFailure is what the chat interface shows when extraction fails.
const userFacingFailure = "Could not extract the listing. Likely causes: " +
	"the item was removed, a network problem, or a verification challenge " +
	"on the site. Try again later or send another link."

// Extract runs one blocking extraction. The pipeline serializes runs
// internally, so concurrent requests queue up rather than sharing the
// browser session.
func (h *Handlers) Extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	url := strings.TrimSpace(req.URL)
	if url == "" && req.ID != "" {
		url = scraper.DetailURL(strings.TrimSpace(req.ID))
	}
	if url == "" {
		h.respondError(w, http.StatusBadRequest, "either url or id is required")
		return
	}

	if scraper.ListingIDFromURL(url) == "" {
		h.respondError(w, http.StatusBadRequest,
			"could not find an item id in the link; expected something like "+
				"https://fem.encar.com/cars/detail/40647630?carid=40647630")
		return
	}

	listing, err := h.pipeline.ExtractListing(r.Context(), url)
	if err != nil {
		if errors.Is(err, scraper.ErrAlreadyProcessed) {
			h.respondJSON(w, http.StatusOK, ExtractResponse{
				Error: "this listing was already processed in the current session",
			})
			return
		}

		h.logger.Error("extraction failed", "url", url, "error", err)
		h.respondJSON(w, http.StatusOK, ExtractResponse{Error: userFacingFailure})
		return
	}

	h.respondJSON(w, http.StatusOK, ExtractResponse{Listing: listing})
}

// CreateJobRequest starts a batch catalog crawl.
type CreateJobRequest struct {
	Brand     string `json:"brand"`
	StartPage int    `json:"start_page"`
	MaxPages  int    `json:"max_pages"`
	MaxCars   int    `json:"max_cars"`
}

func (h *Handlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Brand == "" {
		h.respondError(w, http.StatusBadRequest, "brand is required")
		return
	}
	if req.StartPage < 1 {
		req.StartPage = 1
	}
	if req.MaxPages < 1 {
		req.MaxPages = 1
	}
	if req.MaxCars < 1 {
		req.MaxCars = 50
	}

	job := h.jobs.Create(req.Brand, req.StartPage, req.MaxPages, req.MaxCars)
	h.respondJSON(w, http.StatusAccepted, job)
}

func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	job := h.jobs.Get(chi.URLParam(r, "id"))
	if job == nil {
		h.respondError(w, http.StatusNotFound, "job not found")
		return
	}
	h.respondJSON(w, http.StatusOK, job)
}

func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.jobs.List())
}

// GetListing serves a previously persisted extraction without touching the
// browser. Only available when a database is configured.
func (h *Handlers) GetListing(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		h.respondError(w, http.StatusServiceUnavailable, "persistence is not configured")
		return
	}

	id := chi.URLParam(r, "id")
	listing, err := h.db.GetListing(r.Context(), id)
	if err != nil {
		h.logger.Error("listing lookup failed", "id", id, "error", err)
		h.respondError(w, http.StatusInternalServerError, "listing lookup failed")
		return
	}
	if listing == nil {
		h.respondError(w, http.StatusNotFound, "listing not found")
		return
	}

	h.respondJSON(w, http.StatusOK, listing)
}

// StatsResponse is session counters plus, when persistence is on, the total
// number of listings stored so far.
type StatsResponse struct {
	scraper.Stats
	Stored *int `json:"stored,omitempty"`
}

func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{Stats: h.pipeline.Stats()}

	if h.db != nil {
		count, err := h.db.CountListings(r.Context())
		if err != nil {
			h.logger.Warn("failed to count stored listings", "error", err)
		} else {
			resp.Stored = &count
		}
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
