// Package httpapi exposes the REST handlers and translates HTTP requests into
// the rating and export services.
package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/MichelFaust/MCW-Food-Voting/internal/app/export"
	"github.com/MichelFaust/MCW-Food-Voting/internal/app/rating"
	"github.com/MichelFaust/MCW-Food-Voting/internal/domain"
	"github.com/MichelFaust/MCW-Food-Voting/internal/platform/metrics"
	"github.com/MichelFaust/MCW-Food-Voting/internal/platform/ratelimit"
)

// adminTokenHeader carries the shared admin secret for destructive calls. An
// empty configured token disables the check (local single-cafeteria use).
const adminTokenHeader = "X-Admin-Token"

// RatingService is the slice of the rating service the handlers consume.
type RatingService interface {
	SubmitVote(ctx context.Context, req rating.SubmitRequest) (domain.Vote, error)
	Votes(ctx context.Context, day string) ([]domain.Vote, error)
	Results(ctx context.Context, day string) (domain.DaySummary, error)
	LiveResults(ctx context.Context) (domain.DaySummary, error)
	VoteDates(ctx context.Context) ([]string, error)
	ClearVotes(ctx context.Context) error
	VotedNames(ctx context.Context) ([]string, error)
	ResetVotedNames(ctx context.Context) error
	Guests(ctx context.Context) ([]domain.Guest, error)
	AddGuest(ctx context.Context, name string) (domain.Guest, error)
	ResetGuests(ctx context.Context) error
	Dish(ctx context.Context) (domain.Dish, error)
	SetDish(ctx context.Context, dish domain.Dish) error
}

// ExportService renders downloadable files.
type ExportService interface {
	ExportDay(ctx context.Context, day string, format export.Format) (export.File, error)
	ExportAll(ctx context.Context, format export.Format) (export.File, error)
}

// API bundles the HTTP handlers bound to the services and logger.
type API struct {
	ratings    RatingService
	exports    ExportService
	logger     *slog.Logger
	adminToken string
}

func New(ratings RatingService, exports ExportService, logger *slog.Logger, adminToken string) *API {
	return &API{ratings: ratings, exports: exports, logger: logger, adminToken: adminToken}
}

func (a *API) Register(mux *http.ServeMux) {
	// Routes stay centralized so tests and alternative servers reuse them.
	mux.HandleFunc("/healthz", a.handleHealthz)
	mux.HandleFunc("/api/vote", a.handleVote)
	mux.HandleFunc("/api/votes", a.handleVotes)
	mux.HandleFunc("/api/results", a.handleResults)
	mux.HandleFunc("/api/results/live", a.handleLiveResults)
	mux.HandleFunc("/api/vote-dates", a.handleVoteDates)
	mux.HandleFunc("/api/export", a.handleExportDay)
	mux.HandleFunc("/api/export-all", a.handleExportAll)
	mux.HandleFunc("/api/voted-names", a.handleVotedNames)
	mux.HandleFunc("/api/guests", a.handleGuests)
	mux.HandleFunc("/api/food", a.handleFood)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type voteRequest struct {
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Rating      int      `json:"rating"`
	Adjustments []string `json:"adjustments"`
}

func (a *API) handleVote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.ObserveVoteRequest("invalid_payload")
		a.logger.Warn("invalid vote payload", "err", err)
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	clientIP := r.Header.Get("X-Forwarded-For")
	if clientIP == "" {
		clientIP = strings.Split(r.RemoteAddr, ":")[0]
	}

	vote, err := a.ratings.SubmitVote(r.Context(), rating.SubmitRequest{
		Name:        req.Name,
		Role:        domain.Role(req.Role),
		Rating:      domain.Rating(req.Rating),
		Adjustments: req.Adjustments,
		ClientIP:    clientIP,
		UserAgent:   r.UserAgent(),
	})
	if err != nil {
		status := voteStatusLabel(err)
		metrics.ObserveVoteRequest(status)
		a.logger.Warn("vote rejected", "err", err, "name", req.Name, "status", status)
		respondError(w, err)
		return
	}

	metrics.ObserveVoteRequest("accepted")
	a.logger.Info("vote accepted", "id", vote.ID, "role", vote.Role, "day", vote.Day)
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "id": vote.ID})
}

func (a *API) handleVotes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		votes, err := a.ratings.Votes(r.Context(), r.URL.Query().Get("date"))
		if err != nil {
			a.logger.Error("listing votes failed", "err", err)
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, voteListResponse(votes))
	case http.MethodDelete:
		if !a.authorized(r) {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "admin token required"})
			return
		}
		if err := a.ratings.ClearVotes(r.Context()); err != nil {
			a.logger.Error("clearing votes failed", "err", err)
			respondError(w, err)
			return
		}
		a.logger.Info("vote log cleared")
		respondJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type voteResponse struct {
	ID          domain.VoteID `json:"id"`
	Name        string        `json:"name"`
	Role        domain.Role   `json:"role"`
	Rating      int           `json:"rating"`
	Adjustments []string      `json:"adjustments"`
	Day         string        `json:"date"`
}

func voteListResponse(votes []domain.Vote) []voteResponse {
	out := make([]voteResponse, len(votes))
	for i, v := range votes {
		adjustments := v.Adjustments
		if adjustments == nil {
			adjustments = []string{}
		}
		out[i] = voteResponse{
			ID:          v.ID,
			Name:        v.Name,
			Role:        v.Role,
			Rating:      int(v.Rating),
			Adjustments: adjustments,
			Day:         v.Day,
		}
	}
	return out
}

func (a *API) handleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, err := a.ratings.Results(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		a.logger.Error("computing results failed", "err", err)
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summaryResponse(summary))
}

func (a *API) handleLiveResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, err := a.ratings.LiveResults(r.Context())
	if err != nil {
		a.logger.Error("live results failed", "err", err)
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summaryResponse(summary))
}

// summaryResponse keys counts and percentages by smiley, the shape the
// results page consumes.
func summaryResponse(summary domain.DaySummary) map[string]any {
	ratings := make(map[string]int64, len(domain.Ratings()))
	percentages := make(map[string]int, len(domain.Ratings()))
	for _, r := range domain.Ratings() {
		ratings[r.Smiley()] = summary.Counts[r]
		percentages[r.Smiley()] = summary.Percentages[r]
	}
	return map[string]any{
		"date":        summary.Day,
		"total":       summary.Total,
		"ratings":     ratings,
		"percentages": percentages,
	}
}

func (a *API) handleVoteDates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	days, err := a.ratings.VoteDates(r.Context())
	if err != nil {
		a.logger.Error("listing vote dates failed", "err", err)
		respondError(w, err)
		return
	}
	if days == nil {
		days = []string{}
	}
	respondJSON(w, http.StatusOK, days)
}

func (a *API) handleExportDay(w http.ResponseWriter, r *http.Request) {
	a.serveExport(w, r, func(format export.Format) (export.File, error) {
		return a.exports.ExportDay(r.Context(), r.URL.Query().Get("date"), format)
	})
}

func (a *API) handleExportAll(w http.ResponseWriter, r *http.Request) {
	a.serveExport(w, r, func(format export.Format) (export.File, error) {
		return a.exports.ExportAll(r.Context(), format)
	})
}

func (a *API) serveExport(w http.ResponseWriter, r *http.Request, run func(export.Format) (export.File, error)) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rawType := r.URL.Query().Get("type")
	format, err := export.ParseFormat(rawType)
	if err != nil {
		metrics.ObserveExportRequest(rawType, "invalid")
		respondError(w, err)
		return
	}

	file, err := run(format)
	if err != nil {
		metrics.ObserveExportRequest(string(format), "error")
		a.logger.Error("export failed", "err", err, "type", format)
		respondError(w, err)
		return
	}

	metrics.ObserveExportRequest(string(format), "ok")
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

func (a *API) handleVotedNames(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		names, err := a.ratings.VotedNames(r.Context())
		if err != nil {
			a.logger.Error("listing voted names failed", "err", err)
			respondError(w, err)
			return
		}
		if names == nil {
			names = []string{}
		}
		respondJSON(w, http.StatusOK, names)
	case http.MethodDelete:
		if !a.authorized(r) {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "admin token required"})
			return
		}
		if err := a.ratings.ResetVotedNames(r.Context()); err != nil {
			a.logger.Error("resetting voted names failed", "err", err)
			respondError(w, err)
			return
		}
		a.logger.Info("voted names reset")
		respondJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type guestRequest struct {
	Name string `json:"name"`
}

func (a *API) handleGuests(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		guests, err := a.ratings.Guests(r.Context())
		if err != nil {
			a.logger.Error("listing guests failed", "err", err)
			respondError(w, err)
			return
		}
		names := make([]string, len(guests))
		for i, g := range guests {
			names[i] = g.Name
		}
		respondJSON(w, http.StatusOK, names)
	case http.MethodPost:
		var req guestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		guest, err := a.ratings.AddGuest(r.Context(), req.Name)
		if err != nil {
			a.logger.Warn("adding guest failed", "err", err, "name", req.Name)
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"success": true, "id": guest.ID})
	case http.MethodDelete:
		if !a.authorized(r) {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "admin token required"})
			return
		}
		if err := a.ratings.ResetGuests(r.Context()); err != nil {
			a.logger.Error("resetting guests failed", "err", err)
			respondError(w, err)
			return
		}
		a.logger.Info("guest roster reset")
		respondJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type dishRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

func (a *API) handleFood(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		dish, err := a.ratings.Dish(r.Context())
		if err != nil {
			a.logger.Error("reading dish failed", "err", err)
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"name": dish.Name, "image": dish.Image})
	case http.MethodPost:
		if !a.authorized(r) {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "admin token required"})
			return
		}
		var req dishRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		if err := a.ratings.SetDish(r.Context(), domain.Dish{Name: req.Name, Image: req.Image}); err != nil {
			a.logger.Warn("setting dish failed", "err", err, "name", req.Name)
			respondError(w, err)
			return
		}
		a.logger.Info("dish updated", "name", req.Name)
		respondJSON(w, http.StatusOK, map[string]string{"name": req.Name, "image": req.Image})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a *API) authorized(r *http.Request) bool {
	if a.adminToken == "" {
		return true
	}
	provided := r.Header.Get(adminTokenHeader)
	return subtle.ConstantTimeCompare([]byte(provided), []byte(a.adminToken)) == 1
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, rating.ErrNameRequired),
		errors.Is(err, rating.ErrInvalidRole),
		errors.Is(err, rating.ErrInvalidRating),
		errors.Is(err, rating.ErrUnknownAdjustment),
		errors.Is(err, rating.ErrDayRequired),
		errors.Is(err, export.ErrDayRequired),
		errors.Is(err, export.ErrUnsupportedFormat):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateVote):
		status = http.StatusConflict
	case errors.Is(err, ratelimit.ErrRateLimitExceeded):
		status = http.StatusTooManyRequests
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	}

	respondJSON(w, status, map[string]string{"error": err.Error()})
}

func voteStatusLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateVote):
		return "conflict"
	case errors.Is(err, ratelimit.ErrRateLimitExceeded):
		return "rate_limited"
	case errors.Is(err, rating.ErrNameRequired),
		errors.Is(err, rating.ErrInvalidRole),
		errors.Is(err, rating.ErrInvalidRating),
		errors.Is(err, rating.ErrUnknownAdjustment):
		return "invalid"
	default:
		return "error"
	}
}
