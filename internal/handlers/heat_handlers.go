package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"heatwatch/internal/models"
	"heatwatch/internal/repository"
	"heatwatch/internal/services"
	"heatwatch/pkg/logging"
	"heatwatch/pkg/metrics"
)

// HeatHandler handles heat-safety API endpoints
type HeatHandler struct {
	resolver   *services.ResolverService
	refresher  *services.RefreshService
	policyRepo repository.PolicyRepository
	practices  repository.PracticeRepository
	logger     *logging.StructuredLogger
	metrics    *metrics.Collector
}

// NewHeatHandler creates a new heat handler
func NewHeatHandler(
	resolver *services.ResolverService,
	refresher *services.RefreshService,
	policyRepo repository.PolicyRepository,
	practices repository.PracticeRepository,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *HeatHandler {
	return &HeatHandler{
		resolver:   resolver,
		refresher:  refresher,
		policyRepo: policyRepo,
		practices:  practices,
		logger:     logger,
		metrics:    metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

// ResolvedPolicyResponse is the payload for GET /api/heat/policy.
// CacheWarning is set when the resolution succeeded but the best-effort
// cache write onto the team-season record failed.
type ResolvedPolicyResponse struct {
	Policy       *models.HeatPolicy `json:"policy"`
	Source       string             `json:"source"`
	CacheWarning string             `json:"cache_warning,omitempty"`
}

// ResolvePolicy handles GET /api/heat/policy?team_season_id=
func (h *HeatHandler) ResolvePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/heat/policy").Observe(duration.Seconds())
	}()

	teamSeasonID := r.URL.Query().Get("team_season_id")
	if teamSeasonID == "" {
		h.sendError(w, r, "team_season_id is required", http.StatusBadRequest)
		return
	}

	resolution, err := h.resolver.ResolveForTeamSeason(ctx, teamSeasonID)
	if err != nil {
		var resErr *services.ResolutionError
		var notFound *repository.NotFoundError

		switch {
		case errors.As(err, &resErr):
			// Heat guidance unavailable: a configuration gap, not a fault.
			h.metrics.RecordAPIRequest("/api/heat/policy", "GET", "404")
			h.sendError(w, r, resErr.Reason, http.StatusNotFound)
		case errors.As(err, &notFound):
			h.metrics.RecordAPIRequest("/api/heat/policy", "GET", "404")
			h.sendError(w, r, err.Error(), http.StatusNotFound)
		default:
			h.logger.Error(ctx, "[API_RESOLVE_ERROR] Policy resolution failed", logging.Fields{
				"team_season_id": teamSeasonID,
			}, err)
			h.metrics.RecordAPIError("internal_error", "/api/heat/policy")
			h.sendError(w, r, "failed to resolve policy", http.StatusInternalServerError)
		}
		return
	}

	response := ResolvedPolicyResponse{
		Policy: resolution.Policy,
		Source: string(resolution.Source),
	}
	if resolution.CacheWarning != nil {
		response.CacheWarning = resolution.CacheWarning.Error()
	}

	h.metrics.RecordAPIRequest("/api/heat/policy", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// RefreshRequest is the payload for POST /api/heat/refresh.
type RefreshRequest struct {
	TeamSeasonID string  `json:"team_season_id"`
	WeekStart    string  `json:"week_start"` // YYYY-MM-DD
	Latitude     float64 `json:"lat"`
	Longitude    float64 `json:"lon"`
}

// RefreshWeek handles POST /api/heat/refresh
func (h *HeatHandler) RefreshWeek(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/heat/refresh").Observe(duration.Seconds())
	}()

	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.TeamSeasonID == "" {
		h.sendError(w, r, "team_season_id is required", http.StatusBadRequest)
		return
	}

	weekStart, err := time.Parse("2006-01-02", req.WeekStart)
	if err != nil {
		h.sendError(w, r, "invalid week_start format, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	result, err := h.refresher.RefreshWeek(ctx, req.TeamSeasonID, weekStart, req.Latitude, req.Longitude)
	if err != nil {
		h.logger.Error(ctx, "[API_REFRESH_ERROR] Weekly refresh failed", logging.Fields{
			"team_season_id": req.TeamSeasonID,
			"week_start":     req.WeekStart,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/heat/refresh")
		h.sendError(w, r, "failed to refresh heat data", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/heat/refresh", "POST", "200")
	h.sendJSON(w, result, http.StatusOK)
}

// GetSnapshots handles GET /api/practices/{id}/snapshots
func (h *HeatHandler) GetSnapshots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/practices/snapshots").Observe(duration.Seconds())
	}()

	practiceID := mux.Vars(r)["id"]
	page, limit := parsePagination(r)
	offset := (page - 1) * limit

	snapshots, total, err := h.practices.ListSnapshots(ctx, practiceID, limit, offset)
	if err != nil {
		h.logger.Error(ctx, "[API_GET_SNAPSHOTS_ERROR] Failed to get snapshots", logging.Fields{
			"practice_id": practiceID,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/practices/snapshots")
		h.sendError(w, r, "failed to retrieve snapshots", http.StatusInternalServerError)
		return
	}

	totalPages := (total + limit - 1) / limit

	response := PaginatedResponse{
		Data:       snapshots,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}

	h.metrics.RecordAPIRequest("/api/practices/snapshots", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// GetPolicies handles GET /api/policies
func (h *HeatHandler) GetPolicies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/policies").Observe(duration.Seconds())
	}()

	page, limit := parsePagination(r)
	offset := (page - 1) * limit

	filter := repository.PolicyFilter{
		Limit:  limit,
		Offset: offset,
	}

	if bodyStr := r.URL.Query().Get("governing_body"); bodyStr != "" {
		body := models.GoverningBody(bodyStr)
		if !body.Valid() {
			h.sendError(w, r, "invalid governing_body, expected one of nfhs, ncaa, naia, other", http.StatusBadRequest)
			return
		}
		filter.GoverningBody = &body
	}

	if sport := r.URL.Query().Get("sport"); sport != "" {
		filter.SportKey = &sport
	}

	policies, total, err := h.policyRepo.ListPolicies(ctx, filter)
	if err != nil {
		h.logger.Error(ctx, "[API_GET_POLICIES_ERROR] Failed to get policies", logging.Fields{
			"filter": filter,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/policies")
		h.sendError(w, r, "failed to retrieve policies", http.StatusInternalServerError)
		return
	}

	totalPages := (total + limit - 1) / limit

	response := PaginatedResponse{
		Data:       policies,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}

	h.metrics.RecordAPIRequest("/api/policies", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *HeatHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.practices.HealthCheck(ctx); err != nil {
		h.sendError(w, r, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// parsePagination extracts page/limit query parameters with defaults
func parsePagination(r *http.Request) (page, limit int) {
	page = 1
	limit = 100

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
	}

	return page, limit
}

// sendJSON sends a JSON response
func (h *HeatHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *HeatHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all heat API routes
func (h *HeatHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/heat/policy", h.ResolvePolicy).Methods("GET")
	router.HandleFunc("/api/heat/refresh", h.RefreshWeek).Methods("POST")
	router.HandleFunc("/api/practices/{id}/snapshots", h.GetSnapshots).Methods("GET")
	router.HandleFunc("/api/policies", h.GetPolicies).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
