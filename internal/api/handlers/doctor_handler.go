package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/zatekoja/doctordiscovery/internal/application/services"
	"github.com/zatekoja/doctordiscovery/internal/domain/entities"
	"github.com/zatekoja/doctordiscovery/internal/domain/providers"
	"github.com/zatekoja/doctordiscovery/pkg/geo"
)

// DoctorHandler handles doctor listing and ranking HTTP requests
type DoctorHandler struct {
	discovery *services.DoctorDiscoveryService
	pool      *services.DoctorPoolService
	analyzer  *services.ConversationStateAnalyzer
	search    providers.DoctorSearchProvider
}

// NewDoctorHandler creates a new doctor handler
func NewDoctorHandler(
	discovery *services.DoctorDiscoveryService,
	pool *services.DoctorPoolService,
	analyzer *services.ConversationStateAnalyzer,
	search providers.DoctorSearchProvider,
) *DoctorHandler {
	return &DoctorHandler{
		discovery: discovery,
		pool:      pool,
		analyzer:  analyzer,
		search:    search,
	}
}

// ListDoctors handles GET /api/doctors
//
// Query parameters: specialty, sort (rating|experience|location), lat, lon,
// near (a known city name used when lat/lon are absent), limit.
func (h *DoctorHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := services.RankRequest{
		SortBy: entities.SortKey(q.Get("sort")),
	}

	if raw := q.Get("specialty"); raw != "" {
		req.Specialty = entities.CanonicalSpecialty(raw)
	}

	if lat, lon, ok := parseOrigin(q.Get("lat"), q.Get("lon")); ok {
		req.Latitude, req.Longitude = lat, lon
		req.HasOrigin = true
	} else if near := q.Get("near"); near != "" {
		lat, lon, ok := geo.CityCoordinates(near)
		if !ok {
			respondWithError(w, http.StatusBadRequest, "unknown city: "+near)
			return
		}
		req.Latitude, req.Longitude = lat, lon
		req.HasOrigin = true
	}

	if rawLimit := q.Get("limit"); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil || limit < 0 {
			respondWithError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		req.Limit = limit
	}

	doctors := h.discovery.ListDoctors(r.Context(), req)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"doctors": doctors,
		"count":   len(doctors),
	})
}

type sortDoctorsRequest struct {
	Turns     []entities.ConversationTurn `json:"turns"`
	Latitude  *float64                    `json:"latitude,omitempty"`
	Longitude *float64                    `json:"longitude,omitempty"`
	City      string                      `json:"city,omitempty"`
	Limit     int                         `json:"limit,omitempty"`
}

// SortDoctors handles POST /api/doctors/sort
//
// Derives the specialist and sort preference from a conversation transcript
// and returns the ranked doctors for them.
func (h *DoctorHandler) SortDoctors(w http.ResponseWriter, r *http.Request) {
	var body sortDoctorsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state := h.analyzer.Analyze(body.Turns)
	if state.Stage == entities.StageNoRecommendation {
		respondWithError(w, http.StatusUnprocessableEntity, "no specialist recommendation in conversation")
		return
	}

	req := services.RankRequest{
		Specialty: state.RecommendedSpecialist,
		SortBy:    state.LastSortPreference,
		Limit:     body.Limit,
	}

	if body.Latitude != nil && body.Longitude != nil {
		req.Latitude, req.Longitude = *body.Latitude, *body.Longitude
		req.HasOrigin = true
	} else if body.City != "" {
		if lat, lon, ok := geo.CityCoordinates(body.City); ok {
			req.Latitude, req.Longitude = lat, lon
			req.HasOrigin = true
		}
	}

	doctors := h.discovery.ListDoctors(r.Context(), req)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"state":   state,
		"doctors": doctors,
		"count":   len(doctors),
	})
}

// SearchDoctors handles GET /api/doctors/search
func (h *DoctorHandler) SearchDoctors(w http.ResponseWriter, r *http.Request) {
	if h.search == nil {
		respondWithError(w, http.StatusServiceUnavailable, "search is not configured")
		return
	}

	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("q"))
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "q is required")
		return
	}

	var specialty entities.Specialty
	if raw := q.Get("specialty"); raw != "" {
		specialty = entities.CanonicalSpecialty(raw)
	}

	limit := 10
	if rawLimit := q.Get("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	doctors, err := h.search.Search(r.Context(), query, specialty, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "search failed")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"doctors": doctors,
		"count":   len(doctors),
	})
}

// GetPoolStats handles GET /api/doctors/stats
func (h *DoctorHandler) GetPoolStats(w http.ResponseWriter, r *http.Request) {
	stats := h.pool.Stats()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"stats":     stats,
		"loaded_at": h.pool.LoadedAt(),
	})
}

// RefreshPool handles POST /api/admin/pool/refresh
func (h *DoctorHandler) RefreshPool(w http.ResponseWriter, r *http.Request) {
	if err := h.pool.Refresh(r.Context()); err != nil {
		respondWithError(w, http.StatusBadGateway, "pool refresh failed")
		return
	}
	h.discovery.InvalidateCache(r.Context())
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"doctors":   h.pool.Stats().TotalDoctors,
		"loaded_at": h.pool.LoadedAt(),
	})
}

func parseOrigin(latStr, lonStr string) (float64, float64, bool) {
	if latStr == "" || lonStr == "" {
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lon, errLon := strconv.ParseFloat(lonStr, 64)
	if errLat != nil || errLon != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
