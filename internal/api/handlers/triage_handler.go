package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/zatekoja/doctordiscovery/internal/application/services"
	"github.com/zatekoja/doctordiscovery/internal/domain/entities"
)

// TriageHandler handles symptom triage and conversation analysis requests
type TriageHandler struct {
	classifier *services.SpecialistClassifier
	analyzer   *services.ConversationStateAnalyzer
	discovery  *services.DoctorDiscoveryService
}

// NewTriageHandler creates a new triage handler
func NewTriageHandler(
	classifier *services.SpecialistClassifier,
	analyzer *services.ConversationStateAnalyzer,
	discovery *services.DoctorDiscoveryService,
) *TriageHandler {
	return &TriageHandler{
		classifier: classifier,
		analyzer:   analyzer,
		discovery:  discovery,
	}
}

type triageRequest struct {
	Message        string                      `json:"message"`
	Transcript     []entities.ConversationTurn `json:"transcript,omitempty"`
	UserLocation   *entities.Location          `json:"user_location,omitempty"`
	SortPreference string                      `json:"sort_preference,omitempty"`
	Limit          int                         `json:"limit,omitempty"`
}

type triageResponse struct {
	Specialty     entities.Specialty         `json:"specialty"`
	DisplayName   string                     `json:"display_name"`
	Matches       int                        `json:"matches"`
	LowConfidence bool                       `json:"low_confidence"`
	State         entities.ConversationState `json:"state"`
	Doctors       []services.RankedDoctor    `json:"doctors"`
	Count         int                        `json:"count"`
}

// Triage handles POST /api/triage
//
// One-shot chat turn: classifies the fresh message, replays the transcript
// with that message appended, and returns the ranked doctors for the
// resulting specialist and sort preference.
func (h *TriageHandler) Triage(w http.ResponseWriter, r *http.Request) {
	var req triageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondWithError(w, http.StatusBadRequest, "message is required")
		return
	}

	result := h.classifier.Classify(req.Message)

	turns := append(append([]entities.ConversationTurn{}, req.Transcript...),
		entities.ConversationTurn{UserText: req.Message})
	state := h.analyzer.Analyze(turns)

	// The fresh message wins when its symptoms match a specialty; an earlier
	// recommendation from the transcript carries a low-confidence message.
	specialty := result.Specialty
	if result.LowConfidence && state.RecommendedSpecialist != "" {
		specialty = state.RecommendedSpecialist
	}
	state.RecommendedSpecialist = specialty
	if state.Stage == entities.StageNoRecommendation {
		state.Stage = entities.StageSpecialistRecommended
	}

	rankReq := services.RankRequest{
		Specialty: specialty,
		SortBy:    state.LastSortPreference,
		Limit:     req.Limit,
	}
	if req.SortPreference != "" {
		rankReq.SortBy = entities.SortKey(req.SortPreference)
	}
	if req.UserLocation != nil {
		rankReq.Latitude = req.UserLocation.Latitude
		rankReq.Longitude = req.UserLocation.Longitude
		rankReq.HasOrigin = true
	}

	doctors := h.discovery.ListDoctors(r.Context(), rankReq)

	respondWithJSON(w, http.StatusOK, triageResponse{
		Specialty:     specialty,
		DisplayName:   specialty.DisplayName(),
		Matches:       result.Matches,
		LowConfidence: result.LowConfidence,
		State:         state,
		Doctors:       doctors,
		Count:         len(doctors),
	})
}

type conversationStateRequest struct {
	Turns []entities.ConversationTurn `json:"turns"`
}

// AnalyzeConversation handles POST /api/conversation/state
func (h *TriageHandler) AnalyzeConversation(w http.ResponseWriter, r *http.Request) {
	var req conversationStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state := h.analyzer.Analyze(req.Turns)
	respondWithJSON(w, http.StatusOK, state)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
