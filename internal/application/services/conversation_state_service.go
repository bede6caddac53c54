package services

import (
	"strings"

	"github.com/zatekoja/doctordiscovery/internal/domain/entities"
)

// sortPreferenceKeywords maps user phrasing onto a ranking key. Checked in
// declaration order; the first hit in a message wins.
var sortPreferenceKeywords = []struct {
	key      entities.SortKey
	keywords []string
}{
	{entities.SortByLocation, []string{"near me", "nearby", "nearest", "close to me", "closest", "near my", "in my area", "distance"}},
	{entities.SortByExperience, []string{"experienced", "experience", "senior", "years of practice", "most practiced"}},
	{entities.SortByRating, []string{"best rated", "top rated", "highest rated", "rating", "best doctor", "top doctor", "well reviewed"}},
}

// listingIntentKeywords signal that the user wants the actual doctor list
// after a specialist has been recommended.
var listingIntentKeywords = []string{
	"show", "list", "find", "suggest", "book", "appointment",
	"yes", "sure", "okay", "ok", "please",
	"near me", "nearby", "doctors", "doctor",
}

// ConversationStateAnalyzer derives dialogue state by replaying the full
// transcript on every call. Replay keeps the analyzer stateless across
// requests; the transcript itself is the only source of truth.
type ConversationStateAnalyzer struct {
	classifier *SpecialistClassifier
}

func NewConversationStateAnalyzer(classifier *SpecialistClassifier) *ConversationStateAnalyzer {
	return &ConversationStateAnalyzer{classifier: classifier}
}

// Analyze replays turns oldest-first and returns the resulting state. A
// later specialist recommendation always replaces an earlier one, so a
// conversation that moves from "skin rash" to "chest pain" ends pointed at
// the cardiologist pool.
func (a *ConversationStateAnalyzer) Analyze(turns []entities.ConversationTurn) entities.ConversationState {
	state := entities.ConversationState{Stage: entities.StageNoRecommendation}

	for _, turn := range turns {
		// Within a turn the user speaks first, so a pending location
		// question is resolved by this turn's user text before the
		// assistant text is inspected.
		if state.Stage == entities.StageAwaitingLocationChoice && strings.TrimSpace(turn.UserText) != "" {
			state.Stage = entities.StageReadyToList
		}

		if key, ok := extractSortPreference(turn.UserText); ok {
			state.LastSortPreference = key
		}
		if state.Stage == entities.StageSpecialistRecommended && hasListingIntent(turn.UserText) {
			state.Stage = entities.StageReadyToList
		}

		if sp, ok := a.classifier.ExtractSpecialistFromAssistantText(turn.AssistantText); ok {
			state.RecommendedSpecialist = sp
			state.Stage = entities.StageSpecialistRecommended
		}
		// The assistant may recommend and ask for an area in one message,
		// so the question shifts the stage straight from the recommendation
		// as well as from a stated listing intent.
		if (state.Stage == entities.StageSpecialistRecommended || state.Stage == entities.StageReadyToList) &&
			asksForLocation(turn.AssistantText) {
			state.Stage = entities.StageAwaitingLocationChoice
		}
	}

	if state.LastSortPreference == "" {
		state.LastSortPreference = entities.SortByRating
	}
	return state
}

// extractSortPreference scans one user message for a ranking preference.
func extractSortPreference(userText string) (entities.SortKey, bool) {
	lowered := strings.ToLower(userText)
	for _, pref := range sortPreferenceKeywords {
		for _, kw := range pref.keywords {
			if strings.Contains(lowered, kw) {
				return pref.key, true
			}
		}
	}
	return "", false
}

func hasListingIntent(userText string) bool {
	lowered := strings.ToLower(userText)
	for _, kw := range listingIntentKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// asksForLocation detects the assistant prompting the user for an area
// before listing doctors.
func asksForLocation(text string) bool {
	lowered := strings.ToLower(text)
	if !strings.Contains(lowered, "location") && !strings.Contains(lowered, "area") && !strings.Contains(lowered, "where") {
		return false
	}
	return strings.Contains(lowered, "?") ||
		strings.Contains(lowered, "share") ||
		strings.Contains(lowered, "which") ||
		strings.Contains(lowered, "prefer")
}
