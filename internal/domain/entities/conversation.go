package entities

// ConversationTurn is one (user, assistant) exchange. The transcript is an
// append-only ordered sequence, read-only to this module.
type ConversationTurn struct {
	UserText      string `json:"user_text"`
	AssistantText string `json:"assistant_text"`
}

// DialogueStage identifies how far the triage dialogue has progressed.
type DialogueStage string

const (
	StageNoRecommendation       DialogueStage = "no_recommendation"
	StageSpecialistRecommended  DialogueStage = "specialist_recommended"
	StageAwaitingLocationChoice DialogueStage = "awaiting_location_choice"
	StageReadyToList            DialogueStage = "ready_to_list"
)

// SortKey selects the comparator used by the ranking engine.
type SortKey string

const (
	SortByRating     SortKey = "rating"
	SortByExperience SortKey = "experience"
	SortByLocation   SortKey = "location"
)

// IsValid checks if the sort key is one of the defined values.
func (k SortKey) IsValid() bool {
	switch k {
	case SortByRating, SortByExperience, SortByLocation:
		return true
	}
	return false
}

// ConversationState is derived from a transcript on every call; it is never
// persisted or mutated in place.
type ConversationState struct {
	Stage                 DialogueStage `json:"stage"`
	RecommendedSpecialist Specialty     `json:"recommended_specialist,omitempty"`
	LastSortPreference    SortKey       `json:"last_sort_preference"`
}
