package services

import (
	"context"
	"encoding/json"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/zatekoja/doctordiscovery/internal/domain/entities"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// SpecialtyRule associates a specialty with its symptom keyword set and a
// tie-break priority (lower wins). The scoring rule is data-driven so each
// specialty is independently testable.
type SpecialtyRule struct {
	Specialty entities.Specialty `json:"specialty"`
	Priority  int                `json:"priority"`
	Keywords  []string           `json:"keywords"`
}

// Classification is the result of classifying free text. LowConfidence marks
// the zero-match fallback; the label is still always actionable.
type Classification struct {
	Specialty     entities.Specialty `json:"specialty"`
	Matches       int                `json:"matches"`
	LowConfidence bool               `json:"low_confidence"`
}

// defaultSpecialtyRules is the built-in rules table. Priority encodes the
// fixed tie-break order; general_physician is the catch-all and never wins a
// tie against a named specialty.
var defaultSpecialtyRules = []SpecialtyRule{
	{entities.SpecialtyDermatologist, 1, []string{"skin", "rash", "acne", "eczema", "psoriasis", "itching", "itchy", "pimple", "mole", "hives", "hair loss", "dandruff"}},
	{entities.SpecialtyCardiologist, 2, []string{"chest pain", "chest", "heart", "palpitation", "blood pressure", "hypertension", "cardiac", "breathless on exertion"}},
	{entities.SpecialtyNeurologist, 3, []string{"headache", "migraine", "seizure", "numbness", "tingling", "dizziness", "memory loss", "tremor", "stroke", "head"}},
	{entities.SpecialtyOrthopedist, 4, []string{"joint", "bone", "fracture", "sprain", "knee", "shoulder", "ankle", "wrist", "elbow", "spine", "back pain", "neck pain", "arthritis", "injury", "fell", "accident"}},
	{entities.SpecialtyOphthalmologist, 5, []string{"eye", "vision", "blurry", "cataract", "glaucoma", "red eye", "watering eyes"}},
	{entities.SpecialtyGastroenterologist, 6, []string{"stomach", "abdominal", "acid reflux", "heartburn", "constipation", "diarrhea", "indigestion", "bloating", "nausea", "vomiting", "ibs"}},
	{entities.SpecialtyPulmonologist, 7, []string{"cough", "breathing", "breathless", "asthma", "wheezing", "copd", "lungs", "shortness of breath"}},
	{entities.SpecialtyEndocrinologist, 8, []string{"diabetes", "thyroid", "hormone", "weight gain", "weight loss", "sugar"}},
	{entities.SpecialtyENTSpecialist, 9, []string{"ear", "nose", "throat", "sinus", "sinusitis", "hearing", "tonsil", "snoring", "hoarse"}},
	{entities.SpecialtyUrologist, 10, []string{"urine", "urinary", "kidney stone", "prostate", "burning urination"}},
	{entities.SpecialtyGynecologist, 11, []string{"menstrual", "period", "pregnancy", "pregnant", "pelvic", "pcos", "menopause"}},
	{entities.SpecialtyPsychiatrist, 12, []string{"depression", "anxiety", "stress", "insomnia", "panic", "mood", "sleep problem", "suicidal"}},
	{entities.SpecialtyRheumatologist, 13, []string{"lupus", "fibromyalgia", "joint inflammation", "autoimmune", "stiffness"}},
	{entities.SpecialtyNephrologist, 14, []string{"kidney", "dialysis", "swollen feet", "creatinine"}},
	{entities.SpecialtyDentist, 15, []string{"tooth", "teeth", "gum", "cavity", "toothache", "dental"}},
	{entities.SpecialtyPediatrician, 16, []string{"child", "baby", "infant", "toddler", "vaccination"}},
	{entities.SpecialtyOncologist, 17, []string{"cancer", "tumor", "lump", "chemotherapy"}},
	{entities.SpecialtyGeneralPhysician, 100, []string{"fever", "cold", "flu", "fatigue", "body ache", "weakness", "checkup"}},
}

// recommendationPhrases detect an explicit specialist recommendation inside a
// previously generated assistant message.
var recommendationPhrases = []*regexp.Regexp{
	regexp.MustCompile(`(?i)SPECIALIST_RECOMMENDATION:\s*([^\n*]+)`),
	regexp.MustCompile(`(?i)\brecommend(?:s|ed|ing)?\b[^.\n]*?\b(?:consulting|seeing|visiting)?\s*(?:a|an)\s+\*{0,2}([A-Za-z][A-Za-z /-]{2,40}?)\*{0,2}(?:[\s.,!:]|$)`),
	regexp.MustCompile(`(?i)\bconsult(?:ing)?\s+(?:a|an)\s+\*{0,2}([A-Za-z][A-Za-z /-]{2,40}?)\*{0,2}(?:[\s.,!:]|$)`),
}

var (
	classifierFallbackOnce    sync.Once
	classifierFallbackCounter metric.Int64Counter
)

// SpecialistClassifier maps free text to a specialty label by keyword
// scoring. It is stateless and safe for concurrent use.
type SpecialistClassifier struct {
	rules []SpecialtyRule
}

// NewSpecialistClassifier creates a classifier with the built-in rules table.
func NewSpecialistClassifier() *SpecialistClassifier {
	return &SpecialistClassifier{rules: defaultSpecialtyRules}
}

// NewSpecialistClassifierFromFile loads a rules table from a JSON config
// file, falling back to nothing: a bad file is a startup error, not a silent
// default.
func NewSpecialistClassifierFromFile(path string) (*SpecialistClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rules []SpecialtyRule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, err
	}
	return &SpecialistClassifier{rules: rules}, nil
}

// Classify scores each specialty by keyword hit count in the lower-cased
// input and picks the highest scorer; ties break by the declared priority
// order. Zero matches fall back to general_physician with LowConfidence set,
// so the caller always receives an actionable label.
func (c *SpecialistClassifier) Classify(text string) Classification {
	lowered := strings.ToLower(text)

	best := Classification{Specialty: entities.SpecialtyGeneralPhysician, LowConfidence: true}
	bestPriority := 0
	for _, rule := range c.rules {
		matches := 0
		for _, kw := range rule.Keywords {
			matches += strings.Count(lowered, kw)
		}
		if matches == 0 {
			continue
		}
		if matches > best.Matches || (matches == best.Matches && rule.Priority < bestPriority) || best.LowConfidence {
			best = Classification{Specialty: rule.Specialty, Matches: matches}
			bestPriority = rule.Priority
		}
	}

	if best.LowConfidence {
		recordClassifierFallback()
	}
	return best
}

// ExtractSpecialistFromAssistantText recovers the specialist named in an
// earlier assistant recommendation ("I recommend consulting a
// **Cardiologist**"). ok is false when no recommendation phrase is present;
// raw symptom text is never re-classified here.
func (c *SpecialistClassifier) ExtractSpecialistFromAssistantText(assistantText string) (entities.Specialty, bool) {
	for _, phrase := range recommendationPhrases {
		m := phrase.FindStringSubmatch(assistantText)
		if m == nil {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if sp, ok := lookupSpecialtyName(candidate); ok {
			return sp, true
		}
	}
	return "", false
}

// lookupSpecialtyName maps a display name from assistant prose onto the
// closed vocabulary, rejecting text that is not a known specialist name.
func lookupSpecialtyName(name string) (entities.Specialty, bool) {
	key := entities.NormalizeIdentifier(name)
	if key == "" {
		return "", false
	}
	sp := entities.CanonicalSpecialty(key)
	if sp == entities.SpecialtyGeneralPhysician {
		// CanonicalSpecialty falls back to general_physician for unknown
		// input; only accept it when the text really names one.
		switch key {
		case "general_physician", "general_practitioner", "gp", "physician", "family_physician":
			return sp, true
		}
		return "", false
	}
	return sp, true
}

func recordClassifierFallback() {
	classifierFallbackOnce.Do(func() {
		meter := otel.Meter("github.com/zatekoja/doctordiscovery/classifier")
		counter, err := meter.Int64Counter(
			"classify.fallback.count",
			metric.WithDescription("Count of inputs with no specialty keyword match"),
		)
		if err == nil {
			classifierFallbackCounter = counter
		}
	})
	if classifierFallbackCounter != nil {
		classifierFallbackCounter.Add(context.Background(), 1)
	}
}
