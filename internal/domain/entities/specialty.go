package entities

import "strings"

// Specialty is a normalized label drawn from the closed vocabulary used as
// the join key between classification and the doctor pool.
type Specialty string

const (
	SpecialtyGeneralPhysician   Specialty = "general_physician"
	SpecialtyCardiologist       Specialty = "cardiologist"
	SpecialtyDermatologist      Specialty = "dermatologist"
	SpecialtyNeurologist        Specialty = "neurologist"
	SpecialtyOrthopedist        Specialty = "orthopedist"
	SpecialtyOphthalmologist    Specialty = "ophthalmologist"
	SpecialtyGastroenterologist Specialty = "gastroenterologist"
	SpecialtyPulmonologist      Specialty = "pulmonologist"
	SpecialtyEndocrinologist    Specialty = "endocrinologist"
	SpecialtyENTSpecialist      Specialty = "ent_specialist"
	SpecialtyUrologist          Specialty = "urologist"
	SpecialtyGynecologist       Specialty = "gynecologist"
	SpecialtyPsychiatrist       Specialty = "psychiatrist"
	SpecialtyRheumatologist     Specialty = "rheumatologist"
	SpecialtyNephrologist       Specialty = "nephrologist"
	SpecialtyPediatrician       Specialty = "pediatrician"
	SpecialtyDentist            Specialty = "dentist"
	SpecialtyOncologist         Specialty = "oncologist"
)

// AllSpecialties returns the closed vocabulary in declaration order.
func AllSpecialties() []Specialty {
	return []Specialty{
		SpecialtyGeneralPhysician,
		SpecialtyCardiologist,
		SpecialtyDermatologist,
		SpecialtyNeurologist,
		SpecialtyOrthopedist,
		SpecialtyOphthalmologist,
		SpecialtyGastroenterologist,
		SpecialtyPulmonologist,
		SpecialtyEndocrinologist,
		SpecialtyENTSpecialist,
		SpecialtyUrologist,
		SpecialtyGynecologist,
		SpecialtyPsychiatrist,
		SpecialtyRheumatologist,
		SpecialtyNephrologist,
		SpecialtyPediatrician,
		SpecialtyDentist,
		SpecialtyOncologist,
	}
}

// IsValid checks if the specialty is one of the defined labels.
func (s Specialty) IsValid() bool {
	for _, known := range AllSpecialties() {
		if s == known {
			return true
		}
	}
	return false
}

// DisplayName returns a human-readable form of the label.
func (s Specialty) DisplayName() string {
	switch s {
	case SpecialtyGeneralPhysician:
		return "General Physician"
	case SpecialtyENTSpecialist:
		return "ENT Specialist"
	}
	name := strings.ReplaceAll(string(s), "_", " ")
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// specialtyAliases maps source labels and common synonyms onto the closed
// vocabulary. Keys are identifier-normalized (lowercase, underscores).
var specialtyAliases = map[string]Specialty{
	"general_physician":    SpecialtyGeneralPhysician,
	"general_practitioner": SpecialtyGeneralPhysician,
	"gp":                   SpecialtyGeneralPhysician,
	"physician":            SpecialtyGeneralPhysician,
	"family_physician":     SpecialtyGeneralPhysician,
	"cardiologist":         SpecialtyCardiologist,
	"heart_specialist":     SpecialtyCardiologist,
	"dermatologist":        SpecialtyDermatologist,
	"skin_specialist":      SpecialtyDermatologist,
	"neurologist":          SpecialtyNeurologist,
	"orthopedist":          SpecialtyOrthopedist,
	"orthopaedist":         SpecialtyOrthopedist,
	"orthopedic_surgeon":   SpecialtyOrthopedist,
	"ophthalmologist":      SpecialtyOphthalmologist,
	"eye_specialist":       SpecialtyOphthalmologist,
	"gastroenterologist":   SpecialtyGastroenterologist,
	"pulmonologist":        SpecialtyPulmonologist,
	"chest_specialist":     SpecialtyPulmonologist,
	"endocrinologist":      SpecialtyEndocrinologist,
	"ent_specialist":       SpecialtyENTSpecialist,
	"ent":                  SpecialtyENTSpecialist,
	"otolaryngologist":     SpecialtyENTSpecialist,
	"urologist":            SpecialtyUrologist,
	"gynecologist":         SpecialtyGynecologist,
	"gynaecologist":        SpecialtyGynecologist,
	"obstetrician":         SpecialtyGynecologist,
	"psychiatrist":         SpecialtyPsychiatrist,
	"rheumatologist":       SpecialtyRheumatologist,
	"nephrologist":         SpecialtyNephrologist,
	"kidney_specialist":    SpecialtyNephrologist,
	"pediatrician":         SpecialtyPediatrician,
	"paediatrician":        SpecialtyPediatrician,
	"child_specialist":     SpecialtyPediatrician,
	"dentist":              SpecialtyDentist,
	"dental_surgeon":       SpecialtyDentist,
	"oncologist":           SpecialtyOncologist,
	"cancer_specialist":    SpecialtyOncologist,
}

// CanonicalSpecialty maps a raw specialty string onto the closed vocabulary.
// Unmapped specialties fall back to general_physician so every record joins
// against a real label.
func CanonicalSpecialty(raw string) Specialty {
	key := NormalizeIdentifier(raw)
	if key == "" {
		return SpecialtyGeneralPhysician
	}
	if sp, ok := specialtyAliases[key]; ok {
		return sp
	}
	if sp := Specialty(key); sp.IsValid() {
		return sp
	}
	return SpecialtyGeneralPhysician
}

// NormalizeIdentifier converts a string to a lowercase underscore identifier,
// collapsing runs of non-alphanumeric characters.
func NormalizeIdentifier(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return ""
	}

	var b strings.Builder
	lastUnderscore := false
	for _, ch := range trimmed {
		isAlphaNum := (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')
		if isAlphaNum {
			b.WriteRune(ch)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}

	return strings.Trim(b.String(), "_")
}
