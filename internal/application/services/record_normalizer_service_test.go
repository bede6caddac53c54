package services

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/doctordiscovery/internal/domain/entities"
	"github.com/zatekoja/doctordiscovery/pkg/config"
)

func newTestNormalizer() *RecordNormalizer {
	return NewRecordNormalizer(config.DefaultNormalizerConfig())
}

func TestNormalizeEmptyRecord(t *testing.T) {
	n := newTestNormalizer()

	doc := n.Normalize(entities.RawDoctorRecord{})

	assert.Equal(t, "Unknown", doc.Name)
	assert.Equal(t, entities.SpecialtyGeneralPhysician, doc.Specialty)
	assert.Equal(t, "MBBS", doc.Degree)
	assert.Equal(t, 0, doc.ExperienceYears)
	assert.Equal(t, 3.5, doc.Rating)
	assert.Equal(t, "Bangalore", doc.Location)
	assert.Equal(t, 12.9716, doc.Latitude)
	assert.Equal(t, 77.5946, doc.Longitude)
	assert.NotEmpty(t, doc.ID)
	assert.True(t, strings.HasPrefix(doc.ProfileLink, "https://www.google.com/maps/search/"))
	// Synthesized fee for a zero-experience doctor with the default rating.
	assert.GreaterOrEqual(t, doc.ConsultationFee, 200)
	assert.LessOrEqual(t, doc.ConsultationFee, 2500)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := newTestNormalizer()

	raw := entities.RawDoctorRecord{
		ID:              "doc-17",
		Name:            "Anita Rao",
		Specialty:       "Dermatologist",
		Degree:          "MBBS, MD - Dermatology",
		Experience:      "12 years",
		Rating:          "4.6",
		ConsultationFee: "650",
		Location:        "Indiranagar",
		Coordinates:     "12.9784, 77.6408",
		ProfileLink:     "https://example.com/anita-rao",
	}

	first := n.Normalize(raw)

	roundTrip := entities.RawDoctorRecord{
		ID:              first.ID,
		Name:            first.Name,
		Specialty:       string(first.Specialty),
		Degree:          first.Degree,
		Experience:      strconv.Itoa(first.ExperienceYears),
		Rating:          strconv.FormatFloat(first.Rating, 'f', -1, 64),
		ConsultationFee: strconv.Itoa(first.ConsultationFee),
		Location:        first.Location,
		Latitude:        strconv.FormatFloat(first.Latitude, 'f', -1, 64),
		Longitude:       strconv.FormatFloat(first.Longitude, 'f', -1, 64),
		ProfileLink:     first.ProfileLink,
	}
	second := n.Normalize(roundTrip)

	assert.Equal(t, first, second)
}

func TestRepairDegree(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name      string
		degree    string
		specialty string
		want      string
	}{
		{
			name:      "clean degree kept verbatim",
			degree:    "MBBS, MS - Orthopaedics",
			specialty: "Orthopedist",
			want:      "MBBS, MS - Orthopaedics",
		},
		{
			name:      "narrative text reduced to tokens",
			degree:    "Dr. Kumar has the following qualifications: MBBS, MD - General Medicine. You can book an appointment",
			specialty: "General Physician",
			want:      "MBBS, MD - General Medicine",
		},
		{
			name:      "narrative without tokens falls back to specialty default",
			degree:    "Dr. Shetty is a renowned practitioner more..",
			specialty: "Cardiologist",
			want:      "MD",
		},
		{
			name:      "empty degree uses dental default",
			degree:    "",
			specialty: "Dentist",
			want:      "BDS",
		},
		{
			name:      "surgeon default",
			degree:    "n/a",
			specialty: "Cardiac Surgeon",
			want:      "MS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := n.Normalize(entities.RawDoctorRecord{
				Name:      "Test Doctor",
				Specialty: tt.specialty,
				Degree:    tt.degree,
			})
			assert.Equal(t, tt.want, doc.Degree)
		})
	}
}

func TestRepairedDegreeNeverContainsSentenceMarkers(t *testing.T) {
	n := newTestNormalizer()

	dirty := []string{
		"Dr. Mehta has the following qualifications MBBS and more..",
		"Completed his MBBS from AIIMS and graduated with honors",
		"She is a specialist. You can book a consultation online",
	}
	for _, degree := range dirty {
		doc := n.Normalize(entities.RawDoctorRecord{Name: "X", Degree: degree})
		for _, marker := range []string{"has the following", "You can book", "more..", "graduated"} {
			assert.NotContains(t, strings.ToLower(doc.Degree), strings.ToLower(marker),
				"degree %q leaked marker from %q", doc.Degree, degree)
		}
	}
}

func TestRepairExperience(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		raw  string
		want int
	}{
		{"15 years experience", 15},
		{"7", 7},
		{"120 years", 60},
		{"n/a", 0},
		{"", 0},
	}
	for _, tt := range tests {
		doc := n.Normalize(entities.RawDoctorRecord{Name: "X", Experience: tt.raw})
		assert.Equal(t, tt.want, doc.ExperienceYears, "raw experience %q", tt.raw)
	}
}

func TestRepairRatingTiers(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		rating     string
		experience string
		want       float64
	}{
		{"4.7★", "3", 4.7},
		{"4.2", "0", 4.2},
		{"", "25 years", 4.3},
		{"", "16 years", 4.2},
		{"", "11 years", 4.0},
		{"", "6 years", 3.8},
		{"", "2 years", 3.5},
		{"9.9", "2 years", 3.5},
		{"-1", "2 years", 3.5},
	}
	for _, tt := range tests {
		doc := n.Normalize(entities.RawDoctorRecord{Name: "X", Rating: tt.rating, Experience: tt.experience})
		assert.Equal(t, tt.want, doc.Rating, "rating %q experience %q", tt.rating, tt.experience)
	}
}

func TestRepairFee(t *testing.T) {
	n := newTestNormalizer()

	t.Run("parseable fee kept", func(t *testing.T) {
		doc := n.Normalize(entities.RawDoctorRecord{Name: "X", ConsultationFee: "₹ 850"})
		assert.Equal(t, 850, doc.ConsultationFee)
	})

	t.Run("out of range fee clamped not synthesized", func(t *testing.T) {
		doc := n.Normalize(entities.RawDoctorRecord{Name: "X", ConsultationFee: "₹50,000"})
		assert.Equal(t, 5000, doc.ConsultationFee)

		doc = n.Normalize(entities.RawDoctorRecord{Name: "X", ConsultationFee: "50"})
		assert.Equal(t, 100, doc.ConsultationFee)
	})

	t.Run("missing fee synthesized from specialty and experience", func(t *testing.T) {
		doc := n.Normalize(entities.RawDoctorRecord{
			Name:       "X",
			Specialty:  "Cardiologist",
			Experience: "10 years",
		})
		// 800 base + 200 experience premium + 100 rating premium (4.0).
		assert.Equal(t, 1100, doc.ConsultationFee)
	})

	t.Run("synthesized fee stays inside band", func(t *testing.T) {
		doc := n.Normalize(entities.RawDoctorRecord{
			Name:       "X",
			Specialty:  "Neurologist",
			Experience: "40 years",
			Rating:     "5.0",
		})
		require.LessOrEqual(t, doc.ConsultationFee, 2500)
		require.GreaterOrEqual(t, doc.ConsultationFee, 200)
	})
}

func TestRepairCoordinates(t *testing.T) {
	n := newTestNormalizer()

	t.Run("combined field parsed", func(t *testing.T) {
		doc := n.Normalize(entities.RawDoctorRecord{Name: "X", Coordinates: "12.9352,77.6245"})
		assert.Equal(t, 12.9352, doc.Latitude)
		assert.Equal(t, 77.6245, doc.Longitude)
	})

	t.Run("discrete fields parsed", func(t *testing.T) {
		doc := n.Normalize(entities.RawDoctorRecord{Name: "X", Latitude: "13.01", Longitude: "77.55"})
		assert.Equal(t, 13.01, doc.Latitude)
		assert.Equal(t, 77.55, doc.Longitude)
	})

	t.Run("out of box falls back to city center", func(t *testing.T) {
		doc := n.Normalize(entities.RawDoctorRecord{Name: "X", Coordinates: "28.6139,77.2090"})
		assert.Equal(t, 12.9716, doc.Latitude)
		assert.Equal(t, 77.5946, doc.Longitude)
	})

	t.Run("missing coordinates never become zero", func(t *testing.T) {
		doc := n.Normalize(entities.RawDoctorRecord{Name: "X"})
		assert.NotEqual(t, 0.0, doc.Latitude)
		assert.NotEqual(t, 0.0, doc.Longitude)
	})
}

func TestProfileLinkSynthesis(t *testing.T) {
	n := newTestNormalizer()

	doc := n.Normalize(entities.RawDoctorRecord{Name: "Ravi Shankar", Location: "HSR Layout"})
	assert.Equal(t, "https://www.google.com/maps/search/Ravi+Shankar+HSR+Layout+Bangalore", doc.ProfileLink)

	doc = n.Normalize(entities.RawDoctorRecord{Name: "Ravi Shankar", ProfileLink: "https://example.com/ravi"})
	assert.Equal(t, "https://example.com/ravi", doc.ProfileLink)
}

func TestNormalizeAllPreservesOrder(t *testing.T) {
	n := newTestNormalizer()

	docs := n.NormalizeAll([]entities.RawDoctorRecord{
		{ID: "a", Name: "First"},
		{ID: "b", Name: "Second"},
	})
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "b", docs[1].ID)
}
