package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/zatekoja/doctordiscovery/internal/domain/entities"
)

func TestDoctorDocument(t *testing.T) {
	doc := doctorDocument(entities.DoctorRecord{
		ID:              "d1",
		Name:            "Dr. Asha Menon",
		Specialty:       entities.SpecialtyDermatologist,
		Degree:          "MBBS, MD - Dermatology",
		ExperienceYears: 12,
		ConsultationFee: 650,
		Rating:          4.6,
		Location:        "Indiranagar",
		Latitude:        12.9784,
		Longitude:       77.6408,
		ProfileLink:     "https://example.com/asha",
	})

	assert.Equal(t, "d1", doc["id"])
	assert.Equal(t, "dermatologist", doc["specialty"])
	assert.Equal(t, []float64{12.9784, 77.6408}, doc["geo"])
	assert.Equal(t, 650, doc["consultation_fee"])
}

func TestDoctorFromDocument(t *testing.T) {
	// Typesense returns JSON-decoded values, so numbers arrive as float64.
	d := doctorFromDocument(map[string]interface{}{
		"id":               "d1",
		"name":             "Dr. Asha Menon",
		"specialty":        "dermatologist",
		"degree":           "MBBS, MD - Dermatology",
		"experience_years": float64(12),
		"consultation_fee": float64(650),
		"rating":           4.6,
		"location":         "Indiranagar",
		"geo":              []interface{}{12.9784, 77.6408},
		"profile_link":     "https://example.com/asha",
	})

	assert.Equal(t, "d1", d.ID)
	assert.Equal(t, entities.SpecialtyDermatologist, d.Specialty)
	assert.Equal(t, 12, d.ExperienceYears)
	assert.Equal(t, 650, d.ConsultationFee)
	assert.Equal(t, 4.6, d.Rating)
	assert.Equal(t, 12.9784, d.Latitude)
	assert.Equal(t, 77.6408, d.Longitude)
}

func TestDoctorFromDocumentMissingFields(t *testing.T) {
	d := doctorFromDocument(map[string]interface{}{"id": "d2"})

	assert.Equal(t, "d2", d.ID)
	assert.Empty(t, d.Name)
	assert.Zero(t, d.Latitude)
	assert.Zero(t, d.Longitude)
}

func TestImportParamsUseUpsertAction(t *testing.T) {
	params := importParams()

	require.NotNil(t, params.Action)
	assert.Equal(t, string(api.Upsert), *params.Action)
}
