package search

import (
	"context"
	"fmt"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/doctordiscovery/internal/domain/entities"
	"github.com/zatekoja/doctordiscovery/internal/domain/providers"
	tsclient "github.com/zatekoja/doctordiscovery/internal/infrastructure/clients/typesense"
)

const collectionName = tsclient.DoctorsCollection

// TypesenseAdapter implements doctor search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements DoctorSearchProvider
var _ providers.DoctorSearchProvider = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// EnsureCollection makes sure the doctors collection exists
func (a *TypesenseAdapter) EnsureCollection(ctx context.Context) error {
	return a.client.InitSchema(ctx)
}

// IndexDoctors upserts normalized doctor documents into the index
func (a *TypesenseAdapter) IndexDoctors(ctx context.Context, doctors []entities.DoctorRecord) error {
	if len(doctors) == 0 {
		return nil
	}

	documents := make([]interface{}, 0, len(doctors))
	for _, d := range doctors {
		documents = append(documents, doctorDocument(d))
	}

	_, err := a.client.Client().Collection(collectionName).Documents().Import(ctx, documents, importParams())
	if err != nil {
		return fmt.Errorf("failed to import doctors: %w", err)
	}
	return nil
}

// importParams configures bulk imports to upsert, so reindexing the same
// pool replaces documents instead of erroring on existing ids. The params
// struct wants the action as a plain string.
func importParams() *api.ImportDocumentsParams {
	action := string(api.Upsert)
	return &api.ImportDocumentsParams{Action: &action}
}

// Search runs a full-text query over name, specialty and location
func (a *TypesenseAdapter) Search(ctx context.Context, query string, specialty entities.Specialty, limit int) ([]entities.DoctorRecord, error) {
	if query == "" {
		query = "*"
	}
	if limit <= 0 {
		limit = 10
	}

	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String("name,specialty,location"),
		PerPage: pointer.Int(limit),
	}
	if specialty != "" {
		searchParams.FilterBy = pointer.String(fmt.Sprintf("specialty:=%s", string(specialty)))
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search doctors: %w", err)
	}
	if result.Hits == nil {
		return []entities.DoctorRecord{}, nil
	}

	doctors := make([]entities.DoctorRecord, 0, len(*result.Hits))
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		doctors = append(doctors, doctorFromDocument(*hit.Document))
	}
	return doctors, nil
}

func doctorDocument(d entities.DoctorRecord) map[string]interface{} {
	return map[string]interface{}{
		"id":               d.ID,
		"name":             d.Name,
		"specialty":        string(d.Specialty),
		"degree":           d.Degree,
		"experience_years": d.ExperienceYears,
		"consultation_fee": d.ConsultationFee,
		"rating":           d.Rating,
		"location":         d.Location,
		"geo":              []float64{d.Latitude, d.Longitude},
		"profile_link":     d.ProfileLink,
	}
}

// doctorFromDocument rebuilds a record from a hit. Typesense hands back
// untyped JSON, so every field goes through a checked cast.
func doctorFromDocument(doc map[string]interface{}) entities.DoctorRecord {
	d := entities.DoctorRecord{
		ID:              asString(doc["id"]),
		Name:            asString(doc["name"]),
		Specialty:       entities.Specialty(asString(doc["specialty"])),
		Degree:          asString(doc["degree"]),
		ExperienceYears: int(asFloat(doc["experience_years"])),
		ConsultationFee: int(asFloat(doc["consultation_fee"])),
		Rating:          asFloat(doc["rating"]),
		Location:        asString(doc["location"]),
		ProfileLink:     asString(doc["profile_link"]),
	}
	if geo, ok := doc["geo"].([]interface{}); ok && len(geo) == 2 {
		d.Latitude = asFloat(geo[0])
		d.Longitude = asFloat(geo[1])
	}
	return d
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
