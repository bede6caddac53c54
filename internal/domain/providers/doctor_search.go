package providers

import (
	"context"

	"github.com/zatekoja/doctordiscovery/internal/domain/entities"
)

// DoctorSearchProvider is the port for the full-text doctor search index.
type DoctorSearchProvider interface {
	EnsureCollection(ctx context.Context) error
	IndexDoctors(ctx context.Context, doctors []entities.DoctorRecord) error
	Search(ctx context.Context, query string, specialty entities.Specialty, limit int) ([]entities.DoctorRecord, error)
}
