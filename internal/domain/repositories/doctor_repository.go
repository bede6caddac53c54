package repositories

import (
	"context"

	"github.com/zatekoja/doctordiscovery/internal/domain/entities"
)

// DoctorRepository loads raw doctor rows from the backing store. Rows come
// back unrepaired; normalization happens in the application layer.
type DoctorRepository interface {
	ListRaw(ctx context.Context) ([]entities.RawDoctorRecord, error)
	ListRawBySpecialty(ctx context.Context, specialty entities.Specialty) ([]entities.RawDoctorRecord, error)
	Upsert(ctx context.Context, doctors []entities.DoctorRecord) error
}
