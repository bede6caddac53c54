package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/doctordiscovery/internal/domain/entities"
	"github.com/zatekoja/doctordiscovery/internal/domain/repositories"
	"github.com/zatekoja/doctordiscovery/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/doctordiscovery/pkg/errors"
)

const doctorsTable = "doctors"

// doctorColumns is the scan order shared by every select in this adapter.
var doctorColumns = []interface{}{
	"id", "name", "specialty", "degree", "experience", "rating",
	"consultation_fee", "location", "latitude", "longitude", "profile_link",
}

// DoctorAdapter implements DoctorRepository over PostgreSQL. Rows are scraped
// data and come back as nullable text; the raw record carries them to the
// normalizer untouched.
type DoctorAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDoctorAdapter creates a new doctor adapter
func NewDoctorAdapter(client *postgres.Client) repositories.DoctorRepository {
	return &DoctorAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListRaw retrieves every doctor row as raw text fields
func (a *DoctorAdapter) ListRaw(ctx context.Context) ([]entities.RawDoctorRecord, error) {
	query, args, err := a.db.Select(doctorColumns...).
		From(doctorsTable).
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build doctors query", err)
	}

	return a.queryRaw(ctx, query, args)
}

// ListRawBySpecialty retrieves raw doctor rows whose stored specialty label
// matches the canonical one. Labels in scraped rows are unreliable, so the
// pool service normally filters post-normalization instead.
func (a *DoctorAdapter) ListRawBySpecialty(ctx context.Context, specialty entities.Specialty) ([]entities.RawDoctorRecord, error) {
	query, args, err := a.db.Select(doctorColumns...).
		From(doctorsTable).
		Where(goqu.Ex{"specialty": string(specialty)}).
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build doctors query", err)
	}

	return a.queryRaw(ctx, query, args)
}

// Upsert writes normalized doctor records back, keyed by id
func (a *DoctorAdapter) Upsert(ctx context.Context, doctors []entities.DoctorRecord) error {
	if len(doctors) == 0 {
		return nil
	}

	rows := make([]interface{}, 0, len(doctors))
	now := time.Now().UTC()
	for _, d := range doctors {
		rows = append(rows, goqu.Record{
			"id":               d.ID,
			"name":             d.Name,
			"specialty":        string(d.Specialty),
			"degree":           d.Degree,
			"experience":       d.ExperienceYears,
			"rating":           d.Rating,
			"consultation_fee": d.ConsultationFee,
			"location":         d.Location,
			"latitude":         d.Latitude,
			"longitude":        d.Longitude,
			"profile_link":     d.ProfileLink,
			"updated_at":       now,
		})
	}

	query, args, err := a.db.Insert(doctorsTable).
		Rows(rows...).
		OnConflict(goqu.DoUpdate("id", goqu.Record{
			"name":             goqu.L("excluded.name"),
			"specialty":        goqu.L("excluded.specialty"),
			"degree":           goqu.L("excluded.degree"),
			"experience":       goqu.L("excluded.experience"),
			"rating":           goqu.L("excluded.rating"),
			"consultation_fee": goqu.L("excluded.consultation_fee"),
			"location":         goqu.L("excluded.location"),
			"latitude":         goqu.L("excluded.latitude"),
			"longitude":        goqu.L("excluded.longitude"),
			"profile_link":     goqu.L("excluded.profile_link"),
			"updated_at":       goqu.L("excluded.updated_at"),
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to upsert doctors", err)
	}
	return nil
}

func (a *DoctorAdapter) queryRaw(ctx context.Context, query string, args []interface{}) ([]entities.RawDoctorRecord, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list doctors", err)
	}
	defer rows.Close()

	records := []entities.RawDoctorRecord{}
	for rows.Next() {
		var record entities.RawDoctorRecord
		var specialty, degree, experience sql.NullString
		var rating, fee, location sql.NullString
		var latitude, longitude, profileLink sql.NullString

		err := rows.Scan(
			&record.ID,
			&record.Name,
			&specialty,
			&degree,
			&experience,
			&rating,
			&fee,
			&location,
			&latitude,
			&longitude,
			&profileLink,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan doctor row", err)
		}

		record.Specialty = specialty.String
		record.Degree = degree.String
		record.Experience = experience.String
		record.Rating = rating.String
		record.ConsultationFee = fee.String
		record.Location = location.String
		record.Latitude = latitude.String
		record.Longitude = longitude.String
		record.ProfileLink = profileLink.String

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating doctor rows", err)
	}

	return records, nil
}
