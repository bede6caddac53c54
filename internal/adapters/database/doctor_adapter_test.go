package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/doctordiscovery/internal/domain/entities"
	"github.com/zatekoja/doctordiscovery/internal/infrastructure/clients/postgres"
)

func setupMockAdapter(t *testing.T) (*DoctorAdapter, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	adapter := NewDoctorAdapter(postgres.NewClientFromDB(mockDB)).(*DoctorAdapter)
	return adapter, mock, mockDB
}

func doctorRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "specialty", "degree", "experience", "rating",
		"consultation_fee", "location", "latitude", "longitude", "profile_link",
	})
}

func TestDoctorAdapter_ListRaw(t *testing.T) {
	adapter, mock, db := setupMockAdapter(t)
	defer db.Close()

	rows := doctorRows().
		AddRow("d1", "Dr. Asha Menon", "Dermatologist", "MBBS, MD - Dermatology",
			"12 years", "4.6", "650", "Indiranagar", "12.9784", "77.6408", "https://example.com/asha").
		AddRow("d2", "Dr. Vikram Rao", nil, nil, nil, nil, nil, nil, nil, nil, nil)

	mock.ExpectQuery(`SELECT .+ FROM "doctors" ORDER BY "id" ASC`).WillReturnRows(rows)

	records, err := adapter.ListRaw(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "d1", records[0].ID)
	assert.Equal(t, "Dermatologist", records[0].Specialty)
	assert.Equal(t, "12 years", records[0].Experience)

	// Null columns become empty strings for the normalizer to repair.
	assert.Equal(t, "d2", records[1].ID)
	assert.Empty(t, records[1].Specialty)
	assert.Empty(t, records[1].Rating)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoctorAdapter_ListRawQueryError(t *testing.T) {
	adapter, mock, db := setupMockAdapter(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM "doctors"`).WillReturnError(errors.New("connection reset"))

	records, err := adapter.ListRaw(context.Background())
	assert.Error(t, err)
	assert.Nil(t, records)
}

func TestDoctorAdapter_ListRawBySpecialty(t *testing.T) {
	adapter, mock, db := setupMockAdapter(t)
	defer db.Close()

	rows := doctorRows().
		AddRow("c1", "Dr. Iyer", "cardiologist", "MBBS, DM - Cardiology",
			"20", "4.8", "900", "Jayanagar", "12.9250", "77.5938", "")

	// goqu interpolates values into the statement, so no bind args here.
	mock.ExpectQuery(`SELECT .+ FROM "doctors" WHERE \("specialty" = 'cardiologist'\) ORDER BY "id" ASC`).
		WillReturnRows(rows)

	records, err := adapter.ListRawBySpecialty(context.Background(), entities.SpecialtyCardiologist)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "c1", records[0].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoctorAdapter_Upsert(t *testing.T) {
	adapter, mock, db := setupMockAdapter(t)
	defer db.Close()

	// goqu leaves the conflict target unquoted.
	mock.ExpectExec(`INSERT INTO "doctors" .+ ON CONFLICT \(id\) DO UPDATE`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := adapter.Upsert(context.Background(), []entities.DoctorRecord{
		{
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
		},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoctorAdapter_UpsertEmptyBatch(t *testing.T) {
	adapter, mock, db := setupMockAdapter(t)
	defer db.Close()

	// No SQL should run for an empty batch.
	err := adapter.Upsert(context.Background(), nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
