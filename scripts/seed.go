package main

import (
	"context"
	"log"
	"os"

	"github.com/zatekoja/doctordiscovery/internal/adapters/database"
	"github.com/zatekoja/doctordiscovery/internal/adapters/search"
	"github.com/zatekoja/doctordiscovery/internal/application/services"
	"github.com/zatekoja/doctordiscovery/internal/domain/entities"
	"github.com/zatekoja/doctordiscovery/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/doctordiscovery/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/doctordiscovery/pkg/config"
)

// Sample rows mimic scraped listings: narrative degree fields, units inside
// numbers, currency marks, missing coordinates. The normalizer has to cope
// with all of it, so the seed data keeps the mess on purpose.
var seedDoctors = []entities.RawDoctorRecord{
	{
		ID:              "doc-001",
		Name:            "Dr. Asha Menon",
		Specialty:       "Dermatologist",
		Degree:          "MBBS, MD - Dermatology",
		Experience:      "12 years experience overall",
		Rating:          "4.6",
		ConsultationFee: "₹650",
		Location:        "Indiranagar",
		Coordinates:     "12.9784, 77.6408",
	},
	{
		ID:              "doc-002",
		Name:            "Dr. Vikram Rao",
		Specialty:       "Cardiologist",
		Degree:          "Dr. Vikram Rao has the following qualifications: MBBS, DM - Cardiology. You can book an appointment online",
		Experience:      "21 years",
		Rating:          "4.8★",
		ConsultationFee: "900",
		Location:        "Jayanagar",
	},
	{
		ID:              "doc-003",
		Name:            "Dr. Priya Shetty",
		Specialty:       "Orthopedist",
		Degree:          "",
		Experience:      "8",
		Rating:          "",
		ConsultationFee: "n/a",
		Location:        "Koramangala",
		Coordinates:     "12.9352,77.6245",
	},
	{
		ID:              "doc-004",
		Name:            "Dr. Suresh Iyer",
		Specialty:       "General Physician",
		Degree:          "MBBS",
		Experience:      "30 years experience",
		Rating:          "4.4",
		ConsultationFee: "₹ 400",
		Location:        "Malleshwaram",
		Coordinates:     "13.0035, 77.5709",
	},
	{
		ID:              "doc-005",
		Name:            "Dr. Kavitha Nair",
		Specialty:       "Gynecologist",
		Degree:          "Completed her MBBS, DGO and graduated with honors",
		Experience:      "15 years",
		Rating:          "4.5",
		ConsultationFee: "700",
		Location:        "HSR Layout",
		Coordinates:     "12.9116, 77.6389",
	},
	{
		ID:              "doc-006",
		Name:            "Dr. Ramesh Gupta",
		Specialty:       "Dentist",
		Degree:          "BDS, MDS - Conservative Dentistry",
		Experience:      "9 years",
		Rating:          "4.2",
		ConsultationFee: "₹350",
		Location:        "Whitefield",
		Coordinates:     "12.9698, 77.7500",
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating doctors before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `TRUNCATE TABLE doctors`); err != nil {
			log.Printf("Warning: failed to truncate doctors: %v", err)
		}
	}

	if _, err := pgClient.DB().ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS doctors (
			id               TEXT PRIMARY KEY,
			name             TEXT NOT NULL,
			specialty        TEXT,
			degree           TEXT,
			experience       TEXT,
			rating           TEXT,
			consultation_fee TEXT,
			location         TEXT,
			latitude         TEXT,
			longitude        TEXT,
			profile_link     TEXT,
			updated_at       TIMESTAMPTZ
		)
	`); err != nil {
		log.Fatalf("Failed to create doctors table: %v", err)
	}

	doctorRepo := database.NewDoctorAdapter(pgClient)
	normalizer := services.NewRecordNormalizer(cfg.Normalizer)
	doctors := normalizer.NormalizeAll(seedDoctors)

	if err := doctorRepo.Upsert(ctx, doctors); err != nil {
		log.Fatalf("Failed to seed doctors: %v", err)
	}
	log.Printf("Seeded %d doctors", len(doctors))

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Printf("Warning: Typesense unavailable, skipping index seed: %v", err)
		return
	}

	adapter := search.NewTypesenseAdapter(tsClient)
	if err := adapter.EnsureCollection(ctx); err != nil {
		log.Fatalf("Failed to init search schema: %v", err)
	}
	if err := adapter.IndexDoctors(ctx, doctors); err != nil {
		log.Fatalf("Failed to index doctors: %v", err)
	}
	log.Printf("Indexed %d doctors", len(doctors))
}
