package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/zatekoja/doctordiscovery/internal/adapters/database"
	"github.com/zatekoja/doctordiscovery/internal/adapters/search"
	"github.com/zatekoja/doctordiscovery/internal/application/services"
	"github.com/zatekoja/doctordiscovery/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/doctordiscovery/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/doctordiscovery/pkg/config"
)

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatalf("Invalid interval %q: %v", intervalValue, err)
		}
		if interval <= 0 {
			log.Fatalf("Interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, reset); err != nil {
			log.Printf("Reindex failed: %v", err)
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Printf("Reindex complete. Next run in %s.", interval)

		select {
		case <-ctx.Done():
			log.Println("Reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	doctorRepo := database.NewDoctorAdapter(pgClient)

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Println("Reset requested, deleting doctors collection")
		if _, err := tsClient.Client().Collection(typesense.DoctorsCollection).Delete(ctx); err != nil {
			log.Printf("Warning: failed to delete collection: %v", err)
		}
	}

	adapter := search.NewTypesenseAdapter(tsClient)
	if err := adapter.EnsureCollection(ctx); err != nil {
		return err
	}

	raws, err := doctorRepo.ListRaw(ctx)
	if err != nil {
		return err
	}

	// The index holds canonical records only; repair happens here, not at
	// query time.
	normalizer := services.NewRecordNormalizer(cfg.Normalizer)
	doctors := normalizer.NormalizeAll(raws)

	if err := adapter.IndexDoctors(ctx, doctors); err != nil {
		return err
	}

	log.Printf("Indexed %d doctors", len(doctors))
	return nil
}
