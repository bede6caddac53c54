package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/zatekoja/doctordiscovery/internal/domain/entities"
	"github.com/zatekoja/doctordiscovery/internal/domain/providers"
	"github.com/zatekoja/doctordiscovery/internal/domain/repositories"
	apperrors "github.com/zatekoja/doctordiscovery/pkg/errors"
)

// PoolRefreshedTopic is the event bus topic announcing a completed pool
// refresh.
const PoolRefreshedTopic = "doctors.pool.refreshed"

type poolSnapshot struct {
	doctors   []entities.DoctorRecord
	loadedAt  time.Time
	refreshed int64
}

// DoctorPoolService keeps an in-memory snapshot of the normalized doctor
// pool. Readers load the current snapshot through an atomic pointer, so a
// background refresh never blocks a ranking request and readers never see a
// half-built pool.
type DoctorPoolService struct {
	repo       repositories.DoctorRepository
	normalizer *RecordNormalizer
	events     providers.EventBus
	logger     zerolog.Logger

	snapshot atomic.Pointer[poolSnapshot]
	refreshN atomic.Int64
}

func NewDoctorPoolService(
	repo repositories.DoctorRepository,
	normalizer *RecordNormalizer,
	events providers.EventBus,
	logger zerolog.Logger,
) *DoctorPoolService {
	s := &DoctorPoolService{
		repo:       repo,
		normalizer: normalizer,
		events:     events,
		logger:     logger.With().Str("component", "doctor_pool").Logger(),
	}
	s.snapshot.Store(&poolSnapshot{})
	return s
}

// Snapshot returns the current pool. The returned slice is shared and must
// not be mutated by callers.
func (s *DoctorPoolService) Snapshot() []entities.DoctorRecord {
	return s.snapshot.Load().doctors
}

// LoadedAt reports when the current snapshot was built. The zero time means
// no refresh has succeeded yet.
func (s *DoctorPoolService) LoadedAt() time.Time {
	return s.snapshot.Load().loadedAt
}

// Refresh rebuilds the snapshot from the repository. On failure the previous
// snapshot stays in place so the service degrades to stale data instead of
// an empty pool.
func (s *DoctorPoolService) Refresh(ctx context.Context) error {
	raws, err := s.repo.ListRaw(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("pool refresh failed, keeping previous snapshot")
		return apperrors.NewExternalError("failed to load doctor records", err)
	}

	doctors := s.normalizer.NormalizeAll(raws)
	next := &poolSnapshot{
		doctors:   doctors,
		loadedAt:  time.Now().UTC(),
		refreshed: s.refreshN.Add(1),
	}
	s.snapshot.Store(next)

	s.logger.Info().
		Int("doctors", len(doctors)).
		Int64("refresh", next.refreshed).
		Msg("doctor pool refreshed")

	s.publishRefreshed(ctx, next)
	return nil
}

// RunPeriodicRefresh refreshes on a fixed interval until the context is
// cancelled. Intended to run in its own goroutine.
func (s *DoctorPoolService) RunPeriodicRefresh(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("periodic pool refresh failed")
			}
		}
	}
}

// Stats aggregates the current snapshot. Averages are zero for an empty
// pool.
func (s *DoctorPoolService) Stats() entities.PoolStats {
	doctors := s.Snapshot()
	stats := entities.PoolStats{
		TotalDoctors: len(doctors),
		BySpecialty:  make(map[entities.Specialty]int),
		ByLocation:   make(map[string]int),
	}
	if len(doctors) == 0 {
		return stats
	}

	var ratingSum, feeSum, expSum float64
	for _, d := range doctors {
		stats.BySpecialty[d.Specialty]++
		stats.ByLocation[d.Location]++
		ratingSum += d.Rating
		feeSum += float64(d.ConsultationFee)
		expSum += float64(d.ExperienceYears)
	}
	n := float64(len(doctors))
	stats.AvgRating = ratingSum / n
	stats.AvgFee = feeSum / n
	stats.AvgExperience = expSum / n
	return stats
}

func (s *DoctorPoolService) publishRefreshed(ctx context.Context, snap *poolSnapshot) {
	if s.events == nil {
		return
	}
	event := providers.Event{
		ID:   uuid.New().String(),
		Type: "pool.refreshed",
		Payload: map[string]interface{}{
			"doctors":   len(snap.doctors),
			"loaded_at": snap.loadedAt.Format(time.RFC3339),
		},
	}
	if err := s.events.Publish(ctx, PoolRefreshedTopic, event); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish pool refresh event")
	}
}
