package services

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/doctordiscovery/internal/domain/entities"
	"github.com/zatekoja/doctordiscovery/pkg/config"
)

type fakeCache struct {
	store map[string][]byte
	gets  int
	sets  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]byte)}
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	f.gets++
	return f.store[key], nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.sets++
	f.store[key] = value
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	delete(f.store, key)
	return nil
}

func (f *fakeCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	for k := range f.store {
		if strings.HasPrefix(k, prefix) {
			delete(f.store, k)
		}
	}
	return nil
}

func newTestDiscovery(t *testing.T, cache *fakeCache) *DoctorDiscoveryService {
	t.Helper()
	repo := &fakeDoctorRepo{raws: []entities.RawDoctorRecord{
		{ID: "d1", Name: "A", Specialty: "Dermatologist", Rating: "4.1"},
		{ID: "d2", Name: "B", Specialty: "Dermatologist", Rating: "4.8"},
	}}
	pool := newTestPoolService(repo, nil)
	require.NoError(t, pool.Refresh(context.Background()))

	ranker := NewDoctorRankingService(config.RankingConfig{MaxResults: 10, DefaultSort: "rating"})
	if cache == nil {
		// A typed nil would not compare equal to nil through the interface.
		return NewDoctorDiscoveryService(pool, ranker, nil, time.Minute, zerolog.Nop())
	}
	return NewDoctorDiscoveryService(pool, ranker, cache, time.Minute, zerolog.Nop())
}

func TestListDoctorsCachesResults(t *testing.T) {
	cache := newFakeCache()
	s := newTestDiscovery(t, cache)

	req := RankRequest{Specialty: entities.SpecialtyDermatologist, SortBy: entities.SortByRating}

	first := s.ListDoctors(context.Background(), req)
	require.Len(t, first, 2)
	assert.Equal(t, "d2", first[0].ID)
	assert.Equal(t, 1, cache.sets)

	second := s.ListDoctors(context.Background(), req)
	assert.Equal(t, first, second)
	// Second call was served from cache, nothing new written.
	assert.Equal(t, 1, cache.sets)
}

func TestListDoctorsWithoutCache(t *testing.T) {
	s := newTestDiscovery(t, nil)

	ranked := s.ListDoctors(context.Background(), RankRequest{
		Specialty: entities.SpecialtyDermatologist,
		SortBy:    entities.SortByRating,
	})
	require.Len(t, ranked, 2)
	assert.Equal(t, "d2", ranked[0].ID)
}

func TestInvalidateCache(t *testing.T) {
	cache := newFakeCache()
	s := newTestDiscovery(t, cache)

	req := RankRequest{Specialty: entities.SpecialtyDermatologist, SortBy: entities.SortByRating}
	s.ListDoctors(context.Background(), req)
	require.Equal(t, 1, cache.sets)

	s.InvalidateCache(context.Background())
	assert.Empty(t, cache.store)

	s.ListDoctors(context.Background(), req)
	assert.Equal(t, 2, cache.sets)
}

func TestCacheKeyBucketsNearbyOrigins(t *testing.T) {
	s := newTestDiscovery(t, nil)

	a := s.cacheKey(RankRequest{Specialty: entities.SpecialtyDentist, SortBy: entities.SortByLocation, Latitude: 12.97161, Longitude: 77.59462, HasOrigin: true})
	b := s.cacheKey(RankRequest{Specialty: entities.SpecialtyDentist, SortBy: entities.SortByLocation, Latitude: 12.97158, Longitude: 77.59459, HasOrigin: true})
	assert.Equal(t, a, b)

	far := s.cacheKey(RankRequest{Specialty: entities.SpecialtyDentist, SortBy: entities.SortByLocation, Latitude: 13.10, Longitude: 77.59, HasOrigin: true})
	assert.NotEqual(t, a, far)

	noOrigin := s.cacheKey(RankRequest{Specialty: entities.SpecialtyDentist, SortBy: entities.SortByLocation})
	assert.NotEqual(t, a, noOrigin)
}

func TestListDoctorsNoOriginResultsAreCacheable(t *testing.T) {
	cache := newFakeCache()
	s := newTestDiscovery(t, cache)

	req := RankRequest{Specialty: entities.SpecialtyDermatologist}

	first := s.ListDoctors(context.Background(), req)
	require.Len(t, first, 2)
	assert.True(t, math.IsInf(first[0].DistanceKm, 1))
	require.Equal(t, 1, cache.sets, "infinite distances must not prevent caching")

	for _, stored := range cache.store {
		assert.Contains(t, string(stored), `"distance_km":null`)
	}

	second := s.ListDoctors(context.Background(), req)
	assert.Equal(t, first, second)
	assert.True(t, math.IsInf(second[0].DistanceKm, 1))
}
