package services

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/doctordiscovery/internal/domain/entities"
	"github.com/zatekoja/doctordiscovery/pkg/config"
)

func newTestRanker() *DoctorRankingService {
	return NewDoctorRankingService(config.RankingConfig{MaxResults: 10, DefaultSort: "rating"})
}

func rankingTestPool() []entities.DoctorRecord {
	return []entities.DoctorRecord{
		{ID: "d1", Name: "A", Specialty: entities.SpecialtyDermatologist, Rating: 4.1, ExperienceYears: 8, Latitude: 12.9716, Longitude: 77.5946},
		{ID: "d2", Name: "B", Specialty: entities.SpecialtyDermatologist, Rating: 4.8, ExperienceYears: 5, Latitude: 12.9352, Longitude: 77.6245},
		{ID: "d3", Name: "C", Specialty: entities.SpecialtyDermatologist, Rating: 4.5, ExperienceYears: 15, Latitude: 13.0358, Longitude: 77.5970},
		{ID: "c1", Name: "D", Specialty: entities.SpecialtyCardiologist, Rating: 4.9, ExperienceYears: 20, Latitude: 12.9716, Longitude: 77.5946},
	}
}

func TestRankFiltersBySpecialty(t *testing.T) {
	s := newTestRanker()

	ranked := s.Rank(rankingTestPool(), RankRequest{Specialty: entities.SpecialtyDermatologist})

	require.Len(t, ranked, 3)
	for _, r := range ranked {
		assert.Equal(t, entities.SpecialtyDermatologist, r.Specialty)
	}
}

func TestRankEmptyFilteredPool(t *testing.T) {
	s := newTestRanker()

	ranked := s.Rank(rankingTestPool(), RankRequest{Specialty: entities.SpecialtyOncologist})
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)

	ranked = s.Rank(nil, RankRequest{Specialty: entities.SpecialtyDermatologist})
	assert.Empty(t, ranked)
}

func TestRankByRating(t *testing.T) {
	s := newTestRanker()

	ranked := s.Rank(rankingTestPool(), RankRequest{
		Specialty: entities.SpecialtyDermatologist,
		SortBy:    entities.SortByRating,
	})

	require.Len(t, ranked, 3)
	assert.Equal(t, "d2", ranked[0].ID)
	assert.Equal(t, "d3", ranked[1].ID)
	assert.Equal(t, "d1", ranked[2].ID)
}

func TestRankByExperience(t *testing.T) {
	s := newTestRanker()

	ranked := s.Rank(rankingTestPool(), RankRequest{
		Specialty: entities.SpecialtyDermatologist,
		SortBy:    entities.SortByExperience,
	})

	require.Len(t, ranked, 3)
	assert.Equal(t, "d3", ranked[0].ID)
	assert.Equal(t, "d1", ranked[1].ID)
	assert.Equal(t, "d2", ranked[2].ID)
}

func TestRankByLocation(t *testing.T) {
	s := newTestRanker()

	// Origin at the city center: d1 sits on it, d2 is ~5 km away, d3 ~7 km.
	ranked := s.Rank(rankingTestPool(), RankRequest{
		Specialty: entities.SpecialtyDermatologist,
		SortBy:    entities.SortByLocation,
		Latitude:  12.9716,
		Longitude: 77.5946,
		HasOrigin: true,
	})

	require.Len(t, ranked, 3)
	assert.Equal(t, "d1", ranked[0].ID)
	assert.InDelta(t, 0, ranked[0].DistanceKm, 0.001)
	assert.Less(t, ranked[1].DistanceKm, ranked[2].DistanceKm)
}

func TestRankNoOriginDistanceIsInfinite(t *testing.T) {
	s := newTestRanker()

	ranked := s.Rank(rankingTestPool(), RankRequest{
		Specialty: entities.SpecialtyDermatologist,
		SortBy:    entities.SortByRating,
	})

	require.NotEmpty(t, ranked)
	for _, r := range ranked {
		assert.True(t, math.IsInf(r.DistanceKm, 1))
	}
}

func TestRankUnplaceableDoctorsSortLast(t *testing.T) {
	s := newTestRanker()

	pool := []entities.DoctorRecord{
		{ID: "far", Specialty: entities.SpecialtyDentist, Rating: 5.0, Latitude: math.NaN(), Longitude: math.NaN()},
		{ID: "near", Specialty: entities.SpecialtyDentist, Rating: 3.0, Latitude: 12.97, Longitude: 77.59},
	}
	ranked := s.Rank(pool, RankRequest{
		Specialty: entities.SpecialtyDentist,
		SortBy:    entities.SortByLocation,
		Latitude:  12.9716,
		Longitude: 77.5946,
		HasOrigin: true,
	})

	require.Len(t, ranked, 2)
	assert.Equal(t, "near", ranked[0].ID)
	assert.Equal(t, "far", ranked[1].ID)
	assert.True(t, math.IsInf(ranked[1].DistanceKm, 1))
}

func TestRankEqualKeysBreakTiesByID(t *testing.T) {
	s := newTestRanker()

	pool := []entities.DoctorRecord{
		{ID: "2", Specialty: entities.SpecialtyDentist, Rating: 4.5, ExperienceYears: 10},
		{ID: "1", Specialty: entities.SpecialtyDentist, Rating: 4.5, ExperienceYears: 10},
	}
	ranked := s.Rank(pool, RankRequest{Specialty: entities.SpecialtyDentist, SortBy: entities.SortByRating})

	require.Len(t, ranked, 2)
	assert.Equal(t, "1", ranked[0].ID)
	assert.Equal(t, "2", ranked[1].ID)
}

func TestRankIsDeterministic(t *testing.T) {
	s := newTestRanker()

	req := RankRequest{
		Specialty: entities.SpecialtyDermatologist,
		SortBy:    entities.SortByLocation,
		Latitude:  12.9716,
		Longitude: 77.5946,
		HasOrigin: true,
	}
	first := s.Rank(rankingTestPool(), req)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, s.Rank(rankingTestPool(), req))
	}
}

func TestRankLimit(t *testing.T) {
	s := NewDoctorRankingService(config.RankingConfig{MaxResults: 2, DefaultSort: "rating"})

	ranked := s.Rank(rankingTestPool(), RankRequest{Specialty: entities.SpecialtyDermatologist})
	assert.Len(t, ranked, 2)

	ranked = s.Rank(rankingTestPool(), RankRequest{Specialty: entities.SpecialtyDermatologist, Limit: 1})
	assert.Len(t, ranked, 1)
}

func TestRankInvalidSortFallsBackToDefault(t *testing.T) {
	s := newTestRanker()

	byDefault := s.Rank(rankingTestPool(), RankRequest{Specialty: entities.SpecialtyDermatologist})
	byBogus := s.Rank(rankingTestPool(), RankRequest{Specialty: entities.SpecialtyDermatologist, SortBy: "bogus"})
	assert.Equal(t, byDefault, byBogus)
}

func TestRankDoesNotMutateInput(t *testing.T) {
	s := newTestRanker()

	pool := rankingTestPool()
	s.Rank(pool, RankRequest{Specialty: entities.SpecialtyDermatologist, SortBy: entities.SortByExperience})

	assert.Equal(t, rankingTestPool(), pool)
}

func TestRankedDoctorJSONInfiniteDistance(t *testing.T) {
	ranked := []RankedDoctor{
		{DoctorRecord: entities.DoctorRecord{ID: "d1", Name: "A"}, DistanceKm: math.Inf(1)},
		{DoctorRecord: entities.DoctorRecord{ID: "d2", Name: "B"}, DistanceKm: 3.25},
	}

	data, err := json.Marshal(ranked)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"distance_km":null`)
	assert.Contains(t, string(data), `"distance_km":3.25`)

	var decoded []RankedDoctor
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.True(t, math.IsInf(decoded[0].DistanceKm, 1))
	assert.Equal(t, 3.25, decoded[1].DistanceKm)
	assert.Equal(t, "d1", decoded[0].ID)
}

func TestRankedDoctorJSONNaNDistance(t *testing.T) {
	data, err := json.Marshal(RankedDoctor{
		DoctorRecord: entities.DoctorRecord{ID: "d1"},
		DistanceKm:   math.NaN(),
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"distance_km":null`)
}
