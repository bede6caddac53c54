package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/zatekoja/doctordiscovery/internal/domain/providers"
)

// rankCachePrefix namespaces cached ranking results so a pool refresh can
// invalidate them all with one prefix delete.
const rankCachePrefix = "doctors:rank:"

// DoctorDiscoveryService answers ranked doctor queries from the pool
// snapshot, with a Redis-backed result cache in front. The cache is an
// optimization only; a nil or failing cache degrades to ranking directly.
type DoctorDiscoveryService struct {
	pool     *DoctorPoolService
	ranker   *DoctorRankingService
	cache    providers.CacheProvider
	cacheTTL time.Duration
	logger   zerolog.Logger
}

func NewDoctorDiscoveryService(
	pool *DoctorPoolService,
	ranker *DoctorRankingService,
	cache providers.CacheProvider,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) *DoctorDiscoveryService {
	return &DoctorDiscoveryService{
		pool:     pool,
		ranker:   ranker,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "doctor_discovery").Logger(),
	}
}

// ListDoctors returns the ranked doctors for a request, consulting the
// result cache first.
func (s *DoctorDiscoveryService) ListDoctors(ctx context.Context, req RankRequest) []RankedDoctor {
	key := s.cacheKey(req)

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil && data != nil {
			var cached []RankedDoctor
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached
			}
		}
	}

	ranked := s.ranker.Rank(s.pool.Snapshot(), req)

	if s.cache != nil {
		data, err := json.Marshal(ranked)
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to encode ranking result for cache")
		} else if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Msg("failed to cache ranking result")
		}
	}
	return ranked
}

// InvalidateCache drops every cached ranking, called after a pool refresh.
func (s *DoctorDiscoveryService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPrefix(ctx, rankCachePrefix); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate ranking cache")
	}
}

// cacheKey buckets the origin to roughly 1 km cells so nearby requests share
// a cache entry. Infinite distances all land in the no-origin bucket.
func (s *DoctorDiscoveryService) cacheKey(req RankRequest) string {
	latBucket, lonBucket := math.Inf(1), math.Inf(1)
	if req.HasOrigin {
		latBucket = math.Round(req.Latitude*100) / 100
		lonBucket = math.Round(req.Longitude*100) / 100
	}
	return fmt.Sprintf("%s%s:%s:%v:%v:%d",
		rankCachePrefix, req.Specialty, req.SortBy, latBucket, lonBucket, req.Limit)
}
