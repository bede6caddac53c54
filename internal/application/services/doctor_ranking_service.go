package services

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/zatekoja/doctordiscovery/internal/domain/entities"
	"github.com/zatekoja/doctordiscovery/pkg/config"
	"github.com/zatekoja/doctordiscovery/pkg/geo"
)

// RankedDoctor carries a doctor together with the distance computed for the
// request's reference point. DistanceKm is +Inf when either side has no
// usable coordinates, which sorts unplaceable doctors last instead of
// pretending they sit on the reference point. On the wire the sentinel
// travels as a null distance_km.
type RankedDoctor struct {
	entities.DoctorRecord
	DistanceKm float64 `json:"distance_km"`
}

// rankedDoctorJSON is the wire shape of RankedDoctor. The distance is a
// pointer so the +Inf sentinel can travel as null, which encoding/json
// refuses to emit for a float.
type rankedDoctorJSON struct {
	entities.DoctorRecord
	DistanceKm *float64 `json:"distance_km"`
}

func (r RankedDoctor) MarshalJSON() ([]byte, error) {
	out := rankedDoctorJSON{DoctorRecord: r.DoctorRecord}
	if !math.IsInf(r.DistanceKm, 1) && !math.IsNaN(r.DistanceKm) {
		out.DistanceKm = &r.DistanceKm
	}
	return json.Marshal(out)
}

func (r *RankedDoctor) UnmarshalJSON(data []byte) error {
	var in rankedDoctorJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.DoctorRecord = in.DoctorRecord
	r.DistanceKm = math.Inf(1)
	if in.DistanceKm != nil {
		r.DistanceKm = *in.DistanceKm
	}
	return nil
}

// RankRequest describes one ranking pass over a doctor pool.
type RankRequest struct {
	Specialty entities.Specialty
	SortBy    entities.SortKey
	Latitude  float64
	Longitude float64
	HasOrigin bool
	Limit     int
}

// DoctorRankingService filters a pool by specialty and orders it by the
// requested key. Ranking is pure: same pool and request always produce the
// same ordered slice.
type DoctorRankingService struct {
	cfg config.RankingConfig
}

func NewDoctorRankingService(cfg config.RankingConfig) *DoctorRankingService {
	return &DoctorRankingService{cfg: cfg}
}

// Rank filters, scores, and orders the pool. An empty filtered pool returns
// an empty slice, never an error. The input slice is not mutated.
func (s *DoctorRankingService) Rank(pool []entities.DoctorRecord, req RankRequest) []RankedDoctor {
	sortBy := req.SortBy
	if !sortBy.IsValid() {
		sortBy = entities.SortKey(s.cfg.DefaultSort)
	}

	ranked := make([]RankedDoctor, 0, len(pool))
	for _, doc := range pool {
		if req.Specialty != "" && doc.Specialty != req.Specialty {
			continue
		}
		dist := math.Inf(1)
		if req.HasOrigin {
			dist = geo.DistanceKm(req.Latitude, req.Longitude, doc.Latitude, doc.Longitude)
		}
		ranked = append(ranked, RankedDoctor{DoctorRecord: doc, DistanceKm: dist})
	}

	less := comparatorFor(sortBy)
	sort.SliceStable(ranked, func(i, j int) bool { return less(ranked[i], ranked[j]) })

	limit := req.Limit
	if limit <= 0 || limit > s.cfg.MaxResults {
		limit = s.cfg.MaxResults
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// comparatorFor returns the strict-weak ordering for a sort key. Every chain
// ends on the record ID so equal-keyed doctors order deterministically.
func comparatorFor(key entities.SortKey) func(a, b RankedDoctor) bool {
	switch key {
	case entities.SortByExperience:
		return func(a, b RankedDoctor) bool {
			if a.ExperienceYears != b.ExperienceYears {
				return a.ExperienceYears > b.ExperienceYears
			}
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
			if !distanceEqual(a.DistanceKm, b.DistanceKm) {
				return distanceLess(a.DistanceKm, b.DistanceKm)
			}
			return a.ID < b.ID
		}
	case entities.SortByLocation:
		return func(a, b RankedDoctor) bool {
			if !distanceEqual(a.DistanceKm, b.DistanceKm) {
				return distanceLess(a.DistanceKm, b.DistanceKm)
			}
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
			if a.ExperienceYears != b.ExperienceYears {
				return a.ExperienceYears > b.ExperienceYears
			}
			return a.ID < b.ID
		}
	default: // rating
		return func(a, b RankedDoctor) bool {
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
			if a.ExperienceYears != b.ExperienceYears {
				return a.ExperienceYears > b.ExperienceYears
			}
			if !distanceEqual(a.DistanceKm, b.DistanceKm) {
				return distanceLess(a.DistanceKm, b.DistanceKm)
			}
			return a.ID < b.ID
		}
	}
}

// distanceLess orders finite distances ascending and pushes +Inf to the end.
func distanceLess(a, b float64) bool {
	aInf, bInf := math.IsInf(a, 1), math.IsInf(b, 1)
	if aInf || bInf {
		return !aInf && bInf
	}
	return a < b
}

func distanceEqual(a, b float64) bool {
	if math.IsInf(a, 1) && math.IsInf(b, 1) {
		return true
	}
	return a == b
}
