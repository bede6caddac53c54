package services

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/zatekoja/doctordiscovery/internal/domain/entities"
	"github.com/zatekoja/doctordiscovery/pkg/config"
)

// sentenceMarkers identify degree fields that carry scraped narrative text
// instead of qualifications ("Dr. X has the following qualifications ...").
var sentenceMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)has the following qualifications`),
	regexp.MustCompile(`(?i)completed his`),
	regexp.MustCompile(`(?i)completed her`),
	regexp.MustCompile(`(?i)\bstudied\b`),
	regexp.MustCompile(`(?i)\bgraduated\b`),
	regexp.MustCompile(`(?i)\bis a\b`),
	regexp.MustCompile(`(?i)more\.\.`),
	regexp.MustCompile(`Dr\.`),
	regexp.MustCompile(`(?i)You can book`),
}

// degreeTokenPatterns match recognized qualification tokens inside narrative
// text. Each match runs to the next delimiter so suffixes like
// "MD - Dermatology" survive extraction.
var degreeTokenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bMBBS[^,.\n]*`),
	regexp.MustCompile(`(?i)\bMD\b[^,.\n]*`),
	regexp.MustCompile(`(?i)\bMS\b[^,.\n]*`),
	regexp.MustCompile(`(?i)\bDNB[^,.\n]*`),
	regexp.MustCompile(`(?i)\bDM\b[^,.\n]*`),
	regexp.MustCompile(`(?i)\bMCh[^,.\n]*`),
	regexp.MustCompile(`(?i)\bBDS[^,.\n]*`),
	regexp.MustCompile(`(?i)\bBPT[^,.\n]*`),
	regexp.MustCompile(`(?i)\bDGO[^,.\n]*`),
	regexp.MustCompile(`(?i)\bDDVL[^,.\n]*`),
	regexp.MustCompile(`(?i)\bDOMS[^,.\n]*`),
	regexp.MustCompile(`(?i)\bDPM[^,.\n]*`),
	regexp.MustCompile(`(?i)\bMRCP[^,.\n]*`),
	regexp.MustCompile(`(?i)\bFRCS[^,.\n]*`),
	regexp.MustCompile(`(?i)\bMRCS[^,.\n]*`),
	regexp.MustCompile(`(?i)\bFNB[^,.\n]*`),
	regexp.MustCompile(`(?i)\bFRCOG[^,.\n]*`),
	regexp.MustCompile(`(?i)\bMRCOG[^,.\n]*`),
	regexp.MustCompile(`(?i)\bCCT[^,.\n]*`),
	regexp.MustCompile(`(?i)\bFellowship[^,.\n]*`),
	regexp.MustCompile(`(?i)\bDiploma[^,.\n]*`),
	regexp.MustCompile(`(?i)\bDiplomate[^,.\n]*`),
	regexp.MustCompile(`(?i)\bCertificate[^,.\n]*`),
}

var (
	firstIntPattern   = regexp.MustCompile(`\d+`)
	coordinatePattern = regexp.MustCompile(`([+-]?\d+\.?\d*)\s*,\s*([+-]?\d+\.?\d*)`)
	feeCleanPattern   = regexp.MustCompile(`[₹,\s]`)
)

// RecordNormalizer repairs raw doctor records into canonical ones. Normalize
// is a total function: it never fails, it degrades malformed fields to
// deterministic defaults instead, because downstream ranking assumes a fully
// populated record.
type RecordNormalizer struct {
	cfg config.NormalizerConfig
}

// NewRecordNormalizer creates a normalizer with the given repair constants.
func NewRecordNormalizer(cfg config.NormalizerConfig) *RecordNormalizer {
	return &RecordNormalizer{cfg: cfg}
}

// Normalize produces a canonical DoctorRecord from a raw row. Re-normalizing
// an already-canonical record is a no-op.
func (n *RecordNormalizer) Normalize(raw entities.RawDoctorRecord) entities.DoctorRecord {
	specialty := entities.CanonicalSpecialty(raw.Specialty)

	name := strings.TrimSpace(raw.Name)
	if name == "" {
		name = "Unknown"
	}

	location := strings.TrimSpace(raw.Location)
	if location == "" {
		location = n.cfg.DefaultCity
	}

	experience := n.repairExperience(raw.Experience)
	rating := n.repairRating(raw.Rating, experience)
	fee := n.repairFee(raw.ConsultationFee, raw.Specialty, specialty, experience, rating)
	degree := n.repairDegree(raw.Degree, raw.Specialty, specialty)
	lat, lon := n.repairCoordinates(raw.Coordinates, raw.Latitude, raw.Longitude)

	id := strings.TrimSpace(raw.ID)
	if id == "" {
		// Deterministic surrogate key so repeat refreshes dedupe identically.
		id = entities.NormalizeIdentifier(name + " " + location)
	}

	return entities.DoctorRecord{
		ID:              id,
		Name:            name,
		Specialty:       specialty,
		Degree:          degree,
		ExperienceYears: experience,
		ConsultationFee: fee,
		Rating:          rating,
		Location:        location,
		Latitude:        lat,
		Longitude:       lon,
		ProfileLink:     n.repairProfileLink(raw.ProfileLink, name, location),
	}
}

// NormalizeAll maps a raw batch into canonical records.
func (n *RecordNormalizer) NormalizeAll(raws []entities.RawDoctorRecord) []entities.DoctorRecord {
	out := make([]entities.DoctorRecord, len(raws))
	for i, raw := range raws {
		out[i] = n.Normalize(raw)
	}
	return out
}

func (n *RecordNormalizer) repairDegree(rawDegree, rawSpecialty string, specialty entities.Specialty) string {
	degree := strings.TrimSpace(rawDegree)
	if degree == "" || strings.EqualFold(degree, "n/a") {
		return n.defaultDegree(rawSpecialty, specialty)
	}

	if !containsSentenceMarker(degree) {
		return degree
	}

	if extracted := extractDegreeTokens(degree); extracted != "" {
		return extracted
	}
	return n.defaultDegree(rawSpecialty, specialty)
}

func containsSentenceMarker(s string) bool {
	for _, marker := range sentenceMarkers {
		if marker.MatchString(s) {
			return true
		}
	}
	return false
}

// extractDegreeTokens pulls recognized qualification tokens out of narrative
// text, deduplicated in order of first appearance.
func extractDegreeTokens(s string) string {
	type match struct {
		pos  int
		text string
	}
	var matches []match
	for _, pattern := range degreeTokenPatterns {
		for _, loc := range pattern.FindAllStringIndex(s, -1) {
			text := strings.TrimRight(strings.TrimSpace(truncateAtMarker(s[loc[0]:loc[1]])), ",.")
			if len(text) > 2 {
				matches = append(matches, match{pos: loc[0], text: text})
			}
		}
	}
	if len(matches) == 0 {
		return ""
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })

	seen := make(map[string]struct{}, len(matches))
	var tokens []string
	for _, m := range matches {
		key := strings.ToLower(m.text)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		tokens = append(tokens, m.text)
	}
	return strings.Join(tokens, ", ")
}

// truncateAtMarker cuts an extracted token short of any trailing narrative
// ("MBBS from AIIMS and graduated ..." keeps only "MBBS from AIIMS").
func truncateAtMarker(token string) string {
	cut := len(token)
	for _, marker := range sentenceMarkers {
		if loc := marker.FindStringIndex(token); loc != nil && loc[0] < cut {
			cut = loc[0]
		}
	}
	truncated := strings.TrimSpace(token[:cut])
	return strings.TrimSuffix(truncated, " and")
}

func (n *RecordNormalizer) defaultDegree(rawSpecialty string, specialty entities.Specialty) string {
	rawLower := strings.ToLower(rawSpecialty)
	switch {
	case specialty == entities.SpecialtyDentist || strings.Contains(rawLower, "dental"):
		return "BDS"
	case strings.Contains(rawLower, "surgeon") || strings.Contains(rawLower, "surgery"):
		return "MS"
	case strings.Contains(rawLower, "physio"):
		return "BPT"
	}
	switch specialty {
	case entities.SpecialtyCardiologist, entities.SpecialtyNeurologist,
		entities.SpecialtyDermatologist, entities.SpecialtyPediatrician,
		entities.SpecialtyPsychiatrist, entities.SpecialtyGynecologist:
		return "MD"
	}
	return n.cfg.DefaultDegree
}

func (n *RecordNormalizer) repairExperience(rawExperience string) int {
	token := firstIntPattern.FindString(rawExperience)
	if token == "" {
		return clampInt(n.cfg.DefaultExperience, n.cfg.ExperienceMin, n.cfg.ExperienceMax)
	}
	years, err := strconv.Atoi(token)
	if err != nil {
		return clampInt(n.cfg.DefaultExperience, n.cfg.ExperienceMin, n.cfg.ExperienceMax)
	}
	return clampInt(years, n.cfg.ExperienceMin, n.cfg.ExperienceMax)
}

func (n *RecordNormalizer) repairRating(rawRating string, experienceYears int) float64 {
	cleaned := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rawRating), "★"))
	if cleaned != "" {
		if rating, err := strconv.ParseFloat(cleaned, 64); err == nil && rating >= 0 && rating <= 5 {
			return rating
		}
	}

	// Experience-tiered default for unrated doctors.
	switch {
	case experienceYears >= 20:
		return 4.3
	case experienceYears >= 15:
		return 4.2
	case experienceYears >= 10:
		return 4.0
	case experienceYears >= 5:
		return 3.8
	}
	return n.cfg.DefaultRating
}

// repairFee keeps observed fees, clamped to the raw field bound; unparseable
// or absent fees are synthesized from specialty tier, experience and rating,
// clamped to the narrower synthesis band.
func (n *RecordNormalizer) repairFee(rawFee, rawSpecialty string, specialty entities.Specialty, experienceYears int, rating float64) int {
	cleaned := feeCleanPattern.ReplaceAllString(rawFee, "")
	if cleaned != "" && !strings.EqualFold(cleaned, "n/a") {
		if fee, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return clampInt(int(fee), n.cfg.FeeMin, n.cfg.FeeMax)
		}
	}

	base := n.baseFee(rawSpecialty, specialty)
	experiencePremium := experienceYears * n.cfg.FeePerExperienceYear
	if experiencePremium > n.cfg.FeeExperienceCap {
		experiencePremium = n.cfg.FeeExperienceCap
	}
	ratingPremium := (rating - 3.0) * float64(n.cfg.FeePerRatingPoint)
	if ratingPremium < 0 {
		ratingPremium = 0
	}

	return clampInt(base+experiencePremium+int(ratingPremium), n.cfg.SynthFeeMin, n.cfg.SynthFeeMax)
}

func (n *RecordNormalizer) baseFee(rawSpecialty string, specialty entities.Specialty) int {
	if strings.Contains(strings.ToLower(rawSpecialty), "surgeon") {
		return 700
	}
	switch specialty {
	case entities.SpecialtyCardiologist, entities.SpecialtyNeurologist, entities.SpecialtyOncologist:
		return 800
	case entities.SpecialtyDermatologist, entities.SpecialtyPsychiatrist:
		return 600
	case entities.SpecialtyGynecologist:
		return 550
	case entities.SpecialtyDentist:
		return 500
	}
	return n.cfg.DefaultFee
}

// repairCoordinates parses a combined "lat,lon" string or discrete fields and
// validates against the metro bounding box. Invalid coordinates become the
// city-center default, never NaN and never (0,0).
func (n *RecordNormalizer) repairCoordinates(coordinates, rawLat, rawLon string) (float64, float64) {
	if m := coordinatePattern.FindStringSubmatch(coordinates); m != nil {
		if lat, lon, ok := n.parseBoundedPair(m[1], m[2]); ok {
			return lat, lon
		}
	}
	if lat, lon, ok := n.parseBoundedPair(rawLat, rawLon); ok {
		return lat, lon
	}
	return n.cfg.DefaultLatitude, n.cfg.DefaultLongitude
}

func (n *RecordNormalizer) parseBoundedPair(latStr, lonStr string) (float64, float64, bool) {
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if errLat != nil || errLon != nil {
		return 0, 0, false
	}
	if lat < n.cfg.MinLatitude || lat > n.cfg.MaxLatitude ||
		lon < n.cfg.MinLongitude || lon > n.cfg.MaxLongitude {
		return 0, 0, false
	}
	return lat, lon, true
}

func (n *RecordNormalizer) repairProfileLink(rawLink, name, location string) string {
	link := strings.TrimSpace(rawLink)
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	return fmt.Sprintf(
		"https://www.google.com/maps/search/%s+%s+%s",
		strings.ReplaceAll(name, " ", "+"),
		strings.ReplaceAll(location, " ", "+"),
		strings.ReplaceAll(n.cfg.DefaultCity, " ", "+"),
	)
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
