package entities

// DoctorRecord is a canonical doctor entry. Every field is populated and
// within its declared bound after normalization; ranking and classification
// treat records as immutable values.
type DoctorRecord struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Specialty       Specialty `json:"specialty" db:"specialty"`
	Degree          string    `json:"degree" db:"degree"`
	ExperienceYears int       `json:"experience_years" db:"experience_years"`
	ConsultationFee int       `json:"consultation_fee" db:"consultation_fee"`
	Rating          float64   `json:"rating" db:"rating"`
	Location        string    `json:"location" db:"location"`
	Latitude        float64   `json:"latitude" db:"latitude"`
	Longitude       float64   `json:"longitude" db:"longitude"`
	ProfileLink     string    `json:"profile_link" db:"profile_link"`
}

// RawDoctorRecord is a loosely-typed doctor row as supplied by the external
// loader. Any field may be empty, malformed, or carry narrative text; the
// normalizer repairs it into a DoctorRecord.
type RawDoctorRecord struct {
	ID              string `json:"id" db:"id"`
	Name            string `json:"name" db:"name"`
	Specialty       string `json:"specialty" db:"specialty"`
	Degree          string `json:"degree" db:"degree"`
	Experience      string `json:"experience" db:"experience"`
	ConsultationFee string `json:"consultation_fee" db:"consultation_fee"`
	Rating          string `json:"rating" db:"rating"`
	Location        string `json:"location" db:"location"`
	Latitude        string `json:"latitude" db:"latitude"`
	Longitude       string `json:"longitude" db:"longitude"`
	Coordinates     string `json:"coordinates" db:"coordinates"`
	ProfileLink     string `json:"profile_link" db:"profile_link"`
}

// Location represents geographical coordinates supplied by a caller.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PoolStats summarizes the canonical doctor pool.
type PoolStats struct {
	TotalDoctors   int               `json:"total_doctors"`
	BySpecialty    map[Specialty]int `json:"by_specialty"`
	ByLocation     map[string]int    `json:"by_location"`
	AvgRating      float64           `json:"avg_rating"`
	AvgFee         float64           `json:"avg_fee"`
	AvgExperience  float64           `json:"avg_experience"`
}
