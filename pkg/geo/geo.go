package geo

import (
	"math"
	"strings"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the haversine great-circle distance in kilometers
// between two coordinates given in decimal degrees.
//
// Invalid input (NaN or out-of-range components) returns +Inf, a sentinel
// meaning "exclude from proximity sort". It must never be 0: a silent zero
// once put every invalid record at the top of a nearest-first sort.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	if !validCoordinate(lat1, lon1) || !validCoordinate(lat2, lon2) {
		return math.Inf(1)
	}

	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(lat1))*math.Cos(degreesToRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func validCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// cityCenters holds approximate coordinates for major Indian cities. A static
// table is deliberate: city lookup is a fallback, not a geocoding service.
var cityCenters = map[string][2]float64{
	"delhi":              {28.6139, 77.2090},
	"mumbai":             {19.0760, 72.8777},
	"bangalore":          {12.9716, 77.5946},
	"hyderabad":          {17.3850, 78.4867},
	"ahmedabad":          {23.0225, 72.5714},
	"chennai":            {13.0827, 80.2707},
	"kolkata":            {22.5726, 88.3639},
	"pune":               {18.5204, 73.8567},
	"jaipur":             {26.9124, 75.7873},
	"surat":              {21.1702, 72.8311},
	"lucknow":            {26.8467, 80.9462},
	"kanpur":             {26.4499, 80.3319},
	"nagpur":             {21.1458, 79.0882},
	"indore":             {22.7196, 75.8577},
	"thane":              {19.2183, 72.9781},
	"bhopal":             {23.2599, 77.4126},
	"visakhapatnam":      {17.6868, 83.2185},
	"patna":              {25.5941, 85.1376},
	"vadodara":           {22.3072, 73.1812},
	"ghaziabad":          {28.6692, 77.4538},
	"ludhiana":           {30.9010, 75.8573},
	"agra":               {27.1767, 78.0081},
	"nashik":             {19.9975, 73.7898},
	"faridabad":          {28.4089, 77.3178},
	"meerut":             {28.9845, 77.7064},
	"rajkot":             {22.3039, 70.8022},
	"varanasi":           {25.3176, 82.9739},
	"srinagar":           {34.0837, 74.7973},
	"amritsar":           {31.6340, 74.8723},
	"navi mumbai":        {19.0330, 73.0297},
	"ranchi":             {23.3441, 85.3096},
	"coimbatore":         {11.0168, 76.9558},
	"vijayawada":         {16.5062, 80.6480},
	"jodhpur":            {26.2389, 73.0243},
	"madurai":            {9.9252, 78.1198},
	"raipur":             {21.2514, 81.6296},
	"guwahati":           {26.1445, 91.7362},
	"chandigarh":         {30.7333, 76.7794},
	"mysore":             {12.2958, 76.6394},
	"gurgaon":            {28.4595, 77.0266},
	"bhubaneswar":        {20.2961, 85.8245},
	"thiruvananthapuram": {8.5241, 76.9366},
	"noida":              {28.5355, 77.3910},
	"kochi":              {9.9312, 76.2673},
	"dehradun":           {30.3165, 78.0322},
	"mangalore":          {12.9141, 74.8560},
	"udaipur":            {24.5854, 73.7125},
	"hubli":              {15.3647, 75.1240},
	"belgaum":            {15.8497, 74.4977},
	"gulbarga":           {17.3297, 76.8343},
}

// CityCoordinates looks up the center coordinate for a known city,
// case-insensitively. ok is false for unknown cities; the caller must supply
// an explicit default and never assume (0,0).
func CityCoordinates(name string) (lat, lon float64, ok bool) {
	coord, found := cityCenters[strings.ToLower(strings.TrimSpace(name))]
	if !found {
		return 0, 0, false
	}
	return coord[0], coord[1], true
}
