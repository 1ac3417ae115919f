package models

import "time"

// MBirthData is a validated chart request.
type MBirthData struct {
	Name      string
	Year      int
	Month     int
	Day       int
	Hour      int
	Minute    int
	Latitude  float64
	Longitude float64
	Timezone  string
	City      string
	// UTC is the birth instant resolved from the local wall time and zone.
	UTC time.Time
}

// -----------------------------------------------------------------------------

// MRawBody is a single body longitude as returned by an ephemeris adapter.
// Element, Quality and Retrograde are optional metadata.
type MRawBody struct {
	Name       string  `json:"name"`
	Longitude  float64 `json:"longitude"`
	Retrograde *bool   `json:"retrograde,omitempty"`
}

// MRawChart is the adapter output before assembly.
// Cusps holds house cusp longitudes, index 0 is the first house. Ascendant,
// when nil, is taken from the first cusp.
type MRawChart struct {
	Source    string     `json:"source"`
	Bodies    []MRawBody `json:"bodies"`
	Cusps     []float64  `json:"cusps"`
	Ascendant *float64   `json:"ascendant,omitempty"`
	Midheaven *float64   `json:"midheaven,omitempty"`
	// Detailed marks adapters that provide element/quality metadata.
	Detailed bool `json:"detailed"`
}

// -----------------------------------------------------------------------------

type MPlanet struct {
	Name       string  `json:"name"`
	Sign       string  `json:"sign"`
	SignName   string  `json:"sign_name"`
	Degree     float64 `json:"degree"`
	SignDegree float64 `json:"sign_degree"`
	Element    string  `json:"element,omitempty"`
	Quality    string  `json:"quality,omitempty"`
	Retrograde *bool   `json:"retrograde,omitempty"`
	Icon       string  `json:"icon"`
}

// MAngle is a chart angle such as the ascendant or the midheaven.
type MAngle struct {
	Sign      string  `json:"sign"`
	SignName  string  `json:"sign_name"`
	Degree    float64 `json:"degree"`
	AbsDegree float64 `json:"abs_degree"`
	Icon      string  `json:"icon"`
}

type MHouse struct {
	House     int     `json:"house"`
	Sign      string  `json:"sign"`
	Degree    float64 `json:"degree"`
	AbsDegree float64 `json:"abs_degree"`
}

type MChartMeta struct {
	Name   string `json:"name"`
	City   string `json:"city"`
	Source string `json:"source"`
	UTC    string `json:"utc"`
}

// MChart is the assembled chart returned to clients.
type MChart struct {
	Planets   []MPlanet  `json:"planets"`
	Ascendant MAngle     `json:"ascendant"`
	Midheaven *MAngle    `json:"midheaven,omitempty"`
	Houses    []MHouse   `json:"houses"`
	Meta      MChartMeta `json:"meta"`
}
