package models

type MGeoLocation struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Formatted   string  `json:"formatted"`
	Timezone    string  `json:"timezone,omitempty"`
	OffsetHours float64 `json:"offset_hours"`
	Source      string  `json:"source"`
}
