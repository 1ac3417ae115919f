package ephemeris

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"astrografia/src/helpers"
	"astrografia/src/models"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/deltat"
	"github.com/soniakeys/meeus/v3/julian"
)

const (
	DefaultCity = "N/A"
	DefaultName = "Anonymous"
	dateLayout  = "2006-01-02"
)

var timePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// -----------------------------------------------------------------------------

// RawBirthInput carries chart request fields exactly as received.
type RawBirthInput struct {
	Name string `json:"name" form:"name"`
	Date string `json:"date" form:"date"`
	Time string `json:"time" form:"time"`
	Lat  string `json:"lat" form:"lat"`
	Lon  string `json:"lon" form:"lon"`
	TZ   string `json:"tz" form:"tz"`
	City string `json:"city" form:"city"`
}

// -----------------------------------------------------------------------------

// ParseBirthData validates the raw fields and resolves the birth instant.
func ParseBirthData(in RawBirthInput) (models.MBirthData, error) {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"date", in.Date}, {"time", in.Time}, {"lat", in.Lat}, {"lon", in.Lon}, {"tz", in.TZ},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return models.MBirthData{}, helpers.NewValidationError(
			strings.Join(missing, ","),
			fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")),
		)
	}

	date, err := time.Parse(dateLayout, strings.TrimSpace(in.Date))
	if err != nil {
		return models.MBirthData{}, helpers.NewValidationError("date", "invalid date format, expected YYYY-MM-DD")
	}

	hour, minute, err := parseClock(strings.TrimSpace(in.Time))
	if err != nil {
		return models.MBirthData{}, err
	}

	lat, err := parseCoordinate(in.Lat, "lat", "latitude", 90)
	if err != nil {
		return models.MBirthData{}, err
	}
	lon, err := parseCoordinate(in.Lon, "lon", "longitude", 180)
	if err != nil {
		return models.MBirthData{}, err
	}

	local := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC)
	return NewBirthData(in.Name, local, lat, lon, strings.TrimSpace(in.TZ), in.City)
}

// -----------------------------------------------------------------------------

// NewBirthData builds a request from a wall-clock time (its location is ignored)
// interpreted in the IANA zone tz.
func NewBirthData(name string, wall time.Time, lat, lon float64, tz, city string) (models.MBirthData, error) {
	if lat < -90 || lat > 90 {
		return models.MBirthData{}, helpers.NewValidationError("lat", "latitude out of range")
	}
	if lon < -180 || lon > 180 {
		return models.MBirthData{}, helpers.NewValidationError("lon", "longitude out of range")
	}

	loc, err := LoadZone(tz)
	if err != nil {
		return models.MBirthData{}, err
	}

	local := time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), 0, 0, loc)

	if strings.TrimSpace(name) == "" {
		name = DefaultName
	}
	if strings.TrimSpace(city) == "" {
		city = DefaultCity
	}

	return models.MBirthData{
		Name:      strings.TrimSpace(name),
		Year:      local.Year(),
		Month:     int(local.Month()),
		Day:       local.Day(),
		Hour:      local.Hour(),
		Minute:    local.Minute(),
		Latitude:  lat,
		Longitude: lon,
		Timezone:  tz,
		City:      strings.TrimSpace(city),
		UTC:       local.UTC(),
	}, nil
}

// -----------------------------------------------------------------------------

// LoadZone resolves an IANA identifier; "Local" and empty names are rejected.
func LoadZone(tz string) (*time.Location, error) {
	if tz == "" || tz == "Local" {
		return nil, helpers.NewUnknownTimezoneError(tz, nil)
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, helpers.NewUnknownTimezoneError(tz, err)
	}
	return loc, nil
}

// -----------------------------------------------------------------------------

func parseClock(value string) (int, int, error) {
	invalid := helpers.NewValidationError("time", "invalid time format, expected HH:MM")
	m := timePattern.FindStringSubmatch(value)
	if m == nil {
		return 0, 0, invalid
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0, invalid
	}
	return hour, minute, nil
}

// -----------------------------------------------------------------------------

func parseCoordinate(raw, field, label string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) {
		return 0, helpers.NewValidationError(field, "invalid "+label)
	}
	if v < -limit || v > limit {
		return 0, helpers.NewValidationError(field, label+" out of range")
	}
	return v, nil
}

// -----------------------------------------------------------------------------

// Key is the memoization key: the full input tuple.
func Key(b models.MBirthData) string {
	return fmt.Sprintf("%s|%04d-%02d-%02d|%02d:%02d|%.6f|%.6f|%s|%s",
		b.Name, b.Year, b.Month, b.Day, b.Hour, b.Minute, b.Latitude, b.Longitude, b.Timezone, b.City)
}

// -----------------------------------------------------------------------------

// JulianDay returns the Julian day (UT) of the birth instant.
func JulianDay(b models.MBirthData) float64 {
	return julian.TimeToJD(b.UTC)
}

// -----------------------------------------------------------------------------

// DeltaT returns TD - UT in seconds for a Julian day.
func DeltaT(jd float64) float64 {
	year := base.JDEToJulianYear(jd)
	switch {
	case year < 948:
		return deltat.PolyBefore948(year).Sec()
	case year < 1620:
		return deltat.Poly948to1600(year).Sec()
	case year < 2009:
		return deltat.Interp10A(jd).Sec()
	default:
		return deltat.PolyAfter2000(year).Sec()
	}
}

// -----------------------------------------------------------------------------

// EphemerisDay converts a UT Julian day to Julian ephemeris day (TD).
func EphemerisDay(jd float64) float64 {
	return jd + DeltaT(jd)/86400
}
