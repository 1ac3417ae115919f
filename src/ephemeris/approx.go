package ephemeris

import (
	"context"
	"math"

	"astrografia/src/analysis"
	"astrografia/src/analysis/core"
	"astrografia/src/models"
)

// meanElement is a circular-orbit approximation: mean longitude at J2000 and sidereal period.
type meanElement struct {
	name   string
	period float64
	init   float64
}

var meanElements = []meanElement{
	{analysis.Moon, 27.321582, 218.316},
	{analysis.Mercury, 87.969, 252.25084},
	{analysis.Venus, 224.701, 181.97973},
	{analysis.Mars, 686.98, 355.433},
	{analysis.Jupiter, 4332.59, 34.35151},
	{analysis.Saturn, 10759.22, 50.07744},
	{analysis.Uranus, 30685.4, 314.05501},
	{analysis.Neptune, 60190.03, 304.34866},
	{analysis.Pluto, 90560, 238.92903},
}

const (
	j2000         = 2451545.0
	earthPeriod   = 365.256
	earthInitLong = 100.46435
)

// ApproxEphemeris is a last-resort mean-motion model. It ignores the observer
// position except for the ascendant, which follows the local clock.
type ApproxEphemeris struct {
	withPluto bool
}

// -----------------------------------------------------------------------------

func NewApproxEphemeris(cfg *models.MConfig) *ApproxEphemeris {
	return &ApproxEphemeris{withPluto: cfg.Ephemeris.WithPluto()}
}

// -----------------------------------------------------------------------------

func (a *ApproxEphemeris) Name() string {
	return "approx"
}

// -----------------------------------------------------------------------------

func (a *ApproxEphemeris) ComputeRaw(ctx context.Context, birth models.MBirthData) (*models.MRawChart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	days := JulianDay(birth) - j2000
	earth := core.Normalize(earthInitLong + 360/earthPeriod*days)

	wanted := make(map[string]bool)
	for _, name := range analysis.Bodies(a.withPluto) {
		wanted[name] = true
	}

	raw := &models.MRawChart{Source: a.Name()}
	raw.Bodies = append(raw.Bodies, models.MRawBody{Name: analysis.Sun, Longitude: core.Normalize(earth + 180)})

	for _, el := range meanElements {
		if !wanted[el.name] {
			continue
		}
		helio := core.Normalize(el.init + 360/el.period*days)
		lon := helio
		if el.name != analysis.Moon {
			lon = geocentricCircular(helio, math.Cbrt(math.Pow(el.period/earthPeriod, 2)), earth)
		}
		raw.Bodies = append(raw.Bodies, models.MRawBody{Name: el.name, Longitude: lon})
	}

	fraction := (float64(birth.Hour) + float64(birth.Minute)/60) / 24
	asc := core.Normalize(fraction * 360)
	raw.Ascendant = &asc
	raw.Cusps = []float64{asc}
	return raw, nil
}

// -----------------------------------------------------------------------------

// geocentricCircular projects a heliocentric longitude on an orbit of radius a (AU).
func geocentricCircular(helioDeg, a, earthDeg float64) float64 {
	const rad = math.Pi / 180
	x := a*math.Cos(helioDeg*rad) - math.Cos(earthDeg*rad)
	y := a*math.Sin(helioDeg*rad) - math.Sin(earthDeg*rad)
	return core.Normalize(math.Atan2(y, x) / rad)
}
