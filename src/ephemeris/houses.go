package ephemeris

import (
	"fmt"
	"math"

	"astrografia/src/analysis/core"
	"astrografia/src/helpers"

	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/unit"
)

type HouseSystem string

const (
	Porphyry  HouseSystem = "porphyry"
	Equal     HouseSystem = "equal"
	WholeSign HouseSystem = "whole_sign"
)

// ParseHouseSystem defaults to Porphyry for an empty name.
func ParseHouseSystem(name string) (HouseSystem, error) {
	switch HouseSystem(name) {
	case "":
		return Porphyry, nil
	case Porphyry, Equal, WholeSign:
		return HouseSystem(name), nil
	}
	return "", helpers.NewValidationError("house_system", fmt.Sprintf("unknown house system: %s", name))
}

// -----------------------------------------------------------------------------

// Houses holds the chart angles and the twelve cusps, all in degrees [0, 360).
type Houses struct {
	Ascendant float64
	Midheaven float64
	Cusps     [12]float64
}

// -----------------------------------------------------------------------------

// ComputeHouses derives the angles from apparent sidereal time (UT day jd),
// true obliquity (ephemeris day jde) and the observer's position.
// Longitude is east-positive.
func ComputeHouses(jd, jde, latitude, longitude float64, system HouseSystem) Houses {
	gast := sidereal.Apparent(jd).Angle().Deg()
	ramc := core.Normalize(gast + longitude)

	_, Δε := nutation.Nutation(jde)
	eps := nutation.MeanObliquity(jde) + Δε

	return housesFromRAMC(ramc, eps.Deg(), latitude, system)
}

// -----------------------------------------------------------------------------

func housesFromRAMC(ramc, eps, latitude float64, system HouseSystem) Houses {
	r, e, phi := unit.AngleFromDeg(ramc), unit.AngleFromDeg(eps), unit.AngleFromDeg(latitude)

	mc := core.Normalize(unit.Angle(math.Atan2(r.Sin(), r.Cos()*e.Cos())).Deg())
	asc := core.Normalize(unit.Angle(math.Atan2(r.Cos(), -(r.Sin()*e.Cos() + phi.Tan()*e.Sin()))).Deg())

	h := Houses{Ascendant: asc, Midheaven: mc}
	switch system {
	case Equal:
		for i := range h.Cusps {
			h.Cusps[i] = core.Normalize(asc + 30*float64(i))
		}
	case WholeSign:
		start := math.Floor(asc/30) * 30
		for i := range h.Cusps {
			h.Cusps[i] = core.Normalize(start + 30*float64(i))
		}
	default:
		ic := core.Normalize(mc + 180)
		east := core.Normalize(ic - asc)
		west := core.Normalize(asc + 180 - ic)
		h.Cusps[0] = asc
		h.Cusps[1] = core.Normalize(asc + east/3)
		h.Cusps[2] = core.Normalize(asc + 2*east/3)
		h.Cusps[3] = ic
		h.Cusps[4] = core.Normalize(ic + west/3)
		h.Cusps[5] = core.Normalize(ic + 2*west/3)
		for i := 6; i < 12; i++ {
			h.Cusps[i] = core.Normalize(h.Cusps[i-6] + 180)
		}
	}
	return h
}
