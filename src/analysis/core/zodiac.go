package core

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	FullCircle       = 360.0
	SignSpan         = 30.0
	SignCount        = 12
	signDegreeDigits = 2
)

// -----------------------------------------------------------------------------

// Normalize maps any finite longitude into [0, 360).
func Normalize(longitude float64) float64 {
	n := math.Mod(longitude, FullCircle)
	if n < 0 {
		n += FullCircle
	}
	// -tiny + 360 rounds back up to 360
	if n >= FullCircle {
		n = 0
	}
	return n
}

// -----------------------------------------------------------------------------

// Classify returns the sign index (0 = Aries ... 11 = Pisces) and the
// unrounded degree within that sign for an ecliptic longitude.
func Classify(longitude float64) (int, float64) {
	n := Normalize(longitude)
	index := int(math.Floor(n/SignSpan)) % SignCount
	return index, math.Mod(n, SignSpan)
}

// -----------------------------------------------------------------------------

// SignDegree is the in-sign degree rounded to two places, kept below 30.
func SignDegree(longitude float64) float64 {
	_, deg := Classify(longitude)
	return roundBelow(deg, signDegreeDigits, SignSpan)
}

// -----------------------------------------------------------------------------

// AbsoluteDegree is the normalized longitude rounded to places, kept below 360
// so it stays in the sign Classify reports.
func AbsoluteDegree(longitude float64, places int) float64 {
	return roundBelow(Normalize(longitude), places, FullCircle)
}

// -----------------------------------------------------------------------------

// roundBelow rounds value and pulls a result that reached limit back to the
// largest representable value under it.
func roundBelow(value float64, places int, limit float64) float64 {
	rounded := Round(value, places)
	if rounded >= limit {
		rounded = Round(limit-math.Pow(10, -float64(places)), places)
	}
	return rounded
}

// -----------------------------------------------------------------------------

// Round rounds half away from zero to the given number of decimal places.
func Round(value float64, places int) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	return decimal.NewFromFloat(value).Round(int32(places)).InexactFloat64()
}

// -----------------------------------------------------------------------------

// AngularDelta returns the signed shortest arc from a to b in (-180, 180].
func AngularDelta(a, b float64) float64 {
	d := math.Mod(b-a, FullCircle)
	if d > FullCircle/2 {
		d -= FullCircle
	} else if d <= -FullCircle/2 {
		d += FullCircle
	}
	return d
}
