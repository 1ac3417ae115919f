package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		lon    float64
		index  int
		degree float64
	}{
		{0.0, 0, 0.0},
		{29.999, 0, 29.999},
		{30.0, 1, 0.0},
		{359.999, 11, 29.999},
		{360.0, 0, 0.0},
		{-0.5, 11, 29.5},
		{725.25, 0, 5.25},
	}
	for _, c := range cases {
		index, degree := Classify(c.lon)
		assert.Equal(t, c.index, index, "sign for %v", c.lon)
		assert.InDelta(t, c.degree, degree, 1e-9, "degree for %v", c.lon)
	}
}

func TestClassifyRangeAndPeriodicity(t *testing.T) {
	for lon := 0.0; lon < 360.0; lon += 0.37 {
		index, degree := Classify(lon)
		assert.GreaterOrEqual(t, index, 0)
		assert.LessOrEqual(t, index, 11)
		assert.GreaterOrEqual(t, degree, 0.0)
		assert.Less(t, degree, 30.0)

		index2, degree2 := Classify(lon + 360)
		assert.Equal(t, index, index2)
		assert.InDelta(t, degree, degree2, 1e-9)
	}
}

func TestNormalizeNegativeDrift(t *testing.T) {
	assert.Equal(t, 0.0, Normalize(-1e-15))
	assert.InDelta(t, 359.0, Normalize(-1), 1e-12)
}

func TestSignDegreeStaysBelowThirty(t *testing.T) {
	assert.Equal(t, 29.99, SignDegree(29.999))
	assert.Equal(t, 12.35, SignDegree(42.346))
	assert.Equal(t, 0.0, SignDegree(360))
}

func TestAbsoluteDegreeStaysBelowFullCircle(t *testing.T) {
	assert.Equal(t, 359.99, AbsoluteDegree(359.996, 2))
	assert.Equal(t, 359.9999, AbsoluteDegree(359.99996, 4))
	assert.Equal(t, 12.35, AbsoluteDegree(372.346, 2))
	assert.Equal(t, 0.0, AbsoluteDegree(-1e-15, 2))

	index, _ := Classify(359.996)
	assert.Equal(t, 11, index)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.25, Round(1.245, 2))
	assert.Equal(t, -1.25, Round(-1.245, 2))
	assert.Equal(t, 123.4568, Round(123.45678, 4))
	assert.True(t, math.IsNaN(Round(math.NaN(), 2)))
}

func TestAngularDelta(t *testing.T) {
	assert.InDelta(t, 2.0, AngularDelta(359, 1), 1e-12)
	assert.InDelta(t, -2.0, AngularDelta(1, 359), 1e-12)
	assert.InDelta(t, 180.0, AngularDelta(0, 180), 1e-12)
}
