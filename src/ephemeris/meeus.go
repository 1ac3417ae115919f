package ephemeris

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"astrografia/src/analysis"
	"astrografia/src/analysis/core"
	"astrografia/src/helpers"
	"astrografia/src/logger"
	"astrografia/src/models"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	pp "github.com/soniakeys/meeus/v3/planetposition"
	"github.com/soniakeys/meeus/v3/pluto"
	"github.com/soniakeys/meeus/v3/precess"
	"github.com/soniakeys/meeus/v3/solar"
)

// ErrNotAvailable marks a body the adapter cannot compute for this request.
var ErrNotAvailable = errors.New("body not available")

const (
	// light travel time for one AU, in days
	lightTimePerAU = 0.0057755183
	// half-window used to detect apparent retrograde motion, in days
	motionHalfWindow = 0.5
	// validity window of the Pluto series
	plutoFirstYear = 1885.0
	plutoLastYear  = 2099.0
)

var vsopIndex = map[string]int{
	analysis.Mercury: pp.Mercury,
	analysis.Venus:   pp.Venus,
	analysis.Mars:    pp.Mars,
	analysis.Jupiter: pp.Jupiter,
	analysis.Saturn:  pp.Saturn,
	analysis.Uranus:  pp.Uranus,
	analysis.Neptune: pp.Neptune,
}

// -----------------------------------------------------------------------------

// position computes the apparent geocentric ecliptic longitude (degrees, of date).
type position func(jde float64) (float64, error)

// MeeusEphemeris computes positions with the algorithms of Meeus' Astronomical
// Algorithms; planets Mercury..Neptune need VSOP87B files on EphemerisPath and
// ComputeRaw fails with a ConfigurationError while any of them is missing.
type MeeusEphemeris struct {
	Config *models.MConfig
	Logger *logger.Logger

	path        string
	withPluto   bool
	houseSystem HouseSystem

	loadOnce sync.Once
	planets  map[int]*pp.V87Planet
	earth    *pp.V87Planet

	accessors map[string]position
}

// -----------------------------------------------------------------------------

func NewMeeusEphemeris(cfg *models.MConfig, log *logger.Logger) (*MeeusEphemeris, error) {
	system, err := ParseHouseSystem(cfg.Ephemeris.HouseSystem)
	if err != nil {
		return nil, err
	}
	m := &MeeusEphemeris{
		Config:      cfg,
		Logger:      log,
		path:        cfg.Ephemeris.EphemerisPath,
		withPluto:   cfg.Ephemeris.WithPluto(),
		houseSystem: system,
		planets:     make(map[int]*pp.V87Planet),
	}
	m.accessors = map[string]position{
		analysis.Sun:  sunLongitude,
		analysis.Moon: moonLongitude,
		analysis.Pluto: func(jde float64) (float64, error) {
			return plutoLongitude(jde, m.earthPosition)
		},
	}
	for name, idx := range vsopIndex {
		idx := idx
		m.accessors[name] = func(jde float64) (float64, error) {
			return m.planetLongitude(idx, jde)
		}
	}
	return m, nil
}

// -----------------------------------------------------------------------------

func (m *MeeusEphemeris) Name() string {
	return "meeus"
}

// -----------------------------------------------------------------------------

// load reads the VSOP87B files once; missing files leave those planets unavailable
// and ComputeRaw reports the adapter as misconfigured.
func (m *MeeusEphemeris) load() {
	m.loadOnce.Do(func() {
		if m.path == "" {
			m.Logger.Warning("no ephemeris_path configured, Mercury..Neptune unavailable")
			return
		}
		if _, err := os.Stat(m.path); err != nil {
			m.Logger.Warning("ephemeris path %s unreadable: %v", m.path, err)
			return
		}
		for name, idx := range vsopIndex {
			planet, err := pp.LoadPlanetPath(idx, m.path)
			if err != nil {
				m.Logger.Warning("VSOP87 data for %s not loaded: %v", name, err)
				continue
			}
			m.planets[idx] = planet
		}
		if earth, err := pp.LoadPlanetPath(pp.Earth, m.path); err == nil {
			m.earth = earth
		} else {
			m.Logger.Warning("VSOP87 data for Earth not loaded, using solar theory: %v", err)
		}
		m.Logger.Info("loaded VSOP87 data for %d planets from %s", len(m.planets), m.path)
	})
}

// -----------------------------------------------------------------------------

// missingSeries lists the VSOP87 planets, in chart order, with no loaded series.
func (m *MeeusEphemeris) missingSeries() []string {
	var missing []string
	for _, name := range analysis.BodyOrder {
		idx, ok := vsopIndex[name]
		if !ok {
			continue
		}
		if _, loaded := m.planets[idx]; !loaded {
			missing = append(missing, name)
		}
	}
	return missing
}

// -----------------------------------------------------------------------------

// Position returns the longitude of one body through the typed accessor table.
// Unknown bodies and bodies without data yield ErrNotAvailable.
func (m *MeeusEphemeris) Position(body string, jde float64) (float64, error) {
	m.load()
	acc, ok := m.accessors[body]
	if !ok {
		return 0, ErrNotAvailable
	}
	return acc(jde)
}

// -----------------------------------------------------------------------------

func (m *MeeusEphemeris) ComputeRaw(ctx context.Context, birth models.MBirthData) (raw *models.MRawChart, err error) {
	defer func() {
		if r := recover(); r != nil {
			raw = nil
			err = helpers.NewInternalComputationError("ephemeris computation failed", fmt.Errorf("%v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.load()
	if missing := m.missingSeries(); len(missing) > 0 {
		return nil, helpers.NewConfigurationError(
			fmt.Sprintf("VSOP87 data missing under %q for %s", m.path, strings.Join(missing, ", ")), nil)
	}

	jd := JulianDay(birth)
	jde := EphemerisDay(jd)

	raw = &models.MRawChart{
		Source:   m.Name(),
		Detailed: true,
	}

	for _, name := range analysis.Bodies(m.withPluto) {
		lon, err := m.Position(name, jde)
		if errors.Is(err, ErrNotAvailable) {
			m.Logger.Warning("%s not available for %04d-%02d-%02d", name, birth.Year, birth.Month, birth.Day)
			continue
		}
		if err != nil {
			return nil, helpers.NewInternalComputationError(fmt.Sprintf("computing %s", name), err)
		}
		body := models.MRawBody{Name: name, Longitude: lon}
		if retro, ok := m.retrograde(name, jde); ok {
			body.Retrograde = &retro
		}
		raw.Bodies = append(raw.Bodies, body)
	}

	houses := ComputeHouses(jd, jde, birth.Latitude, birth.Longitude, m.houseSystem)
	asc, mc := houses.Ascendant, houses.Midheaven
	raw.Ascendant = &asc
	raw.Midheaven = &mc
	raw.Cusps = houses.Cusps[:]

	return raw, nil
}

// -----------------------------------------------------------------------------

// retrograde compares longitudes half a day either side of jde.
func (m *MeeusEphemeris) retrograde(name string, jde float64) (bool, bool) {
	before, err := m.Position(name, jde-motionHalfWindow)
	if err != nil {
		return false, false
	}
	after, err := m.Position(name, jde+motionHalfWindow)
	if err != nil {
		return false, false
	}
	return core.AngularDelta(before, after) < 0, true
}

// -----------------------------------------------------------------------------

// earthPosition returns Earth's heliocentric ecliptic coordinates of date.
func (m *MeeusEphemeris) earthPosition(jde float64) (L, B, R float64) {
	if m.earth != nil {
		l, b, r := m.earth.Position(jde)
		return l.Rad(), b.Rad(), r
	}
	T := base.J2000Century(jde)
	s, _ := solar.True(T)
	return s.Rad() + math.Pi, 0, solar.Radius(T)
}

// -----------------------------------------------------------------------------

func (m *MeeusEphemeris) planetLongitude(idx int, jde float64) (float64, error) {
	planet, ok := m.planets[idx]
	if !ok {
		return 0, ErrNotAvailable
	}
	L0, B0, R0 := m.earthPosition(jde)

	helio := func(t float64) (float64, float64, float64) {
		l, b, r := planet.Position(t)
		return l.Rad(), b.Rad(), r
	}
	lon := geocentric(helio, L0, B0, R0, jde)
	return apparent(lon, jde), nil
}

// -----------------------------------------------------------------------------

func sunLongitude(jde float64) (float64, error) {
	return core.Normalize(solar.ApparentLongitude(base.J2000Century(jde)).Deg()), nil
}

// -----------------------------------------------------------------------------

func moonLongitude(jde float64) (float64, error) {
	λ, _, _ := moonposition.Position(jde)
	return apparent(λ.Deg(), jde), nil
}

// -----------------------------------------------------------------------------

func plutoLongitude(jde float64, earth func(float64) (float64, float64, float64)) (float64, error) {
	year := base.JDEToJulianYear(jde)
	if year < plutoFirstYear || year > plutoLastYear {
		return 0, ErrNotAvailable
	}
	L0, B0, R0 := earth(jde)
	epoch := base.JDEToJulianYear(jde)

	// Heliocentric is J2000; bring it to the equinox of date.
	helio := func(t float64) (float64, float64, float64) {
		l, b, r := pluto.Heliocentric(t)
		to := precess.EclipticPosition(&coord.Ecliptic{Lon: l, Lat: b}, &coord.Ecliptic{}, 2000, epoch, 0, 0)
		return to.Lon.Rad(), to.Lat.Rad(), r
	}
	lon := geocentric(helio, L0, B0, R0, jde)
	return apparent(lon, jde), nil
}

// -----------------------------------------------------------------------------

// geocentric converts heliocentric coordinates to a geocentric longitude in
// degrees, with one light-time correction.
func geocentric(helio func(float64) (float64, float64, float64), L0, B0, R0, jde float64) float64 {
	x0 := R0 * math.Cos(B0) * math.Cos(L0)
	y0 := R0 * math.Cos(B0) * math.Sin(L0)
	z0 := R0 * math.Sin(B0)

	var x, y float64
	t := jde
	for i := 0; i < 2; i++ {
		L, B, R := helio(t)
		x = R*math.Cos(B)*math.Cos(L) - x0
		y = R*math.Cos(B)*math.Sin(L) - y0
		z := R*math.Sin(B) - z0
		t = jde - lightTimePerAU*math.Sqrt(x*x+y*y+z*z)
	}
	return math.Atan2(y, x) * 180 / math.Pi
}

// -----------------------------------------------------------------------------

// apparent adds nutation in longitude to a mean-of-date longitude.
func apparent(lonDeg, jde float64) float64 {
	Δψ, _ := nutation.Nutation(jde)
	return core.Normalize(lonDeg + Δψ.Deg())
}
