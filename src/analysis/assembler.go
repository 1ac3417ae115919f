package analysis

import (
	"fmt"
	"math"

	"astrografia/src/analysis/core"
	"astrografia/src/helpers"
	"astrografia/src/logger"
	"astrografia/src/models"
)

const houseCount = 12

// -----------------------------------------------------------------------------

// Assemble turns raw longitudes into the labelled chart.
// A body with an unusable longitude is dropped with a warning; a missing
// ascendant fails the whole chart.
func Assemble(raw *models.MRawChart, log *logger.Logger) (*models.MChart, error) {
	if raw == nil {
		return nil, helpers.NewInternalComputationError("empty ephemeris result", nil)
	}
	if log == nil {
		log = logger.NewNop()
	}

	byName := make(map[string]models.MRawBody, len(raw.Bodies))
	for _, b := range raw.Bodies {
		byName[b.Name] = b
	}

	planets := make([]models.MPlanet, 0, len(BodyOrder))
	for _, name := range BodyOrder {
		body, ok := byName[name]
		if !ok {
			continue
		}
		planet, err := assemblePlanet(body, raw.Detailed)
		if err != nil {
			log.Warning("skipping %s: %v", name, err)
			continue
		}
		planets = append(planets, planet)
	}

	asc, ok := ascendantOf(raw)
	if !ok {
		return nil, helpers.NewInternalComputationError("ascendant could not be computed", nil)
	}
	chart := &models.MChart{
		Planets:   planets,
		Ascendant: assembleAngle(asc, Ascendant),
		Houses:    []models.MHouse{},
		Meta:      models.MChartMeta{Source: raw.Source},
	}

	if raw.Midheaven != nil && finite(*raw.Midheaven) {
		mc := assembleAngle(*raw.Midheaven, Midheaven)
		chart.Midheaven = &mc
	}

	if len(raw.Cusps) == houseCount {
		for i, cusp := range raw.Cusps {
			if !finite(cusp) {
				log.Warning("house %d cusp is not finite, dropping houses", i+1)
				chart.Houses = []models.MHouse{}
				break
			}
			sign, deg := SignOf(cusp)
			chart.Houses = append(chart.Houses, models.MHouse{
				House:     i + 1,
				Sign:      sign.Name,
				Degree:    deg,
				AbsDegree: core.AbsoluteDegree(cusp, 4),
			})
		}
	} else if len(raw.Cusps) > 1 {
		log.Warning("expected %d house cusps, got %d", houseCount, len(raw.Cusps))
	}

	return chart, nil
}

// -----------------------------------------------------------------------------

func assemblePlanet(body models.MRawBody, detailed bool) (models.MPlanet, error) {
	if !finite(body.Longitude) {
		return models.MPlanet{}, fmt.Errorf("longitude %v is not finite", body.Longitude)
	}
	sign, deg := SignOf(body.Longitude)
	p := models.MPlanet{
		Name:       body.Name,
		Sign:       sign.Name,
		SignName:   sign.NamePT,
		Degree:     core.AbsoluteDegree(body.Longitude, 2),
		SignDegree: deg,
		Retrograde: body.Retrograde,
		Icon:       Icon(body.Name),
	}
	if detailed {
		p.Element = sign.Element
		p.Quality = sign.Quality
	}
	return p, nil
}

// -----------------------------------------------------------------------------

func assembleAngle(longitude float64, name string) models.MAngle {
	sign, deg := SignOf(longitude)
	return models.MAngle{
		Sign:      sign.Name,
		SignName:  sign.NamePT,
		Degree:    deg,
		AbsDegree: core.AbsoluteDegree(longitude, 4),
		Icon:      Icon(name),
	}
}

// -----------------------------------------------------------------------------

func ascendantOf(raw *models.MRawChart) (float64, bool) {
	if raw.Ascendant != nil {
		return *raw.Ascendant, finite(*raw.Ascendant)
	}
	if len(raw.Cusps) == 0 {
		return 0, false
	}
	return raw.Cusps[0], finite(raw.Cusps[0])
}

// -----------------------------------------------------------------------------

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
