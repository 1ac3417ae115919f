package analysis

import (
	"context"
	"time"

	"astrografia/src/helpers"
	"astrografia/src/interfaces"
	"astrografia/src/logger"
	"astrografia/src/models"
)

// AnalysisFacade runs the ephemeris and assembles the labelled chart.
type AnalysisFacade struct {
	Config    *models.MConfig
	Ephemeris interfaces.IEphemeris
	Logger    *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAnalysisFacade(cfg *models.MConfig, eph interfaces.IEphemeris, log *logger.Logger) *AnalysisFacade {
	return &AnalysisFacade{
		Config:    cfg,
		Ephemeris: eph,
		Logger:    log,
	}
}

// -----------------------------------------------------------------------------

// ComputeChart is the full pipeline for one birth request.
func (a *AnalysisFacade) ComputeChart(ctx context.Context, birth models.MBirthData) (*models.MChart, error) {
	if a.Ephemeris == nil {
		return nil, helpers.NewInternalComputationError("no ephemeris configured", nil)
	}

	start := time.Now()
	raw, err := a.Ephemeris.ComputeRaw(ctx, birth)
	if err != nil {
		return nil, err
	}

	chart, err := Assemble(raw, a.Logger)
	if err != nil {
		a.Logger.Error("assembling chart for %s failed: %v", birth.Name, err)
		return nil, err
	}

	chart.Meta.Name = birth.Name
	chart.Meta.City = birth.City
	chart.Meta.UTC = birth.UTC.Format(time.RFC3339)

	a.Logger.Debug("chart for %s computed by %s in %v", birth.Name, raw.Source, time.Since(start))
	return chart, nil
}

// -----------------------------------------------------------------------------

// ComputeNow charts the sky at instant now for an observer at lat/lon.
func (a *AnalysisFacade) ComputeNow(ctx context.Context, now time.Time, lat, lon float64, tz string) (*models.MChart, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil || tz == "" || tz == "Local" {
		return nil, helpers.NewUnknownTimezoneError(tz, err)
	}
	local := now.In(loc).Truncate(time.Minute)
	birth := models.MBirthData{
		Name:      "Sky",
		Year:      local.Year(),
		Month:     int(local.Month()),
		Day:       local.Day(),
		Hour:      local.Hour(),
		Minute:    local.Minute(),
		Latitude:  lat,
		Longitude: lon,
		Timezone:  tz,
		City:      "N/A",
		UTC:       local.UTC(),
	}
	return a.ComputeChart(ctx, birth)
}
