package ephemeris

import (
	"context"
	"encoding/json"
	"time"

	"astrografia/src/analysis"
	"astrografia/src/helpers"
	"astrografia/src/interfaces"
	"astrografia/src/logger"
	"astrografia/src/models"
)

// RemoteEphemeris asks a FreeAstrologyAPI-compatible service for positions.
// It returns planets and the ascendant only; no house cusps.
type RemoteEphemeris struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

type remoteRequest struct {
	Year      int           `json:"year"`
	Month     int           `json:"month"`
	Date      int           `json:"date"`
	Hours     int           `json:"hours"`
	Minutes   int           `json:"minutes"`
	Seconds   int           `json:"seconds"`
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	Timezone  float64       `json:"timezone"`
	Config    remoteOptions `json:"config"`
}

type remoteOptions struct {
	ObservationPoint string `json:"observation_point"`
	Ayanamsha        string `json:"ayanamsha"`
	Language         string `json:"language"`
}

type remoteResponse struct {
	Output []struct {
		Planet struct {
			En string `json:"en"`
		} `json:"planet"`
		FullDegree *float64    `json:"fullDegree"`
		NormDegree *float64    `json:"normDegree"`
		IsRetro    interface{} `json:"isRetro"`
	} `json:"output"`
}

// -----------------------------------------------------------------------------

func NewRemoteEphemeris(cfg *models.MConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *RemoteEphemeris {
	return &RemoteEphemeris{
		Config:  cfg,
		Network: netMgr,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

func (r *RemoteEphemeris) Name() string {
	return "remote"
}

// -----------------------------------------------------------------------------

func (r *RemoteEphemeris) ComputeRaw(ctx context.Context, birth models.MBirthData) (*models.MRawChart, error) {
	if r.Config.Ephemeris.RemoteAPIKey == "" {
		return nil, helpers.NewConfigurationError("remote ephemeris api key not configured", nil)
	}

	offset, err := utcOffsetHours(birth)
	if err != nil {
		return nil, err
	}

	payload := remoteRequest{
		Year:      birth.Year,
		Month:     birth.Month,
		Date:      birth.Day,
		Hours:     birth.Hour,
		Minutes:   birth.Minute,
		Latitude:  birth.Latitude,
		Longitude: birth.Longitude,
		Timezone:  offset,
		Config: remoteOptions{
			ObservationPoint: "topocentric",
			Ayanamsha:        "tropical",
			Language:         r.Config.Ephemeris.Language,
		},
	}

	body, err := r.Network.PostJSON(ctx, r.Config.Ephemeris.RemoteURL, map[string]string{
		"x-api-key": r.Config.Ephemeris.RemoteAPIKey,
	}, payload)
	if err != nil {
		return nil, helpers.NewNetworkError("remote ephemeris request failed", err)
	}

	var resp remoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, helpers.NewInternalComputationError("unexpected remote ephemeris response", err)
	}

	wanted := make(map[string]bool)
	for _, name := range analysis.Bodies(r.Config.Ephemeris.WithPluto()) {
		wanted[name] = true
	}

	raw := &models.MRawChart{Source: r.Name()}
	for _, item := range resp.Output {
		name := item.Planet.En
		if item.FullDegree == nil {
			r.Logger.Warning("remote ephemeris returned %q without fullDegree", name)
			continue
		}
		if name == analysis.Ascendant {
			asc := *item.FullDegree
			raw.Ascendant = &asc
			raw.Cusps = []float64{asc}
			continue
		}
		if !wanted[name] {
			continue
		}
		body := models.MRawBody{Name: name, Longitude: *item.FullDegree}
		if retro, ok := parseRetro(item.IsRetro); ok {
			body.Retrograde = &retro
		}
		raw.Bodies = append(raw.Bodies, body)
	}

	if len(raw.Bodies) == 0 || raw.Ascendant == nil {
		return nil, helpers.NewInternalComputationError("remote ephemeris returned insufficient data", nil)
	}
	return raw, nil
}

// -----------------------------------------------------------------------------

func utcOffsetHours(birth models.MBirthData) (float64, error) {
	loc, err := LoadZone(birth.Timezone)
	if err != nil {
		return 0, err
	}
	_, seconds := birth.UTC.In(loc).Zone()
	return float64(seconds) / float64(time.Hour/time.Second), nil
}

// -----------------------------------------------------------------------------

// parseRetro accepts the boolean or the "true"/"false" string forms.
func parseRetro(v interface{}) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch t {
		case "true", "True":
			return true, true
		case "false", "False":
			return false, true
		}
	}
	return false, false
}
