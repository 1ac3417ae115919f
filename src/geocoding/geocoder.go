package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"astrografia/src/helpers"
	"astrografia/src/interfaces"
	"astrografia/src/logger"
	"astrografia/src/models"

	lru "github.com/hashicorp/golang-lru/v2"
)

const resultCacheSize = 256

type openCageResponse struct {
	Results []struct {
		Formatted string `json:"formatted"`
		Geometry  *struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"geometry"`
		Annotations struct {
			Timezone *struct {
				Name      string   `json:"name"`
				OffsetSec *float64 `json:"offset_sec"`
			} `json:"timezone"`
		} `json:"annotations"`
	} `json:"results"`
}

type nominatimItem struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// -----------------------------------------------------------------------------

// Geocoder resolves place names, OpenCage first when keyed, Nominatim otherwise.
type Geocoder struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
	cache   *lru.Cache[string, models.MGeoLocation]
}

func NewGeocoder(cfg *models.MConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *Geocoder {
	cache, _ := lru.New[string, models.MGeoLocation](resultCacheSize)
	return &Geocoder{
		Config:  cfg,
		Network: netMgr,
		Logger:  log,
		cache:   cache,
	}
}

// -----------------------------------------------------------------------------

func (g *Geocoder) Geocode(ctx context.Context, place string) (*models.MGeoLocation, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return nil, helpers.NewValidationError("place", "missing required fields: place")
	}
	key := strings.ToLower(place)
	if loc, ok := g.cache.Get(key); ok {
		return &loc, nil
	}

	if g.Config.Geocoding.OpenCageKey != "" {
		loc, err := g.openCage(ctx, place)
		if err != nil {
			g.Logger.Warning("OpenCage lookup for %q failed: %v", place, err)
		} else if loc != nil {
			g.cache.Add(key, *loc)
			return loc, nil
		}
	}

	loc, err := g.nominatim(ctx, place)
	if err != nil {
		g.Logger.Warning("Nominatim lookup for %q failed: %v", place, err)
	}
	if loc == nil {
		return nil, helpers.NewNotFoundError("location not found")
	}
	g.cache.Add(key, *loc)
	return loc, nil
}

// -----------------------------------------------------------------------------

func (g *Geocoder) openCage(ctx context.Context, place string) (*models.MGeoLocation, error) {
	body, err := g.Network.Get(ctx, g.Config.Geocoding.OpenCageURL, map[string]string{
		"q":              place,
		"key":            g.Config.Geocoding.OpenCageKey,
		"language":       g.Config.Ephemeris.Language,
		"limit":          "1",
		"no_annotations": "0",
	})
	if err != nil {
		return nil, err
	}

	var resp openCageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding OpenCage response: %w", err)
	}
	if len(resp.Results) == 0 || resp.Results[0].Geometry == nil {
		return nil, nil
	}

	first := resp.Results[0]
	loc := &models.MGeoLocation{
		Lat:         first.Geometry.Lat,
		Lng:         first.Geometry.Lng,
		Formatted:   first.Formatted,
		OffsetHours: approximateOffset(first.Geometry.Lng),
		Source:      "opencage",
	}
	if tz := first.Annotations.Timezone; tz != nil {
		loc.Timezone = tz.Name
		if tz.OffsetSec != nil {
			loc.OffsetHours = *tz.OffsetSec / 3600
		}
	}
	return loc, nil
}

// -----------------------------------------------------------------------------

func (g *Geocoder) nominatim(ctx context.Context, place string) (*models.MGeoLocation, error) {
	body, err := g.Network.Get(ctx, g.Config.Geocoding.NominatimURL, map[string]string{
		"q":      place,
		"format": "json",
		"limit":  "1",
	})
	if err != nil {
		return nil, err
	}

	var items []nominatimItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decoding Nominatim response: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	lat, errLat := strconv.ParseFloat(items[0].Lat, 64)
	lng, errLng := strconv.ParseFloat(items[0].Lon, 64)
	if errLat != nil || errLng != nil || math.IsNaN(lat) || math.IsNaN(lng) {
		return nil, fmt.Errorf("unusable Nominatim coordinates %q,%q", items[0].Lat, items[0].Lon)
	}

	return &models.MGeoLocation{
		Lat:         lat,
		Lng:         lng,
		Formatted:   items[0].DisplayName,
		OffsetHours: approximateOffset(lng),
		Source:      "nominatim",
	}, nil
}

// -----------------------------------------------------------------------------

// approximateOffset guesses the UTC offset from longitude in quarter hours.
func approximateOffset(lng float64) float64 {
	return math.Floor(lng/15*4+0.5) / 4
}
