package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"astrografia/src/analysis"
	"astrografia/src/auth"
	"astrografia/src/ephemeris"
	"astrografia/src/helpers"
	"astrografia/src/logger"
	"astrografia/src/models"
	"astrografia/src/narrative"
	"astrografia/src/storage"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGeocoder struct{}

func (fakeGeocoder) Geocode(ctx context.Context, place string) (*models.MGeoLocation, error) {
	if strings.TrimSpace(place) == "" {
		return nil, helpers.NewValidationError("place", "missing required fields: place")
	}
	if place == "São Paulo" {
		return &models.MGeoLocation{Lat: -23.55, Lng: -46.63, Timezone: "America/Sao_Paulo", OffsetHours: -3, Source: "fake"}, nil
	}
	return nil, helpers.NewNotFoundError("location not found")
}

// housedApprox adds Porphyry cusps to the mean-motion chart so handlers see
// a complete chart without VSOP87 files on disk.
type housedApprox struct {
	*ephemeris.ApproxEphemeris
}

func (h housedApprox) ComputeRaw(ctx context.Context, birth models.MBirthData) (*models.MRawChart, error) {
	raw, err := h.ApproxEphemeris.ComputeRaw(ctx, birth)
	if err != nil {
		return nil, err
	}
	jd := ephemeris.JulianDay(birth)
	houses := ephemeris.ComputeHouses(jd, ephemeris.EphemerisDay(jd), birth.Latitude, birth.Longitude, ephemeris.Porphyry)
	raw.Ascendant = &houses.Ascendant
	raw.Midheaven = &houses.Midheaven
	raw.Cusps = houses.Cusps[:]
	return raw, nil
}

// -----------------------------------------------------------------------------

func newTestServer(t *testing.T) *APIServer {
	t.Helper()
	withPluto := true
	cfg := &models.MConfig{
		Host:        "127.0.0.1",
		Port:        5000,
		CORSOrigins: []string{"http://localhost:3000"},
		Storage:     models.MStorageConfig{DBType: "sqlite", DBPath: filepath.Join(t.TempDir(), "api.db")},
		Ephemeris:   models.MEphemerisConfig{IncludePluto: &withPluto, HouseSystem: "porphyry"},
		Auth:        models.MAuthConfig{JWTSecret: "test-secret", AccessTTLMinutes: 60, RefreshTTLDays: 30},
		Sky:         models.MSkyConfig{HistorySize: 5},
	}
	log := logger.NewNop()

	db, err := storage.NewAsyncSQLiteDB(cfg, log)
	require.NoError(t, err)
	require.NoError(t, db.Initialize())
	t.Cleanup(func() { db.Close() })

	meeus, err := ephemeris.NewMeeusEphemeris(cfg, log)
	require.NoError(t, err)
	chain := ephemeris.NewChain(log, meeus, housedApprox{ephemeris.NewApproxEphemeris(cfg)})

	s := NewAPIServer(cfg, Dependencies{
		Facade:      analysis.NewAnalysisFacade(cfg, chain, log),
		Database:    db,
		Tokens:      auth.NewTokenManager(cfg.Auth),
		Interpreter: narrative.NewInterpreter(narrative.NewTemplateNarrator(), 0, log),
		Geocoder:    fakeGeocoder{},
	}, log)
	t.Cleanup(func() { s.Stop() })
	return s
}

func do(s *APIServer, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

const positionsQuery = "/api/astro/positions?date=1990-05-15&time=10:30&lat=-23.5505&lon=-46.6333&tz=America/Sao_Paulo"

// -----------------------------------------------------------------------------

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := do(s, http.MethodGet, "/api/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var out map[string]interface{}
	decode(t, w, &out)
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, "ok", out["database"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/astro/positions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

// -----------------------------------------------------------------------------

func TestPositions(t *testing.T) {
	s := newTestServer(t)
	w := do(s, http.MethodGet, positionsQuery+"&name=Ana&city=S%C3%A3o%20Paulo", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var chart models.MChart
	decode(t, w, &chart)
	require.NotEmpty(t, chart.Planets)
	assert.Equal(t, "Sun", chart.Planets[0].Name)
	assert.Equal(t, "Taurus", chart.Planets[0].Sign)
	assert.Len(t, chart.Houses, 12)
	assert.True(t, analysis.IsSignName(chart.Ascendant.Sign))
	assert.Equal(t, "Ana", chart.Meta.Name)
	assert.Equal(t, "São Paulo", chart.Meta.City)
	assert.Equal(t, "approx", chart.Meta.Source)
}

func TestPositionsPostAcceptsNumbers(t *testing.T) {
	s := newTestServer(t)
	w := do(s, http.MethodPost, "/api/astro/positions", map[string]interface{}{
		"date": "1990-05-15", "time": "10:30", "lat": -23.5505, "lon": -46.6333, "tz": "America/Sao_Paulo",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestPositionsValidation(t *testing.T) {
	s := newTestServer(t)
	cases := map[string]string{
		strings.Replace(positionsQuery, "America/Sao_Paulo", "Invalid/Timezone", 1): "invalid or unknown timezone: Invalid/Timezone",
		strings.Replace(positionsQuery, "&lat=-23.5505", "", 1):                     "missing required fields: lat",
		strings.Replace(positionsQuery, "10:30", "25:00", 1):                        "invalid time format, expected HH:MM",
		strings.Replace(positionsQuery, "lat=-23.5505", "lat=-95", 1):               "latitude out of range",
	}
	for path, message := range cases {
		w := do(s, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		var out map[string]string
		decode(t, w, &out)
		assert.Equal(t, message, out["error"])
	}

	w := do(s, http.MethodPost, "/api/astro/positions", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// -----------------------------------------------------------------------------

func TestInterpretChart(t *testing.T) {
	s := newTestServer(t)
	body := map[string]interface{}{
		"name": "Ana", "date": "1990-05-15", "time": "10:30", "lat": "-23.5505", "lon": "-46.6333",
		"tz": "America/Sao_Paulo", "theme": "amor",
	}
	w := do(s, http.MethodPost, "/api/interpret/chart", body, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out models.MNarrative
	decode(t, w, &out)
	assert.Equal(t, "love life", out.Section)
	assert.Contains(t, out.Markdown, "Ana")
	assert.Contains(t, out.HTML, "<h2>")
	require.NotNil(t, out.Chart)

	body["theme"] = "weather"
	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodPost, "/api/interpret/chart", body, "").Code)
	delete(body, "theme")
	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodPost, "/api/interpret/chart", body, "").Code)
}

func TestGeoCoordinates(t *testing.T) {
	s := newTestServer(t)
	w := do(s, http.MethodGet, "/api/geo/coordinates?place=S%C3%A3o%20Paulo", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var loc models.MGeoLocation
	decode(t, w, &loc)
	assert.Equal(t, "America/Sao_Paulo", loc.Timezone)

	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/api/geo/coordinates?place=Atlantis", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodGet, "/api/geo/coordinates", nil, "").Code)
}

// -----------------------------------------------------------------------------

func login(t *testing.T, s *APIServer, email, password string) models.MTokenPair {
	t.Helper()
	w := do(s, http.MethodPost, "/api/auth/register", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(s, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var pair models.MTokenPair
	decode(t, w, &pair)
	return pair
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	pair := login(t, s, "Ana@Example.com", "s3cret")

	w := do(s, http.MethodPost, "/api/auth/register", map[string]string{"email": "ana@example.com", "password": "x"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(s, http.MethodPost, "/api/auth/register", map[string]string{"email": "b@example.com"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(s, http.MethodPost, "/api/auth/login", map[string]string{"email": "ana@example.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = do(s, http.MethodPost, "/api/auth/login", map[string]string{"email": "nobody@example.com", "password": "x"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(s, http.MethodGet, "/api/auth/protected", nil, pair.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	var me map[string]interface{}
	decode(t, w, &me)
	assert.Equal(t, "ana@example.com", me["logged_in_as"])

	assert.Equal(t, http.StatusUnauthorized, do(s, http.MethodGet, "/api/auth/protected", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(s, http.MethodGet, "/api/auth/protected", nil, pair.RefreshToken).Code)

	w = do(s, http.MethodPost, "/api/auth/refresh", nil, pair.RefreshToken)
	require.Equal(t, http.StatusOK, w.Code)
	var refreshed models.MTokenPair
	decode(t, w, &refreshed)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/api/auth/protected", nil, refreshed.AccessToken).Code)
}

func TestProtectedUnknownUser(t *testing.T) {
	s := newTestServer(t)
	token, err := s.deps.Tokens.Issue(404, auth.Access)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/api/auth/protected", nil, token).Code)
}

// -----------------------------------------------------------------------------

func TestPerspectives(t *testing.T) {
	s := newTestServer(t)
	pair := login(t, s, "p@example.com", "pw")

	w := do(s, http.MethodPost, "/api/perspectives", map[string]string{"text": ""}, pair.AccessToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var firstID int64
	for i := 1; i <= 3; i++ {
		w = do(s, http.MethodPost, "/api/perspectives", map[string]string{"text": fmt.Sprintf("question %d", i)}, pair.AccessToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var created struct {
			Msg         string              `json:"msg"`
			Perspective models.MPerspective `json:"perspective"`
		}
		decode(t, w, &created)
		assert.NotEmpty(t, created.Perspective.ResponseMD)
		if i == 1 {
			firstID = created.Perspective.ID
		}
	}

	w = do(s, http.MethodGet, "/api/perspectives?page=1&per_page=2", nil, pair.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	var page models.MPerspectivePage
	decode(t, w, &page)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Pages)
	assert.True(t, page.HasNext)
	assert.Equal(t, "question 3", page.Perspectives[0].Text)

	w = do(s, http.MethodGet, fmt.Sprintf("/api/interpret/perspective/%d", firstID), nil, pair.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	var interp map[string]interface{}
	decode(t, w, &interp)
	assert.Equal(t, "question 1", interp["text"])
	assert.Contains(t, interp["interpretation_html"], "<h2>")

	other := login(t, s, "other@example.com", "pw")
	w = do(s, http.MethodGet, fmt.Sprintf("/api/interpret/perspective/%d", firstID), nil, other.AccessToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/api/interpret/perspective/abc", nil, other.AccessToken).Code)
	assert.Equal(t, http.StatusUnauthorized, do(s, http.MethodGet, "/api/perspectives", nil, "").Code)
}

// -----------------------------------------------------------------------------

func snapshot(ts int64) *models.MSkySnapshot {
	return &models.MSkySnapshot{Timestamp: ts, Chart: &models.MChart{Ascendant: models.MAngle{Sign: "Aries"}}}
}

func TestSkyEndpoints(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/api/sky/current", nil, "").Code)

	for ts := int64(1); ts <= 7; ts++ {
		s.UpdateAllDatas(snapshot(ts))
	}

	w := do(s, http.MethodGet, "/api/sky/current", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var current models.MSkySnapshot
	decode(t, w, &current)
	assert.Equal(t, int64(7), current.Timestamp)
	assert.Equal(t, "UPDATE", current.Type)

	w = do(s, http.MethodGet, "/api/sky/history?limit=2", nil, "")
	var history models.MSkyHistory
	decode(t, w, &history)
	require.Len(t, history.Snapshots, 2)
	assert.Equal(t, int64(6), history.Snapshots[0].Timestamp)

	w = do(s, http.MethodGet, "/api/sky/history", nil, "")
	decode(t, w, &history)
	assert.Len(t, history.Snapshots, 5)
}

func TestWebSocketFeed(t *testing.T) {
	s := newTestServer(t)
	s.RunHub()
	s.UpdateAllDatas(snapshot(1))

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var initial models.MSkySnapshot
	require.NoError(t, conn.ReadJSON(&initial))
	assert.Equal(t, "INITIAL", initial.Type)
	assert.Equal(t, int64(1), initial.Timestamp)

	s.Broadcast(snapshot(2))
	var update models.MSkySnapshot
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, "UPDATE", update.Type)
	assert.Equal(t, int64(2), update.Timestamp)

	require.NoError(t, conn.WriteJSON(models.MClientCommand{Command: "history", Limit: 10}))
	var history models.MSkyHistory
	require.NoError(t, conn.ReadJSON(&history))
	assert.Equal(t, "HISTORY", history.Type)
	assert.Len(t, history.Snapshots, 2)

	assert.Eventually(t, func() bool { return s.connections.Load() == 1 }, time.Second, 10*time.Millisecond)
}
