package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"astrografia/src/helpers"
	"astrografia/src/logger"
	"astrografia/src/models"
	"astrografia/src/network"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleChart() *models.MChart {
	retro := true
	return &models.MChart{
		Planets: []models.MPlanet{
			{Name: "Sun", Sign: "Taurus", SignDegree: 24.5},
			{Name: "Mercury", Sign: "Taurus", SignDegree: 3, Retrograde: &retro},
		},
		Ascendant: models.MAngle{Sign: "Cancer", Degree: 5.5},
	}
}

// -----------------------------------------------------------------------------

func TestResolveTheme(t *testing.T) {
	theme, err := ResolveTheme("amor")
	require.NoError(t, err)
	assert.Equal(t, "love", theme.Key)

	theme, err = ResolveTheme(" Career ")
	require.NoError(t, err)
	assert.Equal(t, "professional life", theme.Section)

	_, err = ResolveTheme("astronomy")
	assert.True(t, helpers.IsValidation(err))
	assert.Len(t, ThemeKeys(), 6)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "Consulente", SanitizeName(""))
	assert.Equal(t, "Consulente", SanitizeName("1234"))
	assert.Equal(t, "Ana O'Neil-Souza", SanitizeName("  Ana   O'Neil-Souza!! "))
	assert.Equal(t, "João", SanitizeName("João 42"))
	assert.Len(t, []rune(SanitizeName(strings.Repeat("a", 100))), 60)
}

func TestBuildPrompt(t *testing.T) {
	chart := sampleChart()
	prompt := BuildPrompt(models.MNarrativeRequest{
		Name:      "Ana",
		Theme:     "carreira",
		Ascendant: chart.Ascendant,
		Planets:   chart.Planets,
	})
	assert.Contains(t, prompt, "professional life for Ana")
	assert.Contains(t, prompt, "Sun in Taurus 24.50°")
	assert.Contains(t, prompt, "Mercury in Taurus 3.00° (retrograde)")
	assert.Contains(t, prompt, "Ascendant in Cancer 5.50°")

	free := BuildPrompt(models.MNarrativeRequest{FreeText: "Should I move abroad?"})
	assert.Contains(t, free, "Consulente")
	assert.Contains(t, free, "Should I move abroad?")
}

// -----------------------------------------------------------------------------

func TestTemplateNarrator(t *testing.T) {
	chart := sampleChart()
	md, err := NewTemplateNarrator().Generate(context.Background(), models.MNarrativeRequest{
		Name: "Ana", Theme: "love", Ascendant: chart.Ascendant, Planets: chart.Planets,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(md, "## Love life for Ana"))
	assert.Contains(t, md, "**Cancer**")

	long := strings.Repeat("x", 150)
	md, err = NewTemplateNarrator().Generate(context.Background(), models.MNarrativeRequest{FreeText: long})
	require.NoError(t, err)
	assert.Contains(t, md, strings.Repeat("x", 100)+"…")
	assert.NotContains(t, md, strings.Repeat("x", 101))
}

func TestToHTML(t *testing.T) {
	html, err := ToHTML("## Title\nline one\nline two\n\n<script>alert(1)</script>")
	require.NoError(t, err)
	assert.Contains(t, html, "<h2>Title</h2>")
	assert.Contains(t, html, "<br>")
	assert.NotContains(t, html, "<script>")
}

// -----------------------------------------------------------------------------

type flakyNarrator struct {
	failures int32
	calls    atomic.Int32
}

func (f *flakyNarrator) Name() string { return "flaky" }

func (f *flakyNarrator) Generate(ctx context.Context, req models.MNarrativeRequest) (string, error) {
	if f.calls.Add(1) <= f.failures {
		return "", errors.New("upstream unavailable")
	}
	return "## ok", nil
}

func newInterpreter(n *flakyNarrator, retries int) *Interpreter {
	i := NewInterpreter(n, retries, logger.NewNop())
	i.ErrorHandler.BaseDelay = time.Millisecond
	return i
}

func TestInterpreterRetries(t *testing.T) {
	n := &flakyNarrator{failures: 1}
	md, ok := newInterpreter(n, 2).Interpret(context.Background(), models.MNarrativeRequest{FreeText: "hi"})
	assert.True(t, ok)
	assert.Equal(t, "## ok", md)
	assert.Equal(t, int32(2), n.calls.Load())
}

func TestInterpreterApologizes(t *testing.T) {
	n := &flakyNarrator{failures: 10}
	md, ok := newInterpreter(n, 1).Interpret(context.Background(), models.MNarrativeRequest{FreeText: "hi"})
	assert.False(t, ok)
	assert.Equal(t, Apology, md)
	assert.Equal(t, int32(2), n.calls.Load())
}

func TestInterpretChart(t *testing.T) {
	i := NewInterpreter(NewTemplateNarrator(), 0, logger.NewNop())
	out, err := i.InterpretChart(context.Background(), "Ana", "familia", sampleChart())
	require.NoError(t, err)
	assert.Equal(t, "family relationships", out.Section)
	assert.Contains(t, out.HTML, "<h2>")
	assert.NotNil(t, out.Chart)

	_, err = i.InterpretChart(context.Background(), "Ana", "weather", sampleChart())
	assert.True(t, helpers.IsValidation(err))
}

// -----------------------------------------------------------------------------

func TestOpenAINarrator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req.Model)
		assert.Equal(t, 400, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Your Sun shines.  "}}]}`))
	}))
	defer srv.Close()

	netMgr := network.NewAsyncNetworkManager(&models.MConfig{Network: models.MNetworkConfig{RequestTimeout: 5}}, logger.NewNop())
	n := NewOpenAINarrator(models.MNarrativeConfig{
		Model: "gpt-4o", APIKey: "sk-test", BaseURL: srv.URL + "/v1/", MaxTokens: 400, Temperature: 0.85,
	}, netMgr)

	text, err := n.Generate(context.Background(), models.MNarrativeRequest{Name: "Ana", Theme: "love", Planets: sampleChart().Planets})
	require.NoError(t, err)
	assert.Equal(t, "Your Sun shines.", text)

	_, err = NewOpenAINarrator(models.MNarrativeConfig{}, netMgr).Generate(context.Background(), models.MNarrativeRequest{})
	assert.Error(t, err)
}

func TestNewNarrator(t *testing.T) {
	n, err := NewNarrator(models.MNarrativeConfig{Provider: "gemini"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "gemini", n.Name())

	_, err = n.Generate(context.Background(), models.MNarrativeRequest{})
	assert.Error(t, err)

	_, err = NewNarrator(models.MNarrativeConfig{Provider: "oracle"}, nil)
	assert.Error(t, err)
}
