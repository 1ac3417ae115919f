package narrative

import (
	"context"
	"fmt"

	"astrografia/src/helpers"
	"astrografia/src/interfaces"
	"astrografia/src/logger"
	"astrografia/src/models"
)

const Apology = "We could not generate your interpretation right now. Please try again later."

// Interpreter runs a narrator with retries and never surfaces narrator failures.
type Interpreter struct {
	Narrator     interfaces.INarrator
	ErrorHandler *helpers.ErrorHandler
	Logger       *logger.Logger
	Retries      int
}

func NewInterpreter(narrator interfaces.INarrator, retries int, log *logger.Logger) *Interpreter {
	return &Interpreter{
		Narrator:     narrator,
		ErrorHandler: helpers.NewErrorHandler(log),
		Logger:       log,
		Retries:      retries,
	}
}

// -----------------------------------------------------------------------------

// Interpret returns the generated markdown, or the apology and false.
func (i *Interpreter) Interpret(ctx context.Context, req models.MNarrativeRequest) (string, bool) {
	res, err := i.ErrorHandler.ExecuteWithRetry(ctx, "narrative "+i.Narrator.Name(), func() (interface{}, error) {
		return i.Narrator.Generate(ctx, req)
	}, i.Retries+1)
	if err != nil {
		i.Logger.Error("interpretation for %s failed: %v", SanitizeName(req.Name), err)
		return Apology, false
	}
	return res.(string), true
}

// -----------------------------------------------------------------------------

// InterpretChart builds the themed reading for a chart.
func (i *Interpreter) InterpretChart(ctx context.Context, name, theme string, chart *models.MChart) (*models.MNarrative, error) {
	t, err := ResolveTheme(theme)
	if err != nil {
		return nil, err
	}
	md, _ := i.Interpret(ctx, models.MNarrativeRequest{
		Name:      name,
		Theme:     t.Key,
		Ascendant: chart.Ascendant,
		Planets:   chart.Planets,
	})
	html, err := ToHTML(md)
	if err != nil {
		return nil, helpers.NewInternalComputationError("rendering narrative", err)
	}
	return &models.MNarrative{
		Section:  t.Section,
		Markdown: md,
		HTML:     html,
		Chart:    chart,
	}, nil
}

// -----------------------------------------------------------------------------

// NewNarrator selects the provider named in the narrative config.
func NewNarrator(cfg models.MNarrativeConfig, netMgr interfaces.INetworkManager) (interfaces.INarrator, error) {
	switch cfg.Provider {
	case "template", "":
		return NewTemplateNarrator(), nil
	case "openai":
		return NewOpenAINarrator(cfg, netMgr), nil
	case "gemini":
		return NewGeminiNarrator(cfg), nil
	}
	return nil, fmt.Errorf("unknown narrative provider: %s", cfg.Provider)
}
