package narrative

import (
	"context"
	"fmt"
	"strings"

	"astrografia/src/analysis"
	"astrografia/src/models"
)

// TemplateNarrator writes a fixed markdown reading without any external call.
type TemplateNarrator struct{}

func NewTemplateNarrator() *TemplateNarrator {
	return &TemplateNarrator{}
}

// -----------------------------------------------------------------------------

func (t *TemplateNarrator) Name() string {
	return "template"
}

// -----------------------------------------------------------------------------

func (t *TemplateNarrator) Generate(ctx context.Context, req models.MNarrativeRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := SanitizeName(req.Name)
	var b strings.Builder

	if len(req.Planets) == 0 {
		fmt.Fprintf(&b, "## A perspective for %s\n\n", name)
		if req.FreeText != "" {
			fmt.Fprintf(&b, "> %s\n\n", truncateRunes(req.FreeText, echoRunes))
		}
		b.WriteString("Every question carries its own season. Give this one time and attention, and notice what it teaches you.\n")
		return b.String(), nil
	}

	section := req.Theme
	if theme, err := ResolveTheme(req.Theme); err == nil {
		section = theme.Section
	}
	if section == "" {
		section = "your reading"
	}
	fmt.Fprintf(&b, "## %s for %s\n\n", strings.ToUpper(section[:1])+section[1:], name)

	if req.Ascendant.Sign != "" {
		fmt.Fprintf(&b, "With the ascendant in **%s**, you meet the world through its qualities.\n\n", req.Ascendant.Sign)
	}
	for _, p := range req.Planets {
		fmt.Fprintf(&b, "- %s %s\n", analysis.Icon(p.Name), PlanetLine(p))
	}
	if req.FreeText != "" {
		fmt.Fprintf(&b, "\n> %s\n", truncateRunes(req.FreeText, echoRunes))
	}
	return b.String(), nil
}
