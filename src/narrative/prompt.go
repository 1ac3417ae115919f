package narrative

import (
	"fmt"
	"strings"
	"unicode"

	"astrografia/src/models"
)

const (
	DefaultSubject = "Consulente"
	maxNameRunes   = 60
	echoRunes      = 100

	systemInstruction = "You are a direct, warm and sensitive astrologer. Answer in Markdown."
)

// SanitizeName keeps letters, spaces, apostrophes and hyphens.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || r == ' ' || r == '\'' || r == '-' {
			b.WriteRune(r)
		}
	}
	clean := strings.Join(strings.Fields(b.String()), " ")
	if runes := []rune(clean); len(runes) > maxNameRunes {
		clean = strings.TrimSpace(string(runes[:maxNameRunes]))
	}
	if clean == "" {
		return DefaultSubject
	}
	return clean
}

// -----------------------------------------------------------------------------

// PlanetLine formats one body as "Sun in Taurus 24.50°".
func PlanetLine(p models.MPlanet) string {
	line := fmt.Sprintf("%s in %s %.2f°", p.Name, p.Sign, p.SignDegree)
	if p.Retrograde != nil && *p.Retrograde {
		line += " (retrograde)"
	}
	return line
}

// -----------------------------------------------------------------------------

// BuildPrompt renders the user prompt for a chart or a free-text perspective.
func BuildPrompt(req models.MNarrativeRequest) string {
	name := SanitizeName(req.Name)
	var b strings.Builder

	if req.FreeText != "" && len(req.Planets) == 0 {
		fmt.Fprintf(&b, "Offer a short astrological reflection (one paragraph) for %s on this perspective:\n\n", name)
		b.WriteString(strings.TrimSpace(req.FreeText))
		b.WriteString("\n\nUse warm, objective and inspiring language without technical terms.")
		return b.String()
	}

	section := req.Theme
	if t, err := ResolveTheme(req.Theme); err == nil {
		section = t.Section
	}

	fmt.Fprintf(&b, "Based on the planetary positions below, write a brief text (one paragraph) about %s for %s:\n\n", section, name)
	lines := make([]string, 0, len(req.Planets))
	for _, p := range req.Planets {
		lines = append(lines, PlanetLine(p))
	}
	b.WriteString(strings.Join(lines, ", "))
	b.WriteString("\n")
	if req.Ascendant.Sign != "" {
		fmt.Fprintf(&b, "Ascendant in %s %.2f°.\n", req.Ascendant.Sign, req.Ascendant.Degree)
	}
	if req.FreeText != "" {
		fmt.Fprintf(&b, "Question: %s\n", strings.TrimSpace(req.FreeText))
	}
	b.WriteString("\nUse warm, objective and inspiring language without technical terms. Be sensitive, optimistic and clear.")
	return b.String()
}

// -----------------------------------------------------------------------------

func truncateRunes(s string, n int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "…"
}
