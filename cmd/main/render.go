package main

import (
	"fmt"
	"strings"

	"astrografia/src/models"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

// chartMarkdown lays a chart out as a heading and two tables.
func chartMarkdown(chart *models.MChart) string {
	var b strings.Builder

	title := "Natal chart"
	if chart.Meta.Name != "" {
		title += " for " + chart.Meta.Name
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if chart.Meta.City != "" || chart.Meta.UTC != "" {
		fmt.Fprintf(&b, "%s, %s UTC (%s)\n\n", chart.Meta.City, chart.Meta.UTC, chart.Meta.Source)
	}
	fmt.Fprintf(&b, "**Ascendant** %s %s %.2f°\n\n", chart.Ascendant.Icon, chart.Ascendant.Sign, chart.Ascendant.Degree)

	b.WriteString("| Body | Sign | Degree | Element | Quality |\n|---|---|---|---|---|\n")
	for _, p := range chart.Planets {
		name := p.Icon + " " + p.Name
		if p.Retrograde != nil && *p.Retrograde {
			name += " ℞"
		}
		fmt.Fprintf(&b, "| %s | %s | %.2f° | %s | %s |\n", name, p.Sign, p.SignDegree, p.Element, p.Quality)
	}

	if len(chart.Houses) > 0 {
		b.WriteString("\n| House | Sign | Degree |\n|---|---|---|\n")
		for _, h := range chart.Houses {
			fmt.Fprintf(&b, "| %d | %s | %.2f° |\n", h.House, h.Sign, h.Degree)
		}
	}
	return b.String()
}

// -----------------------------------------------------------------------------

func printMarkdown(cmd *cobra.Command, md string) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return err
	}
	out, err := renderer.Render(md)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}
