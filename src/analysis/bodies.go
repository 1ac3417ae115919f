package analysis

const DefaultIcon = "🔹"

// Body names in chart order. Output lists always follow this order.
const (
	Sun     = "Sun"
	Moon    = "Moon"
	Mercury = "Mercury"
	Venus   = "Venus"
	Mars    = "Mars"
	Jupiter = "Jupiter"
	Saturn  = "Saturn"
	Uranus  = "Uranus"
	Neptune = "Neptune"
	Pluto   = "Pluto"

	Ascendant = "Ascendant"
	Midheaven = "Midheaven"
)

var BodyOrder = []string{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto}

var icons = map[string]string{
	Sun:       "☀️",
	Moon:      "🌙",
	Mercury:   "☿️",
	Venus:     "♀️",
	Mars:      "♂️",
	Jupiter:   "♃",
	Saturn:    "♄",
	Uranus:    "♅",
	Neptune:   "♆",
	Pluto:     "♇",
	Ascendant: "As",
	Midheaven: "Mc",
}

// -----------------------------------------------------------------------------

// Icon returns the glyph for a body, or DefaultIcon when none is known.
func Icon(name string) string {
	if icon, ok := icons[name]; ok {
		return icon
	}
	return DefaultIcon
}

// -----------------------------------------------------------------------------

// Bodies returns the chart body list, with or without Pluto.
func Bodies(withPluto bool) []string {
	n := len(BodyOrder)
	if !withPluto {
		n--
	}
	out := make([]string, n)
	copy(out, BodyOrder)
	return out
}
