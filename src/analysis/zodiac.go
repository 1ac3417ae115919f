package analysis

import "astrografia/src/analysis/core"

// Sign is one entry of the fixed zodiac table.
type Sign struct {
	Name    string
	NamePT  string
	Element string
	Quality string
	Glyph   string
}

// Signs is ordered from 0° Aries.
var Signs = [core.SignCount]Sign{
	{"Aries", "Áries", "Fire", "Cardinal", "♈"},
	{"Taurus", "Touro", "Earth", "Fixed", "♉"},
	{"Gemini", "Gêmeos", "Air", "Mutable", "♊"},
	{"Cancer", "Câncer", "Water", "Cardinal", "♋"},
	{"Leo", "Leão", "Fire", "Fixed", "♌"},
	{"Virgo", "Virgem", "Earth", "Mutable", "♍"},
	{"Libra", "Libra", "Air", "Cardinal", "♎"},
	{"Scorpio", "Escorpião", "Water", "Fixed", "♏"},
	{"Sagittarius", "Sagitário", "Fire", "Mutable", "♐"},
	{"Capricorn", "Capricórnio", "Earth", "Cardinal", "♑"},
	{"Aquarius", "Aquário", "Air", "Fixed", "♒"},
	{"Pisces", "Peixes", "Water", "Mutable", "♓"},
}

// -----------------------------------------------------------------------------

// SignOf classifies a longitude and returns the sign entry with the rounded in-sign degree.
func SignOf(longitude float64) (Sign, float64) {
	index, _ := core.Classify(longitude)
	return Signs[index], core.SignDegree(longitude)
}

// -----------------------------------------------------------------------------

// IsSignName reports whether name is one of the twelve English sign names.
func IsSignName(name string) bool {
	for _, s := range Signs {
		if s.Name == name {
			return true
		}
	}
	return false
}
