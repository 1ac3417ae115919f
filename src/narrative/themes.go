package narrative

import (
	"fmt"
	"strings"

	"astrografia/src/helpers"
)

// Theme is one interpretation focus.
type Theme struct {
	Key     string
	Section string
}

var themes = []Theme{
	{"love", "love life"},
	{"career", "professional life"},
	{"family", "family relationships"},
	{"spirituality", "spiritual path"},
	{"mission", "life mission"},
	{"challenges", "personal challenges and blocks"},
}

var themeAliases = map[string]string{
	"amor":            "love",
	"carreira":        "career",
	"familia":         "family",
	"família":         "family",
	"espiritualidade": "spirituality",
	"missao":          "mission",
	"missão":          "mission",
	"desafios":        "challenges",
}

// -----------------------------------------------------------------------------

// ResolveTheme accepts English keys and their Portuguese aliases.
func ResolveTheme(name string) (Theme, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := themeAliases[key]; ok {
		key = alias
	}
	for _, t := range themes {
		if t.Key == key {
			return t, nil
		}
	}
	return Theme{}, helpers.NewValidationError("theme", fmt.Sprintf("unknown theme: %s", name))
}

// -----------------------------------------------------------------------------

func ThemeKeys() []string {
	keys := make([]string, len(themes))
	for i, t := range themes {
		keys[i] = t.Key
	}
	return keys
}
