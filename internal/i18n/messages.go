// Package i18n holds the user-facing strings that change with the server locale.
package i18n

import (
	"golang.org/x/text/language"
)

// Messages is the set of localized strings used by the handlers.
type Messages struct {
	Tag                language.Tag
	NoImage            string
	DefaultInstruction string
}

var catalog = map[language.Tag]Messages{
	language.English: {
		Tag:                language.English,
		NoImage:            "no image received",
		DefaultInstruction: "Analyze this image in detail",
	},
	language.French: {
		Tag:                language.French,
		NoImage:            "Aucune image reçue",
		DefaultInstruction: "Analyse cette image en détail.",
	},
}

// English is listed first so it wins when nothing matches.
var matcher = language.NewMatcher([]language.Tag{language.English, language.French})

// For resolves a locale such as "fr", "fr-CA" or "en-US" to a message set.
// Unparseable or unsupported locales fall back to English.
func For(locale string) Messages {
	tag, err := language.Parse(locale)
	if err != nil {
		return catalog[language.English]
	}
	_, idx, _ := matcher.Match(tag)
	switch idx {
	case 1:
		return catalog[language.French]
	default:
		return catalog[language.English]
	}
}
