// Package i18n holds the static English/Turkish string table of the UI.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Lang is a supported UI locale
type Lang string

const (
	English Lang = "en"
	Turkish Lang = "tr"
)

var matcher = language.NewMatcher([]language.Tag{language.English, language.Turkish})

// Parse maps a locale code to a supported language, defaulting to English
func Parse(s string) Lang {
	if Lang(strings.ToLower(s)) == Turkish {
		return Turkish
	}
	return English
}

// Negotiate picks the UI language from an Accept-Language header
func Negotiate(acceptLanguage string) Lang {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return English
	}
	_, idx, _ := matcher.Match(tags...)
	if idx == 1 {
		return Turkish
	}
	return English
}

// Toggle switches between the two locales
func (l Lang) Toggle() Lang {
	if l == Turkish {
		return English
	}
	return Turkish
}

// TargetLanguage is the translation output language matching the UI locale
func (l Lang) TargetLanguage() string {
	if l == Turkish {
		return "Turkish"
	}
	return "English"
}

// T looks up key, falling back to English and then to the key itself
func T(l Lang, key string) string {
	if s, ok := tables[l][key]; ok {
		return s
	}
	if s, ok := tables[English][key]; ok {
		return s
	}
	return key
}

// Translator binds T to one language, for templates
type Translator struct {
	Lang Lang
}

func (t Translator) T(key string) string {
	return T(t.Lang, key)
}
