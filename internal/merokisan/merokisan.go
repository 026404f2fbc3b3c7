// Package merokisan holds the shared vocabulary of the Mero Kisan chat widget:
// the conversation message type and the two supported input languages.
// Front ends (TUI, REPL, one-shot commands) and the widget core all speak in
// these types.
package merokisan

import (
	"fmt"
	"strings"
)

// Language is a BCP 47 tag for one of the languages the assistant understands.
type Language string

const (
	Nepali  Language = "ne-NP"
	English Language = "en-US"

	DefaultLanguage = Nepali
)

// ParseLanguage accepts a full tag ("ne-NP"), a bare code ("ne") or a
// human-friendly name ("nepali") and returns the matching Language.
//
// Example:
//
//	lang, err := ParseLanguage("en")
//	// lang = English
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ne-np", "ne", "nepali", "नेपाली":
		return Nepali, nil
	case "en-us", "en", "english":
		return English, nil
	case "":
		return "", fmt.Errorf("language cannot be empty")
	default:
		return "", fmt.Errorf("unsupported language: %s (expected ne-NP or en-US)", s)
	}
}

// Toggle returns the other supported language.
func (l Language) Toggle() Language {
	if l == Nepali {
		return English
	}
	return Nepali
}

// Code returns the two-letter code sent to the transcription endpoint.
func (l Language) Code() string {
	if l == English {
		return "en"
	}
	return "ne"
}

// Label is the text shown on the language toggle.
func (l Language) Label() string {
	if l == English {
		return "EN"
	}
	return "नेपाली"
}

// Placeholder is the hint shown in an empty input box.
func (l Language) Placeholder() string {
	if l == English {
		return "Ask about crops, soil, fertilizer, pests…"
	}
	return "Nepali मा प्रश्न सोध्नुस..."
}

func (l Language) String() string {
	return string(l)
}
