// Package speech turns reply text into audio: either through the backend's
// synthesis endpoint or through an on-device synthesizer whose voice is picked
// from the script of the text.
package speech

import "strings"

// Script is the writing system a reply is written in.
type Script int

const (
	Latin Script = iota
	Devanagari
)

func (s Script) String() string {
	if s == Devanagari {
		return "devanagari"
	}
	return "latin"
}

// DetectScript returns Devanagari when any rune falls in U+0900–U+097F.
func DetectScript(text string) Script {
	for _, r := range text {
		if r >= 0x0900 && r <= 0x097F {
			return Devanagari
		}
	}
	return Latin
}

// languageChain lists voice languages in order of preference: native, then
// related, for each script.
var languageChain = map[Script][]string{
	Devanagari: {"ne-np", "ne", "hi-in", "hi"},
	Latin:      {"en-us", "en"},
}

// Voice is one on-device synthesizer voice.
type Voice struct {
	ID       string // value passed to the synthesizer, e.g. "ne"
	Name     string // display name, e.g. "Nepali"
	Language string // language tag, e.g. "ne" or "en-us"
	Default  bool
}

// SelectVoice picks the best voice for text. Returns false when voices is empty.
func SelectVoice(voices []Voice, text string) (Voice, bool) {
	if len(voices) == 0 {
		return Voice{}, false
	}

	for _, want := range languageChain[DetectScript(text)] {
		for _, v := range voices {
			if normalizeTag(v.Language) == want {
				return v, true
			}
		}
	}

	for _, v := range voices {
		if v.Default {
			return v, true
		}
	}
	return voices[0], true
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
}
