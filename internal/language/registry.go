package language

import "sort"

// Entry describes one supported language: its ISO-639-1 code, a
// human-readable display name, and the BCP-47 locale tag used for
// speech synthesis.
type Entry struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	BCP47 string `json:"bcp47"`
}

// entries is the fixed table of languages the service supports. Loaded
// once; never mutated after process start.
var entries = map[string]Entry{
	"en": {Code: "en", Name: "English", BCP47: "en-US"},
	"es": {Code: "es", Name: "Spanish", BCP47: "es-ES"},
	"fr": {Code: "fr", Name: "French", BCP47: "fr-FR"},
	"de": {Code: "de", Name: "German", BCP47: "de-DE"},
	"it": {Code: "it", Name: "Italian", BCP47: "it-IT"},
	"pt": {Code: "pt", Name: "Portuguese", BCP47: "pt-PT"},
	"nl": {Code: "nl", Name: "Dutch", BCP47: "nl-NL"},
	"pl": {Code: "pl", Name: "Polish", BCP47: "pl-PL"},
	"ru": {Code: "ru", Name: "Russian", BCP47: "ru-RU"},
	"zh": {Code: "zh", Name: "Chinese", BCP47: "zh-CN"},
	"ja": {Code: "ja", Name: "Japanese", BCP47: "ja-JP"},
	"ko": {Code: "ko", Name: "Korean", BCP47: "ko-KR"},
	"ar": {Code: "ar", Name: "Arabic", BCP47: "ar-SA"},
	"hi": {Code: "hi", Name: "Hindi", BCP47: "hi-IN"},
	"tr": {Code: "tr", Name: "Turkish", BCP47: "tr-TR"},
	"vi": {Code: "vi", Name: "Vietnamese", BCP47: "vi-VN"},
}

// Lookup returns the entry for an ISO-639-1 code.
func Lookup(code string) (Entry, bool) {
	e, ok := entries[code]
	return e, ok
}

// IsSupported reports whether the code appears in the registry.
func IsSupported(code string) bool {
	_, ok := entries[code]
	return ok
}

// Name returns the display name for a code, or the code itself when
// the registry has no entry for it.
func Name(code string) string {
	if e, ok := entries[code]; ok {
		return e.Name
	}
	return code
}

// BCP47 returns the speech-synthesis locale tag for a code, or the
// code itself when no mapping exists.
func BCP47(code string) string {
	if e, ok := entries[code]; ok {
		return e.BCP47
	}
	return code
}

// All returns every registered language sorted by code.
func All() []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
