// Package normalize provides utilities for normalizing and sanitizing data.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// iso639_2to1 maps common ISO 639-2 (3-letter) codes to ISO 639-1 (2-letter) codes.
// Limited to languages that actually show up in bibliographic records we consume.
//
//nolint:gochecknoglobals // Static lookup table for language normalization
var iso639_2to1 = map[string]string{
	"eng": "en", "zho": "zh", "chi": "zh", "jpn": "ja", "kor": "ko",
	"fra": "fr", "fre": "fr", "deu": "de", "ger": "de", "spa": "es",
	"ita": "it", "por": "pt", "rus": "ru", "nld": "nl", "dut": "nl",
}

// languageNameToCode maps common language names to ISO 639-1 codes.
//
//nolint:gochecknoglobals // Static lookup table for language normalization
var languageNameToCode = map[string]string{
	"english": "en", "chinese": "zh", "mandarin": "zh", "cantonese": "zh",
	"japanese": "ja", "korean": "ko", "french": "fr", "german": "de",
	"spanish": "es", "italian": "it", "portuguese": "pt", "russian": "ru",
	"dutch": "nl", "中文": "zh", "繁體中文": "zh", "简体中文": "zh",
}

// LanguageCode converts various language representations to ISO 639-1 codes.
// It handles:
//   - ISO 639-1 codes: "en" -> "en"
//   - ISO 639-2 codes: "eng" -> "en"
//   - Locale codes: "zh-TW", "en_GB" -> "zh", "en"
//   - Language names: "English", "中文" -> "en", "zh"
//
// Returns empty string for unrecognized values.
func LanguageCode(raw string) string {
	if raw == "" {
		return ""
	}

	s := strings.ToLower(strings.TrimSpace(SanitizeString(raw)))
	if s == "" {
		return ""
	}

	// Check the name table before splitting locales; CJK names have no separators.
	if code, ok := languageNameToCode[s]; ok {
		return code
	}

	// Handle locale codes (e.g., "zh-TW", "en_GB").
	if idx := strings.IndexAny(s, "-_"); idx > 0 {
		s = s[:idx]
	}

	if len(s) == 2 {
		return s
	}

	if len(s) == 3 {
		if code, ok := iso639_2to1[s]; ok {
			return code
		}
	}

	if code, ok := languageNameToCode[s]; ok {
		return code
	}

	return ""
}

// LocaleRegion extracts the uppercased region part of a locale code,
// e.g. "zh-TW" -> "TW", "zh_Hant_HK" -> "HK". Returns "" when absent.
func LocaleRegion(raw string) string {
	s := strings.TrimSpace(SanitizeString(raw))
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
	if len(parts) < 2 {
		return ""
	}
	last := strings.ToUpper(parts[len(parts)-1])
	if len(last) == 2 {
		return last
	}
	return ""
}

// TitleKey normalizes a title to a deduplication key: Unicode-folded (NFKC,
// full-width to half-width), lowercased, with punctuation and whitespace
// stripped. Letters and digits survive, so CJK titles keep their characters.
//
//	"Dream of the Red Chamber"   -> "dreamoftheredchamber"
//	"dream of the red chamber!!" -> "dreamoftheredchamber"
//	"紅樓夢（上）"                  -> "紅樓夢上"
func TitleKey(raw string) string {
	folded := width.Fold.String(norm.NFKC.String(SanitizeString(raw)))
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SanitizeString removes null bytes from strings, which can cause issues in
// databases and JSON parsing.
func SanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 { // null byte
			return -1 // drop it
		}
		return r
	}, s)
}
