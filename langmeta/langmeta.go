// Package langmeta provides a shared language metadata registry (native
// names and DeepL target codes) used for default locale targets and CLI
// display.
package langmeta

import "strings"

// Meta describes language metadata.
type Meta struct {
	// Name is the native display name.
	Name string
	// DeepL is the provider target code reaching this language, or ""
	// when DeepL does not support it.
	DeepL string
}

// Registry contains canonical language metadata. Locale variants are
// resolved in Resolve() via normalization and base fallback.
var Registry = map[string]Meta{
	"bg":    {Name: "Български", DeepL: "BG"},
	"cs":    {Name: "Čeština", DeepL: "CS"},
	"da":    {Name: "Dansk", DeepL: "DA"},
	"de":    {Name: "Deutsch", DeepL: "DE"},
	"el":    {Name: "Ελληνικά", DeepL: "EL"},
	"en":    {Name: "English", DeepL: "EN-US"},
	"en-GB": {Name: "English (UK)", DeepL: "EN-GB"},
	"en-US": {Name: "English (US)", DeepL: "EN-US"},
	"es":    {Name: "Español", DeepL: "ES"},
	"et":    {Name: "Eesti", DeepL: "ET"},
	"fi":    {Name: "Suomi", DeepL: "FI"},
	"fr":    {Name: "Français", DeepL: "FR"},
	"hu":    {Name: "Magyar", DeepL: "HU"},
	"id":    {Name: "Bahasa Indonesia", DeepL: "ID"},
	"it":    {Name: "Italiano", DeepL: "IT"},
	"ja":    {Name: "日本語", DeepL: "JA"},
	"ko":    {Name: "한국어", DeepL: "KO"},
	"lt":    {Name: "Lietuvių", DeepL: "LT"},
	"lv":    {Name: "Latviešu", DeepL: "LV"},
	"nb":    {Name: "Norsk bokmål", DeepL: "NB"},
	"nl":    {Name: "Nederlands", DeepL: "NL"},
	"pl":    {Name: "Polski", DeepL: "PL"},
	"pt":    {Name: "Português", DeepL: "PT-BR"},
	"pt-BR": {Name: "Português (Brasil)", DeepL: "PT-BR"},
	"pt-PT": {Name: "Português (Portugal)", DeepL: "PT-PT"},
	"ro":    {Name: "Română", DeepL: "RO"},
	"ru":    {Name: "Русский", DeepL: "RU"},
	"sk":    {Name: "Slovenčina", DeepL: "SK"},
	"sl":    {Name: "Slovenščina", DeepL: "SL"},
	"sv":    {Name: "Svenska", DeepL: "SV"},
	"tr":    {Name: "Türkçe", DeepL: "TR"},
	"uk":    {Name: "Українська", DeepL: "UK"},
	"zh":    {Name: "中文", DeepL: "ZH-HANS"},
	"zh-CN": {Name: "简体中文", DeepL: "ZH-HANS"},
	"zh-TW": {Name: "繁體中文", DeepL: "ZH-HANT"},
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Resolve returns best-effort language metadata for language codes,
// supporting variants like pt_BR, pt-BR, and locale fallbacks.
func Resolve(lang string) Meta {
	if m, ok := Registry[lang]; ok {
		return m
	}
	normalized := canonicalize(lang)
	if m, ok := Registry[normalized]; ok {
		return m
	}
	if parts := strings.SplitN(normalized, "-", 2); len(parts) == 2 {
		if m, ok := Registry[parts[0]]; ok {
			return m
		}
	}
	return Meta{Name: lang}
}

// DeepLTarget returns the provider code for a locale, or "" when the
// language is not supported.
func DeepLTarget(locale string) string {
	return Resolve(locale).DeepL
}
