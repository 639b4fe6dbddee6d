// Package jsonfile implements reading and writing of the JSON locale
// formats the tool translates: flat string-to-string maps and lists of
// objects with translatable string fields (optionally nested under a
// root key).
//
// Key order from the input file is preserved on output so translated
// files diff cleanly against their sources. Output is UTF-8 with
// two-space indentation and no HTML escaping.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dumploc/dumploc/translate"
)

// FlatFile is a flat string-to-string translation map.
type FlatFile struct {
	keys   []string
	values map[string]string
}

// ParseFlat parses a flat JSON object of string values, preserving key
// order.
func ParseFlat(data []byte) (*FlatFile, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	t, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if delim, ok := t.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %v", t)
	}

	f := &FlatFile{values: make(map[string]string)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		key := keyTok.(string)

		var value string
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("value of %q is not a string: %w", key, err)
		}
		if _, seen := f.values[key]; !seen {
			f.keys = append(f.keys, key)
		}
		f.values[key] = value
	}
	return f, nil
}

// ParseFlatFile reads and parses a flat JSON map from path.
func ParseFlatFile(path string) (*FlatFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseFlat(data)
}

// Keys returns the keys in file order.
func (f *FlatFile) Keys() []string { return f.keys }

// Get returns the value for key.
func (f *FlatFile) Get(key string) string { return f.values[key] }

// Len returns the number of entries.
func (f *FlatFile) Len() int { return len(f.keys) }

// Render serializes the map in key order.
func (f *FlatFile) Render() ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("{")
	for i, k := range f.keys {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("\n  ")
		if err := writeJSONString(&b, k); err != nil {
			return nil, err
		}
		b.WriteString(": ")
		if err := writeJSONString(&b, f.values[k]); err != nil {
			return nil, err
		}
	}
	if len(f.keys) > 0 {
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.Bytes(), nil
}

// writeJSONString appends s as a JSON string without HTML escaping.
func writeJSONString(b *bytes.Buffer, s string) error {
	enc := json.NewEncoder(b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode appends a newline; drop it.
	b.Truncate(b.Len() - 1)
	return nil
}

// TranslateFlat translates every value of f into targetLang and returns
// a new map with the same keys in the same order.
func TranslateFlat(ctx context.Context, tr translate.Translator, f *FlatFile, targetLang string, opts *translate.Options) (*FlatFile, error) {
	texts := make([]string, len(f.keys))
	for i, k := range f.keys {
		texts[i] = f.values[k]
	}

	translated, err := translate.TranslateAll(ctx, tr, texts, targetLang, opts)
	if err != nil {
		return nil, err
	}

	out := &FlatFile{
		keys:   append([]string(nil), f.keys...),
		values: make(map[string]string, len(f.keys)),
	}
	for i, k := range f.keys {
		out.values[k] = translated[i]
	}
	return out, nil
}

// TranslateFlatMulti translates f into every target language in order
// and renders one combined object keyed by language code, each language
// holding the full translated map.
func TranslateFlatMulti(ctx context.Context, tr translate.Translator, f *FlatFile, targetLangs []string, opts *translate.Options) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("{")
	for i, lang := range targetLangs {
		translated, err := TranslateFlat(ctx, tr, f, lang, opts)
		if err != nil {
			return nil, fmt.Errorf("language %s: %w", lang, err)
		}
		rendered, err := translated.Render()
		if err != nil {
			return nil, err
		}
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("\n  ")
		if err := writeJSONString(&b, lang); err != nil {
			return nil, err
		}
		b.WriteString(": ")
		b.WriteString(indentBlock(string(rendered), "  "))
	}
	if len(targetLangs) > 0 {
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.Bytes(), nil
}

// indentBlock indents every line after the first by prefix, so nested
// rendered objects line up under their key.
func indentBlock(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}
