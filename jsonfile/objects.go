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

// ObjectsFile is a JSON document holding a list of objects with
// translatable string fields. The list may be the document root or live
// under a single key of a root object; in the latter case the rest of
// the root object is carried through to the output untouched.
type ObjectsFile struct {
	// Objects is the mutable object list.
	Objects []map[string]any

	root    map[string]any
	rootKey string
}

// LoadObjects parses data into an ObjectsFile. rootKey selects the list
// inside a root object; when empty, the list is auto-detected: a root
// array is used directly, otherwise the single root key whose value is a
// list of objects wins, falling back to any key holding a list.
func LoadObjects(data []byte, rootKey string) (*ObjectsFile, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	switch v := raw.(type) {
	case []any:
		objs, err := asObjects(v)
		if err != nil {
			return nil, fmt.Errorf("root list: %w", err)
		}
		return &ObjectsFile{Objects: objs}, nil

	case map[string]any:
		if rootKey != "" {
			list, ok := v[rootKey].([]any)
			if !ok {
				return nil, fmt.Errorf("root key %q does not hold a list", rootKey)
			}
			objs, err := asObjects(list)
			if err != nil {
				return nil, fmt.Errorf("root key %q: %w", rootKey, err)
			}
			return &ObjectsFile{Objects: objs, root: v, rootKey: rootKey}, nil
		}
		return autodetect(v)

	default:
		return nil, fmt.Errorf("expected a JSON object or list at the root")
	}
}

// LoadObjectsFile reads and parses path.
func LoadObjectsFile(path, rootKey string) (*ObjectsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return LoadObjects(data, rootKey)
}

func asObjects(list []any) ([]map[string]any, error) {
	objs := make([]map[string]any, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("item %d is not an object", i)
		}
		objs[i] = obj
	}
	return objs, nil
}

// autodetect picks the list under a root object: exactly one key holding
// a non-empty list of objects wins; otherwise the first key holding any
// list (even empty) is accepted.
func autodetect(root map[string]any) (*ObjectsFile, error) {
	var candidates []string
	for k, v := range root {
		if list, ok := v.([]any); ok && len(list) > 0 {
			if _, err := asObjects(list); err == nil {
				candidates = append(candidates, k)
			}
		}
	}
	if len(candidates) == 1 {
		k := candidates[0]
		objs, _ := asObjects(root[k].([]any))
		return &ObjectsFile{Objects: objs, root: root, rootKey: k}, nil
	}

	for k, v := range root {
		if list, ok := v.([]any); ok {
			if objs, err := asObjects(list); err == nil {
				return &ObjectsFile{Objects: objs, root: root, rootKey: k}, nil
			}
		}
	}

	return nil, fmt.Errorf("could not auto-detect the object list; specify a root key")
}

// RootKey returns the detected or configured root key ("" for root-level
// lists).
func (f *ObjectsFile) RootKey() string { return f.rootKey }

// Render serializes the document, re-embedding the object list under its
// root key when one exists.
func (f *ObjectsFile) Render() ([]byte, error) {
	var doc any = f.Objects
	if f.root != nil {
		f.root[f.rootKey] = f.Objects
		doc = f.root
	}

	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimRight(b.Bytes(), "\n"), nil
}

// Position ties one collected text back to its object and field.
type Position struct {
	Index int
	Field string
}

// CollectTexts gathers the non-empty string values of fields across all
// objects, in object order, together with the position list used to map
// translations back. Non-string values (ids, nulls, numbers) are
// skipped.
func (f *ObjectsFile) CollectTexts(fields []string) ([]Position, []string) {
	var positions []Position
	var texts []string
	for i, obj := range f.Objects {
		for _, field := range fields {
			s, ok := obj[field].(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			positions = append(positions, Position{Index: i, Field: field})
			texts = append(texts, s)
		}
	}
	return positions, texts
}

// ApplyTranslations writes translated values back through positions.
// With a suffix, each value lands in a new per-language field
// (name + "_" + suffix); with an empty suffix the original field is
// overwritten.
func (f *ObjectsFile) ApplyTranslations(positions []Position, translated []string, suffix string) {
	for i, pos := range positions {
		key := pos.Field
		if suffix != "" {
			key = pos.Field + "_" + suffix
		}
		f.Objects[pos.Index][key] = translated[i]
	}
}

// TranslateObjects translates fields of every object into each target
// language in order, applying results in place. suffixFor maps a target
// language code to the per-language field suffix; a nil suffixFor
// overwrites the original fields instead.
func TranslateObjects(ctx context.Context, tr translate.Translator, f *ObjectsFile, fields, targetLangs []string, suffixFor func(string) string, opts *translate.Options) error {
	positions, texts := f.CollectTexts(fields)
	if len(texts) == 0 {
		return nil
	}

	for _, lang := range targetLangs {
		translated, err := translate.TranslateAll(ctx, tr, texts, lang, opts)
		if err != nil {
			return fmt.Errorf("language %s: %w", lang, err)
		}
		suffix := ""
		if suffixFor != nil {
			suffix = suffixFor(lang)
		}
		f.ApplyTranslations(positions, translated, suffix)
	}
	return nil
}
