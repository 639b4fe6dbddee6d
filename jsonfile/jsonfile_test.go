package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dumploc/dumploc/translate"
)

// upperTranslator uppercases everything.
type upperTranslator struct{ calls int }

func (u *upperTranslator) TranslateBatch(ctx context.Context, texts []string, targetLang, sourceLang string) ([]string, error) {
	u.calls++
	out := make([]string, len(texts))
	for i, s := range texts {
		out[i] = strings.ToUpper(s)
	}
	return out, nil
}

func fastOptions() *translate.Options {
	return &translate.Options{BaseDelay: time.Millisecond, BatchDelay: time.Millisecond}
}

// ---------------------------------------------------------------------------
// Flat maps
// ---------------------------------------------------------------------------

func TestParseFlatPreservesOrder(t *testing.T) {
	input := `{"zeta": "last?", "alpha": "first?", "mid": "middle"}`
	f, err := ParseFlat([]byte(input))
	if err != nil {
		t.Fatalf("ParseFlat error: %v", err)
	}
	want := []string{"zeta", "alpha", "mid"}
	for i, k := range f.Keys() {
		if k != want[i] {
			t.Fatalf("keys = %v, want %v", f.Keys(), want)
		}
	}
	if f.Get("alpha") != "first?" {
		t.Fatalf("Get(alpha) = %q", f.Get("alpha"))
	}
}

func TestParseFlatRejectsNonStringValues(t *testing.T) {
	if _, err := ParseFlat([]byte(`{"k": 5}`)); err == nil {
		t.Fatal("expected error for non-string value")
	}
	if _, err := ParseFlat([]byte(`["a"]`)); err == nil {
		t.Fatal("expected error for non-object root")
	}
}

func TestFlatRenderRoundTrip(t *testing.T) {
	input := `{"b": "uno & <dos>", "a": "tres"}`
	f, err := ParseFlat([]byte(input))
	if err != nil {
		t.Fatalf("ParseFlat error: %v", err)
	}
	out, err := f.Render()
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	// No HTML escaping: & and <> stay literal.
	if !strings.Contains(string(out), "uno & <dos>") {
		t.Fatalf("rendered output escaped HTML:\n%s", out)
	}
	round, err := ParseFlat(out)
	if err != nil {
		t.Fatalf("round trip parse: %v", err)
	}
	if round.Keys()[0] != "b" || round.Get("a") != "tres" {
		t.Fatalf("round trip mismatch: %v", round.Keys())
	}
}

func TestTranslateFlat(t *testing.T) {
	f, _ := ParseFlat([]byte(`{"greet": "hola", "bye": "adiós"}`))
	out, err := TranslateFlat(context.Background(), &upperTranslator{}, f, "EN", fastOptions())
	if err != nil {
		t.Fatalf("TranslateFlat error: %v", err)
	}
	if out.Get("greet") != "HOLA" || out.Get("bye") != "ADIÓS" {
		t.Fatalf("translated = %q, %q", out.Get("greet"), out.Get("bye"))
	}
	// Source map untouched.
	if f.Get("greet") != "hola" {
		t.Fatalf("source mutated: %q", f.Get("greet"))
	}
}

func TestTranslateFlatMulti(t *testing.T) {
	f, _ := ParseFlat([]byte(`{"greet": "hola"}`))
	out, err := TranslateFlatMulti(context.Background(), &upperTranslator{}, f, []string{"EN", "DE"}, fastOptions())
	if err != nil {
		t.Fatalf("TranslateFlatMulti error: %v", err)
	}

	var parsed map[string]map[string]string
	if err := json.Unmarshal(out, &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if parsed["EN"]["greet"] != "HOLA" || parsed["DE"]["greet"] != "HOLA" {
		t.Fatalf("parsed = %v", parsed)
	}
}

// ---------------------------------------------------------------------------
// Object lists
// ---------------------------------------------------------------------------

func TestLoadObjectsRootList(t *testing.T) {
	f, err := LoadObjects([]byte(`[{"name": "a"}, {"name": "b"}]`), "")
	if err != nil {
		t.Fatalf("LoadObjects error: %v", err)
	}
	if len(f.Objects) != 2 || f.RootKey() != "" {
		t.Fatalf("objects = %d, rootKey = %q", len(f.Objects), f.RootKey())
	}
}

func TestLoadObjectsExplicitRootKey(t *testing.T) {
	data := []byte(`{"meta": 1, "items": [{"name": "a"}]}`)
	f, err := LoadObjects(data, "items")
	if err != nil {
		t.Fatalf("LoadObjects error: %v", err)
	}
	if f.RootKey() != "items" || len(f.Objects) != 1 {
		t.Fatalf("rootKey = %q, objects = %d", f.RootKey(), len(f.Objects))
	}

	if _, err := LoadObjects(data, "meta"); err == nil {
		t.Fatal("expected error for root key not holding a list")
	}
}

func TestLoadObjectsAutodetect(t *testing.T) {
	f, err := LoadObjects([]byte(`{"version": 2, "things": [{"name": "a"}]}`), "")
	if err != nil {
		t.Fatalf("autodetect error: %v", err)
	}
	if f.RootKey() != "things" {
		t.Fatalf("rootKey = %q, want things", f.RootKey())
	}

	// No list anywhere: autodetect must fail with guidance.
	if _, err := LoadObjects([]byte(`{"a": 1}`), ""); err == nil {
		t.Fatal("expected autodetect failure")
	}
}

func TestCollectAndApplySuffixed(t *testing.T) {
	f, _ := LoadObjects([]byte(`[
		{"id": 1, "name": "hola", "note": "  "},
		{"id": 2, "name": "adiós", "note": "pista"}
	]`), "")

	positions, texts := f.CollectTexts([]string{"name", "note"})
	// id is numeric, blank note is empty after trim: both skipped.
	if len(texts) != 3 {
		t.Fatalf("texts = %v, want 3 entries", texts)
	}

	translated := make([]string, len(texts))
	for i, s := range texts {
		translated[i] = strings.ToUpper(s)
	}
	f.ApplyTranslations(positions, translated, "en")

	if f.Objects[0]["name_en"] != "HOLA" || f.Objects[0]["name"] != "hola" {
		t.Fatalf("object 0 = %v", f.Objects[0])
	}
	if f.Objects[1]["note_en"] != "PISTA" {
		t.Fatalf("object 1 = %v", f.Objects[1])
	}
	if _, exists := f.Objects[0]["note_en"]; exists {
		t.Fatal("blank note must not get a translated field")
	}
}

func TestApplyTranslationsOverwrite(t *testing.T) {
	f, _ := LoadObjects([]byte(`[{"name": "hola"}]`), "")
	positions, texts := f.CollectTexts([]string{"name"})
	f.ApplyTranslations(positions, []string{strings.ToUpper(texts[0])}, "")
	if f.Objects[0]["name"] != "HOLA" {
		t.Fatalf("overwrite failed: %v", f.Objects[0])
	}
}

func TestTranslateObjectsEmptyIsNoop(t *testing.T) {
	f, _ := LoadObjects([]byte(`[{"id": 1}]`), "")
	tr := &upperTranslator{}
	if err := TranslateObjects(context.Background(), tr, f, []string{"name"}, []string{"EN"}, nil, fastOptions()); err != nil {
		t.Fatalf("TranslateObjects error: %v", err)
	}
	if tr.calls != 0 {
		t.Fatalf("translator called %d times with nothing to translate", tr.calls)
	}
}

func TestRenderReembedsRootKey(t *testing.T) {
	f, _ := LoadObjects([]byte(`{"version": 2, "things": [{"name": "a"}]}`), "")
	f.Objects[0]["name_en"] = "A"
	out, err := f.Render()
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	var round map[string]any
	if err := json.Unmarshal(out, &round); err != nil {
		t.Fatalf("rendered output invalid: %v", err)
	}
	if round["version"] != float64(2) {
		t.Fatalf("sibling root keys lost: %v", round)
	}
	things := round["things"].([]any)
	if things[0].(map[string]any)["name_en"] != "A" {
		t.Fatalf("translated field lost: %v", things)
	}
}

// ---------------------------------------------------------------------------
// JSON -> SQL generation
// ---------------------------------------------------------------------------

func TestGenerateSQL(t *testing.T) {
	f, _ := LoadObjects([]byte(`{"subgroups": [
		{"subgroup_id": 3, "subgroup_name": "Frenos"},
		{"subgroup_id": "bad", "subgroup_name": "skip me"},
		{"subgroup_id": 4, "subgroup_name": ""}
	]}`), "subgroups")

	job := SQLJob{
		IDField: "subgroup_id", TextField: "subgroup_name",
		Table: "subgroup_translations", IDColumn: "subgroup_id", TextColumn: "subgroup_name",
		Targets: []translate.LocaleTarget{
			{Locale: "es", Lang: "ES"},
			{Locale: "en", Lang: "EN-US"},
		},
	}
	got, n, err := GenerateSQL(context.Background(), &upperTranslator{}, f, job, fastOptions())
	if err != nil {
		t.Fatalf("GenerateSQL error: %v", err)
	}
	if n != 2 {
		t.Fatalf("rows = %d, want 1 valid object × 2 locales", n)
	}
	for _, frag := range []string{
		"INSERT INTO subgroup_translations (subgroup_id, locale, subgroup_name)",
		"(3, 'es', 'Frenos')",
		"(3, 'en', 'FRENOS')",
		"ON CONFLICT (subgroup_id, locale)",
		"subgroup_name = EXCLUDED.subgroup_name;",
	} {
		if !strings.Contains(got, frag) {
			t.Fatalf("output missing %q:\n%s", frag, got)
		}
	}
}

func TestGenerateSQLNoRows(t *testing.T) {
	f, _ := LoadObjects([]byte(`[]`), "")
	job := SQLJob{
		IDField: "id", TextField: "name",
		Table: "t", IDColumn: "id", TextColumn: "name",
		Targets: []translate.LocaleTarget{{Locale: "es", Lang: "ES"}},
	}
	got, n, err := GenerateSQL(context.Background(), &upperTranslator{}, f, job, fastOptions())
	if err != nil || got != "" || n != 0 {
		t.Fatalf("empty input = (%q, %d, %v), want empty success", got, n, err)
	}
}

func TestGenerateSQLPropagatesFailure(t *testing.T) {
	f, _ := LoadObjects([]byte(`[{"id": 1, "name": "hola"}]`), "")
	job := SQLJob{
		IDField: "id", TextField: "name",
		Table: "t", IDColumn: "id", TextColumn: "name",
		Targets: []translate.LocaleTarget{
			{Locale: "es", Lang: "ES"},
			{Locale: "en", Lang: "EN"},
		},
	}
	opts := fastOptions()
	opts.MaxAttempts = 1
	_, _, err := GenerateSQL(context.Background(), failingTranslator{}, f, job, opts)
	if err == nil || !strings.Contains(err.Error(), "locale en") {
		t.Fatalf("expected locale-scoped failure, got %v", err)
	}
}

type failingTranslator struct{}

func (failingTranslator) TranslateBatch(ctx context.Context, texts []string, targetLang, sourceLang string) ([]string, error) {
	return nil, fmt.Errorf("provider down")
}
