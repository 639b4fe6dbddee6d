package jsonfile

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dumploc/dumploc/sqlfile"
	"github.com/dumploc/dumploc/translate"
)

// SQLJob describes generating a translation table from a list of objects
// carrying one id field and one translatable text field.
type SQLJob struct {
	// IDField and TextField name the source object fields.
	IDField   string
	TextField string
	// Table, IDColumn and TextColumn shape the output statement.
	Table      string
	IDColumn   string
	TextColumn string
	// Targets is the ordered locale list; the first entry is the base
	// locale and passes through untranslated.
	Targets []translate.LocaleTarget
}

// GenerateSQL translates the text field of every object into each target
// locale and renders a single upsert statement with one row per
// (object × locale). Objects without an integer id or a non-empty text
// value are skipped. An input yielding no rows returns ("", 0, nil).
func GenerateSQL(ctx context.Context, tr translate.Translator, f *ObjectsFile, job SQLJob, opts *translate.Options) (string, int, error) {
	if len(job.Targets) == 0 {
		return "", 0, fmt.Errorf("no locale targets configured")
	}

	var ids []int
	var texts []string
	for _, obj := range f.Objects {
		id, ok := intValue(obj[job.IDField])
		if !ok {
			continue
		}
		text, ok := obj[job.TextField].(string)
		if !ok {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		ids = append(ids, id)
		texts = append(texts, text)
	}
	if len(ids) == 0 {
		return "", 0, nil
	}

	// perLocale[i] is the text list for job.Targets[i], parallel to ids.
	perLocale := make([][]string, len(job.Targets))
	perLocale[0] = texts
	for i, target := range job.Targets[1:] {
		translated, err := translate.TranslateAll(ctx, tr, texts, target.Lang, opts)
		if err != nil {
			return "", 0, fmt.Errorf("locale %s: %w", target.Locale, err)
		}
		perLocale[i+1] = translated
	}

	var rows []sqlfile.RowTuple
	for r, id := range ids {
		for t, target := range job.Targets {
			rows = append(rows, sqlfile.RowTuple{
				sqlfile.Token(strconv.Itoa(id)),
				sqlfile.String(target.Locale),
				sqlfile.String(perLocale[t][r]),
			})
		}
	}

	columns := []string{job.IDColumn, "locale", job.TextColumn}
	keys := []string{job.IDColumn, "locale"}
	return sqlfile.RenderUpsert(job.Table, columns, keys, rows), len(rows), nil
}

// intValue accepts JSON numbers that are integral.
func intValue(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}
