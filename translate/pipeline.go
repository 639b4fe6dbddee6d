package translate

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dumploc/dumploc/sqlfile"
)

// attribute names a translatable Record field.
type attribute int

const (
	attrLabel attribute = iota
	attrDescription
	attrPlaceholder
)

// position ties one batched text back to its originating record and
// attribute. The list is built when texts are collected and walked in
// lock-step with the translated results; positions are never re-derived
// from the text itself, since different records can carry identical
// strings.
type position struct {
	record int
	attr   attribute
}

// collectTexts gathers every translatable string from records, in record
// order. Empty placeholders are not submitted for translation.
func collectTexts(records []Record) ([]position, []string) {
	var positions []position
	var texts []string
	for i, rec := range records {
		positions = append(positions, position{i, attrLabel})
		texts = append(texts, rec.Label)
		positions = append(positions, position{i, attrDescription})
		texts = append(texts, rec.Description)
		if rec.Placeholder != "" {
			positions = append(positions, position{i, attrPlaceholder})
			texts = append(texts, rec.Placeholder)
		}
	}
	return positions, texts
}

// applyTranslations zips translated back onto copies of records using
// positions. translated must be parallel to positions.
func applyTranslations(records []Record, positions []position, translated []string) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	for i, pos := range positions {
		switch pos.attr {
		case attrLabel:
			out[pos.record].Label = translated[i]
		case attrDescription:
			out[pos.record].Description = translated[i]
		case attrPlaceholder:
			out[pos.record].Placeholder = translated[i]
		}
	}
	return out
}

// SQLJob describes one dump-translation run.
type SQLJob struct {
	// Table is the output table name.
	Table string
	// IDColumn is the output id column name.
	IDColumn string
	// Shape maps tuple positions to record attributes.
	Shape RowShape
	// Targets is the ordered locale list; the first entry is the base
	// locale and is written through untranslated.
	Targets []LocaleTarget
}

// Columns returns the output column list in tuple order.
func (j SQLJob) Columns() []string {
	return []string{j.IDColumn, "locale", "label", "description", "placeholder"}
}

// KeyColumns returns the upsert conflict target.
func (j SQLJob) KeyColumns() []string {
	return []string{j.IDColumn, "locale"}
}

// RunSQL executes the whole pipeline over one SQL dump: extract VALUES
// sections, parse tuples, project records, translate every non-base
// locale, and render the upsert statement. Locales are processed fully
// sequentially; a retry exhaustion aborts the run with no output (the
// empty string), so a half-translated artifact is never produced. An
// input without any rows returns ("", 0, nil): an empty success, not an
// error.
func RunSQL(ctx context.Context, tr Translator, sqlText string, job SQLJob, opts *Options) (string, int, error) {
	if len(job.Targets) == 0 {
		return "", 0, fmt.Errorf("no locale targets configured")
	}

	tuples, err := sqlfile.ParseAll(sqlText)
	if err != nil {
		return "", 0, err
	}
	if len(tuples) == 0 {
		return "", 0, nil
	}

	records, skipped := ProjectAll(tuples, job.Shape)
	if skipped > 0 {
		opts.log("skipped %d row(s) failing required-field validation", skipped)
	}
	if len(records) == 0 {
		return "", 0, nil
	}

	positions, texts := collectTexts(records)

	// perLocale[i] holds the records with translated attributes for
	// job.Targets[i]; the base locale passes through unchanged.
	perLocale := make([][]Record, len(job.Targets))
	perLocale[0] = records
	for i, target := range job.Targets[1:] {
		translated, err := TranslateAll(ctx, tr, texts, target.Lang, opts)
		if err != nil {
			return "", 0, fmt.Errorf("locale %s: %w", target.Locale, err)
		}
		perLocale[i+1] = applyTranslations(records, positions, translated)
	}

	// Output rows are record-major with locales in target-list order, so
	// the artifact is deterministic and diffable.
	var rows []sqlfile.RowTuple
	for r := range records {
		for t, target := range job.Targets {
			rec := perLocale[t][r]
			placeholder := sqlfile.NullField
			if rec.Placeholder != "" {
				placeholder = sqlfile.String(rec.Placeholder)
			}
			rows = append(rows, sqlfile.RowTuple{
				sqlfile.Token(strconv.Itoa(rec.ID)),
				sqlfile.String(target.Locale),
				sqlfile.String(rec.Label),
				sqlfile.String(rec.Description),
				placeholder,
			})
		}
	}

	return sqlfile.RenderUpsert(job.Table, job.Columns(), job.KeyColumns(), rows), len(rows), nil
}
