package sqlfile

import "strings"

// RenderUpsert serializes rows into a single INSERT ... ON CONFLICT DO
// UPDATE statement. columns lists every column in tuple order; keyColumns
// is the conflict target, and every remaining column is updated from
// EXCLUDED so re-running the statement refreshes existing translations.
func RenderUpsert(table string, columns, keyColumns []string, rows []RowTuple) string {
	var values []string
	for _, row := range rows {
		parts := make([]string, len(row))
		for i, f := range row {
			parts[i] = Literal(f)
		}
		values = append(values, "("+strings.Join(parts, ", ")+")")
	}

	key := make(map[string]bool, len(keyColumns))
	for _, c := range keyColumns {
		key[c] = true
	}
	var updates []string
	for _, c := range columns {
		if !key[c] {
			updates = append(updates, "  "+c+" = EXCLUDED."+c)
		}
	}

	var b strings.Builder
	b.WriteString("INSERT INTO " + table + " (" + strings.Join(columns, ", ") + ")\n")
	b.WriteString("VALUES\n  ")
	b.WriteString(strings.Join(values, ",\n  "))
	b.WriteString("\nON CONFLICT (" + strings.Join(keyColumns, ", ") + ")\n")
	b.WriteString("DO UPDATE SET\n")
	b.WriteString(strings.Join(updates, ",\n"))
	b.WriteString(";\n")
	return b.String()
}
