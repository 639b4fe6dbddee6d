package translate

import (
	"strconv"
	"strings"

	"github.com/dumploc/dumploc/sqlfile"
)

// RowShape maps named record attributes to positions inside a parsed row
// tuple. Dumps carry no column names, so the shape comes from
// configuration rather than being inferred.
type RowShape struct {
	// ID is the index of the integer record id.
	ID int
	// Label is the index of the required label text.
	Label int
	// Description is the index of the description text.
	Description int
	// Placeholder is the index of the optional placeholder text, or -1
	// when the row shape has none.
	Placeholder int
}

// maxIndex returns the highest configured index; tuples shorter than
// this are rejected.
func (s RowShape) maxIndex() int {
	max := s.ID
	for _, i := range []int{s.Label, s.Description, s.Placeholder} {
		if i > max {
			max = i
		}
	}
	return max
}

// Record is one row projected onto named attributes.
type Record struct {
	ID          int
	Label       string
	Description string
	// Placeholder is empty when the source field was NULL, empty, or the
	// shape has no placeholder column.
	Placeholder string
}

// fieldText returns the trimmed text at index i, or "" for NULL fields
// and out-of-range indexes.
func fieldText(t sqlfile.RowTuple, i int) string {
	if i < 0 || i >= len(t) || t[i].Null {
		return ""
	}
	return strings.TrimSpace(t[i].Value)
}

// Project maps a tuple onto a Record. The second return is false when the
// tuple must be skipped: too short for the shape, id not an integer, or
// label missing. Skips are non-fatal; the caller continues with the next
// tuple. An empty description falls back to the label before any
// translation happens, so every locale receives the substituted text.
func Project(t sqlfile.RowTuple, shape RowShape) (Record, bool) {
	if len(t) <= shape.maxIndex() {
		return Record{}, false
	}

	id, err := strconv.Atoi(fieldText(t, shape.ID))
	if err != nil {
		return Record{}, false
	}

	label := fieldText(t, shape.Label)
	if label == "" {
		return Record{}, false
	}

	desc := fieldText(t, shape.Description)
	if desc == "" {
		desc = label
	}

	return Record{
		ID:          id,
		Label:       label,
		Description: desc,
		Placeholder: fieldText(t, shape.Placeholder),
	}, true
}

// ProjectAll projects every tuple, returning the surviving records and
// the number of skipped tuples.
func ProjectAll(tuples []sqlfile.RowTuple, shape RowShape) (records []Record, skipped int) {
	for _, t := range tuples {
		rec, ok := Project(t, shape)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}
