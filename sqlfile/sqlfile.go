// Package sqlfile implements reading and writing of the VALUES clause of
// SQL INSERT statements as produced by database dump tools.
//
// Only the subset of SQL needed for translation dumps is understood:
// single-quoted string literals with '' as the embedded-quote escape, and
// the unquoted NULL sentinel. Comments, nested function calls and other
// literal types are out of scope.
//
// Section extraction scans forward from each VALUES keyword to the next
// semicolon without quote awareness. A semicolon inside a string literal
// therefore truncates the section early. This matches the behavior of the
// dumps this tool is used with, where literals never contain semicolons.
package sqlfile

import (
	"fmt"
	"regexp"
	"strings"
)

// Field is a single positional value inside a row tuple: either a string
// or an explicit SQL NULL.
type Field struct {
	// Value is the decoded string content. Meaningless when Null is true.
	Value string
	// Null marks an unquoted NULL sentinel.
	Null bool
	// Quoted records whether the value came from a quoted literal. It is
	// what keeps the empty literal '' and the quoted text 'NULL' apart
	// from a missing value and the NULL sentinel, and it decides whether
	// Literal re-quotes the value on output (raw tokens such as numbers
	// are written back bare).
	Quoted bool
}

// String returns a quoted string Field holding s.
func String(s string) Field { return Field{Value: s, Quoted: true} }

// Token returns an unquoted raw-token Field (numbers and other bare
// values).
func Token(s string) Field { return Field{Value: s} }

// NullField is the NULL field value.
var NullField = Field{Null: true}

// RowTuple is one parenthesized group of fields. Position is the only
// identity a field has; no column names survive parsing.
type RowTuple []Field

// Section is the text between a VALUES keyword and the statement
// terminator, plus the byte offset of that text in the original input
// (used for error reporting).
type Section struct {
	Text   string
	Offset int
}

var valuesKeyword = regexp.MustCompile(`(?i)\bVALUES\b`)

// ExtractValuesSections locates every VALUES clause in sql and returns one
// Section per occurrence. Each section runs from just after the keyword to
// the next semicolon, or to the end of the input if none follows. An input
// without any VALUES keyword yields an empty slice; the caller treats that
// as "no rows", not as a parse failure.
func ExtractValuesSections(sql string) []Section {
	var sections []Section
	for _, m := range valuesKeyword.FindAllStringIndex(sql, -1) {
		start := m[1]
		end := strings.Index(sql[start:], ";")
		if end == -1 {
			end = len(sql) - start
		}
		sections = append(sections, Section{
			Text:   sql[start : start+end],
			Offset: start,
		})
	}
	return sections
}

// StructuralError reports a malformed VALUES section: an unterminated
// string literal or an unclosed tuple. Offset is the absolute character
// position in the original input where scanning ended.
type StructuralError struct {
	Offset int
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("malformed VALUES clause at offset %d: %s", e.Offset, e.Reason)
}

// scanState is the tuple scanner state.
type scanState int

const (
	// stateOutside scans for the '(' opening the next tuple.
	stateOutside scanState = iota
	// stateInTuple accumulates a raw token between tuple delimiters.
	stateInTuple
	// stateInString accumulates quoted content verbatim.
	stateInString
)

// ParseValuesTuples scans one section into row tuples, preserving source
// order. The scanner is a character-level state machine so that commas and
// parentheses inside string literals are never mistaken for delimiters,
// and so that the empty literal '' and the quoted text 'NULL' stay string
// fields rather than collapsing into the NULL sentinel.
func ParseValuesTuples(sec Section) ([]RowTuple, error) {
	var (
		tuples  []RowTuple
		current RowTuple
		token   strings.Builder
		state   = stateOutside
		// quoted records whether the pending token ever entered a string
		// literal. It is what keeps '' distinct from a missing value and
		// 'NULL' distinct from NULL.
		quoted bool
	)

	commit := func() {
		v := strings.TrimSpace(token.String())
		switch {
		case !quoted && strings.EqualFold(v, "NULL"):
			current = append(current, NullField)
		case quoted:
			current = append(current, String(v))
		default:
			current = append(current, Token(v))
		}
		token.Reset()
		quoted = false
	}

	s := sec.Text
	for i := 0; i < len(s); i++ {
		ch := s[i]

		switch state {
		case stateOutside:
			// Commas and whitespace between tuples are discarded.
			if ch == '(' {
				state = stateInTuple
				current = nil
				token.Reset()
				quoted = false
			}

		case stateInTuple:
			switch ch {
			case '\'':
				state = stateInString
				quoted = true
			case ',':
				commit()
			case ')':
				commit()
				tuples = append(tuples, current)
				current = nil
				state = stateOutside
			default:
				token.WriteByte(ch)
			}

		case stateInString:
			if ch == '\'' {
				if i+1 < len(s) && s[i+1] == '\'' {
					// SQL escape: '' inside a literal is one quote.
					token.WriteByte('\'')
					i++
					continue
				}
				state = stateInTuple
				continue
			}
			token.WriteByte(ch)
		}
	}

	switch state {
	case stateInString:
		return nil, &StructuralError{Offset: sec.Offset + len(s), Reason: "unterminated string literal"}
	case stateInTuple:
		return nil, &StructuralError{Offset: sec.Offset + len(s), Reason: "unclosed tuple (missing ')')"}
	}
	return tuples, nil
}

// ParseAll extracts and parses every VALUES section in sql. The returned
// tuples keep statement order. An input without VALUES clauses returns an
// empty slice and no error.
func ParseAll(sql string) ([]RowTuple, error) {
	var all []RowTuple
	for _, sec := range ExtractValuesSections(sql) {
		tuples, err := ParseValuesTuples(sec)
		if err != nil {
			return nil, err
		}
		all = append(all, tuples...)
	}
	return all, nil
}

// Escape doubles embedded single quotes for use inside a SQL string
// literal. It is the exact inverse of the scanner's '' handling:
// Escape("O'Brien") == "O''Brien".
func Escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// Literal renders a field as a SQL literal: NULL for null fields, a
// single-quoted escaped string for quoted fields, and the bare token for
// everything else (numeric ids and the like).
func Literal(f Field) string {
	if f.Null {
		return "NULL"
	}
	if f.Quoted {
		return "'" + Escape(f.Value) + "'"
	}
	return f.Value
}
