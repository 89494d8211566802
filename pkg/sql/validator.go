// Package sql validates and prepares statements submitted to the analytical
// query endpoint: single read-only statements only, with {{name}} parameter
// templating and injection screening of string parameter values.
package sql

import (
	"errors"
	"strings"
)

var (
	// ErrMultipleStatements indicates the query contains more than one SQL
	// statement.
	ErrMultipleStatements = errors.New("multiple SQL statements not allowed; only single statements are permitted")

	// ErrNotSelect indicates the statement is not a plain SELECT (or WITH
	// ... SELECT). The analytical surface is read-only.
	ErrNotSelect = errors.New("only SELECT statements are permitted")
)

// ValidationResult contains the normalized SQL and any validation error.
type ValidationResult struct {
	NormalizedSQL string
	Error         error
}

// ValidateAndNormalize prepares a submitted statement:
//
//  1. Strip surrounding whitespace and a trailing semicolon (normalize)
//  2. Reject multiple statements (any remaining semicolon outside string
//     literals)
//  3. Reject anything that is not a SELECT or WITH-prefixed query
func ValidateAndNormalize(sqlQuery string) ValidationResult {
	sqlQuery = strings.TrimSpace(sqlQuery)

	if sqlQuery == "" {
		return ValidationResult{NormalizedSQL: sqlQuery}
	}

	normalized := stripTrailingSemicolon(sqlQuery)

	if hasSemicolonOutsideStrings(normalized) {
		return ValidationResult{Error: ErrMultipleStatements}
	}

	if !isReadOnly(normalized) {
		return ValidationResult{Error: ErrNotSelect}
	}

	return ValidationResult{NormalizedSQL: normalized}
}

// isReadOnly accepts statements starting with SELECT or WITH. Everything
// else (INSERT, UPDATE, DELETE, DDL, COPY, EXPLAIN ANALYZE of a write, ...)
// is rejected. A WITH clause can only wrap writes via data-modifying CTEs,
// which the keyword scan below also rejects.
func isReadOnly(sqlQuery string) bool {
	first := firstKeyword(sqlQuery)
	if first != "select" && first != "with" {
		return false
	}

	// Data-modifying CTEs: WITH x AS (DELETE FROM ...) SELECT ...
	if first == "with" && containsWriteKeyword(sqlQuery) {
		return false
	}
	return true
}

// firstKeyword returns the first word of the statement, lowercased, with
// leading comments skipped.
func firstKeyword(sqlQuery string) string {
	s := strings.TrimSpace(sqlQuery)
	for strings.HasPrefix(s, "--") {
		if idx := strings.IndexByte(s, '\n'); idx >= 0 {
			s = strings.TrimSpace(s[idx+1:])
		} else {
			return ""
		}
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

var writeKeywords = []string{"insert", "update", "delete", "merge", "truncate", "drop", "alter", "create", "grant", "copy"}

// containsWriteKeyword scans word boundaries outside string literals for
// write or DDL verbs.
func containsWriteKeyword(sqlQuery string) bool {
	for _, word := range wordsOutsideStrings(sqlQuery) {
		for _, kw := range writeKeywords {
			if word == kw {
				return true
			}
		}
	}
	return false
}

// wordsOutsideStrings tokenizes the statement into lowercased words,
// ignoring everything inside single- or double-quoted literals.
func wordsOutsideStrings(sqlQuery string) []string {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	var words []string
	var current strings.Builder
	state := stateNormal

	flush := func() {
		if current.Len() > 0 {
			words = append(words, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	for _, char := range sqlQuery {
		switch state {
		case stateNormal:
			switch {
			case char == '\'':
				flush()
				state = stateSingleQuote
			case char == '"':
				flush()
				state = stateDoubleQuote
			case char >= 'a' && char <= 'z', char >= 'A' && char <= 'Z', char >= '0' && char <= '9', char == '_':
				current.WriteRune(char)
			default:
				flush()
			}
		case stateSingleQuote:
			if char == '\'' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if char == '"' {
				state = stateNormal
			}
		}
	}
	flush()
	return words
}

// hasSemicolonOutsideStrings reports whether any semicolon survives outside
// string literals. The trailing semicolon has already been stripped, so any
// hit means a second statement.
func hasSemicolonOutsideStrings(sqlQuery string) bool {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	state := stateNormal
	prevChar := rune(0)

	for _, char := range sqlQuery {
		switch state {
		case stateNormal:
			switch char {
			case ';':
				return true
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			// Both backslash escape (\') and SQL doubled quote ('') are
			// handled: a doubled quote exits and immediately re-enters.
			if char == '\'' && prevChar != '\\' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if char == '"' && prevChar != '\\' {
				state = stateNormal
			}
		}
		prevChar = char
	}

	return false
}

// stripTrailingSemicolon removes one trailing semicolon plus surrounding
// whitespace.
func stripTrailingSemicolon(sqlQuery string) string {
	sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	if strings.HasSuffix(sqlQuery, ";") {
		sqlQuery = strings.TrimRight(strings.TrimSuffix(sqlQuery, ";"), " \t\n\r")
	}
	return sqlQuery
}
