package sql

import (
	"fmt"
	"regexp"
)

// parameterRegex matches {{parameter_name}} placeholders. Names start with
// a letter or underscore followed by word characters. The {{name}} syntax
// keeps templates distinct from PostgreSQL's positional $N parameters and
// from shell ${var} expansion.
var parameterRegex = regexp.MustCompile(`\{\{([a-zA-Z_]\w*)\}\}`)

// ExtractParameters returns the deduplicated placeholder names in order of
// first appearance.
func ExtractParameters(sqlQuery string) []string {
	matches := parameterRegex.FindAllStringSubmatch(sqlQuery, -1)
	seen := make(map[string]bool)
	var params []string

	for _, match := range matches {
		name := match[1]
		if !seen[name] {
			seen[name] = true
			params = append(params, name)
		}
	}

	return params
}

// FindParametersInStringLiterals returns placeholder names that appear
// inside single-quoted literals. Those never bind: PostgreSQL would see the
// substituted $N as literal text.
func FindParametersInStringLiterals(sqlQuery string) []string {
	var problems []string
	seen := make(map[string]bool)

	inString := false
	stringStart := 0
	i := 0

	for i < len(sqlQuery) {
		ch := sqlQuery[i]

		if ch == '\'' {
			if inString {
				// Doubled quote ('') stays inside the literal.
				if i+1 < len(sqlQuery) && sqlQuery[i+1] == '\'' {
					i += 2
					continue
				}
				stringContent := sqlQuery[stringStart+1 : i]
				for _, match := range parameterRegex.FindAllStringSubmatch(stringContent, -1) {
					name := match[1]
					if !seen[name] {
						seen[name] = true
						problems = append(problems, name)
					}
				}
				inString = false
			} else {
				inString = true
				stringStart = i
			}
		}
		i++
	}

	return problems
}

// SubstituteParameters replaces each {{name}} placeholder with a PostgreSQL
// positional parameter ($N) and returns the prepared SQL with the ordered
// values for binding. A placeholder appearing more than once reuses its
// position. Every placeholder must have a supplied value; supplied values
// without a placeholder are rejected so a typo cannot silently drop a
// constraint.
func SubstituteParameters(sqlQuery string, values map[string]any) (string, []any, error) {
	if problems := FindParametersInStringLiterals(sqlQuery); len(problems) > 0 {
		return "", nil, fmt.Errorf("parameter {{%s}} appears inside a string literal and cannot bind", problems[0])
	}

	extracted := ExtractParameters(sqlQuery)
	extractedSet := make(map[string]bool, len(extracted))
	for _, name := range extracted {
		if _, ok := values[name]; !ok {
			return "", nil, fmt.Errorf("parameter {{%s}} used in SQL but no value supplied", name)
		}
		extractedSet[name] = true
	}
	for name := range values {
		if !extractedSet[name] {
			return "", nil, fmt.Errorf("parameter %q supplied but not used in SQL", name)
		}
	}

	var orderedValues []any
	paramPositions := make(map[string]int)

	result := parameterRegex.ReplaceAllStringFunc(sqlQuery, func(match string) string {
		name := parameterRegex.FindStringSubmatch(match)[1]

		if pos, exists := paramPositions[name]; exists {
			return fmt.Sprintf("$%d", pos)
		}

		paramPositions[name] = len(orderedValues) + 1
		orderedValues = append(orderedValues, values[name])
		return fmt.Sprintf("$%d", paramPositions[name])
	})

	return result, orderedValues, nil
}
