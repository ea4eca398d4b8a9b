package aqreport

import (
	"strings"
	"unicode"
)

// PreprocessFunc derives a per-row template before row substitution runs,
// e.g. to splice a pre-rendered nested block into it.
type PreprocessFunc func(row Row) (*Template, error)

// ComposeBlock renders one hierarchy level: for each row, in order, it applies
// preprocess (when non-nil) and substitutes names from the row. Results are
// joined with a single newline and trailing whitespace is trimmed.
//
// An empty rows slice yields "" with no error. The first failing row aborts
// the block; its error keeps its kind and gains the row index as metadata.
func ComposeBlock(rows []Row, names PlaceholderSet, tmpl *Template, preprocess PreprocessFunc) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}
	if tmpl == nil && preprocess == nil {
		return "", NewMalformedTemplateError("", errNilTemplate)
	}

	parts := make([]string, 0, len(rows))
	for i, row := range rows {
		rowTmpl := tmpl
		if preprocess != nil {
			var err error
			rowTmpl, err = preprocess(row)
			if err != nil {
				return "", withRowIndex(err, i)
			}
		}
		text, err := Substitute(names, row, rowTmpl)
		if err != nil {
			return "", withRowIndex(err, i)
		}
		parts = append(parts, text)
	}

	return joinBlock(parts), nil
}

// joinBlock joins rendered segments with BlockSeparator and trims the
// trailing whitespace of the result.
func joinBlock(parts []string) string {
	return strings.TrimRightFunc(strings.Join(parts, BlockSeparator), unicode.IsSpace)
}
