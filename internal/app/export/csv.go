package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// renderCSV writes one table per day: header, vote rows, a blank separator
// row, then the summary. The full export prefixes each day with a marker row
// and separates the sections with blank rows.
func renderCSV(sections []daySection, all bool) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	for i, section := range sections {
		if all {
			if i > 0 {
				if err := writeBlank(w); err != nil {
					return nil, err
				}
			}
			if err := w.Write([]string{fmt.Sprintf("=== %s ===", section.Day)}); err != nil {
				return nil, fmt.Errorf("csv export: %w", err)
			}
		}

		if err := w.Write(headerRow); err != nil {
			return nil, fmt.Errorf("csv export: %w", err)
		}
		for _, row := range section.Votes {
			if err := w.Write(row.cells()); err != nil {
				return nil, fmt.Errorf("csv export: %w", err)
			}
		}

		if err := writeBlank(w); err != nil {
			return nil, err
		}
		for _, row := range section.Summary {
			if err := w.Write(row.cells()); err != nil {
				return nil, fmt.Errorf("csv export: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv export: %w", err)
	}
	return buf.Bytes(), nil
}

func writeBlank(w *csv.Writer) error {
	if err := w.Write([]string{""}); err != nil {
		return fmt.Errorf("csv export: %w", err)
	}
	return nil
}
