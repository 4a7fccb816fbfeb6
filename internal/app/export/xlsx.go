package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// renderXLSX produces one worksheet per day, named after the day: header,
// vote rows, a blank row, the evaluation label, then the summary rows.
func renderXLSX(sections []daySection) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, section := range sections {
		sheet := section.Day
		if i == 0 {
			// Reuse the default sheet for the first day instead of leaving an
			// empty Sheet1 behind.
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return nil, fmt.Errorf("xlsx export: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, fmt.Errorf("xlsx export: %w", err)
			}
		}

		rowIdx := 1
		if err := setRow(f, sheet, rowIdx, headerRow); err != nil {
			return nil, err
		}
		rowIdx++

		for _, row := range section.Votes {
			if err := setRow(f, sheet, rowIdx, row.cells()); err != nil {
				return nil, err
			}
			rowIdx++
		}

		rowIdx++ // blank separator row
		if err := setRow(f, sheet, rowIdx, []string{evaluationLabel}); err != nil {
			return nil, err
		}
		rowIdx++

		for _, row := range section.Summary {
			if err := setRow(f, sheet, rowIdx, row.cells()); err != nil {
				return nil, err
			}
			rowIdx++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx export: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, cells []string) error {
	values := make([]any, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("xlsx export: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("xlsx export: %w", err)
	}
	return nil
}
