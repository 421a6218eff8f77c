package dataset

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ReadExcel loads the first sheet of an .xlsx workbook into a table. The
// first row is the header; later rows are padded to the header width.
func ReadExcel(r io.Reader) (*Table, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return New(), nil
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return New(), nil
	}

	t := New(rows[0]...)
	for _, row := range rows[1:] {
		t.AppendRow(row...)
	}
	return t, nil
}
