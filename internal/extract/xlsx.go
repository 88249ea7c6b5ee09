package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXAdapter walks every sheet in workbook order and every row in sheet order,
// joining non-empty cell values with a single space and emitting one line per
// non-empty row. Leading/trailing whitespace of the final text is trimmed.
type XLSXAdapter struct{}

func (a *XLSXAdapter) Extract(ctx context.Context, path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		for _, row := range rows {
			cells := make([]string, 0, len(row))
			for _, cell := range row {
				if strings.TrimSpace(cell) == "" {
					continue
				}
				cells = append(cells, cell)
			}
			if len(cells) == 0 {
				continue
			}
			b.WriteString(strings.Join(cells, " "))
			b.WriteByte('\n')
		}
	}
	return strings.TrimSpace(b.String()), nil
}
