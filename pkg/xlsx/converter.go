package xlsx

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ruslano69/dsbot/pkg/core/query"
	"github.com/ruslano69/dsbot/pkg/entity"
)

// Sheet - прочитанный лист: имена колонок и строки в их порядке
type Sheet struct {
	Name    string
	Columns []string
	Rows    []query.Fields
}

// ToXLSX - записывает записи сущности в книгу Excel
//
// Заголовки содержат имя и тип колонки ("hours (integer)"), ключ помечается *.
// Лист называется по таблице сущности.
//
// Example:
//
//	err := xlsx.ToXLSX(exp.Definition(), records, file)
func ToXLSX(def entity.Definition, records []entity.Record, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := def.Table
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("failed to delete default sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	columns := def.Columns()
	cellStyles := make(map[query.ColumnKind]int)
	for _, c := range columns {
		if _, ok := cellStyles[c.Kind]; ok {
			continue
		}
		id, err := f.NewStyle(&excelize.Style{NumFmt: numFmt(c.Kind)})
		if err != nil {
			return fmt.Errorf("failed to create cell style: %w", err)
		}
		cellStyles[c.Kind] = id
	}

	for col, c := range columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		header := fmt.Sprintf("%s (%s)", c.Name, c.Kind)
		if c.PrimaryKey {
			header += " *"
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for rowIdx, rec := range records {
		for col, c := range columns {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, cellValue(rec, c)); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheetName, cell, cell, cellStyles[c.Kind]); err != nil {
				return err
			}
		}
	}

	for col := range columns {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, name, name, 15); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// FromXLSX - читает лист, записанный ToXLSX (или подготовленный вручную)
//
// Заголовки вида "name (type)" или "name (type) *"; тип integer превращает
// ячейки в int64. Пустые ячейки в строку не попадают.
// Пустое имя листа - первый лист книги.
func FromXLSX(r io.Reader, sheetName string) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("sheet %s has no header row", sheetName)
	}

	sheet := &Sheet{Name: sheetName}
	kinds := make([]query.ColumnKind, len(rows[0]))
	for i, header := range rows[0] {
		name, kind, _ := parseHeader(header)
		sheet.Columns = append(sheet.Columns, name)
		kinds[i] = kind
	}

	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		var fields query.Fields
		for col, raw := range rows[rowIdx] {
			if col >= len(sheet.Columns) || raw == "" {
				continue
			}
			value, err := convertFromExcel(raw, kinds[col])
			if err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", rowIdx+1, sheet.Columns[col], err)
			}
			fields = append(fields, query.Field{Name: sheet.Columns[col], Value: value})
		}
		if len(fields) > 0 {
			sheet.Rows = append(sheet.Rows, fields)
		}
	}

	return sheet, nil
}

// parseHeader - разбирает "name (type)" или "name (type) *"
func parseHeader(header string) (name string, kind query.ColumnKind, isKey bool) {
	header = strings.TrimSpace(header)
	name = header
	kind = query.KindString

	if strings.HasSuffix(header, " *") {
		isKey = true
		header = strings.TrimSuffix(header, " *")
		name = header
	}

	if idx := strings.LastIndex(header, "("); idx > 0 {
		if end := strings.LastIndex(header, ")"); end > idx {
			name = strings.TrimSpace(header[:idx])
			kind = query.ColumnKind(strings.ToLower(strings.TrimSpace(header[idx+1 : end])))
		}
	}

	return name, kind, isKey
}

func cellValue(rec entity.Record, c query.Column) any {
	if rec[c.Name] == nil {
		return ""
	}
	if c.Kind == query.KindInteger {
		if n, ok := rec.Int(c.Name); ok {
			return n
		}
	}
	if t, ok := rec[c.Name].(time.Time); ok {
		return t
	}
	return rec.String(c.Name)
}

func convertFromExcel(value string, kind query.ColumnKind) (any, error) {
	if kind == query.KindInteger {
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", value)
		}
		return n, nil
	}
	return value, nil
}

// numFmt - встроенный числовой формат Excel для типа колонки
func numFmt(kind query.ColumnKind) int {
	switch kind {
	case query.KindInteger:
		return 1
	case query.KindDate:
		return 14
	default:
		return 49
	}
}
