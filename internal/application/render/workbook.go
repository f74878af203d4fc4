package render

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const workbookSheet = "Fiche"

// RenderWorkbook 生成 .xlsx：表头信息、阶段表格；阿拉伯语时表格从右向左显示
func RenderWorkbook(doc *Document) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), workbookSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	rtl := doc.Direction == "rtl"
	if err := f.SetSheetView(workbookSheet, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		return nil, fmt.Errorf("set sheet view: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Color: "1E40AF"},
	})
	if err != nil {
		return nil, err
	}
	headStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DBEAFE"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return nil, err
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return nil, err
	}

	w := &sheetWriter{f: f}
	row := 1
	w.set(1, row, doc.Title)
	w.style(1, row, 4, row, titleStyle)
	_ = f.MergeCell(workbookSheet, cell(1, row), cell(4, row))
	row++

	for _, h := range append(append([]Row{}, doc.Header...), doc.Objectif) {
		w.set(1, row, h.Label)
		w.set(2, row, h.Value)
		_ = f.MergeCell(workbookSheet, cell(2, row), cell(4, row))
		row++
	}
	row++

	w.set(1, row, doc.StagesHeader)
	for i, c := range doc.Columns {
		w.set(i+2, row, c)
	}
	w.style(1, row, 4, row, headStyle)
	row++

	for _, s := range doc.Sections {
		w.set(1, row, s.Title+"\n"+s.Duration())
		for i, field := range s.Fields {
			w.set(i+2, row, field.Value)
		}
		w.style(1, row, 4, row, cellStyle)
		row++
	}
	if w.err != nil {
		return nil, w.err
	}

	_ = f.SetColWidth(workbookSheet, "A", "A", 28)
	_ = f.SetColWidth(workbookSheet, "B", "D", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) set(col, row int, v string) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellStr(workbookSheet, cell(col, row), v)
}

func (w *sheetWriter) style(c1, r1, c2, r2, style int) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellStyle(workbookSheet, cell(c1, r1), cell(c2, r2), style)
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
