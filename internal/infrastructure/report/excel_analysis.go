// Package report genera el mapa comparativo de propuestas en XLSX.
package report

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Compras-api/internal/application/ports"
	"github.com/jhoicas/Compras-api/internal/domain/purchasing"
)

var _ ports.AnalysisSpreadsheetGenerator = (*ExcelGenerator)(nil)

const (
	sheetMap     = "Mapa comparativo"
	sheetSummary = "Resumen"
	moneyFormat  = "#,##0.00"
)

// ExcelGenerator implementa ports.AnalysisSpreadsheetGenerator con excelize.
type ExcelGenerator struct{}

// NewExcelGenerator construye el generador.
func NewExcelGenerator() *ExcelGenerator { return &ExcelGenerator{} }

type styles struct {
	header, best, money, bold int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#00467F"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	}); err != nil {
		return s, err
	}
	if s.best, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Color: "#006100"},
		Fill:         excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
		CustomNumFmt: strPtr(moneyFormat),
	}); err != nil {
		return s, err
	}
	if s.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(moneyFormat)}); err != nil {
		return s, err
	}
	s.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: strPtr(moneyFormat)})
	return s, err
}

// GenerateAnalysisXLSX una fila por ítem, dos columnas (unitario y total) por proveedor;
// la mejor cotización de cada ítem queda resaltada.
func (g *ExcelGenerator) GenerateAnalysisXLSX(_ context.Context, r ports.AnalysisReport) ([]byte, error) {
	if r.Request == nil {
		return nil, fmt.Errorf("xlsx: falta la solicitud")
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetMap); err != nil {
		return nil, fmt.Errorf("xlsx: hoja: %w", err)
	}
	st, err := newStyles(f)
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilos: %w", err)
	}
	if err := writeMap(f, st, r); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return nil, fmt.Errorf("xlsx: hoja: %w", err)
	}
	if err := writeSummary(f, st, r); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: serializar: %w", err)
	}
	return buf.Bytes(), nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func writeMap(f *excelize.File, st styles, r ports.AnalysisReport) error {
	a := r.Analysis
	title := fmt.Sprintf("Mapa comparativo %s · %s", r.Request.Number, r.Request.Title)
	if r.Company != nil {
		title = r.Company.Name + " · " + title
	}
	set := func(c string, v any) {
		_ = f.SetCellValue(sheetMap, c, v)
	}
	set("A1", title)

	// fila 3: encabezados; cada proveedor ocupa dos columnas
	const headerRow = 3
	set(cell(1, headerRow), "Ítem")
	set(cell(2, headerRow), "Cantidad")
	supplierCol := map[string]int{}
	for i, s := range a.SupplierTotals {
		c := 3 + i*2
		supplierCol[s.SupplierID] = c
		set(cell(c, headerRow), s.SupplierName+" (unitario)")
		set(cell(c+1, headerRow), s.SupplierName+" (total)")
	}
	lastCol := 2 + len(a.SupplierTotals)*2
	bestCol := lastCol + 1
	set(cell(bestCol, headerRow), "Mejor proveedor")
	set(cell(bestCol+1, headerRow), "Mejor total")
	if err := f.SetCellStyle(sheetMap, cell(1, headerRow), cell(bestCol+1, headerRow), st.header); err != nil {
		return fmt.Errorf("xlsx: estilo encabezado: %w", err)
	}

	row := headerRow + 1
	for _, it := range a.Items {
		set(cell(1, row), it.Item.Description)
		set(cell(2, row), it.Item.Quantity.InexactFloat64())
		for _, q := range it.Quotes {
			c, ok := supplierCol[q.SupplierID]
			if !ok {
				continue
			}
			set(cell(c, row), q.UnitPrice.InexactFloat64())
			set(cell(c+1, row), q.Effective().InexactFloat64())
			style := st.money
			if it.Best != nil && it.Best.SupplierID == q.SupplierID {
				style = st.best
			}
			_ = f.SetCellStyle(sheetMap, cell(c, row), cell(c+1, row), style)
		}
		if it.Best != nil {
			set(cell(bestCol, row), it.Best.SupplierName)
			set(cell(bestCol+1, row), it.Best.Effective().InexactFloat64())
			_ = f.SetCellStyle(sheetMap, cell(bestCol+1, row), cell(bestCol+1, row), st.money)
		} else {
			set(cell(bestCol, row), "sin cotización")
		}
		row++
	}

	// totales por proveedor y total óptimo
	set(cell(1, row), "Total")
	for _, s := range a.SupplierTotals {
		c := supplierCol[s.SupplierID]
		set(cell(c+1, row), s.Total.InexactFloat64())
	}
	set(cell(bestCol+1, row), a.OptimalTotal.InexactFloat64())
	_ = f.SetCellStyle(sheetMap, cell(1, row), cell(bestCol+1, row), st.bold)

	_ = f.SetColWidth(sheetMap, "A", "A", 40)
	_ = f.SetColWidth(sheetMap, "B", "B", 10)
	if lastCol >= 3 {
		_ = f.SetColWidth(sheetMap, colName(3), colName(bestCol+1), 18)
	}
	return f.SetPanes(sheetMap, &excelize.Panes{
		Freeze: true, XSplit: 1, YSplit: headerRow, TopLeftCell: cell(2, headerRow+1), ActivePane: "bottomRight",
	})
}

func writeSummary(f *excelize.File, st styles, r ports.AnalysisReport) error {
	a := r.Analysis
	rows := [][]any{
		{"Solicitud", r.Request.Number},
		{"Recomendación", recommendationLabel(a.Recommendation)},
		{"Total óptimo (ítem por ítem)", a.OptimalTotal.InexactFloat64()},
	}
	if a.BestSingle != nil {
		rows = append(rows,
			[]any{"Mejor proveedor único", a.BestSingle.SupplierName},
			[]any{"Total proveedor único", a.BestSingle.Total.InexactFloat64()},
			[]any{"Óptimo comparable", a.ComparableOptimal.InexactFloat64()},
			[]any{"Ahorro", a.Savings.InexactFloat64()},
			[]any{"Ahorro %", a.SavingsPct.InexactFloat64()},
		)
	}
	for i, vals := range rows {
		if err := f.SetSheetRow(sheetSummary, cell(1, i+1), &vals); err != nil {
			return fmt.Errorf("xlsx: resumen: %w", err)
		}
	}
	_ = f.SetCellStyle(sheetSummary, "B3", cell(2, len(rows)), st.money)

	// plan de compra por proveedor
	start := len(rows) + 3
	header := []any{"Proveedor", "Ítems", "Subtotal"}
	_ = f.SetSheetRow(sheetSummary, cell(1, start), &header)
	_ = f.SetCellStyle(sheetSummary, cell(1, start), cell(3, start), st.header)
	for i, al := range a.Allocations {
		vals := []any{al.SupplierName, len(al.Items), al.Subtotal.InexactFloat64()}
		_ = f.SetSheetRow(sheetSummary, cell(1, start+1+i), &vals)
	}
	if len(a.UnquotedItems) > 0 {
		at := start + len(a.Allocations) + 2
		_ = f.SetCellValue(sheetSummary, cell(1, at), "Ítems sin cotización")
		for i, it := range a.UnquotedItems {
			_ = f.SetCellValue(sheetSummary, cell(1, at+1+i), it.Description)
		}
	}
	return f.SetColWidth(sheetSummary, "A", "A", 32)
}

func recommendationLabel(r string) string {
	switch r {
	case purchasing.RecommendationSingle:
		return "Comprar todo a un proveedor"
	case purchasing.RecommendationSplit:
		return "Dividir la compra entre proveedores"
	default:
		return "Sin cotizaciones"
	}
}

func colName(n int) string {
	name, _ := excelize.ColumnNumberToName(n)
	return name
}

func strPtr(s string) *string { return &s }
