// Package spreadsheet writes the stock catalog as an XLSX workbook.
package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/erazemk/oficina/internal/catalog"
	"github.com/erazemk/oficina/internal/model"
)

// SheetName is the name of the catalog sheet.
const SheetName = "Estoque"

// Header is the first row of the catalog sheet.
var Header = []any{"Código", "Descrição", "Marca", "Qtde", "Unidade", "Preço Un.", "Total"}

// WriteCatalog writes items followed by a summary row to w.
func WriteCatalog(w io.Writer, items []model.StockItem, summary catalog.Summary) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := Header
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := 2
	for _, item := range items {
		values := []any{
			item.Code,
			item.Description,
			item.Brand,
			item.CurrentQuantity,
			item.Unit,
			item.UnitCost.InexactFloat64(),
			item.TotalValue().InexactFloat64(),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", row, err)
		}
		row++
	}

	totals := []any{"Itens", summary.Count, "Estoque baixo", summary.LowStock, "", "Valor total", summary.TotalValue.InexactFloat64()}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(SheetName, cell, &totals); err != nil {
		return fmt.Errorf("writing totals: %w", err)
	}

	if err := style(f, row); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func style(f *excelize.File, lastRow int) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("creating money style: %w", err)
	}

	if err := f.SetCellStyle(SheetName, "A1", "G1", bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "F2", fmt.Sprintf("G%d", lastRow), money); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "B", "B", 40); err != nil {
		return err
	}
	return f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}
