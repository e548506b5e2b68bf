package adapters

import (
	"fmt"

	listingdomain "envios-web/internal/features/listing/domain"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Ordenes"

var exportHeaders = []string{
	"ID", "Tracking", "Estado", "Cliente", "Correo", "Teléfono",
	"Origen", "Destino", "Peso (kg)", "Flete", "Total (USD)",
	"Referencia", "Banco", "Fecha de pago", "Hora de pago", "Comprobante",
}

// ExcelExporter implements ports.Exporter as an xlsx workbook.
type ExcelExporter struct{}

// NewExcelExporter creates a new exporter.
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

// Export writes one row per order of page under a bold header row.
func (ExcelExporter) Export(page listingdomain.Page) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return nil, err
	}

	for r, o := range page.Items {
		var customer, email, phone string
		if o.User != nil {
			customer = o.User.FirstName + " " + o.User.LastName
			email = o.User.Email
			phone = o.User.Phone
		}
		row := []any{
			o.ID.String(), o.TrackingNumber, o.StatusLabel, customer, email, phone,
			o.Origin, o.Destination, o.WeightKg, o.Freight, o.TotalDue,
			o.ReferenceNumber, o.BankName, o.PaymentDate, o.PaymentTime, o.ReceiptURL,
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(exportHeaders))
	if err := f.SetColWidth(sheetName, "A", lastCol, 18); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
