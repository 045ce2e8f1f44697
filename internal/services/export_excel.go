package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"ventas-backend/internal/models"
	"ventas-backend/internal/repositories"
	"ventas-backend/internal/timeutil"
)

// Layouts for the "Detalle de Venta" sheet, chosen by the excelFormLayout preference.
const (
	LayoutVertical   = "vertical"
	LayoutHorizontal = "horizontal"
)

type ExportService struct {
	Sales       *SaleService
	Customers   CustomerStore
	Invoices    InvoiceStore
	Preferences PreferenceStore
}

func NewExportService(sales *SaleService, customers CustomerStore, invoices InvoiceStore, prefs PreferenceStore) *ExportService {
	return &ExportService{Sales: sales, Customers: customers, Invoices: invoices, Preferences: prefs}
}

func headerStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	return style
}

func writeHeader(f *excelize.File, sheet string, headers []string, widths []float64) {
	style := headerStyle(f)
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, style)
	}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, v)
	}
}

func displayDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(timeutil.Location()).Format(timeutil.DisplayLayout)
}

// SaleWorkbook builds the four-sheet export of a single sale.
func SaleWorkbook(sale *models.Sale, customer *models.Customer, invoice *models.Invoice, layout string, now time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	const detail = "Detalle de Venta"
	if err := f.SetSheetName("Sheet1", detail); err != nil {
		return nil, err
	}
	for _, name := range []string{"Productos", "Cuotas", "Resumen"} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	invoiceNumber := ""
	if invoice != nil {
		invoiceNumber = invoice.InvoiceNumber
	}
	payment := "Contado"
	if sale.PaymentType == models.PaymentTypeInstallments {
		payment = fmt.Sprintf("%d cuotas %s", sale.NumberOfInstallments, periodLabel(EffectivePeriodType(sale)))
	}
	fields := [][2]any{
		{"Número de venta", sale.SaleNumber},
		{"Factura", invoiceNumber},
		{"Fecha", displayDate(sale.Date)},
		{"Cliente", customer.Name},
		{"DNI", customer.DNI},
		{"Teléfono", customer.Phone},
		{"Forma de pago", payment},
		{"Medio de pago", sale.PaymentMethod},
		{"Código de referencia", sale.ReferenceCode},
		{"Notas", sale.Notes},
	}
	bold := headerStyle(f)
	if layout == LayoutHorizontal {
		for i, kv := range fields {
			top, _ := excelize.CoordinatesToCellName(i+1, 1)
			below, _ := excelize.CoordinatesToCellName(i+1, 2)
			f.SetCellValue(detail, top, kv[0])
			f.SetCellStyle(detail, top, top, bold)
			f.SetCellValue(detail, below, kv[1])
		}
	} else {
		for i, kv := range fields {
			row := i + 1
			f.SetCellValue(detail, fmt.Sprintf("A%d", row), kv[0])
			f.SetCellStyle(detail, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), bold)
			f.SetCellValue(detail, fmt.Sprintf("B%d", row), kv[1])
		}
		f.SetColWidth(detail, "A", "A", 24)
		f.SetColWidth(detail, "B", "B", 36)
	}

	writeHeader(f, "Productos", []string{"Producto", "Cantidad", "Precio unitario", "Subtotal"}, []float64{36, 10, 16, 16})
	for i, it := range sale.Items {
		writeRow(f, "Productos", i+2, it.ProductName, it.Quantity, it.UnitPrice, it.LineTotal)
	}

	writeHeader(f, "Cuotas", []string{"Cuota", "Vencimiento", "Monto", "Pagado", "Saldo", "Estado", "Fecha de pago"}, []float64{8, 14, 14, 14, 14, 12, 14})
	for i, inst := range sale.Installments {
		paidDate := ""
		if inst.PaidDate != nil {
			paidDate = displayDate(*inst.PaidDate)
		}
		writeRow(f, "Cuotas", i+2, inst.InstallmentNumber, displayDate(inst.DueDate), inst.Amount, inst.PaidAmount, inst.Balance,
			installmentStatusLabel[ClassifyInstallment(inst, now)], paidDate)
	}

	var paid, balance float64
	for _, inst := range sale.Installments {
		paid += inst.PaidAmount
		balance += inst.Balance
	}
	if sale.PaymentType == models.PaymentTypeCash {
		paid = sale.TotalAmount
	}
	writeHeader(f, "Resumen", []string{"Concepto", "Importe"}, []float64{24, 16})
	summary := [][2]any{
		{"Subtotal", sale.Subtotal},
		{"Descuento", sale.DiscountAmount},
		{"Total", sale.TotalAmount},
		{"Pagado", paid},
		{"Saldo pendiente", balance},
	}
	for i, kv := range summary {
		writeRow(f, "Resumen", i+2, kv[0], kv[1])
	}

	f.SetActiveSheet(0)
	return f, nil
}

// CustomersWorkbook is the flat customer list export.
func CustomersWorkbook(customers []*models.Customer) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Clientes"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	writeHeader(f, sheet, []string{"ID", "Nombre", "DNI", "Teléfono", "Teléfono alternativo", "Email", "Dirección", "Estado", "Alta"},
		[]float64{6, 28, 12, 16, 16, 26, 30, 10, 12})
	for i, c := range customers {
		status := "Activo"
		if !c.IsActive {
			status = "Archivado"
		}
		writeRow(f, sheet, i+2, c.ID, c.Name, c.DNI, c.Phone, c.SecondaryPhone, c.Email, c.Address, status, displayDate(c.CreatedAt))
	}
	return f, nil
}

var invoiceStatusLabel = map[models.InvoiceStatus]string{
	models.InvoiceEmitted:   "Emitida",
	models.InvoiceSent:      "Enviada",
	models.InvoicePaid:      "Pagada",
	models.InvoiceCancelled: "Anulada",
}

// InvoicesWorkbook is the flat invoice list export.
func InvoicesWorkbook(invoices []*models.Invoice) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Facturas"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	writeHeader(f, sheet, []string{"Número", "Venta", "Cliente", "Total", "Estado", "Fecha"}, []float64{14, 12, 28, 14, 12, 12})
	var total float64
	for i, inv := range invoices {
		writeRow(f, sheet, i+2, inv.InvoiceNumber, inv.SaleNumber, inv.CustomerName, inv.TotalAmount, invoiceStatusLabel[inv.Status], displayDate(inv.CreatedAt))
		if inv.Status != models.InvoiceCancelled {
			total += inv.TotalAmount
		}
	}
	last := len(invoices) + 2
	writeRow(f, sheet, last, "Total", "", "", total)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", last), fmt.Sprintf("F%d", last), style)
	return f, nil
}

// SaleExport builds the workbook of one sale using the saved form layout.
func (s *ExportService) SaleExport(ctx context.Context, saleID int) (*excelize.File, string, error) {
	sale, err := s.Sales.GetSale(ctx, saleID)
	if err != nil {
		return nil, "", err
	}
	customer, err := s.Customers.Get(ctx, sale.CustomerID)
	if err != nil {
		return nil, "", fmt.Errorf("loading customer: %w", err)
	}
	invoice, err := s.Invoices.GetBySaleID(ctx, saleID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, "", err
	}

	layout := LayoutVertical
	if s.Preferences != nil {
		if p, err := s.Preferences.Get(ctx, PrefExcelFormLayout); err == nil && p.Value == LayoutHorizontal {
			layout = LayoutHorizontal
		}
	}
	f, err := SaleWorkbook(sale, customer, invoice, layout, s.Sales.Now())
	if err != nil {
		return nil, "", err
	}
	return f, fmt.Sprintf("venta_%s.xlsx", sale.SaleNumber), nil
}

func (s *ExportService) CustomersExport(ctx context.Context) (*excelize.File, error) {
	customers, err := s.Customers.List(ctx)
	if err != nil {
		return nil, err
	}
	return CustomersWorkbook(customers)
}

func (s *ExportService) InvoicesExport(ctx context.Context) (*excelize.File, error) {
	invoices, err := s.Invoices.GetAllWithDetails(ctx)
	if err != nil {
		return nil, err
	}
	return InvoicesWorkbook(invoices)
}
