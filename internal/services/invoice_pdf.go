package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf/v2"

	"ventas-backend/internal/models"
	"ventas-backend/internal/timeutil"
)

// InvoiceDocument is everything printed on an invoice. Invoice may be nil.
type InvoiceDocument struct {
	Invoice  *models.Invoice
	Sale     *models.Sale
	Customer *models.Customer
}

var installmentStatusLabel = map[models.DisplayStatus]string{
	models.DisplayPending: "Pendiente",
	models.DisplayPaid:    "Pagada",
	models.DisplayOverdue: "Vencida",
}

func formatMoney(v float64) string {
	return fmt.Sprintf("$ %.2f", v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// RenderInvoicePDF draws an A4 invoice: header band, customer and sale blocks,
// line items, installment schedule, totals and footer.
func RenderInvoicePDF(doc InvoiceDocument, now time.Time) ([]byte, error) {
	sale, customer := doc.Sale, doc.Customer

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Generado el %s - Página %d", now.In(timeutil.Location()).Format("02/01/2006 15:04"), pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// Header band
	pdf.SetFillColor(33, 37, 41)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(190, 14, "FACTURA", "", 1, "C", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	number := "Comprobante provisorio"
	if doc.Invoice != nil {
		number = "N° " + doc.Invoice.InvoiceNumber
	}
	pdf.CellFormat(190, 7, tr(number), "", 1, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(5)

	// Customer block
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Cliente", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 7, tr("Nombre: "+customer.Name), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, tr("DNI: "+customer.DNI), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, tr("Teléfono: "+customer.Phone), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, tr("Email: "+customer.Email), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(190, 7, tr("Dirección: "+customer.Address), "LRB", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Sale block
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Venta", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 7, tr("Número: "+sale.SaleNumber), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, "Fecha: "+sale.Date.In(timeutil.Location()).Format(timeutil.DisplayLayout), "RB", 1, "L", false, 0, "")
	payment := "Contado"
	if sale.PaymentType == models.PaymentTypeInstallments {
		payment = fmt.Sprintf("%d cuotas (%s)", sale.NumberOfInstallments, periodLabel(EffectivePeriodType(sale)))
	}
	pdf.CellFormat(95, 7, tr("Forma de pago: "+payment), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, tr("Medio: "+sale.PaymentMethod), "RB", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Line items
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(90, 7, "Producto", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Cantidad", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Precio unit.", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Subtotal", "1", 1, "C", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, it := range sale.Items {
		pdf.CellFormat(90, 6, tr(truncate(it.ProductName, 45)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%g", it.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, formatMoney(it.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, formatMoney(it.LineTotal), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// Installment schedule
	if len(sale.Installments) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(190, 8, "Plan de cuotas", "1", 1, "L", true, 0, "")
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(20, 7, "Cuota", "1", 0, "C", true, 0, "")
		pdf.CellFormat(40, 7, "Vencimiento", "1", 0, "C", true, 0, "")
		pdf.CellFormat(40, 7, "Monto", "1", 0, "C", true, 0, "")
		pdf.CellFormat(40, 7, "Pagado", "1", 0, "C", true, 0, "")
		pdf.CellFormat(50, 7, "Estado", "1", 1, "C", true, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, inst := range sale.Installments {
			status := ClassifyInstallment(inst, now)
			switch status {
			case models.DisplayOverdue:
				pdf.SetFillColor(255, 200, 200)
			case models.DisplayPaid:
				pdf.SetFillColor(200, 255, 200)
			default:
				pdf.SetFillColor(255, 255, 255)
			}
			pdf.CellFormat(20, 6, fmt.Sprintf("%d", inst.InstallmentNumber), "1", 0, "C", false, 0, "")
			pdf.CellFormat(40, 6, inst.DueDate.In(timeutil.Location()).Format(timeutil.DisplayLayout), "1", 0, "C", false, 0, "")
			pdf.CellFormat(40, 6, formatMoney(inst.Amount), "1", 0, "R", false, 0, "")
			pdf.CellFormat(40, 6, formatMoney(inst.PaidAmount), "1", 0, "R", false, 0, "")
			pdf.CellFormat(50, 6, installmentStatusLabel[status], "1", 1, "C", true, 0, "")
		}
		pdf.Ln(4)
	}

	// Totals
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(150, 7, "Subtotal", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, formatMoney(sale.Subtotal), "", 1, "R", false, 0, "")
	if sale.DiscountAmount > 0 {
		pdf.CellFormat(150, 7, "Descuento", "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, "- "+formatMoney(sale.DiscountAmount), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(150, 10, "TOTAL", "1", 0, "R", true, 0, "")
	pdf.CellFormat(40, 10, formatMoney(sale.TotalAmount), "1", 1, "R", true, 0, "")
	pdf.Ln(6)

	// Tracking note
	pdf.SetFont("Arial", "I", 9)
	note := fmt.Sprintf("Conserve este comprobante. Para consultas indique el número de venta %s.", sale.SaleNumber)
	if sale.ReferenceCode != "" {
		note += " Código de seguimiento: " + sale.ReferenceCode + "."
	}
	pdf.MultiCell(190, 5, tr(note), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func periodLabel(p models.PeriodType) string {
	switch p {
	case models.PeriodWeekly:
		return "semanal"
	case models.PeriodBiweekly:
		return "quincenal"
	default:
		return "mensual"
	}
}
