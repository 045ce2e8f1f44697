package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"ventas-backend/internal/models"
)

func newInvoiceFixture(now time.Time) (*InvoiceService, *fakeInvoices) {
	customers := newFakeCustomers(&models.Customer{ID: 1, Name: "José Núñez", DNI: "30123456", Phone: "11-5555-0101"})
	sales := &fakeSales{rows: []*models.Sale{{
		ID: 5, CustomerID: 1, SaleNumber: "V-000005", Date: date(2024, time.January, 10),
		PaymentType: models.PaymentTypeInstallments, NumberOfInstallments: 2, PeriodType: models.PeriodMonthly,
		Subtotal: 200, TotalAmount: 200, PaymentMethod: "efectivo",
	}}}
	items := &fakeItems{bySale: map[int][]*models.SaleItem{5: {{ProductName: "Colchón de dos plazas", Quantity: 1, UnitPrice: 200, LineTotal: 200}}}}
	insts := &fakeInstallments{bySale: map[int][]*models.Installment{5: {
		{ID: 1, SaleID: 5, InstallmentNumber: 1, Amount: 100, PaidAmount: 100, Status: models.InstallmentPaid, DueDate: date(2024, time.February, 10)},
		{ID: 2, SaleID: 5, InstallmentNumber: 2, Amount: 100, Balance: 100, Status: models.InstallmentPending, DueDate: date(2024, time.March, 1)},
	}}}
	invoices := &fakeInvoices{}
	saleSvc := NewSaleService(sales, customers, items, insts, nil, nil, 0, nil, zerolog.Nop())
	saleSvc.Now = func() time.Time { return now }
	return NewInvoiceService(invoices, saleSvc, customers, nil, zerolog.Nop()), invoices
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to models.InvoiceStatus
		ok       bool
	}{
		{models.InvoiceEmitted, models.InvoiceSent, true},
		{models.InvoiceEmitted, models.InvoicePaid, true},
		{models.InvoiceSent, models.InvoicePaid, true},
		{models.InvoicePaid, models.InvoiceCancelled, true},
		{models.InvoicePaid, models.InvoiceSent, false},
		{models.InvoiceCancelled, models.InvoiceEmitted, false},
		{models.InvoiceSent, models.InvoiceEmitted, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.ok {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.ok)
		}
	}
}

func TestCreateInvoiceForSale(t *testing.T) {
	s, invoices := newInvoiceFixture(date(2024, time.March, 10))
	ctx := context.Background()

	ack, err := s.CreateForSale(ctx, 5)
	if err != nil {
		t.Fatalf("CreateForSale: %v", err)
	}
	inv := invoices.rows[0]
	if ack.ID != inv.ID || inv.InvoiceNumber != "FAC-000001" || inv.TotalAmount != 200 || inv.Status != models.InvoiceEmitted {
		t.Errorf("invoice = %+v", inv)
	}

	if _, err := s.CreateForSale(ctx, 5); !IsValidation(err) {
		t.Errorf("second invoice: err = %v, want validation error", err)
	}
	if _, err := s.CreateForSale(ctx, 99); !IsValidation(err) {
		t.Errorf("unknown sale: err = %v, want validation error", err)
	}

	if _, err := s.UpdateStatus(ctx, inv.ID, models.InvoiceSent); err != nil {
		t.Fatal(err)
	}
	if _, err := s.UpdateStatus(ctx, inv.ID, models.InvoiceEmitted); !IsValidation(err) {
		t.Errorf("sent -> emitted: err = %v", err)
	}
	if _, err := s.UpdateStatus(ctx, inv.ID, models.InvoiceSent); err != nil {
		t.Errorf("same status should be a no-op, err = %v", err)
	}
}

func TestSaleInvoicePDF(t *testing.T) {
	s, _ := newInvoiceFixture(date(2024, time.March, 10))
	ctx := context.Background()

	receipt, err := s.SaleInvoicePDF(ctx, 5)
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if !bytes.HasPrefix(receipt, []byte("%PDF")) {
		t.Errorf("not a PDF: %q", receipt[:min(len(receipt), 8)])
	}

	if _, err := s.CreateForSale(ctx, 5); err != nil {
		t.Fatal(err)
	}
	invoice, err := s.SaleInvoicePDF(ctx, 5)
	if err != nil {
		t.Fatalf("invoice: %v", err)
	}
	if len(invoice) == 0 {
		t.Error("empty PDF")
	}
}
