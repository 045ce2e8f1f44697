package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"ventas-backend/internal/events"
	"ventas-backend/internal/models"
	"ventas-backend/internal/repositories"
)

type InvoiceService struct {
	Invoices  InvoiceStore
	Sales     *SaleService
	Customers CustomerStore
	Notifier  events.Notifier
	Log       zerolog.Logger
}

func NewInvoiceService(invoices InvoiceStore, sales *SaleService, customers CustomerStore, notifier events.Notifier, log zerolog.Logger) *InvoiceService {
	return &InvoiceService{Invoices: invoices, Sales: sales, Customers: customers, Notifier: notifier, Log: log}
}

// invoiceTransitions lists the statuses an invoice may move to.
var invoiceTransitions = map[models.InvoiceStatus][]models.InvoiceStatus{
	models.InvoiceEmitted: {models.InvoiceSent, models.InvoicePaid, models.InvoiceCancelled},
	models.InvoiceSent:    {models.InvoicePaid, models.InvoiceCancelled},
	models.InvoicePaid:    {models.InvoiceCancelled},
}

// CanTransition reports whether an invoice in from may move to to.
func CanTransition(from, to models.InvoiceStatus) bool {
	for _, s := range invoiceTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CreateForSale emits the invoice for a sale. A sale has at most one invoice.
func (s *InvoiceService) CreateForSale(ctx context.Context, saleID int) (models.Ack, error) {
	sale, err := s.Sales.Sales.Get(ctx, saleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Ack{}, invalid("sale_id", "la venta no existe")
		}
		return models.Ack{}, err
	}

	existing, err := s.Invoices.GetBySaleID(ctx, saleID)
	switch {
	case err == nil && existing != nil:
		return models.Ack{}, invalid("sale_id", fmt.Sprintf("la venta ya tiene la factura %s", existing.InvoiceNumber))
	case err != nil && !errors.Is(err, repositories.ErrNotFound):
		return models.Ack{}, err
	}

	inv := &models.Invoice{
		SaleID:      sale.ID,
		CustomerID:  sale.CustomerID,
		TotalAmount: sale.TotalAmount,
		Status:      models.InvoiceEmitted,
	}
	if err := s.Invoices.Create(ctx, inv); err != nil {
		return models.Ack{}, fmt.Errorf("creating invoice: %w", err)
	}
	s.Log.Info().Int("invoice_id", inv.ID).Str("invoice_number", inv.InvoiceNumber).Int("sale_id", saleID).Msg("invoice emitted")
	s.notify(ctx)
	return models.Ack{Entity: events.EntityInvoices, ID: inv.ID, Action: "create"}, nil
}

func (s *InvoiceService) ListInvoices(ctx context.Context) ([]*models.Invoice, error) {
	return s.Invoices.GetAllWithDetails(ctx)
}

func (s *InvoiceService) GetBySale(ctx context.Context, saleID int) (*models.Invoice, error) {
	return s.Invoices.GetBySaleID(ctx, saleID)
}

// NextInvoiceNumber previews the number the next invoice will get.
func (s *InvoiceService) NextInvoiceNumber(ctx context.Context) (string, error) {
	return s.Invoices.GetNextInvoiceNumber(ctx)
}

func (s *InvoiceService) UpdateStatus(ctx context.Context, id int, status models.InvoiceStatus) (models.Ack, error) {
	inv, err := s.Invoices.Get(ctx, id)
	if err != nil {
		return models.Ack{}, err
	}
	if inv.Status == status {
		return models.Ack{Entity: events.EntityInvoices, ID: id, Action: "status"}, nil
	}
	if !CanTransition(inv.Status, status) {
		return models.Ack{}, invalid("status", fmt.Sprintf("no se puede pasar de %s a %s", inv.Status, status))
	}
	if err := s.Invoices.UpdateStatus(ctx, id, status); err != nil {
		return models.Ack{}, err
	}
	s.notify(ctx)
	return models.Ack{Entity: events.EntityInvoices, ID: id, Action: "status"}, nil
}

// SaleInvoicePDF renders the invoice of a sale. Sales without an emitted
// invoice are rendered as a receipt with a provisional number.
func (s *InvoiceService) SaleInvoicePDF(ctx context.Context, saleID int) ([]byte, error) {
	sale, err := s.Sales.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	customer, err := s.Customers.Get(ctx, sale.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("loading customer: %w", err)
	}
	inv, err := s.Invoices.GetBySaleID(ctx, saleID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	return RenderInvoicePDF(InvoiceDocument{Invoice: inv, Sale: sale, Customer: customer}, s.Sales.Now())
}

func (s *InvoiceService) notify(ctx context.Context) {
	if s.Notifier != nil {
		s.Notifier.Notify(ctx, events.EntityInvoices)
	}
}
