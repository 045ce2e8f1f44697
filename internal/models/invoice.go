package models

import "time"

type InvoiceStatus string

const (
	InvoiceEmitted   InvoiceStatus = "emitted"
	InvoiceSent      InvoiceStatus = "sent"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// Invoice represents an invoice emitted for a sale
type Invoice struct {
	ID            int           `json:"id"`
	SaleID        int           `json:"sale_id"`
	CustomerID    int           `json:"customer_id"`
	InvoiceNumber string        `json:"invoice_number"`
	TotalAmount   float64       `json:"total_amount"`
	Status        InvoiceStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	CustomerName  string        `json:"customer_name,omitempty"` // Joined
	SaleNumber    string        `json:"sale_number,omitempty"`   // Joined
}

type CreateInvoiceRequest struct {
	SaleID int `json:"sale_id"`
}

type UpdateInvoiceStatusRequest struct {
	Status InvoiceStatus `json:"status"`
}
