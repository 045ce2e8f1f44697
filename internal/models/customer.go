package models

import "time"

type Customer struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	DNI            string    `json:"dni,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	SecondaryPhone string    `json:"secondary_phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	Address        string    `json:"address,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CustomerRequest is the body for creating or updating a customer
type CustomerRequest struct {
	Name           string `json:"name"`
	DNI            string `json:"dni"`
	Phone          string `json:"phone"`
	SecondaryPhone string `json:"secondary_phone"`
	Email          string `json:"email"`
	Address        string `json:"address"`
	Notes          string `json:"notes"`
	IsActive       *bool  `json:"is_active"`
}

// CustomerWithInstallments is the per-customer roll-up shown on the
// installment dashboard. It is recomputed on every fetch and never stored.
type CustomerWithInstallments struct {
	Customer
	Sales           []*Sale        `json:"sales"`
	Installments    []*Installment `json:"installments"`
	TotalOwed       float64        `json:"total_owed"`
	OverdueAmount   float64        `json:"overdue_amount"`
	NextPaymentDate *time.Time     `json:"next_payment_date"`
}

// CustomerProfile is a customer with its sales history.
type CustomerProfile struct {
	Customer *Customer      `json:"customer"`
	Sales    []*SaleHistory `json:"sales"`
	Invoices []*Invoice     `json:"invoices"`
}

// SaleHistory pairs a sale with its derived status.
type SaleHistory struct {
	*Sale
	DerivedStatus SaleDisplayStatus `json:"derived_status"`
}
