package models

import "time"

type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "pending"
	InstallmentPaid    InstallmentStatus = "paid"
	InstallmentOverdue InstallmentStatus = "overdue"
	InstallmentPartial InstallmentStatus = "partial"
)

// DisplayStatus is what the installment looks like to a user right now.
// The stored InstallmentStatus may be stale; DisplayStatus never is.
type DisplayStatus string

const (
	DisplayPending DisplayStatus = "pending"
	DisplayPaid    DisplayStatus = "paid"
	DisplayOverdue DisplayStatus = "overdue"
)

type Installment struct {
	ID                int               `json:"id"`
	SaleID            int               `json:"sale_id"`
	InstallmentNumber int               `json:"installment_number"`
	DueDate           time.Time         `json:"due_date"`
	Amount            float64           `json:"amount"`
	PaidAmount        float64           `json:"paid_amount"`
	Balance           float64           `json:"balance"`
	Status            InstallmentStatus `json:"status"`
	PaidDate          *time.Time        `json:"paid_date,omitempty"`
}

// Payment is one ledger row written when money is received for a sale
type Payment struct {
	ID            int       `json:"id"`
	SaleID        int       `json:"sale_id"`
	InstallmentID *int      `json:"installment_id,omitempty"`
	Amount        float64   `json:"amount"`
	PaymentMethod string    `json:"payment_method"`
	PaymentDate   time.Time `json:"payment_date"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// PaymentApplier computes the updated installment and its ledger row from the
// current, locked state of the installment.
type PaymentApplier func(locked *Installment) (*Installment, *Payment, error)

type RecordPaymentRequest struct {
	Amount        float64    `json:"amount"`
	PaymentMethod string     `json:"payment_method"`
	PaymentDate   *time.Time `json:"payment_date"`
	Notes         string     `json:"notes"`
}

// UpcomingInstallment is an installment joined with its sale and customer
type UpcomingInstallment struct {
	Installment
	SaleNumber           string `json:"sale_number"`
	NumberOfInstallments int    `json:"number_of_installments"`
	CustomerID           int    `json:"customer_id"`
	CustomerName         string `json:"customer_name"`
}
