package models

import "time"

type PaymentType string

const (
	PaymentTypeCash         PaymentType = "cash"
	PaymentTypeInstallments PaymentType = "installments"
)

type PeriodType string

const (
	PeriodMonthly  PeriodType = "monthly"
	PeriodBiweekly PeriodType = "biweekly"
	PeriodWeekly   PeriodType = "weekly"
)

// Valid reports whether p is one of the known period types.
func (p PeriodType) Valid() bool {
	switch p {
	case PeriodMonthly, PeriodBiweekly, PeriodWeekly:
		return true
	}
	return false
}

type SalePaymentStatus string

const (
	SalePaid    SalePaymentStatus = "paid"
	SaleUnpaid  SalePaymentStatus = "unpaid"
	SaleOverdue SalePaymentStatus = "overdue"
)

type SaleStatus string

const (
	SaleCompleted SaleStatus = "completed"
	SalePending   SaleStatus = "pending"
)

// SaleDisplayStatus is the status shown in a customer's sales history.
type SaleDisplayStatus string

const (
	SaleDisplayOverdue   SaleDisplayStatus = "overdue"
	SaleDisplayActive    SaleDisplayStatus = "active"
	SaleDisplayCompleted SaleDisplayStatus = "completed"
)

type Sale struct {
	ID                   int               `json:"id"`
	CustomerID           int               `json:"customer_id"`
	CustomerName         string            `json:"customer_name,omitempty"` // Joined from customers table
	SaleNumber           string            `json:"sale_number"`
	ReferenceCode        string            `json:"reference_code,omitempty"`
	Date                 time.Time         `json:"date"`
	PaymentType          PaymentType       `json:"payment_type"`
	PaymentMethod        string            `json:"payment_method"`
	PeriodType           PeriodType        `json:"period_type,omitempty"`
	NumberOfInstallments int               `json:"number_of_installments,omitempty"`
	Subtotal             float64           `json:"subtotal"`
	DiscountAmount       float64           `json:"discount_amount"`
	TotalAmount          float64           `json:"total_amount"`
	PaymentStatus        SalePaymentStatus `json:"payment_status"`
	Status               SaleStatus        `json:"status"`
	Notes                string            `json:"notes,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	Items                []*SaleItem       `json:"items,omitempty"`
	Installments         []*Installment    `json:"installments,omitempty"`
}

type SaleItem struct {
	ID          int     `json:"id"`
	SaleID      int     `json:"sale_id"`
	ProductID   *int    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
}

// CreateSaleRequest is the body for registering a sale
type CreateSaleRequest struct {
	CustomerID           int                     `json:"customer_id"`
	ReferenceCode        string                  `json:"reference_code"`
	Date                 *time.Time              `json:"date"`
	PaymentType          PaymentType             `json:"payment_type"`
	PaymentMethod        string                  `json:"payment_method"`
	PeriodType           PeriodType              `json:"period_type"`
	NumberOfInstallments int                     `json:"number_of_installments"`
	DiscountAmount       float64                 `json:"discount_amount"`
	Notes                string                  `json:"notes"`
	Items                []CreateSaleItemRequest `json:"items"`
}

type CreateSaleItemRequest struct {
	ProductID   *int    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// SaleListParams controls paginated sale listings
type SaleListParams struct {
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	Search     string `json:"search"`
	CustomerID int    `json:"customer_id"`
}

// Page is one page of a paginated listing
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}
