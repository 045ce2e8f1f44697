package models

import "time"

type CalendarEventType string

const (
	EventSale        CalendarEventType = "sale"
	EventInstallment CalendarEventType = "installment"
	EventCustom      CalendarEventType = "custom"
	EventReminder    CalendarEventType = "reminder"
)

type CalendarEventStatus string

const (
	EventPending   CalendarEventStatus = "pending"
	EventCompleted CalendarEventStatus = "completed"
	EventOverdue   CalendarEventStatus = "overdue"
	EventCancelled CalendarEventStatus = "cancelled"
)

// CalendarEvent is a unified calendar entry. Sale and installment events are
// synthesized on read; only custom and reminder events are stored.
type CalendarEvent struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description,omitempty"`
	Date          time.Time           `json:"date"`
	Type          CalendarEventType   `json:"type"`
	Status        CalendarEventStatus `json:"status"`
	Amount        *float64            `json:"amount,omitempty"`
	Balance       *float64            `json:"balance,omitempty"`
	CustomerID    *int                `json:"customerId,omitempty"`
	SaleID        *int                `json:"saleId,omitempty"`
	InstallmentID *int                `json:"installmentId,omitempty"`
}

type CalendarEventRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Date        time.Time           `json:"date"`
	Type        CalendarEventType   `json:"type"`
	Status      CalendarEventStatus `json:"status"`
	Amount      *float64            `json:"amount"`
	CustomerID  *int                `json:"customerId"`
}
