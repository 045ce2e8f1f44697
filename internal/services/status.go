package services

import (
	"time"

	"ventas-backend/internal/models"
)

// DeriveDisplayStatus is the single overdue rule: paid wins, then a due date
// in the past means overdue whatever the stored status says, else pending.
func DeriveDisplayStatus(stored models.InstallmentStatus, dueDate, now time.Time) models.DisplayStatus {
	if stored == models.InstallmentPaid {
		return models.DisplayPaid
	}
	if dueDate.Before(now) {
		return models.DisplayOverdue
	}
	return models.DisplayPending
}

// ClassifyInstallment applies DeriveDisplayStatus to an installment.
func ClassifyInstallment(inst *models.Installment, now time.Time) models.DisplayStatus {
	return DeriveDisplayStatus(inst.Status, inst.DueDate, now)
}

// DeriveSaleStatus returns the status shown in a customer's sales history.
func DeriveSaleStatus(sale *models.Sale, installments []*models.Installment, now time.Time) models.SaleDisplayStatus {
	if sale.PaymentType == models.PaymentTypeCash {
		return models.SaleDisplayCompleted
	}
	active := false
	for _, inst := range installments {
		switch ClassifyInstallment(inst, now) {
		case models.DisplayOverdue:
			return models.SaleDisplayOverdue
		case models.DisplayPending:
			active = true
		}
	}
	if active {
		return models.SaleDisplayActive
	}
	return models.SaleDisplayCompleted
}

// countsAsOverdue is the roll-up's overdue test. It reads the stored status:
// explicitly overdue, or still pending with a due date in the past.
func countsAsOverdue(inst *models.Installment, now time.Time) bool {
	if inst.Status == models.InstallmentOverdue {
		return true
	}
	return inst.Status == models.InstallmentPending && inst.DueDate.Before(now)
}

// eventStatus maps an installment's display status onto the calendar vocabulary.
func eventStatus(s models.DisplayStatus) models.CalendarEventStatus {
	switch s {
	case models.DisplayPaid:
		return models.EventCompleted
	case models.DisplayOverdue:
		return models.EventOverdue
	default:
		return models.EventPending
	}
}
