package services

import (
	"testing"
	"time"

	"ventas-backend/internal/models"
)

func TestDeriveDisplayStatus(t *testing.T) {
	now := date(2024, time.March, 10)
	tests := []struct {
		name   string
		stored models.InstallmentStatus
		due    time.Time
		want   models.DisplayStatus
	}{
		{"pending in the past", models.InstallmentPending, date(2024, time.March, 1), models.DisplayOverdue},
		{"pending in the future", models.InstallmentPending, date(2024, time.April, 1), models.DisplayPending},
		{"paid in the past", models.InstallmentPaid, date(2024, time.January, 1), models.DisplayPaid},
		{"paid in the future", models.InstallmentPaid, date(2024, time.December, 1), models.DisplayPaid},
		{"partial in the past", models.InstallmentPartial, date(2024, time.March, 9), models.DisplayOverdue},
		{"stored overdue but not due yet", models.InstallmentOverdue, date(2024, time.March, 20), models.DisplayPending},
		{"due exactly now", models.InstallmentPending, now, models.DisplayPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveDisplayStatus(tt.stored, tt.due, now)
			if got != tt.want {
				t.Errorf("DeriveDisplayStatus(%s, %s) = %s, want %s", tt.stored, tt.due.Format(time.DateOnly), got, tt.want)
			}
			// Same inputs, same answer.
			if again := DeriveDisplayStatus(tt.stored, tt.due, now); again != got {
				t.Errorf("not deterministic: %s then %s", got, again)
			}
		})
	}
}

func TestDeriveSaleStatus(t *testing.T) {
	now := date(2024, time.March, 10)
	installmentsSale := &models.Sale{PaymentType: models.PaymentTypeInstallments}

	tests := []struct {
		name  string
		sale  *models.Sale
		insts []*models.Installment
		want  models.SaleDisplayStatus
	}{
		{
			name: "cash is always completed",
			sale: &models.Sale{PaymentType: models.PaymentTypeCash},
			insts: []*models.Installment{
				{Status: models.InstallmentPending, DueDate: date(2020, time.January, 1)},
			},
			want: models.SaleDisplayCompleted,
		},
		{
			name: "any overdue wins",
			sale: installmentsSale,
			insts: []*models.Installment{
				{Status: models.InstallmentPending, DueDate: date(2024, time.April, 1)},
				{Status: models.InstallmentPending, DueDate: date(2024, time.February, 1)},
			},
			want: models.SaleDisplayOverdue,
		},
		{
			name: "pending only is active",
			sale: installmentsSale,
			insts: []*models.Installment{
				{Status: models.InstallmentPaid, DueDate: date(2024, time.February, 1)},
				{Status: models.InstallmentPending, DueDate: date(2024, time.April, 1)},
			},
			want: models.SaleDisplayActive,
		},
		{
			name: "all paid is completed",
			sale: installmentsSale,
			insts: []*models.Installment{
				{Status: models.InstallmentPaid, DueDate: date(2024, time.February, 1)},
				{Status: models.InstallmentPaid, DueDate: date(2024, time.April, 1)},
			},
			want: models.SaleDisplayCompleted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveSaleStatus(tt.sale, tt.insts, now); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCountsAsOverdueReadsStoredStatus(t *testing.T) {
	now := date(2024, time.March, 10)
	past := date(2024, time.March, 1)

	if !countsAsOverdue(&models.Installment{Status: models.InstallmentOverdue, DueDate: date(2024, time.May, 1)}, now) {
		t.Error("stored overdue should count")
	}
	if !countsAsOverdue(&models.Installment{Status: models.InstallmentPending, DueDate: past}, now) {
		t.Error("pending past due should count")
	}
	if countsAsOverdue(&models.Installment{Status: models.InstallmentPartial, DueDate: past}, now) {
		t.Error("partial is not counted by the roll-up")
	}
}
