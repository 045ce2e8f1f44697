package services

import (
	"testing"
	"time"

	"ventas-backend/internal/models"
	"ventas-backend/internal/money"
)

func installmentsEvery(start time.Time, days []int) []*models.Installment {
	out := []*models.Installment{{DueDate: start}}
	d := start
	for _, gap := range days {
		d = d.AddDate(0, 0, gap)
		out = append(out, &models.Installment{DueDate: d})
	}
	return out
}

func TestInferPeriodType(t *testing.T) {
	start := date(2024, time.January, 5)
	tests := []struct {
		name  string
		insts []*models.Installment
		want  models.PeriodType
	}{
		{"none", nil, models.PeriodMonthly},
		{"single", installmentsEvery(start, nil), models.PeriodMonthly},
		{"weekly", installmentsEvery(start, []int{7, 7, 7}), models.PeriodWeekly},
		{"fifteen days", installmentsEvery(start, []int{15, 15, 15}), models.PeriodBiweekly},
		{"fourteen days", installmentsEvery(start, []int{14, 14}), models.PeriodBiweekly},
		{"monthly", installmentsEvery(start, []int{31, 29, 31}), models.PeriodMonthly},
		{"ten days falls back to monthly", installmentsEvery(start, []int{10, 10}), models.PeriodMonthly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferPeriodType(tt.insts); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestInferPeriodTypeIgnoresOrder(t *testing.T) {
	insts := installmentsEvery(date(2024, time.January, 5), []int{7, 7, 7})
	insts[0], insts[3] = insts[3], insts[0]
	if got := InferPeriodType(insts); got != models.PeriodWeekly {
		t.Errorf("got %s, want weekly", got)
	}
}

func TestEffectivePeriodTypePrefersExplicit(t *testing.T) {
	sale := &models.Sale{
		PeriodType:   models.PeriodMonthly,
		Installments: installmentsEvery(date(2024, time.January, 5), []int{7, 7}),
	}
	if got := EffectivePeriodType(sale); got != models.PeriodMonthly {
		t.Errorf("got %s, want monthly", got)
	}
	sale.PeriodType = ""
	if got := EffectivePeriodType(sale); got != models.PeriodWeekly {
		t.Errorf("got %s, want weekly", got)
	}
}

func TestGenerateSchedule(t *testing.T) {
	start := date(2024, time.January, 31)

	monthly := GenerateSchedule(1000, 3, models.PeriodMonthly, start)
	wantDates := []string{"2024-02-29", "2024-03-31", "2024-04-30"}
	for i, inst := range monthly {
		if got := inst.DueDate.Format(time.DateOnly); got != wantDates[i] {
			t.Errorf("monthly #%d due %s, want %s", i+1, got, wantDates[i])
		}
		if inst.InstallmentNumber != i+1 || inst.Status != models.InstallmentPending || inst.Balance != inst.Amount {
			t.Errorf("monthly #%d = %+v", i+1, inst)
		}
	}
	if monthly[0].Amount != 333.33 || monthly[2].Amount != 333.34 {
		t.Errorf("amounts = %v, %v, %v", monthly[0].Amount, monthly[1].Amount, monthly[2].Amount)
	}

	var amounts []float64
	for _, inst := range monthly {
		amounts = append(amounts, inst.Amount)
	}
	if sum := money.Sum(amounts...); sum != 1000 {
		t.Errorf("schedule sums to %v", sum)
	}

	weekly := GenerateSchedule(100, 2, models.PeriodWeekly, start)
	if got := weekly[1].DueDate.Format(time.DateOnly); got != "2024-02-14" {
		t.Errorf("weekly #2 due %s", got)
	}
	biweekly := GenerateSchedule(100, 2, models.PeriodBiweekly, start)
	if got := biweekly[0].DueDate.Format(time.DateOnly); got != "2024-02-15" {
		t.Errorf("biweekly #1 due %s", got)
	}
}
