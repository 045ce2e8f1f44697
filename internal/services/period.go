package services

import (
	"math"
	"sort"
	"time"

	"ventas-backend/internal/models"
	"ventas-backend/internal/money"
	"ventas-backend/internal/timeutil"
)

// InferPeriodType guesses the plan frequency from the spacing of due dates.
// It is a display heuristic: ~7 days is weekly, ~14-15 days biweekly, and
// anything else (including fewer than two installments) monthly.
func InferPeriodType(installments []*models.Installment) models.PeriodType {
	if len(installments) < 2 {
		return models.PeriodMonthly
	}
	dates := make([]time.Time, 0, len(installments))
	for _, inst := range installments {
		dates = append(dates, inst.DueDate)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	total := 0
	for i := 1; i < len(dates); i++ {
		total += timeutil.DaysBetween(dates[i-1], dates[i])
	}
	avg := int(math.Round(float64(total) / float64(len(dates)-1)))

	switch {
	case avg >= 6 && avg <= 8:
		return models.PeriodWeekly
	case avg >= 13 && avg <= 16:
		return models.PeriodBiweekly
	default:
		return models.PeriodMonthly
	}
}

// EffectivePeriodType returns the sale's explicit period type, or the inferred one.
func EffectivePeriodType(sale *models.Sale) models.PeriodType {
	if sale.PeriodType.Valid() {
		return sale.PeriodType
	}
	return InferPeriodType(sale.Installments)
}

// GenerateSchedule splits total into n installments. The first one falls one
// period after start; rounding cents go to the last installment.
func GenerateSchedule(total float64, n int, period models.PeriodType, start time.Time) []*models.Installment {
	amounts := money.Split(total, n)
	out := make([]*models.Installment, 0, n)
	for i, amount := range amounts {
		out = append(out, &models.Installment{
			InstallmentNumber: i + 1,
			DueDate:           dueDate(start, period, i+1),
			Amount:            amount,
			PaidAmount:        0,
			Balance:           amount,
			Status:            models.InstallmentPending,
		})
	}
	return out
}

func dueDate(start time.Time, period models.PeriodType, k int) time.Time {
	switch period {
	case models.PeriodWeekly:
		return start.AddDate(0, 0, 7*k)
	case models.PeriodBiweekly:
		return start.AddDate(0, 0, 15*k)
	default:
		return addMonthsClamped(start, k)
	}
}

// addMonthsClamped adds months without spilling into the next month:
// Jan 31 + 1 month is Feb 28/29, not Mar 2/3.
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
