package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"ventas-backend/internal/models"
)

type fakeStats struct {
	err error
}

func (f *fakeStats) CustomerCount(ctx context.Context) (int, error)      { return 12, nil }
func (f *fakeStats) ActiveProductCount(ctx context.Context) (int, error) { return 4, nil }
func (f *fakeStats) TotalRevenue(ctx context.Context) (float64, error)   { return 1500.5, f.err }
func (f *fakeStats) OverdueSalesCount(ctx context.Context, now time.Time) (int, error) {
	return 2, nil
}

func (f *fakeStats) CustomerMonthlyComparison(ctx context.Context, now time.Time) (models.MonthlyComparison, error) {
	return models.MonthlyComparison{Current: 3, Previous: 2}, nil
}

func (f *fakeStats) ProductMonthlyComparison(ctx context.Context, now time.Time) (models.MonthlyComparison, error) {
	return models.MonthlyComparison{Current: 1, Previous: 0}, nil
}

func (f *fakeStats) SalesStatsComparison(ctx context.Context, now time.Time) (models.MonthlyComparison, models.MonthlyComparison, error) {
	return models.MonthlyComparison{Current: 5, Previous: 10}, models.MonthlyComparison{Current: 0, Previous: 0}, nil
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		cur, prev, want float64
	}{
		{3, 2, 50},
		{5, 10, -50},
		{1, 3, -66.7},
		{4, 3, 33.3},
		{1, 0, 100},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := PercentChange(tt.cur, tt.prev); got != tt.want {
			t.Errorf("PercentChange(%v, %v) = %v, want %v", tt.cur, tt.prev, got, tt.want)
		}
	}
}

func TestDashboardStats(t *testing.T) {
	now := date(2024, time.March, 10)
	insts := &fakeInstallments{upcoming: []*models.UpcomingInstallment{{CustomerName: "Ana"}}}
	inst := newInstallmentService(newFakeCustomers(), &fakeSales{}, &fakeItems{}, insts, now)
	s := NewDashboardService(&fakeStats{}, inst, zerolog.Nop())
	s.Now = func() time.Time { return now }

	got, err := s.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got.CustomerCount != 12 || got.ActiveProducts != 4 || got.OverdueSalesCount != 2 || got.TotalRevenue != 1500.5 {
		t.Errorf("counts = %+v", got)
	}
	if got.Customers.PercentChange != 50 || got.Products.PercentChange != 100 || got.Sales.PercentChange != -50 || got.Revenue.PercentChange != 0 {
		t.Errorf("changes: customers=%v products=%v sales=%v revenue=%v",
			got.Customers.PercentChange, got.Products.PercentChange, got.Sales.PercentChange, got.Revenue.PercentChange)
	}
	if len(got.UpcomingInstallments) != 1 || !got.GeneratedAt.Equal(now) {
		t.Errorf("upcoming=%v generated=%v", got.UpcomingInstallments, got.GeneratedAt)
	}

	s.Store = &fakeStats{err: errBoom}
	if _, err := s.Stats(context.Background()); !errors.Is(err, errBoom) {
		t.Errorf("err = %v, want errBoom", err)
	}
}
