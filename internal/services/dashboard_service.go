package services

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"ventas-backend/internal/models"
	"ventas-backend/internal/timeutil"
)

type DashboardService struct {
	Store        StatsStore
	Installments *InstallmentService
	Log          zerolog.Logger
	Now          func() time.Time
}

func NewDashboardService(stats StatsStore, installments *InstallmentService, log zerolog.Logger) *DashboardService {
	return &DashboardService{Store: stats, Installments: installments, Log: log, Now: timeutil.Now}
}

// PercentChange is the month-over-month change rounded to one decimal.
// Growth from zero counts as 100%.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return math.Round((current-previous)/previous*1000) / 10
}

func withChange(c models.MonthlyComparison) models.MonthlyComparison {
	c.PercentChange = PercentChange(c.Current, c.Previous)
	return c
}

// Stats loads the home dashboard cards concurrently. The first failing
// query fails the whole call.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	now := s.Now()
	out := &models.DashboardStats{GeneratedAt: now}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.CustomerCount, err = s.Store.CustomerCount(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.ActiveProducts, err = s.Store.ActiveProductCount(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.TotalRevenue, err = s.Store.TotalRevenue(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.OverdueSalesCount, err = s.Store.OverdueSalesCount(ctx, now)
		return err
	})
	g.Go(func() error {
		c, err := s.Store.CustomerMonthlyComparison(ctx, now)
		out.Customers = withChange(c)
		return err
	})
	g.Go(func() error {
		c, err := s.Store.ProductMonthlyComparison(ctx, now)
		out.Products = withChange(c)
		return err
	})
	g.Go(func() error {
		count, revenue, err := s.Store.SalesStatsComparison(ctx, now)
		out.Sales = withChange(count)
		out.Revenue = withChange(revenue)
		return err
	})
	g.Go(func() error {
		upcoming, err := s.Installments.Upcoming(ctx, 7)
		if err != nil {
			s.Log.Warn().Err(err).Msg("loading upcoming installments failed")
			upcoming = []*models.UpcomingInstallment{}
		}
		out.UpcomingInstallments = upcoming
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
