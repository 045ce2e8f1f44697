package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"ventas-backend/internal/metrics"
	"ventas-backend/internal/models"
	"ventas-backend/internal/money"
	"ventas-backend/internal/timeutil"
)

// ChartWindow is the number of calendar days a chart covers; WindowAll has no cutoff.
type ChartWindow int

const (
	WindowAll ChartWindow = 0
	Window7   ChartWindow = 7
	Window30  ChartWindow = 30
	Window90  ChartWindow = 90
)

// ParseChartWindow accepts "7", "30", "90" or "all". Empty means 30.
func ParseChartWindow(s string) (ChartWindow, error) {
	switch s {
	case "7":
		return Window7, nil
	case "", "30":
		return Window30, nil
	case "90":
		return Window90, nil
	case "all":
		return WindowAll, nil
	}
	return 0, invalid("window", fmt.Sprintf("período inválido %q", s))
}

// cutoff is the first instant inside the window: today counts as day one.
func (w ChartWindow) cutoff(now time.Time) (time.Time, bool) {
	if w <= 0 {
		return time.Time{}, false
	}
	return timeutil.StartOfDay(now).AddDate(0, 0, -(int(w) - 1)), true
}

type ChartService struct {
	Sales   SaleLister
	Items   SaleItemFetcher
	Workers int
	Log     zerolog.Logger
	Now     func() time.Time
}

func NewChartService(sales SaleLister, items SaleItemFetcher, workers int, log zerolog.Logger) *ChartService {
	return &ChartService{Sales: sales, Items: items, Workers: workers, Log: log, Now: timeutil.Now}
}

// SalesChart lists every sale and buckets it.
func (s *ChartService) SalesChart(ctx context.Context, window ChartWindow) ([]models.ChartBucket, error) {
	sales, err := s.Sales.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}
	return s.Buckets(ctx, sales, window, s.Now()), nil
}

// Buckets groups sales by local calendar day. Revenue is the sale total; a
// sale with a zero total falls back to the sum of its items. Days without
// sales are omitted.
func (s *ChartService) Buckets(ctx context.Context, sales []*models.Sale, window ChartWindow, now time.Time) []models.ChartBucket {
	cut, bounded := window.cutoff(now)
	inWindow := make([]*models.Sale, 0, len(sales))
	for _, sale := range sales {
		if sale.Date.IsZero() {
			continue
		}
		if bounded && sale.Date.Before(cut) {
			continue
		}
		inWindow = append(inWindow, sale)
	}

	revenue := s.saleRevenue(ctx, inWindow)

	byDay := make(map[string]*models.ChartBucket)
	for i, sale := range inWindow {
		key := timeutil.DayKey(sale.Date)
		b, ok := byDay[key]
		if !ok {
			b = &models.ChartBucket{Date: key}
			byDay[key] = b
		}
		b.Sales++
		b.Revenue = money.Sum(b.Revenue, revenue[i])
	}

	out := make([]models.ChartBucket, 0, len(byDay))
	for _, b := range byDay {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (s *ChartService) saleRevenue(ctx context.Context, sales []*models.Sale) []float64 {
	revenue := make([]float64, len(sales))
	workers := s.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i, sale := range sales {
		if sale.TotalAmount != 0 {
			revenue[i] = sale.TotalAmount
			continue
		}
		if len(sale.Items) > 0 || s.Items == nil {
			revenue[i] = itemsTotal(sale.Items)
			continue
		}
		g.Go(func() error {
			items, err := s.Items.GetBySale(ctx, sale.ID)
			if err != nil {
				metrics.FetchFailures.WithLabelValues("chart_items").Inc()
				s.Log.Warn().Err(err).Int("sale_id", sale.ID).Msg("fetching items for chart failed")
				return nil
			}
			revenue[i] = itemsTotal(items)
			return nil
		})
	}
	_ = g.Wait()
	return revenue
}

func itemsTotal(items []*models.SaleItem) float64 {
	parts := make([]float64, 0, len(items))
	for _, it := range items {
		if it.LineTotal != 0 {
			parts = append(parts, it.LineTotal)
			continue
		}
		parts = append(parts, money.Mul(it.Quantity, it.UnitPrice))
	}
	return money.Sum(parts...)
}
