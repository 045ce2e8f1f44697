package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"ventas-backend/internal/models"
)

// StatsRepository groups the aggregate queries behind the dashboard cards.
type StatsRepository struct {
	Customers *CustomerRepository
	Products  *ProductRepository
	Sales     *SaleRepository
}

func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{
		Customers: NewCustomerRepository(db),
		Products:  NewProductRepository(db),
		Sales:     NewSaleRepository(db),
	}
}

func (r *StatsRepository) CustomerCount(ctx context.Context) (int, error) {
	return r.Customers.Count(ctx)
}

func (r *StatsRepository) ActiveProductCount(ctx context.Context) (int, error) {
	return r.Products.Count(ctx)
}

func (r *StatsRepository) TotalRevenue(ctx context.Context) (float64, error) {
	return r.Sales.GetTotalRevenue(ctx)
}

func (r *StatsRepository) OverdueSalesCount(ctx context.Context, now time.Time) (int, error) {
	return r.Sales.GetOverdueSalesCount(ctx, now)
}

func (r *StatsRepository) CustomerMonthlyComparison(ctx context.Context, now time.Time) (models.MonthlyComparison, error) {
	return r.Customers.GetMonthlyComparison(ctx, now)
}

func (r *StatsRepository) ProductMonthlyComparison(ctx context.Context, now time.Time) (models.MonthlyComparison, error) {
	return r.Products.GetMonthlyComparison(ctx, now)
}

func (r *StatsRepository) SalesStatsComparison(ctx context.Context, now time.Time) (models.MonthlyComparison, models.MonthlyComparison, error) {
	return r.Sales.GetStatsComparison(ctx, now)
}
