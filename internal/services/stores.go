package services

import (
	"context"
	"time"

	"ventas-backend/internal/models"
)

// Narrow views of the repositories. The pgx repositories satisfy all of them;
// tests swap in in-memory fakes.

type CustomerLister interface {
	List(ctx context.Context) ([]*models.Customer, error)
}

type CustomerStore interface {
	CustomerLister
	Create(ctx context.Context, c *models.Customer) error
	Get(ctx context.Context, id int) (*models.Customer, error)
	ListPaginated(ctx context.Context, page, pageSize int, search string, includeArchived bool) ([]*models.Customer, int, error)
	Update(ctx context.Context, c *models.Customer) error
	Delete(ctx context.Context, id int) error
	Archive(ctx context.Context, id int) error
	HasSales(ctx context.Context, id int) (bool, error)
	GetRecent(ctx context.Context, limit int) ([]*models.Customer, error)
}

type ProductStore interface {
	Create(ctx context.Context, p *models.Product) error
	Get(ctx context.Context, id int) (*models.Product, error)
	List(ctx context.Context) ([]*models.Product, error)
	GetActive(ctx context.Context) ([]*models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id int) error
}

type SaleLister interface {
	List(ctx context.Context) ([]*models.Sale, error)
}

type SaleStore interface {
	SaleLister
	Create(ctx context.Context, sale *models.Sale) error
	Get(ctx context.Context, id int) (*models.Sale, error)
	ListPaginated(ctx context.Context, params models.SaleListParams) ([]*models.Sale, int, error)
	GetByCustomer(ctx context.Context, customerID int) ([]*models.Sale, error)
	Delete(ctx context.Context, id int) error
}

type SaleItemFetcher interface {
	GetBySale(ctx context.Context, saleID int) ([]*models.SaleItem, error)
}

type ProductSalesFetcher interface {
	GetSalesForProduct(ctx context.Context, productID int) ([]*models.ProductSale, error)
}

type InstallmentFetcher interface {
	GetBySale(ctx context.Context, saleID int) ([]*models.Installment, error)
}

type InstallmentStore interface {
	InstallmentFetcher
	Get(ctx context.Context, id int) (*models.Installment, error)
	GetUpcoming(ctx context.Context, from, to time.Time) ([]*models.UpcomingInstallment, error)
	// RecordPayment locks the installment, hands the locked row to apply and
	// stores the result and the payment in the same transaction.
	RecordPayment(ctx context.Context, installmentID int, apply models.PaymentApplier) (*models.Installment, *models.Payment, error)
}

// CalendarInstallmentLister lists every installment of installments-type
// sales joined with its sale and customer.
type CalendarInstallmentLister interface {
	ListForCalendar(ctx context.Context) ([]*models.UpcomingInstallment, error)
}

type PaymentFetcher interface {
	GetBySale(ctx context.Context, saleID int) ([]*models.Payment, error)
}

type InvoiceStore interface {
	Create(ctx context.Context, inv *models.Invoice) error
	Get(ctx context.Context, id int) (*models.Invoice, error)
	GetAllWithDetails(ctx context.Context) ([]*models.Invoice, error)
	GetBySaleID(ctx context.Context, saleID int) (*models.Invoice, error)
	GetByCustomer(ctx context.Context, customerID int) ([]*models.Invoice, error)
	GetNextInvoiceNumber(ctx context.Context) (string, error)
	UpdateStatus(ctx context.Context, id int, status models.InvoiceStatus) error
}

type CalendarStore interface {
	GetAll(ctx context.Context) ([]*models.CalendarEvent, error)
	Get(ctx context.Context, id int) (*models.CalendarEvent, error)
	Create(ctx context.Context, e *models.CalendarEvent) error
	Update(ctx context.Context, e *models.CalendarEvent) error
	Delete(ctx context.Context, id int) error
}

type PreferenceStore interface {
	Get(ctx context.Context, key string) (*models.Preference, error)
	List(ctx context.Context) ([]*models.Preference, error)
	Set(ctx context.Context, key, value string) error
}

// StatsStore is the aggregate surface behind the dashboard cards.
type StatsStore interface {
	CustomerCount(ctx context.Context) (int, error)
	ActiveProductCount(ctx context.Context) (int, error)
	TotalRevenue(ctx context.Context) (float64, error)
	OverdueSalesCount(ctx context.Context, now time.Time) (int, error)
	CustomerMonthlyComparison(ctx context.Context, now time.Time) (models.MonthlyComparison, error)
	ProductMonthlyComparison(ctx context.Context, now time.Time) (models.MonthlyComparison, error)
	SalesStatsComparison(ctx context.Context, now time.Time) (count, revenue models.MonthlyComparison, err error)
}
