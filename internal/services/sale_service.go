package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ventas-backend/internal/cache"
	"ventas-backend/internal/events"
	"ventas-backend/internal/models"
	"ventas-backend/internal/money"
	"ventas-backend/internal/repositories"
	"ventas-backend/internal/timeutil"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

type SaleService struct {
	Sales        SaleStore
	Customers    CustomerStore
	Items        SaleItemFetcher
	Installments InstallmentFetcher
	Payments     PaymentFetcher
	Cache        *cache.Query
	TTL          time.Duration
	Notifier     events.Notifier
	Log          zerolog.Logger
	Now          func() time.Time
}

func NewSaleService(sales SaleStore, customers CustomerStore, items SaleItemFetcher, installments InstallmentFetcher, payments PaymentFetcher, q *cache.Query, ttl time.Duration, notifier events.Notifier, log zerolog.Logger) *SaleService {
	return &SaleService{
		Sales:        sales,
		Customers:    customers,
		Items:        items,
		Installments: installments,
		Payments:     payments,
		Cache:        q,
		TTL:          ttl,
		Notifier:     notifier,
		Log:          log,
		Now:          timeutil.Now,
	}
}

func validateSale(req *models.CreateSaleRequest) error {
	errs := fieldErrors{}
	if req.CustomerID <= 0 {
		errs.add("customer_id", "seleccione un cliente")
	}
	if len(req.Items) == 0 {
		errs.add("items", "agregue al menos un producto")
	}
	for i, it := range req.Items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(it.ProductName) == "" {
			errs.add(field+".product_name", "el producto es obligatorio")
		}
		if it.Quantity <= 0 {
			errs.add(field+".quantity", "la cantidad debe ser mayor a cero")
		} else if it.ProductID != nil && it.Quantity != math.Trunc(it.Quantity) {
			errs.add(field+".quantity", "la cantidad de un producto del inventario debe ser un número entero")
		}
		if it.UnitPrice < 0 {
			errs.add(field+".unit_price", "el precio no puede ser negativo")
		}
	}
	if req.DiscountAmount < 0 {
		errs.add("discount_amount", "el descuento no puede ser negativo")
	}
	switch req.PaymentType {
	case models.PaymentTypeCash:
	case models.PaymentTypeInstallments:
		if req.NumberOfInstallments < 2 {
			errs.add("number_of_installments", "una venta en cuotas necesita al menos 2 cuotas")
		}
		if req.PeriodType != "" && !req.PeriodType.Valid() {
			errs.add("period_type", "periodicidad inválida")
		}
	default:
		errs.add("payment_type", "tipo de pago inválido")
	}
	return errs.err()
}

// BuildSale turns a validated request into a sale with its items and, for
// installments sales, its payment schedule. The sale number is assigned on insert.
func BuildSale(req *models.CreateSaleRequest, now time.Time) (*models.Sale, error) {
	if err := validateSale(req); err != nil {
		return nil, err
	}

	date := now
	if req.Date != nil && !req.Date.IsZero() {
		date = *req.Date
	}
	sale := &models.Sale{
		CustomerID:     req.CustomerID,
		ReferenceCode:  strings.TrimSpace(req.ReferenceCode),
		Date:           date,
		PaymentType:    req.PaymentType,
		PaymentMethod:  req.PaymentMethod,
		DiscountAmount: money.Round(req.DiscountAmount),
		Notes:          req.Notes,
	}
	if sale.PaymentMethod == "" {
		sale.PaymentMethod = "efectivo"
	}

	lines := make([]float64, 0, len(req.Items))
	for _, it := range req.Items {
		line := money.Mul(it.Quantity, it.UnitPrice)
		lines = append(lines, line)
		sale.Items = append(sale.Items, &models.SaleItem{
			ProductID:   it.ProductID,
			ProductName: strings.TrimSpace(it.ProductName),
			Quantity:    it.Quantity,
			UnitPrice:   money.Round(it.UnitPrice),
			LineTotal:   line,
		})
	}
	sale.Subtotal = money.Sum(lines...)
	sale.TotalAmount = money.SubFloor(sale.Subtotal, sale.DiscountAmount)

	if sale.PaymentType == models.PaymentTypeCash {
		sale.PaymentStatus = models.SalePaid
		sale.Status = models.SaleCompleted
		return sale, nil
	}

	sale.PeriodType = req.PeriodType
	if sale.PeriodType == "" {
		sale.PeriodType = models.PeriodMonthly
	}
	sale.NumberOfInstallments = req.NumberOfInstallments
	// Every installment must carry at least one cent.
	if math.Round(sale.TotalAmount*100) < float64(sale.NumberOfInstallments) {
		return nil, invalid("total_amount", fmt.Sprintf("el total no alcanza para %d cuotas", sale.NumberOfInstallments))
	}
	sale.PaymentStatus = models.SaleUnpaid
	sale.Status = models.SalePending
	sale.Installments = GenerateSchedule(sale.TotalAmount, sale.NumberOfInstallments, sale.PeriodType, date)
	return sale, nil
}

func (s *SaleService) CreateSale(ctx context.Context, req *models.CreateSaleRequest) (models.Ack, error) {
	sale, err := BuildSale(req, s.Now())
	if err != nil {
		return models.Ack{}, err
	}
	if _, err := s.Customers.Get(ctx, req.CustomerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Ack{}, invalid("customer_id", "el cliente no existe")
		}
		return models.Ack{}, err
	}

	if err := s.Sales.Create(ctx, sale); err != nil {
		return models.Ack{}, fmt.Errorf("creating sale: %w", err)
	}
	s.Log.Info().Int("sale_id", sale.ID).Str("sale_number", sale.SaleNumber).Float64("total", sale.TotalAmount).Msg("sale created")

	s.notify(ctx, events.EntitySales, events.EntitySaleItems)
	if sale.PaymentType == models.PaymentTypeInstallments {
		s.notify(ctx, events.EntityInstallments, events.EntityCalendar)
	}
	return models.Ack{Entity: events.EntitySales, ID: sale.ID, Action: "create"}, nil
}

// GetSale returns a sale with its items and installments.
func (s *SaleService) GetSale(ctx context.Context, id int) (*models.Sale, error) {
	sale, err := s.Sales.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale.Items, err = s.Items.GetBySale(ctx, id); err != nil {
		return nil, fmt.Errorf("loading sale items: %w", err)
	}
	if sale.Installments, err = s.Installments.GetBySale(ctx, id); err != nil {
		return nil, fmt.Errorf("loading installments: %w", err)
	}
	return sale, nil
}

func (s *SaleService) GetPayments(ctx context.Context, saleID int) ([]*models.Payment, error) {
	return s.Payments.GetBySale(ctx, saleID)
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// ListSales returns one page of sales, served from the query cache.
func (s *SaleService) ListSales(ctx context.Context, params models.SaleListParams) (models.Page[*models.Sale], error) {
	params.Page, params.PageSize = normalizePage(params.Page, params.PageSize)
	fetch := func(ctx context.Context) (models.Page[*models.Sale], error) {
		items, total, err := s.Sales.ListPaginated(ctx, params)
		if err != nil {
			return models.Page[*models.Sale]{}, err
		}
		return models.Page[*models.Sale]{Items: items, Total: total, Page: params.Page, PageSize: params.PageSize}, nil
	}
	if s.Cache == nil {
		return fetch(ctx)
	}
	key := cache.Key(events.EntitySales, "page", params.Page, "size", params.PageSize, "search", params.Search, "customer", params.CustomerID)
	return cache.Load(ctx, s.Cache, key, s.TTL, fetch)
}

func (s *SaleService) GetByCustomer(ctx context.Context, customerID int) ([]*models.Sale, error) {
	return s.Sales.GetByCustomer(ctx, customerID)
}

func (s *SaleService) DeleteSale(ctx context.Context, id int) (models.Ack, error) {
	if err := s.Sales.Delete(ctx, id); err != nil {
		return models.Ack{}, err
	}
	s.Log.Info().Int("sale_id", id).Msg("sale deleted")
	s.notify(ctx, events.EntitySales, events.EntitySaleItems, events.EntityInstallments, events.EntityPayments, events.EntityInvoices, events.EntityCalendar)
	return models.Ack{Entity: events.EntitySales, ID: id, Action: "delete"}, nil
}

func (s *SaleService) notify(ctx context.Context, entities ...string) {
	if s.Notifier == nil {
		return
	}
	for _, e := range entities {
		s.Notifier.Notify(ctx, e)
	}
}
