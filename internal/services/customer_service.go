package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ventas-backend/internal/cache"
	"ventas-backend/internal/events"
	"ventas-backend/internal/models"
	"ventas-backend/internal/timeutil"
)

type CustomerService struct {
	Customers    CustomerStore
	Sales        SaleStore
	Items        SaleItemFetcher
	Installments InstallmentFetcher
	Invoices     InvoiceStore
	Cache        *cache.Query
	TTL          time.Duration
	Notifier     events.Notifier
	Workers      int
	Log          zerolog.Logger
	Now          func() time.Time
}

func NewCustomerService(customers CustomerStore, sales SaleStore, items SaleItemFetcher, installments InstallmentFetcher, invoices InvoiceStore, q *cache.Query, ttl time.Duration, notifier events.Notifier, workers int, log zerolog.Logger) *CustomerService {
	return &CustomerService{
		Customers:    customers,
		Sales:        sales,
		Items:        items,
		Installments: installments,
		Invoices:     invoices,
		Cache:        q,
		TTL:          ttl,
		Notifier:     notifier,
		Workers:      workers,
		Log:          log,
		Now:          timeutil.Now,
	}
}

func validateCustomer(req *models.CustomerRequest) error {
	errs := fieldErrors{}
	if strings.TrimSpace(req.Name) == "" {
		errs.add("name", "el nombre es obligatorio")
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			errs.add("email", "email inválido")
		}
	}
	if dni := strings.TrimSpace(req.DNI); dni != "" && strings.Trim(dni, "0123456789.") != "" {
		errs.add("dni", "el DNI solo admite números")
	}
	return errs.err()
}

func applyCustomerRequest(c *models.Customer, req *models.CustomerRequest) {
	c.Name = strings.TrimSpace(req.Name)
	c.DNI = strings.TrimSpace(req.DNI)
	c.Phone = strings.TrimSpace(req.Phone)
	c.SecondaryPhone = strings.TrimSpace(req.SecondaryPhone)
	c.Email = strings.TrimSpace(req.Email)
	c.Address = strings.TrimSpace(req.Address)
	c.Notes = req.Notes
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, req *models.CustomerRequest) (models.Ack, error) {
	if err := validateCustomer(req); err != nil {
		return models.Ack{}, err
	}
	c := &models.Customer{IsActive: true}
	applyCustomerRequest(c, req)
	if err := s.Customers.Create(ctx, c); err != nil {
		return models.Ack{}, fmt.Errorf("creating customer: %w", err)
	}
	s.notify(ctx)
	return models.Ack{Entity: events.EntityCustomers, ID: c.ID, Action: "create"}, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int) (*models.Customer, error) {
	return s.Customers.Get(ctx, id)
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, id int, req *models.CustomerRequest) (models.Ack, error) {
	if err := validateCustomer(req); err != nil {
		return models.Ack{}, err
	}
	c, err := s.Customers.Get(ctx, id)
	if err != nil {
		return models.Ack{}, err
	}
	applyCustomerRequest(c, req)
	if err := s.Customers.Update(ctx, c); err != nil {
		return models.Ack{}, fmt.Errorf("updating customer: %w", err)
	}
	// Sale and invoice listings show the customer's name.
	s.notify(ctx, events.EntitySales, events.EntityInvoices)
	return models.Ack{Entity: events.EntityCustomers, ID: id, Action: "update"}, nil
}

// DeleteCustomer archives a customer that has sales and deletes one that has none.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id int) (models.Ack, error) {
	hasSales, err := s.Customers.HasSales(ctx, id)
	if err != nil {
		return models.Ack{}, err
	}
	if hasSales {
		if err := s.Customers.Archive(ctx, id); err != nil {
			return models.Ack{}, err
		}
		s.Log.Info().Int("customer_id", id).Msg("customer has sales, archived instead of deleted")
		s.notify(ctx)
		return models.Ack{Entity: events.EntityCustomers, ID: id, Action: "archive"}, nil
	}
	if err := s.Customers.Delete(ctx, id); err != nil {
		return models.Ack{}, err
	}
	s.notify(ctx)
	return models.Ack{Entity: events.EntityCustomers, ID: id, Action: "delete"}, nil
}

// ListCustomers returns one page of customers, served from the query cache.
func (s *CustomerService) ListCustomers(ctx context.Context, page, size int, search string, includeArchived bool) (models.Page[*models.Customer], error) {
	page, size = normalizePage(page, size)
	fetch := func(ctx context.Context) (models.Page[*models.Customer], error) {
		items, total, err := s.Customers.ListPaginated(ctx, page, size, search, includeArchived)
		if err != nil {
			return models.Page[*models.Customer]{}, err
		}
		return models.Page[*models.Customer]{Items: items, Total: total, Page: page, PageSize: size}, nil
	}
	if s.Cache == nil {
		return fetch(ctx)
	}
	key := cache.Key(events.EntityCustomers, "page", page, "size", size, "search", search, "archived", includeArchived)
	return cache.Load(ctx, s.Cache, key, s.TTL, fetch)
}

// RecentCustomers returns the newest active customers, at most limit.
func (s *CustomerService) RecentCustomers(ctx context.Context, limit int) ([]*models.Customer, error) {
	if limit <= 0 || limit > 50 {
		limit = 5
	}
	return s.Customers.GetRecent(ctx, limit)
}

// FilteredCustomers lists every customer and applies the table filters in memory.
func (s *CustomerService) FilteredCustomers(ctx context.Context, f CustomerFilter) ([]*models.Customer, error) {
	all, err := s.Customers.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterCustomers(all, f), nil
}

// Profile returns the customer with every sale tagged by its derived status.
func (s *CustomerService) Profile(ctx context.Context, id int) (*models.CustomerProfile, error) {
	c, err := s.Customers.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sales, err := s.Sales.GetByCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading customer sales: %w", err)
	}
	loadSaleDetails(ctx, sales, s.Items, s.Installments, s.Workers, s.Log)

	now := s.Now()
	profile := &models.CustomerProfile{Customer: c, Sales: make([]*models.SaleHistory, 0, len(sales))}
	for _, sale := range sales {
		profile.Sales = append(profile.Sales, &models.SaleHistory{
			Sale:          sale,
			DerivedStatus: DeriveSaleStatus(sale, sale.Installments, now),
		})
	}

	if s.Invoices != nil {
		invoices, err := s.Invoices.GetByCustomer(ctx, id)
		if err != nil {
			s.Log.Warn().Err(err).Int("customer_id", id).Msg("loading customer invoices failed")
		}
		profile.Invoices = invoices
	}
	return profile, nil
}

func (s *CustomerService) notify(ctx context.Context, also ...string) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.Notify(ctx, events.EntityCustomers)
	for _, entity := range also {
		s.Notifier.Notify(ctx, entity)
	}
}
