package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"ventas-backend/internal/models"
	"ventas-backend/internal/repositories"
)

var errBoom = errors.New("boom")

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

type fakeCustomers struct {
	mu       sync.Mutex
	rows     map[int]*models.Customer
	withSale map[int]bool
	nextID   int
	listErr  error
	archived []int
	deleted  []int
}

func newFakeCustomers(cs ...*models.Customer) *fakeCustomers {
	f := &fakeCustomers{rows: map[int]*models.Customer{}, withSale: map[int]bool{}, nextID: 100}
	for _, c := range cs {
		f.rows[c.ID] = c
	}
	return f
}

func (f *fakeCustomers) List(ctx context.Context) ([]*models.Customer, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Customer, 0, len(f.rows))
	for _, c := range f.rows {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCustomers) GetRecent(ctx context.Context, limit int) ([]*models.Customer, error) {
	all, err := f.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeCustomers) Create(ctx context.Context, c *models.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c.ID = f.nextID
	f.rows[c.ID] = c
	return nil
}

func (f *fakeCustomers) Get(ctx context.Context, id int) (*models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCustomers) ListPaginated(ctx context.Context, page, pageSize int, search string, includeArchived bool) ([]*models.Customer, int, error) {
	all, err := f.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	return all, len(all), nil
}

func (f *fakeCustomers) Update(ctx context.Context, c *models.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[c.ID] = c
	return nil
}

func (f *fakeCustomers) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCustomers) Archive(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id].IsActive = false
	f.archived = append(f.archived, id)
	return nil
}

func (f *fakeCustomers) HasSales(ctx context.Context, id int) (bool, error) {
	return f.withSale[id], nil
}

type fakeSales struct {
	mu      sync.Mutex
	rows    []*models.Sale
	listErr error
	created []*models.Sale
	pages   int
}

func (f *fakeSales) List(ctx context.Context) ([]*models.Sale, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	// Copies, so callers attaching details do not share state between calls.
	out := make([]*models.Sale, 0, len(f.rows))
	for _, s := range f.rows {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeSales) Create(ctx context.Context, sale *models.Sale) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sale.ID = len(f.rows) + 1
	sale.SaleNumber = "V-000001"
	f.rows = append(f.rows, sale)
	f.created = append(f.created, sale)
	return nil
}

func (f *fakeSales) Get(ctx context.Context, id int) (*models.Sale, error) {
	for _, s := range f.rows {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeSales) ListPaginated(ctx context.Context, params models.SaleListParams) ([]*models.Sale, int, error) {
	f.mu.Lock()
	f.pages++
	f.mu.Unlock()
	return f.rows, len(f.rows), nil
}

func (f *fakeSales) GetByCustomer(ctx context.Context, customerID int) ([]*models.Sale, error) {
	var out []*models.Sale
	for _, s := range f.rows {
		if s.CustomerID == customerID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeSales) Delete(ctx context.Context, id int) error {
	return nil
}

type fakeItems struct {
	bySale map[int][]*models.SaleItem
	fail   map[int]bool
	calls  int
	mu     sync.Mutex
}

func (f *fakeItems) GetBySale(ctx context.Context, saleID int) ([]*models.SaleItem, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.fail[saleID] {
		return nil, errBoom
	}
	return f.bySale[saleID], nil
}

type fakeInstallments struct {
	mu       sync.Mutex
	bySale   map[int][]*models.Installment
	fail     map[int]bool
	recorded []*models.Payment
	updated  []*models.Installment
	upcoming []*models.UpcomingInstallment
	calendar []*models.UpcomingInstallment
	calErr   error
}

func (f *fakeInstallments) GetBySale(ctx context.Context, saleID int) ([]*models.Installment, error) {
	if f.fail[saleID] {
		return nil, errBoom
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bySale[saleID], nil
}

func (f *fakeInstallments) Get(ctx context.Context, id int) (*models.Installment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, list := range f.bySale {
		for _, inst := range list {
			if inst.ID == id {
				cp := *inst
				return &cp, nil
			}
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeInstallments) GetUpcoming(ctx context.Context, from, to time.Time) ([]*models.UpcomingInstallment, error) {
	return f.upcoming, nil
}

// RecordPayment holds the lock for the whole read-apply-write, like the
// row lock taken by the repository.
func (f *fakeInstallments) RecordPayment(ctx context.Context, installmentID int, apply models.PaymentApplier) (*models.Installment, *models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, list := range f.bySale {
		for i := range list {
			if list[i].ID != installmentID {
				continue
			}
			cp := *list[i]
			inst, p, err := apply(&cp)
			if err != nil {
				return nil, nil, err
			}
			list[i] = inst
			f.updated = append(f.updated, inst)
			f.recorded = append(f.recorded, p)
			return inst, p, nil
		}
	}
	return nil, nil, repositories.ErrNotFound
}

func (f *fakeInstallments) ListForCalendar(ctx context.Context) ([]*models.UpcomingInstallment, error) {
	if f.calErr != nil {
		return nil, f.calErr
	}
	return f.calendar, nil
}

type fakeCalendar struct {
	rows   []*models.CalendarEvent
	err    error
	nextID int
}

func (f *fakeCalendar) GetAll(ctx context.Context) ([]*models.CalendarEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeCalendar) Get(ctx context.Context, id int) (*models.CalendarEvent, error) {
	for _, e := range f.rows {
		if e.ID == itoa(id) {
			return e, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeCalendar) Create(ctx context.Context, e *models.CalendarEvent) error {
	f.nextID++
	e.ID = itoa(f.nextID)
	f.rows = append(f.rows, e)
	return nil
}

func (f *fakeCalendar) Update(ctx context.Context, e *models.CalendarEvent) error {
	for i, old := range f.rows {
		if old.ID == e.ID {
			f.rows[i] = e
		}
	}
	return nil
}

func (f *fakeCalendar) Delete(ctx context.Context, id int) error {
	return nil
}

type fakeInvoices struct {
	rows []*models.Invoice
	seq  int
}

func (f *fakeInvoices) Create(ctx context.Context, inv *models.Invoice) error {
	f.seq++
	inv.ID = f.seq
	inv.InvoiceNumber = fmt.Sprintf("FAC-%06d", f.seq)
	f.rows = append(f.rows, inv)
	return nil
}

func (f *fakeInvoices) Get(ctx context.Context, id int) (*models.Invoice, error) {
	for _, inv := range f.rows {
		if inv.ID == id {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeInvoices) GetAllWithDetails(ctx context.Context) ([]*models.Invoice, error) {
	return f.rows, nil
}

func (f *fakeInvoices) GetBySaleID(ctx context.Context, saleID int) (*models.Invoice, error) {
	for _, inv := range f.rows {
		if inv.SaleID == saleID {
			return inv, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeInvoices) GetByCustomer(ctx context.Context, customerID int) ([]*models.Invoice, error) {
	var out []*models.Invoice
	for _, inv := range f.rows {
		if inv.CustomerID == customerID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeInvoices) GetNextInvoiceNumber(ctx context.Context) (string, error) {
	return fmt.Sprintf("FAC-%06d", f.seq+1), nil
}

func (f *fakeInvoices) UpdateStatus(ctx context.Context, id int, status models.InvoiceStatus) error {
	for _, inv := range f.rows {
		if inv.ID == id {
			inv.Status = status
		}
	}
	return nil
}

type fakePrefs struct {
	rows map[string]string
}

func (f *fakePrefs) Get(ctx context.Context, key string) (*models.Preference, error) {
	v, ok := f.rows[key]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &models.Preference{Key: key, Value: v}, nil
}

func (f *fakePrefs) List(ctx context.Context) ([]*models.Preference, error) {
	var out []*models.Preference
	for k, v := range f.rows {
		out = append(out, &models.Preference{Key: k, Value: v})
	}
	return out, nil
}

func (f *fakePrefs) Set(ctx context.Context, key, value string) error {
	if f.rows == nil {
		f.rows = map[string]string{}
	}
	f.rows[key] = value
	return nil
}

// recorder collects notified entities.
type recorder struct {
	mu       sync.Mutex
	entities []string
}

func (r *recorder) Notify(ctx context.Context, entity string) {
	r.mu.Lock()
	r.entities = append(r.entities, entity)
	r.mu.Unlock()
}

func (r *recorder) has(entity string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entities {
		if e == entity {
			return true
		}
	}
	return false
}

func itoa(n int) string { return strconv.Itoa(n) }
