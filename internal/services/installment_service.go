package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"ventas-backend/internal/events"
	"ventas-backend/internal/metrics"
	"ventas-backend/internal/models"
	"ventas-backend/internal/money"
	"ventas-backend/internal/repositories"
	"ventas-backend/internal/timeutil"
)

// DefaultWorkers bounds per-sale fan-out fetches when no limit is configured.
const DefaultWorkers = 10

type InstallmentService struct {
	Customers    CustomerLister
	Sales        SaleLister
	Items        SaleItemFetcher
	Installments InstallmentStore
	Notifier     events.Notifier
	Workers      int
	Log          zerolog.Logger
	Now          func() time.Time
}

func NewInstallmentService(customers CustomerLister, sales SaleLister, items SaleItemFetcher, installments InstallmentStore, notifier events.Notifier, workers int, log zerolog.Logger) *InstallmentService {
	return &InstallmentService{
		Customers:    customers,
		Sales:        sales,
		Items:        items,
		Installments: installments,
		Notifier:     notifier,
		Workers:      workers,
		Log:          log,
		Now:          timeutil.Now,
	}
}

// CustomerRollup builds one CustomerWithInstallments per customer that has at
// least one installments sale. customerID narrows the roll-up to a single
// customer when non-nil.
func (s *InstallmentService) CustomerRollup(ctx context.Context, customerID *int) ([]*models.CustomerWithInstallments, error) {
	customers, err := s.Customers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	sales, err := s.Sales.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}

	qualifying := make([]*models.Sale, 0, len(sales))
	for _, sale := range sales {
		if sale.PaymentType != models.PaymentTypeInstallments {
			continue
		}
		if customerID != nil && sale.CustomerID != *customerID {
			continue
		}
		qualifying = append(qualifying, sale)
	}

	loadSaleDetails(ctx, qualifying, s.Items, s.Installments, s.Workers, s.Log)
	return BuildRollup(customers, qualifying, s.Now()), nil
}

// loadSaleDetails attaches items and installments to each sale. A failed
// fetch leaves that list empty; the other sales are unaffected.
func loadSaleDetails(ctx context.Context, sales []*models.Sale, items SaleItemFetcher, installments InstallmentFetcher, workers int, log zerolog.Logger) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for _, sale := range sales {
		g.Go(func() error {
			if items != nil {
				list, err := items.GetBySale(ctx, sale.ID)
				if err != nil {
					metrics.FetchFailures.WithLabelValues("sale_items").Inc()
					log.Warn().Err(err).Int("sale_id", sale.ID).Msg("fetching sale items failed")
					list = nil
				}
				sale.Items = list
			}
			list, err := installments.GetBySale(ctx, sale.ID)
			if err != nil {
				metrics.FetchFailures.WithLabelValues("installments").Inc()
				log.Warn().Err(err).Int("sale_id", sale.ID).Msg("fetching installments failed")
				list = nil
			}
			sale.Installments = list
			return nil
		})
	}
	_ = g.Wait()
}

// BuildRollup joins customers with their installments sales, whose
// Installments must already be attached. Customers without such sales are
// left out.
func BuildRollup(customers []*models.Customer, sales []*models.Sale, now time.Time) []*models.CustomerWithInstallments {
	byCustomer := make(map[int][]*models.Sale)
	for _, sale := range sales {
		if sale.PaymentType != models.PaymentTypeInstallments {
			continue
		}
		byCustomer[sale.CustomerID] = append(byCustomer[sale.CustomerID], sale)
	}

	out := make([]*models.CustomerWithInstallments, 0, len(byCustomer))
	for _, c := range customers {
		customerSales, ok := byCustomer[c.ID]
		if !ok {
			continue
		}
		row := &models.CustomerWithInstallments{
			Customer:     *c,
			Sales:        customerSales,
			Installments: []*models.Installment{},
		}
		var owed, overdue []float64
		for _, sale := range customerSales {
			for _, inst := range sale.Installments {
				row.Installments = append(row.Installments, inst)
				if inst.Status != models.InstallmentPaid {
					owed = append(owed, inst.Balance)
				}
				if countsAsOverdue(inst, now) {
					overdue = append(overdue, inst.Balance)
				}
				if inst.Status == models.InstallmentPending {
					if row.NextPaymentDate == nil || inst.DueDate.Before(*row.NextPaymentDate) {
						due := inst.DueDate
						row.NextPaymentDate = &due
					}
				}
			}
		}
		row.TotalOwed = money.Sum(owed...)
		row.OverdueAmount = money.Sum(overdue...)
		out = append(out, row)
	}
	return out
}

// Dashboard returns the filtered and sorted installment dashboard.
func (s *InstallmentService) Dashboard(ctx context.Context, f DashboardFilter) ([]*models.CustomerWithInstallments, error) {
	rollup, err := s.CustomerRollup(ctx, nil)
	if err != nil {
		return nil, err
	}
	return FilterInstallmentDashboard(rollup, f, s.Now()), nil
}

// Upcoming lists installments due from today through the next days days.
func (s *InstallmentService) Upcoming(ctx context.Context, days int) ([]*models.UpcomingInstallment, error) {
	if days <= 0 {
		days = 7
	}
	now := s.Now()
	return s.Installments.GetUpcoming(ctx, timeutil.StartOfDay(now), timeutil.EndOfDay(now.AddDate(0, 0, days)))
}

// ApplyPayment returns a copy of inst with amount applied and the amount that
// was actually taken. Overpayment is capped at the outstanding balance.
func ApplyPayment(inst *models.Installment, amount float64, paidAt time.Time) (*models.Installment, float64, error) {
	if amount <= 0 {
		return nil, 0, invalid("amount", "el monto debe ser mayor a cero")
	}
	if inst.Status == models.InstallmentPaid || money.SubFloor(inst.Amount, inst.PaidAmount) == 0 {
		return nil, 0, invalid("amount", "la cuota ya está pagada")
	}

	out := *inst
	applied := money.Min(amount, money.SubFloor(inst.Amount, inst.PaidAmount))
	out.PaidAmount = money.Min(money.Sum(inst.PaidAmount, applied), inst.Amount)
	out.Balance = money.SubFloor(out.Amount, out.PaidAmount)
	if out.Balance == 0 {
		out.Status = models.InstallmentPaid
		paid := paidAt
		out.PaidDate = &paid
	} else {
		out.Status = models.InstallmentPartial
		out.PaidDate = nil
	}
	return &out, applied, nil
}

// RecordPayment applies a payment to an installment and writes the ledger row.
// The amounts are computed from the row as locked by the store.
func (s *InstallmentService) RecordPayment(ctx context.Context, installmentID int, req *models.RecordPaymentRequest) (models.Ack, error) {
	if req.Amount <= 0 {
		return models.Ack{}, invalid("amount", "el monto debe ser mayor a cero")
	}
	paidAt := s.Now()
	if req.PaymentDate != nil {
		paidAt = *req.PaymentDate
	}
	method := req.PaymentMethod
	if method == "" {
		method = "efectivo"
	}

	updated, payment, err := s.Installments.RecordPayment(ctx, installmentID, func(locked *models.Installment) (*models.Installment, *models.Payment, error) {
		next, applied, err := ApplyPayment(locked, req.Amount, paidAt)
		if err != nil {
			return nil, nil, err
		}
		id := locked.ID
		return next, &models.Payment{
			SaleID:        locked.SaleID,
			InstallmentID: &id,
			Amount:        applied,
			PaymentMethod: method,
			PaymentDate:   paidAt,
			Notes:         req.Notes,
		}, nil
	})
	if err != nil {
		if IsValidation(err) || errors.Is(err, repositories.ErrNotFound) {
			return models.Ack{}, err
		}
		return models.Ack{}, fmt.Errorf("recording payment: %w", err)
	}

	s.Log.Info().Int("installment_id", updated.ID).Float64("amount", payment.Amount).Str("status", string(updated.Status)).Msg("payment recorded")
	if s.Notifier != nil {
		s.Notifier.Notify(ctx, events.EntityInstallments)
		s.Notifier.Notify(ctx, events.EntityPayments)
		s.Notifier.Notify(ctx, events.EntitySales)
	}
	return models.Ack{Entity: events.EntityInstallments, ID: updated.ID, Action: "payment"}, nil
}
