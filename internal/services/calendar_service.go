package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ventas-backend/internal/events"
	"ventas-backend/internal/metrics"
	"ventas-backend/internal/models"
	"ventas-backend/internal/timeutil"
)

const (
	saleEventPrefix        = "sale-"
	installmentEventPrefix = "installment-"
)

type CalendarService struct {
	Sales        SaleLister
	Installments CalendarInstallmentLister
	Store        CalendarStore
	Notifier     events.Notifier
	Log          zerolog.Logger
	Now          func() time.Time
}

func NewCalendarService(sales SaleLister, installments CalendarInstallmentLister, store CalendarStore, notifier events.Notifier, log zerolog.Logger) *CalendarService {
	return &CalendarService{
		Sales:        sales,
		Installments: installments,
		Store:        store,
		Notifier:     notifier,
		Log:          log,
		Now:          timeutil.Now,
	}
}

// AllEvents merges sale, installment and stored events into one list sorted by
// date. A failing source is logged and contributes nothing.
func (s *CalendarService) AllEvents(ctx context.Context) []*models.CalendarEvent {
	now := s.Now()
	var (
		wg                             sync.WaitGroup
		saleEvents, instEvents, stored []*models.CalendarEvent
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		sales, err := s.Sales.List(ctx)
		if err != nil {
			s.sourceFailed("sales", err)
			return
		}
		saleEvents = SaleEvents(sales, s.Log)
	}()
	go func() {
		defer wg.Done()
		rows, err := s.Installments.ListForCalendar(ctx)
		if err != nil {
			s.sourceFailed("installments", err)
			return
		}
		instEvents = InstallmentEvents(rows, now)
	}()
	go func() {
		defer wg.Done()
		list, err := s.Store.GetAll(ctx)
		if err != nil {
			s.sourceFailed("calendar", err)
			return
		}
		stored = list
	}()
	wg.Wait()

	all := make([]*models.CalendarEvent, 0, len(saleEvents)+len(instEvents)+len(stored))
	all = append(all, saleEvents...)
	all = append(all, instEvents...)
	all = append(all, stored...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Date.Before(all[j].Date) })
	return all
}

func (s *CalendarService) sourceFailed(source string, err error) {
	metrics.FetchFailures.WithLabelValues("calendar_" + source).Inc()
	s.Log.Error().Err(err).Str("source", source).Msg("calendar source failed")
}

// Filtered returns AllEvents narrowed by f.
func (s *CalendarService) Filtered(ctx context.Context, f CalendarFilter) []*models.CalendarEvent {
	return FilterCalendarEvents(s.AllEvents(ctx), f)
}

// SaleEvents builds one event per sale. Sales missing an id, customer name,
// date or total are logged and skipped.
func SaleEvents(sales []*models.Sale, log zerolog.Logger) []*models.CalendarEvent {
	out := make([]*models.CalendarEvent, 0, len(sales))
	for _, sale := range sales {
		if sale.ID == 0 || sale.CustomerName == "" || sale.Date.IsZero() || sale.TotalAmount == 0 {
			log.Warn().Int("sale_id", sale.ID).Str("sale_number", sale.SaleNumber).Msg("skipping malformed sale in calendar")
			continue
		}
		status := models.EventCompleted
		if sale.Status == models.SalePending {
			status = models.EventPending
		}
		amount := sale.TotalAmount
		customerID, saleID := sale.CustomerID, sale.ID
		out = append(out, &models.CalendarEvent{
			ID:          saleEventPrefix + strconv.Itoa(sale.ID),
			Title:       fmt.Sprintf("Venta %s - %s", sale.SaleNumber, sale.CustomerName),
			Description: saleDescription(sale),
			Date:        sale.Date,
			Type:        models.EventSale,
			Status:      status,
			Amount:      &amount,
			CustomerID:  &customerID,
			SaleID:      &saleID,
		})
	}
	return out
}

func saleDescription(sale *models.Sale) string {
	if sale.PaymentType == models.PaymentTypeInstallments {
		return fmt.Sprintf("Venta en %d cuotas", sale.NumberOfInstallments)
	}
	return "Venta al contado"
}

// InstallmentEvents builds one event per installment row, with the status
// derived from the due date.
func InstallmentEvents(rows []*models.UpcomingInstallment, now time.Time) []*models.CalendarEvent {
	out := make([]*models.CalendarEvent, 0, len(rows))
	for _, row := range rows {
		amount, balance := row.Amount, row.Balance
		customerID, saleID, instID := row.CustomerID, row.SaleID, row.ID
		title := fmt.Sprintf("Cuota %d - %s", row.InstallmentNumber, row.CustomerName)
		if row.NumberOfInstallments > 0 {
			title = fmt.Sprintf("Cuota %d/%d - %s", row.InstallmentNumber, row.NumberOfInstallments, row.CustomerName)
		}
		out = append(out, &models.CalendarEvent{
			ID:            installmentEventPrefix + strconv.Itoa(row.ID),
			Title:         title,
			Description:   "Venta " + row.SaleNumber,
			Date:          row.DueDate,
			Type:          models.EventInstallment,
			Status:        eventStatus(ClassifyInstallment(&row.Installment, now)),
			Amount:        &amount,
			Balance:       &balance,
			CustomerID:    &customerID,
			SaleID:        &saleID,
			InstallmentID: &instID,
		})
	}
	return out
}

func validateEvent(req *models.CalendarEventRequest) error {
	errs := fieldErrors{}
	if strings.TrimSpace(req.Title) == "" {
		errs.add("title", "el título es obligatorio")
	}
	if req.Date.IsZero() {
		errs.add("date", "la fecha es obligatoria")
	}
	switch req.Type {
	case "", models.EventCustom, models.EventReminder:
	default:
		errs.add("type", "solo se pueden crear eventos personalizados o recordatorios")
	}
	switch req.Status {
	case "", models.EventPending, models.EventCompleted, models.EventOverdue, models.EventCancelled:
	default:
		errs.add("status", "estado inválido")
	}
	return errs.err()
}

func eventFromRequest(req *models.CalendarEventRequest) *models.CalendarEvent {
	e := &models.CalendarEvent{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Date:        req.Date,
		Type:        req.Type,
		Status:      req.Status,
		Amount:      req.Amount,
		CustomerID:  req.CustomerID,
	}
	if e.Type == "" {
		e.Type = models.EventCustom
	}
	if e.Status == "" {
		e.Status = models.EventPending
	}
	return e
}

// storedEventID parses the id of a stored event. Synthesized ids are rejected.
func storedEventID(id string) (int, error) {
	if strings.HasPrefix(id, saleEventPrefix) || strings.HasPrefix(id, installmentEventPrefix) {
		return 0, invalid("id", "los eventos de ventas y cuotas no se pueden modificar desde el calendario")
	}
	n, err := strconv.Atoi(id)
	if err != nil || n <= 0 {
		return 0, invalid("id", "identificador de evento inválido")
	}
	return n, nil
}

func (s *CalendarService) CreateEvent(ctx context.Context, req *models.CalendarEventRequest) (models.Ack, error) {
	if err := validateEvent(req); err != nil {
		return models.Ack{}, err
	}
	e := eventFromRequest(req)
	if err := s.Store.Create(ctx, e); err != nil {
		return models.Ack{}, fmt.Errorf("creating calendar event: %w", err)
	}
	s.notify(ctx)
	id, _ := strconv.Atoi(e.ID)
	return models.Ack{Entity: events.EntityCalendar, ID: id, Action: "create"}, nil
}

func (s *CalendarService) UpdateEvent(ctx context.Context, id string, req *models.CalendarEventRequest) (models.Ack, error) {
	n, err := storedEventID(id)
	if err != nil {
		return models.Ack{}, err
	}
	if err := validateEvent(req); err != nil {
		return models.Ack{}, err
	}
	if _, err := s.Store.Get(ctx, n); err != nil {
		return models.Ack{}, err
	}
	e := eventFromRequest(req)
	e.ID = strconv.Itoa(n)
	if err := s.Store.Update(ctx, e); err != nil {
		return models.Ack{}, fmt.Errorf("updating calendar event: %w", err)
	}
	s.notify(ctx)
	return models.Ack{Entity: events.EntityCalendar, ID: n, Action: "update"}, nil
}

func (s *CalendarService) DeleteEvent(ctx context.Context, id string) (models.Ack, error) {
	n, err := storedEventID(id)
	if err != nil {
		return models.Ack{}, err
	}
	if err := s.Store.Delete(ctx, n); err != nil {
		return models.Ack{}, err
	}
	s.notify(ctx)
	return models.Ack{Entity: events.EntityCalendar, ID: n, Action: "delete"}, nil
}

// ImportCSV stores every row of an exported calendar as a custom event.
// Synthesized sale and installment rows are skipped since they are derived.
func (s *CalendarService) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	parsed, err := ParseCSV(r)
	if err != nil {
		return 0, invalid("file", err.Error())
	}
	n := 0
	for _, e := range parsed {
		if e.Type == models.EventSale || e.Type == models.EventInstallment {
			continue
		}
		if err := s.Store.Create(ctx, e); err != nil {
			return n, fmt.Errorf("importing calendar event %q: %w", e.Title, err)
		}
		n++
	}
	if n > 0 {
		s.notify(ctx)
	}
	return n, nil
}

func (s *CalendarService) notify(ctx context.Context) {
	if s.Notifier != nil {
		s.Notifier.Notify(ctx, events.EntityCalendar)
	}
}
