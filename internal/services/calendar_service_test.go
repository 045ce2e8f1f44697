package services

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"ventas-backend/internal/events"
	"ventas-backend/internal/models"
)

func TestAllEventsMergesSourcesSortedByDate(t *testing.T) {
	now := date(2024, time.March, 10)
	sales := &fakeSales{rows: []*models.Sale{
		{ID: 1, CustomerID: 5, CustomerName: "Ana", SaleNumber: "V-000001", Date: date(2024, time.March, 5), TotalAmount: 300, PaymentType: models.PaymentTypeInstallments, NumberOfInstallments: 3, Status: models.SalePending},
		{ID: 2, CustomerName: "", Date: date(2024, time.March, 6), TotalAmount: 10}, // malformed
	}}
	insts := &fakeInstallments{calendar: []*models.UpcomingInstallment{
		{Installment: models.Installment{ID: 11, SaleID: 1, InstallmentNumber: 1, Amount: 100, Balance: 100, Status: models.InstallmentPending, DueDate: date(2024, time.March, 1)}, NumberOfInstallments: 3, CustomerID: 5, CustomerName: "Ana", SaleNumber: "V-000001"},
		{Installment: models.Installment{ID: 12, SaleID: 1, InstallmentNumber: 2, Amount: 100, Balance: 0, Status: models.InstallmentPaid, DueDate: date(2024, time.April, 1)}, NumberOfInstallments: 3, CustomerID: 5, CustomerName: "Ana", SaleNumber: "V-000001"},
	}}
	store := &fakeCalendar{rows: []*models.CalendarEvent{
		{ID: "7", Title: "Inventario", Type: models.EventCustom, Status: models.EventPending, Date: date(2024, time.March, 3)},
	}}

	var logs bytes.Buffer
	s := NewCalendarService(sales, insts, store, nil, zerolog.New(&logs))
	s.Now = func() time.Time { return now }

	got := s.AllEvents(context.Background())
	var ids []string
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	want := []string{"installment-11", "7", "sale-1", "installment-12"}
	if !equalStrings(ids, want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}

	if got[0].Status != models.EventOverdue || got[0].Title != "Cuota 1/3 - Ana" || *got[0].Balance != 100 {
		t.Errorf("overdue installment event = %+v", got[0])
	}
	if got[3].Status != models.EventCompleted {
		t.Errorf("paid installment status = %s", got[3].Status)
	}
	if got[2].Type != models.EventSale || got[2].Status != models.EventPending || *got[2].Amount != 300 {
		t.Errorf("sale event = %+v", got[2])
	}
	if !strings.Contains(logs.String(), "malformed sale") {
		t.Errorf("malformed sale should be logged, logs: %s", logs.String())
	}
}

func TestAllEventsSurvivesSourceFailure(t *testing.T) {
	sales := &fakeSales{rows: []*models.Sale{
		{ID: 1, CustomerName: "Ana", SaleNumber: "V-000001", Date: date(2024, time.March, 5), TotalAmount: 300},
	}}
	insts := &fakeInstallments{calErr: errBoom}
	store := &fakeCalendar{rows: []*models.CalendarEvent{{ID: "7", Title: "Nota", Date: date(2024, time.March, 3)}}}

	s := NewCalendarService(sales, insts, store, nil, zerolog.Nop())
	got := s.AllEvents(context.Background())
	if len(got) != 2 {
		t.Fatalf("got %d events, want sale and custom events", len(got))
	}

	s.Store = &fakeCalendar{err: errBoom}
	s.Sales = &fakeSales{listErr: errBoom}
	if got := s.AllEvents(context.Background()); len(got) != 0 {
		t.Errorf("all sources failing should give an empty list, got %d", len(got))
	}
}

func TestCalendarEventWrites(t *testing.T) {
	store := &fakeCalendar{}
	rec := &recorder{}
	s := NewCalendarService(&fakeSales{}, &fakeInstallments{}, store, rec, zerolog.Nop())
	ctx := context.Background()

	if _, err := s.CreateEvent(ctx, &models.CalendarEventRequest{Title: " "}); !IsValidation(err) {
		t.Errorf("empty title: err = %v", err)
	}
	if _, err := s.CreateEvent(ctx, &models.CalendarEventRequest{Title: "x", Date: date(2024, time.March, 1), Type: models.EventSale}); !IsValidation(err) {
		t.Errorf("sale type: err = %v", err)
	}

	ack, err := s.CreateEvent(ctx, &models.CalendarEventRequest{Title: "Llamar", Date: date(2024, time.March, 1)})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if ack.ID != 1 || store.rows[0].Type != models.EventCustom || store.rows[0].Status != models.EventPending {
		t.Errorf("ack=%+v stored=%+v", ack, store.rows[0])
	}
	if !rec.has("calendar") {
		t.Error("create should notify calendar")
	}

	if _, err := s.UpdateEvent(ctx, "1", &models.CalendarEventRequest{Title: "Llamar a Ana", Date: date(2024, time.March, 2), Type: models.EventReminder}); err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	if store.rows[0].Title != "Llamar a Ana" || store.rows[0].Type != models.EventReminder {
		t.Errorf("updated = %+v", store.rows[0])
	}

	for _, id := range []string{"sale-1", "installment-4", "abc"} {
		if _, err := s.DeleteEvent(ctx, id); !IsValidation(err) {
			t.Errorf("DeleteEvent(%q): err = %v, want validation error", id, err)
		}
	}
}

func TestCSVRoundTrip(t *testing.T) {
	events := []*models.CalendarEvent{
		{Title: "Cobro, cuota 2", Date: date(2024, time.January, 15), Type: models.EventInstallment, Status: models.EventPending, Amount: ptr(1250.5), Description: `Llevar recibo, "original" y copia`},
		{Title: "Reunión", Date: date(2024, time.February, 1), Type: models.EventReminder, Status: models.EventCompleted, Description: "línea 1\nlínea 2"},
	}

	data := ExportCSV(events)
	firstLine := strings.SplitN(string(data), "\r\n", 2)[0]
	if firstLine != `"Title","Date","Type","Status","Amount","Description"` {
		t.Errorf("header = %s", firstLine)
	}
	if !strings.Contains(string(data), `"2024-01-15"`) || !strings.Contains(string(data), `"1250.50"`) {
		t.Errorf("unexpected body:\n%s", data)
	}

	parsed, err := ParseCSV(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(parsed) != len(events) {
		t.Fatalf("parsed %d events, want %d", len(parsed), len(events))
	}
	for i, want := range events {
		got := parsed[i]
		if got.Title != want.Title || got.Type != want.Type || got.Status != want.Status || got.Description != want.Description {
			t.Errorf("event %d: got %+v, want %+v", i, got, want)
		}
		if got.Date.Format(time.DateOnly) != want.Date.Format(time.DateOnly) {
			t.Errorf("event %d: date %s, want %s", i, got.Date.Format(time.DateOnly), want.Date.Format(time.DateOnly))
		}
		switch {
		case want.Amount == nil && got.Amount != nil:
			t.Errorf("event %d: amount %v, want none", i, *got.Amount)
		case want.Amount != nil && (got.Amount == nil || *got.Amount != *want.Amount):
			t.Errorf("event %d: amount %v, want %v", i, got.Amount, *want.Amount)
		}
	}
}

func TestParseCSVAcceptsByteOrderMark(t *testing.T) {
	data := ExportCSV([]*models.CalendarEvent{
		{Title: "Entrega", Date: date(2024, time.May, 3), Type: models.EventCustom, Status: models.EventPending},
	})

	parsed, err := ParseCSV(strings.NewReader("\ufeff" + string(data)))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(parsed) != 1 || parsed[0].Title != "Entrega" {
		t.Errorf("parsed = %+v", parsed)
	}
}

func TestParseCSVRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"empty":      "",
		"bad header": "\"Name\",\"Date\",\"Type\",\"Status\",\"Amount\",\"Description\"\r\n",
		"bad date":   "\"Title\",\"Date\",\"Type\",\"Status\",\"Amount\",\"Description\"\r\n\"x\",\"15/01/2024\",\"custom\",\"pending\",\"\",\"\"\r\n",
		"bad amount": "\"Title\",\"Date\",\"Type\",\"Status\",\"Amount\",\"Description\"\r\n\"x\",\"2024-01-15\",\"custom\",\"pending\",\"abc\",\"\"\r\n",
		"short row":  "\"Title\",\"Date\",\"Type\",\"Status\",\"Amount\",\"Description\"\r\n\"x\",\"2024-01-15\"\r\n",
	}
	for name, in := range cases {
		if _, err := ParseCSV(strings.NewReader(in)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestImportCSVSkipsDerivedRows(t *testing.T) {
	amount := 300.0
	data := ExportCSV([]*models.CalendarEvent{
		{Title: "Venta V-000001", Date: date(2024, time.January, 10), Type: models.EventSale, Status: models.EventCompleted},
		{Title: "Pagar alquiler", Date: date(2024, time.January, 15), Type: models.EventReminder, Status: models.EventPending, Amount: &amount},
	})
	store := &fakeCalendar{}
	rec := &recorder{}
	s := NewCalendarService(&fakeSales{}, &fakeInstallments{}, store, rec, zerolog.Nop())

	n, err := s.ImportCSV(context.Background(), bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || len(store.rows) != 1 || store.rows[0].Title != "Pagar alquiler" {
		t.Errorf("imported %d, stored %+v", n, store.rows)
	}
	if !rec.has(events.EntityCalendar) {
		t.Error("missing calendar notification")
	}

	if _, err := s.ImportCSV(context.Background(), strings.NewReader("")); !IsValidation(err) {
		t.Errorf("empty file: err = %v, want validation error", err)
	}
}
