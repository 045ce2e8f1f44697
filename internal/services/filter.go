package services

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"ventas-backend/internal/models"
	"ventas-backend/internal/timeutil"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Dashboard sort keys.
const (
	SortByCustomer = "customer"
	SortByAmount   = "amount"
	SortByDueDate  = "dueDate"
	SortByStatus   = "status"
)

// DateRange is an inclusive range of calendar days; a nil bound is open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

func (r DateRange) contains(t time.Time) bool {
	if r.From != nil && t.Before(timeutil.StartOfDay(*r.From)) {
		return false
	}
	if r.To != nil && t.After(timeutil.EndOfDay(*r.To)) {
		return false
	}
	return true
}

func (r DateRange) open() bool {
	return r.From == nil && r.To == nil
}

// DashboardFilter narrows the installment dashboard.
type DashboardFilter struct {
	Search    string
	Status    string // all | pending | paid | overdue
	Period    string // all | monthly | biweekly | weekly
	SortBy    string
	SortOrder SortOrder
	Range     DateRange
}

// matchesSearch is a plain lowercase substring test. Accents are not folded,
// so "garcia" does not find "García".
func matchesSearch(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func isAll(v string) bool {
	return v == "" || v == "all"
}

func allPaid(installments []*models.Installment) bool {
	for _, inst := range installments {
		if inst.Status != models.InstallmentPaid {
			return false
		}
	}
	return true
}

// FilterInstallmentDashboard applies the dashboard filters and sort to a
// roll-up. Customers with every installment paid are always dropped first.
func FilterInstallmentDashboard(items []*models.CustomerWithInstallments, f DashboardFilter, now time.Time) []*models.CustomerWithInstallments {
	out := make([]*models.CustomerWithInstallments, 0, len(items))
	for _, c := range items {
		if allPaid(c.Installments) {
			continue
		}
		if !matchesSearch(f.Search, c.Name, c.Phone, c.SecondaryPhone) {
			continue
		}
		if !isAll(f.Status) && !anyInstallmentWithStatus(c.Installments, models.DisplayStatus(f.Status), now) {
			continue
		}
		if !isAll(f.Period) && !anySaleWithPeriod(c.Sales, models.PeriodType(f.Period)) {
			continue
		}
		if !f.Range.open() && !anyDueIn(c.Installments, f.Range) {
			continue
		}
		out = append(out, c)
	}
	sortDashboard(out, f.SortBy, f.SortOrder, now)
	return out
}

func anyInstallmentWithStatus(installments []*models.Installment, want models.DisplayStatus, now time.Time) bool {
	for _, inst := range installments {
		if ClassifyInstallment(inst, now) == want {
			return true
		}
	}
	return false
}

func anySaleWithPeriod(sales []*models.Sale, want models.PeriodType) bool {
	for _, s := range sales {
		if EffectivePeriodType(s) == want {
			return true
		}
	}
	return false
}

func anyDueIn(installments []*models.Installment, r DateRange) bool {
	for _, inst := range installments {
		if r.contains(inst.DueDate) {
			return true
		}
	}
	return false
}

func hasOverdue(c *models.CustomerWithInstallments, now time.Time) bool {
	return anyInstallmentWithStatus(c.Installments, models.DisplayOverdue, now)
}

func sortDashboard(items []*models.CustomerWithInstallments, by string, order SortOrder, now time.Time) {
	if by == "" {
		return
	}
	desc := order == SortDesc
	col := collate.New(language.Spanish, collate.IgnoreCase)

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		var cmp int
		switch by {
		case SortByCustomer:
			cmp = col.CompareString(a.Name, b.Name)
		case SortByAmount:
			cmp = compareFloat(a.TotalOwed, b.TotalOwed)
		case SortByDueDate:
			// Missing dates go last in either direction.
			switch {
			case a.NextPaymentDate == nil && b.NextPaymentDate == nil:
				return false
			case a.NextPaymentDate == nil:
				return false
			case b.NextPaymentDate == nil:
				return true
			}
			cmp = a.NextPaymentDate.Compare(*b.NextPaymentDate)
		case SortByStatus:
			// Ascending puts customers with overdue installments first.
			cmp = compareBool(hasOverdue(b, now), hasOverdue(a, now))
		default:
			return false
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

// CustomerFilter narrows the flat customer table.
type CustomerFilter struct {
	Search    string
	Status    string // all | active | archived
	SortBy    string // name | created_at
	SortOrder SortOrder
}

func FilterCustomers(customers []*models.Customer, f CustomerFilter) []*models.Customer {
	out := make([]*models.Customer, 0, len(customers))
	for _, c := range customers {
		if !matchesSearch(f.Search, c.Name, c.Phone, c.SecondaryPhone) {
			continue
		}
		switch f.Status {
		case "active":
			if !c.IsActive {
				continue
			}
		case "archived":
			if c.IsActive {
				continue
			}
		}
		out = append(out, c)
	}

	desc := f.SortOrder == SortDesc
	switch f.SortBy {
	case "name":
		col := collate.New(language.Spanish, collate.IgnoreCase)
		sort.SliceStable(out, func(i, j int) bool {
			cmp := col.CompareString(out[i].Name, out[j].Name)
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})
	case "created_at":
		sort.SliceStable(out, func(i, j int) bool {
			cmp := out[i].CreatedAt.Compare(out[j].CreatedAt)
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}
	return out
}

// CalendarFilter narrows a synthesized event list. Status and type match the
// event's own fields.
type CalendarFilter struct {
	Search string
	Status string
	Type   string
	Range  DateRange
}

func FilterCalendarEvents(events []*models.CalendarEvent, f CalendarFilter) []*models.CalendarEvent {
	out := make([]*models.CalendarEvent, 0, len(events))
	for _, e := range events {
		if !matchesSearch(f.Search, e.Title, e.Description) {
			continue
		}
		if !isAll(f.Status) && string(e.Status) != f.Status {
			continue
		}
		if !isAll(f.Type) && string(e.Type) != f.Type {
			continue
		}
		if !f.Range.contains(e.Date) {
			continue
		}
		out = append(out, e)
	}
	return out
}
