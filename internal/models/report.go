package models

import "time"

// ChartBucket is one calendar day of sales activity
type ChartBucket struct {
	Date    string  `json:"date"`
	Sales   int     `json:"sales"`
	Revenue float64 `json:"revenue"`
}

// MonthlyComparison compares the current month against the previous one
type MonthlyComparison struct {
	Current       float64 `json:"current"`
	Previous      float64 `json:"previous"`
	PercentChange float64 `json:"percent_change"`
}

// DashboardStats backs the home dashboard cards
type DashboardStats struct {
	CustomerCount        int                    `json:"customer_count"`
	ActiveProducts       int                    `json:"active_products"`
	TotalRevenue         float64                `json:"total_revenue"`
	OverdueSalesCount    int                    `json:"overdue_sales_count"`
	Customers            MonthlyComparison      `json:"customers"`
	Products             MonthlyComparison      `json:"products"`
	Sales                MonthlyComparison      `json:"sales"`
	Revenue              MonthlyComparison      `json:"revenue"`
	UpcomingInstallments []*UpcomingInstallment `json:"upcoming_installments"`
	GeneratedAt          time.Time              `json:"generated_at"`
}

// Preference is a persisted UI preference (theme, language, currency, ...)
type Preference struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UpdatePreferenceRequest struct {
	Value string `json:"value"`
}

// Ack acknowledges a write. Callers refetch to observe the new state.
type Ack struct {
	Entity string `json:"entity"`
	ID     int    `json:"id"`
	Action string `json:"action"`
}
