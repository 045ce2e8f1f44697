package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ventas-backend/internal/handlers"
	"ventas-backend/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Customers    *handlers.CustomerHandler
	Products     *handlers.ProductHandler
	Sales        *handlers.SaleHandler
	Installments *handlers.InstallmentHandler
	Invoices     *handlers.InvoiceHandler
	Calendar     *handlers.CalendarHandler
	Reports      *handlers.ReportHandler
	Preferences  *handlers.PreferenceHandler
	Backup       *handlers.BackupHandler
	Health       *handlers.HealthHandler
	Changes      http.HandlerFunc
}

// NewRouter mounts /health, /metrics and the change feed without auth, and
// every /api route behind the bearer token and the database gate.
func NewRouter(h Handlers, authMiddleware *middleware.AuthMiddleware, dbAvailable func() bool, log zerolog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.RequestLogger(log))

	r.HandleFunc("/health", h.Health.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/ws/changes", h.Changes).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Authenticate)
	api.Use(middleware.RequireDatabase(dbAvailable))

	// Customers
	api.HandleFunc("/customers", h.Customers.ListCustomers).Methods("GET")
	api.HandleFunc("/customers", h.Customers.CreateCustomer).Methods("POST")
	api.HandleFunc("/customers/recent", h.Customers.RecentCustomers).Methods("GET")
	api.HandleFunc("/customers/export.xlsx", h.Customers.ExportCustomers).Methods("GET")
	api.HandleFunc("/customers/{id:[0-9]+}", h.Customers.GetCustomer).Methods("GET")
	api.HandleFunc("/customers/{id:[0-9]+}", h.Customers.UpdateCustomer).Methods("PUT")
	api.HandleFunc("/customers/{id:[0-9]+}", h.Customers.DeleteCustomer).Methods("DELETE")
	api.HandleFunc("/customers/{id:[0-9]+}/profile", h.Customers.Profile).Methods("GET")

	// Products
	api.HandleFunc("/products", h.Products.ListProducts).Methods("GET")
	api.HandleFunc("/products", h.Products.CreateProduct).Methods("POST")
	api.HandleFunc("/products/{id:[0-9]+}", h.Products.GetProduct).Methods("GET")
	api.HandleFunc("/products/{id:[0-9]+}", h.Products.UpdateProduct).Methods("PUT")
	api.HandleFunc("/products/{id:[0-9]+}", h.Products.DeleteProduct).Methods("DELETE")
	api.HandleFunc("/products/{id:[0-9]+}/sales", h.Products.SalesHistory).Methods("GET")

	// Sales
	api.HandleFunc("/sales", h.Sales.ListSales).Methods("GET")
	api.HandleFunc("/sales", h.Sales.CreateSale).Methods("POST")
	api.HandleFunc("/sales/{id:[0-9]+}", h.Sales.GetSale).Methods("GET")
	api.HandleFunc("/sales/{id:[0-9]+}", h.Sales.DeleteSale).Methods("DELETE")
	api.HandleFunc("/sales/{id:[0-9]+}/payments", h.Sales.GetPayments).Methods("GET")
	api.HandleFunc("/sales/{id:[0-9]+}/invoice", h.Invoices.GetBySale).Methods("GET")
	api.HandleFunc("/sales/{id:[0-9]+}/export.xlsx", h.Sales.ExportSale).Methods("GET")
	api.HandleFunc("/sales/{id:[0-9]+}/invoice.pdf", h.Sales.InvoicePDF).Methods("GET")

	// Installments
	api.HandleFunc("/installments/dashboard", h.Installments.Dashboard).Methods("GET")
	api.HandleFunc("/installments/upcoming", h.Installments.Upcoming).Methods("GET")
	api.HandleFunc("/installments/{id:[0-9]+}/payments", h.Installments.RecordPayment).Methods("POST")

	// Invoices
	api.HandleFunc("/invoices", h.Invoices.ListInvoices).Methods("GET")
	api.HandleFunc("/invoices", h.Invoices.CreateInvoice).Methods("POST")
	api.HandleFunc("/invoices/next-number", h.Invoices.NextNumber).Methods("GET")
	api.HandleFunc("/invoices/export.xlsx", h.Invoices.ExportInvoices).Methods("GET")
	api.HandleFunc("/invoices/{id:[0-9]+}/status", h.Invoices.UpdateStatus).Methods("PATCH")

	// Calendar
	api.HandleFunc("/calendar/events", h.Calendar.ListEvents).Methods("GET")
	api.HandleFunc("/calendar/events", h.Calendar.CreateEvent).Methods("POST")
	api.HandleFunc("/calendar/events/{id}", h.Calendar.UpdateEvent).Methods("PUT")
	api.HandleFunc("/calendar/events/{id}", h.Calendar.DeleteEvent).Methods("DELETE")
	api.HandleFunc("/calendar/export.csv", h.Calendar.ExportCSV).Methods("GET")
	api.HandleFunc("/calendar/import.csv", h.Calendar.ImportCSV).Methods("POST")

	// Reports
	api.HandleFunc("/reports/sales-chart", h.Reports.SalesChart).Methods("GET")
	api.HandleFunc("/dashboard/stats", h.Reports.DashboardStats).Methods("GET")

	// Preferences and backup
	api.HandleFunc("/preferences", h.Preferences.ListPreferences).Methods("GET")
	api.HandleFunc("/preferences/{key}", h.Preferences.SetPreference).Methods("PUT")
	api.HandleFunc("/backup", h.Backup.RunBackup).Methods("POST")

	return r
}
