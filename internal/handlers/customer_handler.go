package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"ventas-backend/internal/models"
	"ventas-backend/internal/services"
	"ventas-backend/pkg/utils"
)

type CustomerHandler struct {
	Service *services.CustomerService
	Export  *services.ExportService
	log     zerolog.Logger
}

func NewCustomerHandler(s *services.CustomerService, export *services.ExportService, log zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{Service: s, Export: export, log: log}
}

// ListCustomers serves the paginated listing when "page" is given, otherwise
// the full table with search, status and sort applied.
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Has("page") {
		page, err := h.Service.ListCustomers(r.Context(),
			queryInt(r, "page", 1), queryInt(r, "size", 0), q.Get("search"), q.Get("archived") == "true")
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, page)
		return
	}

	customers, err := h.Service.FilteredCustomers(r.Context(), services.CustomerFilter{
		Search:    q.Get("search"),
		Status:    q.Get("status"),
		SortBy:    q.Get("sortBy"),
		SortOrder: services.SortOrder(q.Get("sortOrder")),
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) RecentCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Service.RecentCustomers(r.Context(), queryInt(r, "limit", 5))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req models.CustomerRequest
	if !decode(w, r, &req) {
		return
	}
	ack, err := h.Service.CreateCustomer(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusCreated, ack)
}

func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	customer, err := h.Service.GetCustomer(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.CustomerRequest
	if !decode(w, r, &req) {
		return
	}
	ack, err := h.Service.UpdateCustomer(r.Context(), id, &req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, ack)
}

// DeleteCustomer archives customers that have sales and deletes the rest.
// The ack's action says which happened.
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ack, err := h.Service.DeleteCustomer(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, ack)
}

func (h *CustomerHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	profile, err := h.Service.Profile(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, profile)
}

func (h *CustomerHandler) ExportCustomers(w http.ResponseWriter, r *http.Request) {
	f, err := h.Export.CustomersExport(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeWorkbook(w, h.log, f, "clientes.xlsx")
}
