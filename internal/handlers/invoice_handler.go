package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"ventas-backend/internal/models"
	"ventas-backend/internal/services"
	"ventas-backend/pkg/utils"
)

type InvoiceHandler struct {
	Service *services.InvoiceService
	Export  *services.ExportService
	log     zerolog.Logger
}

func NewInvoiceHandler(s *services.InvoiceService, export *services.ExportService, log zerolog.Logger) *InvoiceHandler {
	return &InvoiceHandler{Service: s, Export: export, log: log}
}

func (h *InvoiceHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.Service.ListInvoices(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, invoices)
}

func (h *InvoiceHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req models.CreateInvoiceRequest
	if !decode(w, r, &req) {
		return
	}
	ack, err := h.Service.CreateForSale(r.Context(), req.SaleID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusCreated, ack)
}

// NextNumber previews the number the next invoice will get.
func (h *InvoiceHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	number, err := h.Service.NextInvoiceNumber(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"invoice_number": number})
}

func (h *InvoiceHandler) GetBySale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	invoice, err := h.Service.GetBySale(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, invoice)
}

func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.UpdateInvoiceStatusRequest
	if !decode(w, r, &req) {
		return
	}
	ack, err := h.Service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, ack)
}

func (h *InvoiceHandler) ExportInvoices(w http.ResponseWriter, r *http.Request) {
	f, err := h.Export.InvoicesExport(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeWorkbook(w, h.log, f, "facturas.xlsx")
}
