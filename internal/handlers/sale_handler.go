package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"ventas-backend/internal/models"
	"ventas-backend/internal/services"
	"ventas-backend/pkg/utils"
)

type SaleHandler struct {
	Service  *services.SaleService
	Invoices *services.InvoiceService
	Export   *services.ExportService
	log      zerolog.Logger
}

func NewSaleHandler(s *services.SaleService, invoices *services.InvoiceService, export *services.ExportService, log zerolog.Logger) *SaleHandler {
	return &SaleHandler{Service: s, Invoices: invoices, Export: export, log: log}
}

func (h *SaleHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	page, err := h.Service.ListSales(r.Context(), models.SaleListParams{
		Page:       queryInt(r, "page", 1),
		PageSize:   queryInt(r, "size", 0),
		Search:     r.URL.Query().Get("search"),
		CustomerID: queryInt(r, "customer_id", 0),
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, page)
}

func (h *SaleHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSaleRequest
	if !decode(w, r, &req) {
		return
	}
	ack, err := h.Service.CreateSale(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusCreated, ack)
}

func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	sale, err := h.Service.GetSale(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, sale)
}

func (h *SaleHandler) GetPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	payments, err := h.Service.GetPayments(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, payments)
}

func (h *SaleHandler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ack, err := h.Service.DeleteSale(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, ack)
}

func (h *SaleHandler) ExportSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	f, name, err := h.Export.SaleExport(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeWorkbook(w, h.log, f, name)
}

// InvoicePDF renders the sale's invoice, or a receipt if it has none yet.
func (h *SaleHandler) InvoicePDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	pdf, err := h.Invoices.SaleInvoicePDF(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.Attachment(w, "application/pdf", "comprobante.pdf", pdf)
}
