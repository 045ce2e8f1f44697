package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"ventas-backend/internal/models"
	"ventas-backend/internal/services"
	"ventas-backend/pkg/utils"
)

type InstallmentHandler struct {
	Service *services.InstallmentService
	log     zerolog.Logger
}

func NewInstallmentHandler(s *services.InstallmentService, log zerolog.Logger) *InstallmentHandler {
	return &InstallmentHandler{Service: s, log: log}
}

// Dashboard returns the per-customer installment roll-up with filters applied.
func (h *InstallmentHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	rng, ok := queryRange(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	rows, err := h.Service.Dashboard(r.Context(), services.DashboardFilter{
		Search:    q.Get("search"),
		Status:    q.Get("status"),
		Period:    q.Get("period"),
		SortBy:    q.Get("sortBy"),
		SortOrder: services.SortOrder(q.Get("sortOrder")),
		Range:     rng,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, rows)
}

func (h *InstallmentHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.Upcoming(r.Context(), queryInt(r, "days", 7))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, rows)
}

func (h *InstallmentHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.RecordPaymentRequest
	if !decode(w, r, &req) {
		return
	}
	ack, err := h.Service.RecordPayment(r.Context(), id, &req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusCreated, ack)
}
