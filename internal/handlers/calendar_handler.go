package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"ventas-backend/internal/models"
	"ventas-backend/internal/services"
	"ventas-backend/pkg/utils"
)

const maxCalendarImport = 5 << 20

type CalendarHandler struct {
	Service *services.CalendarService
	log     zerolog.Logger
}

func NewCalendarHandler(s *services.CalendarService, log zerolog.Logger) *CalendarHandler {
	return &CalendarHandler{Service: s, log: log}
}

func (h *CalendarHandler) filter(w http.ResponseWriter, r *http.Request) (services.CalendarFilter, bool) {
	rng, ok := queryRange(w, r)
	if !ok {
		return services.CalendarFilter{}, false
	}
	q := r.URL.Query()
	return services.CalendarFilter{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Type:   q.Get("type"),
		Range:  rng,
	}, true
}

// ListEvents returns sale, installment and stored events merged by date.
func (h *CalendarHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}
	utils.JSON(w, http.StatusOK, h.Service.Filtered(r.Context(), f))
}

func (h *CalendarHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CalendarEventRequest
	if !decode(w, r, &req) {
		return
	}
	ack, err := h.Service.CreateEvent(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusCreated, ack)
}

func (h *CalendarHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CalendarEventRequest
	if !decode(w, r, &req) {
		return
	}
	ack, err := h.Service.UpdateEvent(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, ack)
}

func (h *CalendarHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	ack, err := h.Service.DeleteEvent(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, ack)
}

func (h *CalendarHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}
	data := services.ExportCSV(h.Service.Filtered(r.Context(), f))
	utils.Attachment(w, "text/csv; charset=utf-8", "calendario.csv", data)
}

func (h *CalendarHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	n, err := h.Service.ImportCSV(r.Context(), http.MaxBytesReader(w, r.Body, maxCalendarImport))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusCreated, map[string]string{"imported": strconv.Itoa(n)})
}
