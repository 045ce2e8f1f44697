package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"ventas-backend/internal/services"
	"ventas-backend/pkg/utils"
)

type ReportHandler struct {
	Charts    *services.ChartService
	Dashboard *services.DashboardService
	log       zerolog.Logger
}

func NewReportHandler(charts *services.ChartService, dashboard *services.DashboardService, log zerolog.Logger) *ReportHandler {
	return &ReportHandler{Charts: charts, Dashboard: dashboard, log: log}
}

// SalesChart returns one bucket per day in the requested window.
func (h *ReportHandler) SalesChart(w http.ResponseWriter, r *http.Request) {
	window, err := services.ParseChartWindow(r.URL.Query().Get("window"))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	buckets, err := h.Charts.SalesChart(r.Context(), window)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, buckets)
}

func (h *ReportHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Dashboard.Stats(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, stats)
}
