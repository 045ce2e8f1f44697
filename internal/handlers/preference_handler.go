package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"ventas-backend/internal/models"
	"ventas-backend/internal/services"
	"ventas-backend/pkg/utils"
)

type PreferenceHandler struct {
	Service *services.PreferenceService
	log     zerolog.Logger
}

func NewPreferenceHandler(s *services.PreferenceService, log zerolog.Logger) *PreferenceHandler {
	return &PreferenceHandler{Service: s, log: log}
}

func (h *PreferenceHandler) ListPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.Service.All(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, prefs)
}

func (h *PreferenceHandler) SetPreference(w http.ResponseWriter, r *http.Request) {
	var req models.UpdatePreferenceRequest
	if !decode(w, r, &req) {
		return
	}
	ack, err := h.Service.Set(r.Context(), mux.Vars(r)["key"], req.Value)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, ack)
}
