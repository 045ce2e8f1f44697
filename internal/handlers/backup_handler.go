package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"ventas-backend/internal/services"
	"ventas-backend/pkg/utils"
)

type BackupHandler struct {
	Service *services.BackupService
	log     zerolog.Logger
}

func NewBackupHandler(s *services.BackupService, log zerolog.Logger) *BackupHandler {
	return &BackupHandler{Service: s, log: log}
}

func (h *BackupHandler) RunBackup(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.Run(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	utils.JSON(w, http.StatusCreated, res)
}
