package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"ventas-backend/internal/repositories"
	"ventas-backend/internal/services"
	"ventas-backend/internal/timeutil"
	"ventas-backend/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// writeError maps service and repository errors to status codes.
func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.JSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  verr.Error(),
			"fields": verr.Fields,
		})
	case errors.Is(err, repositories.ErrNotFound):
		utils.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrUnavailable):
		utils.Error(w, http.StatusServiceUnavailable, services.ErrUnavailable.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		utils.Error(w, http.StatusInternalServerError, "no se pudo completar la operación")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		utils.Error(w, http.StatusBadRequest, "cuerpo de la solicitud inválido")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		utils.Error(w, http.StatusBadRequest, "identificador inválido")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil {
		return v
	}
	return def
}

// queryDate reads a YYYY-MM-DD parameter in business time; blank means open.
func queryDate(r *http.Request, key string) (*time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	t, err := timeutil.ParseLocal(time.DateOnly, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func queryRange(w http.ResponseWriter, r *http.Request) (services.DateRange, bool) {
	from, err := queryDate(r, "from")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "fecha 'from' inválida")
		return services.DateRange{}, false
	}
	to, err := queryDate(r, "to")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "fecha 'to' inválida")
		return services.DateRange{}, false
	}
	return services.DateRange{From: from, To: to}, true
}

func writeWorkbook(w http.ResponseWriter, log zerolog.Logger, f *excelize.File, filename string) {
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		writeError(w, log, err)
		return
	}
	utils.Attachment(w, xlsxContentType, filename, buf.Bytes())
}
