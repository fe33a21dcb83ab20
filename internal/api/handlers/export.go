package handlers

import (
	"aed-location-service/internal/adapters/export"
	"aed-location-service/internal/services"
	"bytes"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves every stored location as an XLSX workbook.
type ExportHandler struct {
	Service *services.LocationService
}

func (h *ExportHandler) XLSX(w http.ResponseWriter, r *http.Request) {
	locs, err := h.Service.GetAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("export: load locations failed")
		writeError(w, r, http.StatusInternalServerError, "failed to load locations")
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, locs); err != nil {
		log.Error().Err(err).Msg("export: build workbook failed")
		writeError(w, r, http.StatusInternalServerError, "failed to build workbook")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="aed_locations.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
