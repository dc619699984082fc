package handler

import (
	"net/http"
	"strconv"

	"github.com/mobility-ops/console/backend/internal/roster"
)

func (h *Handler) GetAllPredata(w http.ResponseWriter, r *http.Request) {
	records, err := h.repository.GetAllPredata()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "precarga obtenida", records)
}

func (h *Handler) ImportPredata(w http.ResponseWriter, r *http.Request) {
	file, _, err := h.readUpload(w, r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	defer file.Close()

	replace, _ := strconv.ParseBool(r.FormValue("replace"))

	sheet, err := roster.ParseCSV(file)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	records := sheet.Predata()
	if len(records) == 0 {
		h.errorResponse(w, r, "la planilla no tiene filas con RUT o nombre")
		return
	}

	if err := h.repository.InsertPredata(records, replace); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "precarga importada", map[string]any{
		"imported": len(records),
		"skipped":  len(sheet.Rows) - len(records),
		"replaced": replace,
	})
}
