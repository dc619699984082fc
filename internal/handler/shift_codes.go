package handler

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mobility-ops/console/backend/internal/shiftcode"
)

func (h *Handler) GetShiftCodes(w http.ResponseWriter, r *http.Request) {
	table := h.shiftCodes()

	entries := make([]shiftcode.Entry, 0, len(table))
	for _, entry := range table {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Code < entries[j].Code
	})

	h.successResponse(w, r, "códigos de turno obtenidos", entries)
}

func (h *Handler) ResolveShiftCode(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if strings.TrimSpace(code) == "" {
		h.errorResponse(w, r, "falta el código de turno")
		return
	}

	day := time.Now().In(h.location)
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, h.location)
		if err != nil {
			h.errorResponse(w, r, "fecha inválida, usa el formato AAAA-MM-DD")
			return
		}
		day = parsed
	}
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, h.location)

	h.successResponse(w, r, "código resuelto", shiftcode.Resolve(code, day, h.shiftCodes()))
}

func (h *Handler) PutShiftCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description" validate:"max=100"`
		Working     bool   `json:"working"`
		Start       string `json:"start"`
		End         string `json:"end"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	entry := shiftcode.Entry{
		Code:        strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code"))),
		Description: req.Description,
		Working:     req.Working,
		Start:       req.Start,
		End:         req.End,
	}
	if !entry.Working {
		entry.Start, entry.End = "", ""
	}
	if err := shiftcode.ValidateEntry(entry); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpsertShiftCode(entry); err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if err := h.reloadShiftCodes(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "código de turno guardado", entry)
}

func (h *Handler) DeleteShiftCode(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))

	deleted, err := h.repository.DeleteShiftCode(code)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !deleted {
		h.errorResponse(w, r, "el código no está registrado en la base de datos")
		return
	}
	if err := h.reloadShiftCodes(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "código de turno eliminado", nil)
}

// reloadShiftCodes vuelve a combinar la tabla base con los códigos guardados.
func (h *Handler) reloadShiftCodes() error {
	entries, err := h.repository.GetAllShiftCodes()
	if err != nil {
		return err
	}
	h.setShiftCodes(shiftcode.DefaultTable().Merge(entries))
	return nil
}
