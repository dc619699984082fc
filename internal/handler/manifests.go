package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mobility-ops/console/backend/internal/domain"
	"github.com/mobility-ops/console/backend/internal/manifest"
	"github.com/mobility-ops/console/backend/internal/storage"
)

// dispatchDay lee ?date=AAAA-MM-DD; sin fecha usa el día actual.
func (h *Handler) dispatchDay(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		now := time.Now().In(h.location)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.location), nil
	}

	day, err := time.ParseInLocation("2006-01-02", raw, h.location)
	if err != nil {
		return time.Time{}, errors.New("fecha inválida, usa el formato AAAA-MM-DD")
	}
	return day, nil
}

func (h *Handler) buildDispatchManifest(day time.Time) (*manifest.Manifest, error) {
	window := manifest.DispatchWindow(day, manifest.WindowConfig{
		EveningHour:       h.config.Dispatch.EveningHour,
		MorningHour:       h.config.Dispatch.MorningHour,
		SundayMorningHour: h.config.Dispatch.SundayMorningHour,
		Location:          h.location,
	})

	from, to := window.Days()
	shifts, err := h.repository.GetRosterShiftsBetween(from, to)
	if err != nil {
		return nil, err
	}

	kb, _, err := h.buildKnowledgeBase()
	if err != nil {
		return nil, err
	}

	return manifest.Build(shifts, kb, h.shiftCodes(), window, h.linkOptions(contextExport)), nil
}

func (h *Handler) GetDispatchManifest(w http.ResponseWriter, r *http.Request) {
	day, err := h.dispatchDay(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	m, err := h.buildDispatchManifest(day)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") != "csv" {
		h.successResponse(w, r, "manifiesto generado", m)
		return
	}

	var buf bytes.Buffer
	if err := manifest.WriteCSV(&buf, m); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeAttachment(w, r, manifest.FileName(day), "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) SendDispatchManifest(w http.ResponseWriter, r *http.Request) {
	day, err := h.dispatchDay(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	m, err := h.buildDispatchManifest(day)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := manifest.WriteCSV(&buf, m); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	fileName := manifest.FileName(day)
	objectKey := ""
	if h.objectSink != nil {
		objectKey, err = h.objectSink.Put(storage.ManifestKey(day, fileName), buf.Bytes(), "text/csv; charset=utf-8")
		if err != nil {
			// el correo lleva el adjunto igual
			slog.Error("no se pudo subir el manifiesto", "file", fileName, "error", err)
		}
	}

	err = h.publishMail(domain.MailMessage{
		Type: "dispatch_manifest",
		To:   h.config.Email.DispatchAddress,
		Data: domain.DispatchManifestMailData{
			Date:           day.Format("02-01-2006"),
			WindowStart:    m.Window.Start.Format("02-01-2006 15:04"),
			WindowEnd:      m.Window.End.Format("02-01-2006 15:04"),
			Pickups:        m.Count(manifest.KindPickup),
			Dropoffs:       m.Count(manifest.KindDropoff),
			Unmatched:      len(m.Unmatched),
			ObjectKey:      objectKey,
			AttachmentName: fileName,
			AttachmentCSV:  buf.Bytes(),
		},
	})
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "manifiesto enviado", map[string]any{
		"pickups":   m.Count(manifest.KindPickup),
		"dropoffs":  m.Count(manifest.KindDropoff),
		"unmatched": m.Unmatched,
		"objectKey": objectKey,
	})
}
