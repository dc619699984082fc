package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mobility-ops/console/backend/internal/domain"
	"github.com/mobility-ops/console/backend/internal/identity"
	"github.com/mobility-ops/console/backend/internal/roster"
)

func (h *Handler) ImportRoster(w http.ResponseWriter, r *http.Request) {
	file, header, err := h.readUpload(w, r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	defer file.Close()

	linkContext := r.FormValue("context")
	if linkContext == "" {
		linkContext = contextLoose
	}
	if linkContext != contextLoose && linkContext != contextExport {
		h.errorResponse(w, r, "contexto inválido, usa loose o export")
		return
	}

	sheet, err := roster.ParseCSV(file)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	if len(sheet.Days) == 0 {
		h.errorResponse(w, r, "la planilla no tiene columnas de fecha")
		return
	}

	kb, profiles, err := h.buildKnowledgeBase()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	batchID := uuid.New()
	linked := roster.Link(sheet, kb, h.linkOptions(linkContext))
	shifts := roster.BuildShifts(batchID, linked, h.shiftCodes(), h.location)

	if err := h.repository.InsertRosterShifts(shifts); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	backfilled, suggestions, err := h.applyBackfills(batchID, roster.Backfills(linked), profiles)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	summary := roster.Summarize(batchID, sheet, linked, shifts)
	summary.Backfilled = backfilled
	summary.Suggestions = len(suggestions)

	slog.Info("planilla importada",
		"file", header.Filename,
		"batch", batchID,
		"rows", summary.Rows,
		"shifts", summary.Shifts,
		"unmatched", len(summary.Unmatched),
		"backfilled", backfilled,
		"suggestions", len(suggestions),
	)

	if len(suggestions) > 0 {
		err := h.publishMail(domain.MailMessage{
			Type: "backfill_review",
			To:   h.config.Email.AdminAddress,
			Data: domain.BackfillReviewMailData{
				BatchID:     batchID.String(),
				Suggestions: suggestions,
				Expiration:  h.config.Matching.SuggestionExpiration,
			},
		})
		if err != nil {
			// las sugerencias quedan en Redis aunque el aviso no salga
			slog.Error("no se pudo encolar el aviso de sugerencias", "batch", batchID, "error", err)
		}
	}

	h.successResponse(w, r, "planilla importada", summary)
}

// applyBackfills escribe los identificadores seguros y deja el resto como sugerencias.
func (h *Handler) applyBackfills(batchID uuid.UUID, candidates []roster.Candidate, profiles map[string]*domain.Profile) (int, []domain.BackfillSuggestion, error) {
	backfilled := 0
	suggestions := make([]domain.BackfillSuggestion, 0)

	for _, c := range candidates {
		profile, ok := profiles[c.ProfileID]
		if !ok {
			continue
		}
		if identity.NormalizeIdentifier(profile.NationalID) == c.Identifier {
			continue
		}

		if c.Auto && profile.NationalID == "" {
			updated := *profile
			updated.NationalID = c.Identifier
			err := h.repository.UpdateProfile(&updated)
			if err == nil {
				*profile = updated
				backfilled++
				continue
			}

			var pgErr *pgconn.PgError
			if !errors.As(err, &pgErr) && !errors.Is(err, sql.ErrNoRows) {
				return 0, nil, err
			}
			slog.Warn("RUT no aplicado, queda como sugerencia", "profile", profile.ID, "error", err)
		}

		suggestion := domain.BackfillSuggestion{
			ProfileID:           profile.ID,
			FullName:            profile.FullName,
			CurrentIdentifier:   profile.NationalID,
			SuggestedIdentifier: c.Identifier,
			SourceName:          c.SourceName,
			Strategy:            string(c.Strategy),
			Score:               c.Score,
			Weak:                c.Weak,
			BatchID:             batchID,
			CreatedAt:           time.Now(),
		}
		if err := h.saveBackfillSuggestion(suggestion); err != nil {
			return 0, nil, err
		}
		suggestions = append(suggestions, suggestion)
	}

	return backfilled, suggestions, nil
}
