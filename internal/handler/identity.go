package handler

import (
	"net/http"

	"github.com/mobility-ops/console/backend/internal/domain"
	"github.com/mobility-ops/console/backend/internal/identity"
	"github.com/mobility-ops/console/backend/internal/roster"
)

const (
	contextLoose  = "loose"
	contextExport = "export"
)

// buildKnowledgeBase arma un directorio nuevo con los perfiles y la precarga actuales.
// Devuelve también los perfiles para no volver a consultarlos.
func (h *Handler) buildKnowledgeBase() (*identity.KnowledgeBase, map[string]*domain.Profile, error) {
	profiles, err := h.repository.GetAllProfiles()
	if err != nil {
		return nil, nil, err
	}
	predata, err := h.repository.GetAllPredata()
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[string]*domain.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID.String()] = p
	}

	kb := roster.KnowledgeBase(profiles, predata)
	return kb, byID, nil
}

// linkOptions usa el umbral estricto para exportaciones y el holgado para el resto.
func (h *Handler) linkOptions(linkContext string) identity.LinkOptions {
	threshold := h.config.Matching.LooseThreshold
	if linkContext == contextExport {
		threshold = h.config.Matching.ExportThreshold
	}

	return identity.LinkOptions{
		Threshold:              threshold,
		Scoring:                identity.Scoring(h.config.Matching.Scoring),
		Matcher:                h.matcher,
		MatchAddress:           h.config.Matching.MatchAddress,
		MatchWithoutCheckDigit: h.config.Matching.MatchWithoutCheckDigit,
	}
}

func (h *Handler) ResolveIdentity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
		Name       string `json:"name"`
		Email      string `json:"email" validate:"omitempty,email"`
		Phone      string `json:"phone"`
		Address    string `json:"address"`
		Context    string `json:"context" validate:"omitempty,oneof=loose export"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	kb, _, err := h.buildKnowledgeBase()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	match := identity.Resolve(identity.IncomingRecord{
		Identifier: req.Identifier,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
	}, kb, h.linkOptions(req.Context))

	if match == nil {
		h.successResponse(w, r, "sin coincidencias", nil)
		return
	}

	h.successResponse(w, r, "identidad encontrada", newMatchData(match, req.Identifier))
}

// MatchData es la respuesta de una vinculación: la persona encontrada y cómo se llegó
// a ella. SuggestedIdentifier solo va cuando la fila aporta un RUT nuevo.
type MatchData struct {
	ProfileID           string            `json:"profileId,omitempty"`
	Identifier          string            `json:"identifier"`
	Name                string            `json:"name"`
	Email               string            `json:"email"`
	Phone               string            `json:"phone"`
	Address             string            `json:"address"`
	Commune             string            `json:"commune"`
	Sources             []identity.Source `json:"sources"`
	Strategy            identity.Strategy `json:"strategy"`
	Score               float64           `json:"score"`
	Weak                bool              `json:"weak"`
	Backfill            bool              `json:"backfill"`
	SuggestedIdentifier string            `json:"suggestedIdentifier,omitempty"`
}

func newMatchData(m *identity.Match, incomingIdentifier string) MatchData {
	rec := m.Record
	data := MatchData{
		ProfileID:  rec.ProfileID,
		Identifier: rec.Identifier,
		Name:       rec.Name,
		Email:      rec.Email,
		Phone:      rec.Phone,
		Address:    rec.Address,
		Commune:    rec.Commune,
		Sources:    rec.Sources,
		Strategy:   m.Strategy,
		Score:      m.Score,
		Weak:       m.Weak,
		Backfill:   m.Backfill,
	}
	if m.Backfill {
		data.SuggestedIdentifier = identity.NormalizeIdentifier(incomingIdentifier)
	}
	return data
}
