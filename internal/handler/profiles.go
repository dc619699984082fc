package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mobility-ops/console/backend/internal/domain"
	"github.com/mobility-ops/console/backend/internal/identity"
)

func (h *Handler) GetMyInfo(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Profile)
	h.successResponse(w, r, "perfil obtenido", myInfo)
}

func (h *Handler) GetAllProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.repository.GetAllProfiles()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "perfiles obtenidos", profiles)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile := r.Context().Value(ProfileInfoCtx).(*domain.Profile)
	h.successResponse(w, r, "perfil obtenido", profile)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName   *string `json:"fullName" validate:"omitempty,min=2"`
		NationalID *string `json:"nationalId"`
		Email      *string `json:"email" validate:"omitempty,email"`
		Phone      *string `json:"phone"`
		Address    *string `json:"address"`
		Commune    *string `json:"commune"`
		Role       *string `json:"role" validate:"omitempty,oneof=agente supervisor admin"`
		IsActive   *bool   `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	profile := r.Context().Value(ProfileInfoCtx).(*domain.Profile)

	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.NationalID != nil {
		nationalID := identity.NormalizeIdentifier(*req.NationalID)
		if *req.NationalID != "" && nationalID == "" {
			h.errorResponse(w, r, "RUT inválido")
			return
		}
		profile.NationalID = nationalID
	}
	if req.Email != nil {
		profile.Email = identity.NormalizeEmail(*req.Email)
	}
	if req.Phone != nil {
		profile.Phone = *req.Phone
	}
	if req.Address != nil {
		profile.Address = *req.Address
	}
	if req.Commune != nil {
		profile.Commune = *req.Commune
	}
	if req.Role != nil {
		profile.Role = domain.Role(*req.Role)
	}
	if req.IsActive != nil {
		profile.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateProfile(profile); err != nil {
		h.profileUpdateError(w, r, err)
		return
	}

	h.successResponse(w, r, "perfil actualizado", profile)
}

func (h *Handler) profileUpdateError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		switch {
		case pgErr.ConstraintName == "profiles_national_id_key":
			h.badRequest(w, r, errors.New("el RUT ya está asignado a otro perfil"))
		case pgErr.ConstraintName == "profiles_email_key":
			h.badRequest(w, r, errors.New("el correo ya está asignado a otro perfil"))
		default:
			h.internalServerError(w, r, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "el perfil cambió mientras se editaba, intenta nuevamente")
	default:
		h.internalServerError(w, r, err)
	}
}
