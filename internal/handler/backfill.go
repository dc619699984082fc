package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mobility-ops/console/backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

const backfillKeyPrefix = "backfill_suggestion:"

func backfillKey(profileID uuid.UUID) string {
	return backfillKeyPrefix + profileID.String()
}

func (h *Handler) redisContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Minute)
}

// saveBackfillSuggestion reemplaza la sugerencia pendiente del mismo perfil.
func (h *Handler) saveBackfillSuggestion(s domain.BackfillSuggestion) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	ctx, cancel := h.redisContext()
	defer cancel()

	expiration := time.Duration(h.config.Matching.SuggestionExpiration) * time.Hour
	return h.redisClient.Set(ctx, backfillKey(s.ProfileID), data, expiration).Err()
}

func (h *Handler) getBackfillSuggestion(profileID uuid.UUID) (*domain.BackfillSuggestion, error) {
	ctx, cancel := h.redisContext()
	defer cancel()

	data, err := h.redisClient.Get(ctx, backfillKey(profileID)).Bytes()
	if err != nil {
		return nil, err
	}

	s := &domain.BackfillSuggestion{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("sugerencia corrupta para %s: %w", profileID, err)
	}
	return s, nil
}

func (h *Handler) GetBackfillSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.redisContext()
	defer cancel()

	suggestions := make([]domain.BackfillSuggestion, 0)
	iter := h.redisClient.Scan(ctx, 0, backfillKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := h.redisClient.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// expiró entre el SCAN y el GET
				continue
			}
			h.internalServerError(w, r, err)
			return
		}

		var s domain.BackfillSuggestion
		if err := json.Unmarshal(data, &s); err != nil {
			h.internalServerError(w, r, err)
			return
		}
		suggestions = append(suggestions, s)
	}
	if err := iter.Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	sort.Slice(suggestions, func(i, j int) bool {
		return suggestions[i].CreatedAt.Before(suggestions[j].CreatedAt)
	})

	h.successResponse(w, r, "sugerencias obtenidas", suggestions)
}

func (h *Handler) ConfirmBackfillSuggestion(w http.ResponseWriter, r *http.Request) {
	profileID, err := uuid.Parse(chi.URLParam(r, "profileID"))
	if err != nil {
		h.errorResponse(w, r, "ID de perfil inválido")
		return
	}

	suggestion, err := h.getBackfillSuggestion(profileID)
	if err != nil {
		switch {
		case errors.Is(err, redis.Nil):
			h.errorResponse(w, r, "la sugerencia no existe o ya expiró")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	profile, err := h.repository.GetProfileByID(profileID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "el perfil no existe")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	profile.NationalID = suggestion.SuggestedIdentifier
	if err := h.repository.UpdateProfile(profile); err != nil {
		h.profileUpdateError(w, r, err)
		return
	}

	ctx, cancel := h.redisContext()
	defer cancel()

	if err := h.redisClient.Del(ctx, backfillKey(profileID)).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "RUT confirmado", profile)
}

func (h *Handler) DeleteBackfillSuggestion(w http.ResponseWriter, r *http.Request) {
	profileID, err := uuid.Parse(chi.URLParam(r, "profileID"))
	if err != nil {
		h.errorResponse(w, r, "ID de perfil inválido")
		return
	}

	ctx, cancel := h.redisContext()
	defer cancel()

	n, err := h.redisClient.Del(ctx, backfillKey(profileID)).Result()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if n == 0 {
		h.errorResponse(w, r, "la sugerencia no existe o ya expiró")
		return
	}

	h.successResponse(w, r, "sugerencia descartada", nil)
}
