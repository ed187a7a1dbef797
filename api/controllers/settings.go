package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heatparts/storefront/api/responses"
	"github.com/heatparts/storefront/api/validators"
	"github.com/heatparts/storefront/pkg/logger"
)

type FlagService interface {
	All(ctx context.Context) (map[string]bool, error)
	Set(ctx context.Context, key string, value bool) error
}

func FlagsGet(svc FlagService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flags, err := svc.All(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, flags)
	}
}

type setFlagRequest struct {
	Value *bool `json:"value" validate:"required"`
}

// FlagSet updates one device flag. PUT /settings/flags/{key}
func FlagSet(svc FlagService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		var payload setFlagRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Set(r.Context(), key, *payload.Value); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"key": key, "value": *payload.Value})
	}
}
