package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/heatparts/storefront/api/responses"
	"github.com/heatparts/storefront/api/validators"
	"github.com/heatparts/storefront/internal/search"
	"github.com/heatparts/storefront/internal/searchhistory"
	pkgerrors "github.com/heatparts/storefront/pkg/errors"
	"github.com/heatparts/storefront/pkg/logger"
)

const maxQueryLength = 120

type SearchService interface {
	Search(ctx context.Context, query string, mode search.Mode) (search.Result, error)
}

type SearchHistory interface {
	List(ctx context.Context) ([]searchhistory.Entry, error)
	Delete(ctx context.Context, term, mode string) error
	Clear(ctx context.Context) error
}

// SearchParts runs a ranked part search. GET /search?q=&mode=
func SearchParts(svc SearchService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode, err := search.ParseMode(r.URL.Query().Get("mode"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query := validators.SanitizeString(r.URL.Query().Get("q"), maxQueryLength)

		result, err := svc.Search(r.Context(), query, mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func SearchHistoryList(history SearchHistory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := history.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list search history"))
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

type deleteHistoryRequest struct {
	Term string `json:"term" validate:"required"`
	Mode string `json:"mode" validate:"search_mode"`
}

func SearchHistoryDelete(history SearchHistory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload deleteHistoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mode, err := search.ParseMode(payload.Mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := history.Delete(r.Context(), strings.TrimSpace(payload.Term), string(mode)); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete search history"))
			return
		}
		responses.WriteNoContent(w)
	}
}

func SearchHistoryClear(history SearchHistory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := history.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear search history"))
			return
		}
		responses.WriteNoContent(w)
	}
}
