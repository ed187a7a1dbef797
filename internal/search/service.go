package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/heatparts/storefront/internal/woocommerce"
	pkgerrors "github.com/heatparts/storefront/pkg/errors"
	"github.com/heatparts/storefront/pkg/logger"
	"github.com/heatparts/storefront/pkg/types"
)

// Mode selects how a query is sent to the platform.
type Mode string

const (
	ModeKeyword    Mode = "keyword"
	ModePartNumber Mode = "part_number"
	ModeGCNumber   Mode = "gc_number"
)

// ParseMode validates a mode string. Empty means keyword.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeKeyword:
		return ModeKeyword, nil
	case ModePartNumber:
		return ModePartNumber, nil
	case ModeGCNumber:
		return ModeGCNumber, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown search mode %q", raw)).
			WithDetails(map[string]any{"allowed": []Mode{ModeKeyword, ModePartNumber, ModeGCNumber}})
	}
}

// ProductSource is the remote product search.
type ProductSource interface {
	ListProducts(ctx context.Context, filter woocommerce.ProductFilter) ([]types.Part, error)
}

// HistoryWriter remembers searches.
type HistoryWriter interface {
	Save(ctx context.Context, term, mode string) error
}

// Result is a ranked search response.
type Result struct {
	Query   string   `json:"query"`
	Mode    Mode     `json:"mode"`
	Results []Scored `json:"results"`
}

// Service runs remote searches and ranks the candidates locally.
type Service struct {
	products ProductSource
	history  HistoryWriter
	logg     *logger.Logger
}

// NewService builds the search service. history may be nil.
func NewService(products ProductSource, history HistoryWriter, logg *logger.Logger) (*Service, error) {
	if products == nil {
		return nil, fmt.Errorf("product source required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{products: products, history: history, logg: logg}, nil
}

// Search fetches candidates and ranks them. A blank query returns an empty
// result without calling the platform.
func (s *Service) Search(ctx context.Context, query string, mode Mode) (Result, error) {
	q := strings.TrimSpace(query)
	result := Result{Query: q, Mode: mode, Results: []Scored{}}
	if q == "" {
		return result, nil
	}

	filter := woocommerce.ProductFilter{Search: q}
	if mode == ModePartNumber {
		filter.SKU = q
	}

	candidates, err := s.products.ListProducts(ctx, filter)
	if err != nil {
		return Result{}, err
	}
	// The SKU filter is exact; fall back to free text so partial part numbers still match.
	if mode == ModePartNumber && len(candidates) == 0 {
		if candidates, err = s.products.ListProducts(ctx, woocommerce.ProductFilter{Search: q}); err != nil {
			return Result{}, err
		}
	}

	result.Results = Rank(q, candidates)

	if s.history != nil {
		if err := s.history.Save(ctx, q, string(mode)); err != nil {
			s.logg.WarnErr(s.logg.WithOperation(ctx, "search.history_save"), "search history save failed", err)
		}
	}
	return result, nil
}
