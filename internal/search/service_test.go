package search

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/heatparts/storefront/internal/woocommerce"
	pkgerrors "github.com/heatparts/storefront/pkg/errors"
	"github.com/heatparts/storefront/pkg/logger"
	"github.com/heatparts/storefront/pkg/types"
)

type stubProducts struct {
	calls   []woocommerce.ProductFilter
	results [][]types.Part
	err     error
}

func (s *stubProducts) ListProducts(_ context.Context, filter woocommerce.ProductFilter) ([]types.Part, error) {
	s.calls = append(s.calls, filter)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.results) == 0 {
		return nil, nil
	}
	out := s.results[0]
	s.results = s.results[1:]
	return out, nil
}

type stubHistory struct {
	saved []string
	err   error
}

func (h *stubHistory) Save(_ context.Context, term, mode string) error {
	h.saved = append(h.saved, mode+":"+term)
	return h.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestSearchBlankQueryMakesNoRemoteCall(t *testing.T) {
	products := &stubProducts{}
	history := &stubHistory{}
	svc, err := NewService(products, history, testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	res, err := svc.Search(context.Background(), "  \t ", ModeKeyword)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.Results) != 0 || len(products.calls) != 0 || len(history.saved) != 0 {
		t.Fatalf("blank query must be a no-op, got %+v calls=%d", res, len(products.calls))
	}
}

func TestSearchRanksAndSavesHistory(t *testing.T) {
	products := &stubProducts{results: [][]types.Part{{
		{ID: 1, Name: "Pump head"},
		{ID: 2, Name: "Seal kit"},
		{ID: 3, Name: "Pump"},
	}}}
	history := &stubHistory{err: errors.New("disk full")}
	svc, _ := NewService(products, history, testLogger())

	res, err := svc.Search(context.Background(), "pump", ModeKeyword)
	if err != nil {
		t.Fatalf("history failures must not fail search: %v", err)
	}
	if len(res.Results) != 2 || res.Results[0].Part.ID != 3 {
		t.Fatalf("unexpected results %+v", res.Results)
	}
	if products.calls[0].Search != "pump" || products.calls[0].SKU != "" {
		t.Fatalf("unexpected filter %+v", products.calls[0])
	}
	if len(history.saved) != 1 || history.saved[0] != "keyword:pump" {
		t.Fatalf("unexpected history %v", history.saved)
	}
}

func TestSearchPartNumberFallsBackToText(t *testing.T) {
	products := &stubProducts{results: [][]types.Part{nil, {{ID: 9, PartNumber: "5114702"}}}}
	svc, _ := NewService(products, nil, testLogger())

	res, err := svc.Search(context.Background(), "51147", ModePartNumber)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(products.calls) != 2 || products.calls[0].SKU != "51147" || products.calls[1].SKU != "" {
		t.Fatalf("unexpected calls %+v", products.calls)
	}
	if len(res.Results) != 1 {
		t.Fatalf("unexpected results %+v", res.Results)
	}
}

func TestSearchPropagatesRemoteFailure(t *testing.T) {
	products := &stubProducts{err: pkgerrors.New(pkgerrors.CodeDependency, "down")}
	svc, _ := NewService(products, nil, testLogger())

	if _, err := svc.Search(context.Background(), "pump", ModeKeyword); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != ModeKeyword {
		t.Fatalf("blank mode should default to keyword")
	}
	if m, err := ParseMode("GC_NUMBER"); err != nil || m != ModeGCNumber {
		t.Fatalf("unexpected %v %v", m, err)
	}
	if _, err := ParseMode("fuzzy"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
