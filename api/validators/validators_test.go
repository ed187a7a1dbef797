package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/heatparts/storefront/pkg/errors"
)

type quantityBody struct {
	ProductID int64 `json:"product_id" validate:"required,min=1"`
	Quantity  int   `json:"quantity" validate:"required,min=1,max=999"`
}

func TestDecodeJSONBodyValidates(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":7,"quantity":0}`))
	var body quantityBody
	err := DecodeJSONBody(req, &body)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	if !ok || details["quantity"] == "" {
		t.Fatalf("expected quantity detail, got %v", pkgerrors.As(err).Details())
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":7,"quantity":1,"price":"1.00"}`))
	var body quantityBody
	if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected unknown field to be rejected, got %v", err)
	}
}

func TestParsePathID(t *testing.T) {
	for raw, ok := range map[string]bool{"12": true, "0": false, "-3": false, "abc": false} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rc := chi.NewRouteContext()
		rc.URLParams.Add("id", raw)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))

		_, err := ParsePathID(req, "id")
		if (err == nil) != ok {
			t.Fatalf("ParsePathID(%q) err=%v", raw, err)
		}
	}
}

func TestParseQueryIntBounds(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?per_page=500", nil)
	if _, err := ParseQueryInt(req, "per_page", 20, 1, 100); err == nil {
		t.Fatal("expected out of range error")
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	if v, err := ParseQueryInt(req, "per_page", 20, 1, 100); err != nil || v != 20 {
		t.Fatalf("expected default 20, got %d err=%v", v, err)
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  gc 41-311  ", 5); got != "gc 41" {
		t.Fatalf("unexpected %q", got)
	}
	if got := SanitizeString("87161\t 5672", 0); got != "87161 5672" {
		t.Fatalf("expected whitespace collapsed, got %q", got)
	}
	if got := SanitizeString("Thermostat °C dial", 12); got != "Thermostat °" {
		t.Fatalf("expected rune-safe truncation, got %q", got)
	}
}

type historyBody struct {
	Term string `json:"term" validate:"required"`
	Mode string `json:"mode" validate:"search_mode"`
}

func TestDecodeJSONBodySearchMode(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"term":"diverter valve","mode":"GC_NUMBER"}`))
	var ok historyBody
	if err := DecodeJSONBody(req, &ok); err != nil {
		t.Fatalf("expected mixed-case mode to pass, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"term":"diverter valve","mode":"fuzzy"}`))
	var bad historyBody
	err := DecodeJSONBody(req, &bad)
	details, _ := pkgerrors.As(err).Details().(map[string]string)
	if details["mode"] == "" {
		t.Fatalf("expected mode detail, got %v", err)
	}
}

func TestDecodeJSONBodyEmptyAndOversized(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	var body quantityBody
	if err := DecodeJSONBody(req, &body); err == nil || pkgerrors.As(err).Message() != "request body is required" {
		t.Fatalf("expected empty body error, got %v", err)
	}

	huge := `{"product_id":1,"quantity":1,"pad":"` + strings.Repeat("x", MaxBodyBytes) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(huge))
	if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected oversized body to be rejected, got %v", err)
	}
}

func TestParseQueryBool(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?in_stock=true", nil)
	if v, err := ParseQueryBool(req, "in_stock", false); err != nil || !v {
		t.Fatalf("expected true, got %v err=%v", v, err)
	}
	req = httptest.NewRequest(http.MethodGet, "/?in_stock=maybe", nil)
	if _, err := ParseQueryBool(req, "in_stock", false); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
