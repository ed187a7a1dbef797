package enums

import "testing"

func TestParseCurrency(t *testing.T) {
	cases := map[string]Currency{"": CurrencyGBP, "GBP": CurrencyGBP, " eur ": CurrencyEUR}
	for raw, want := range cases {
		got, err := ParseCurrency(raw)
		if err != nil || got != want {
			t.Fatalf("ParseCurrency(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := ParseCurrency("btc"); err == nil {
		t.Fatal("expected unsupported currency to fail")
	}
}
