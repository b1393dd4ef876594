package ledger

import (
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in      string
		want    Amount
		wantErr bool
	}{
		{in: "12.34 USD", want: Amount{Minor: 1234, Currency: "USD"}},
		{in: "12 USD", want: Amount{Minor: 1200, Currency: "USD"}},
		{in: "0.01 EUR", want: Amount{Minor: 1, Currency: "EUR"}},
		{in: "0 EUR", want: Amount{Minor: 0, Currency: "EUR"}},
		{in: "-12.34 GBP", want: Amount{Minor: -1234, Currency: "GBP"}},
		{in: "1000.00 EUR", want: Amount{Minor: 100000, Currency: "EUR"}},
		{in: "12.3 USD", wantErr: true},   // cents must be two digits
		{in: "12.345 USD", wantErr: true},
		{in: "12.34", wantErr: true},      // missing currency
		{in: "12.34 usd", wantErr: true},  // lowercase currency
		{in: "12.34 USDX", wantErr: true},
		{in: "12,34 USD", wantErr: true},
		{in: "abc USD", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, c := range cases {
		got, err := ParseAmount(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseAmount(%q) = %v, want error", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestAmountString(t *testing.T) {
	cases := []struct {
		in   Amount
		want string
	}{
		{Amount{Minor: 1234, Currency: "USD"}, "12.34 USD"},
		{Amount{Minor: 1200, Currency: "USD"}, "12 USD"},
		{Amount{Minor: 1, Currency: "EUR"}, "0.01 EUR"},
		{Amount{Minor: 0, Currency: "EUR"}, "0 EUR"},
		{Amount{Minor: -1234, Currency: "GBP"}, "-12.34 GBP"},
		{Amount{Minor: -1, Currency: "GBP"}, "-0.01 GBP"},
	}
	for _, c := range cases {
		if got := c.in.String(); got != c.want {
			t.Errorf("%#v.String() = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestAmountStringRoundtrip(t *testing.T) {
	for _, minor := range []int64{0, 1, -1, 99, 100, -100, 123456789} {
		a := Amount{Minor: minor, Currency: "EUR"}
		parsed, err := ParseAmount(a.String())
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", a, err)
		}
		if parsed != a {
			t.Fatalf("roundtrip of %v gave %v", a, parsed)
		}
	}
}

func TestAmountAddPanicsAcrossCurrencies(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Add across currencies did not panic")
		}
	}()
	Amount{Minor: 1, Currency: "USD"}.Add(Amount{Minor: 1, Currency: "EUR"})
}

func TestAmountsAdd(t *testing.T) {
	a := Amounts{}
	a.Add(Amount{Minor: 100, Currency: "EUR"})
	a.Add(Amount{Minor: 50, Currency: "EUR"})
	a.Add(Amount{Minor: -30, Currency: "USD"})

	if got := a.Get("EUR"); got.Minor != 150 {
		t.Errorf("EUR = %v, want 150 minor", got)
	}
	if got := a.Get("USD"); got.Minor != -30 {
		t.Errorf("USD = %v, want -30 minor", got)
	}
	if got := a.Get("GBP"); got.Minor != 0 {
		t.Errorf("GBP = %v, want zero", got)
	}
}

func TestAmountsNegative(t *testing.T) {
	a := Amounts{}
	if _, negative := a.Negative(); negative {
		t.Error("empty Amounts reported negative")
	}

	a.Add(Amount{Minor: 100, Currency: "EUR"})
	a.Add(Amount{Minor: 0, Currency: "USD"})
	if _, negative := a.Negative(); negative {
		t.Error("non-negative Amounts reported negative")
	}

	a.Add(Amount{Minor: -1, Currency: "USD"})
	currency, negative := a.Negative()
	if !negative || currency != "USD" {
		t.Errorf("Negative() = %q, %v, want USD, true", currency, negative)
	}
}

func TestAmountsString(t *testing.T) {
	a := Amounts{
		"USD": {Minor: -30, Currency: "USD"},
		"EUR": {Minor: 150, Currency: "EUR"},
	}
	// Currencies render in sorted order so the text form is deterministic.
	want := "1.50 EUR, -0.30 USD"
	if got := a.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	if got := (Amounts{}).String(); got != "" {
		t.Errorf("empty String() = %q, want empty", got)
	}
}

func TestAmountsTextRoundtrip(t *testing.T) {
	a := Amounts{}
	a.Add(Amount{Minor: 100000, Currency: "EUR"})
	a.Add(Amount{Minor: 9000, Currency: "USD"})

	text, err := a.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}

	var b Amounts
	if err := b.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText(%q): %v", text, err)
	}
	if !a.Equal(b) {
		t.Fatalf("roundtrip of %v gave %v", a, b)
	}
}

func TestAmountsUnmarshalRejectsDuplicateCurrency(t *testing.T) {
	var a Amounts
	if err := a.UnmarshalText([]byte("1.00 EUR, 2.00 EUR")); err == nil {
		t.Fatal("duplicate currency accepted")
	}
}
