package ledger

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Currency is a three-letter uppercase code. Any such code is accepted; the
// ledger does not consult a currency registry.
type Currency string

const (
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	USD Currency = "USD"
)

func ParseCurrency(s string) (Currency, error) {
	if len(s) != 3 {
		return "", fmt.Errorf("%w: currency %q requires exactly 3 upper-case letters", ErrInvalidEncoding, s)
	}
	for i := 0; i < 3; i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return "", fmt.Errorf("%w: currency %q requires exactly 3 upper-case letters", ErrInvalidEncoding, s)
		}
	}
	return Currency(s), nil
}

func (c Currency) String() string { return string(c) }

func (c Currency) MarshalText() ([]byte, error) { return []byte(c), nil }

func (c *Currency) UnmarshalText(text []byte) error {
	parsed, err := ParseCurrency(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Amount is a count of minor units (cents) in one currency.
type Amount struct {
	Minor    int64
	Currency Currency
}

// Add panics when the currencies differ; amounts of different currencies
// never mix implicitly.
func (a Amount) Add(b Amount) Amount {
	if a.Currency != b.Currency {
		panic("amount currency mismatch: " + string(a.Currency) + " != " + string(b.Currency))
	}
	return Amount{Minor: a.Minor + b.Minor, Currency: a.Currency}
}

func (a Amount) Neg() Amount { return Amount{Minor: -a.Minor, Currency: a.Currency} }

// String renders "<integer>[.<2 digits>] <CCC>", omitting the cents when zero.
func (a Amount) String() string {
	sign, m := "", a.Minor
	if m < 0 {
		sign, m = "-", -m
	}
	if m%100 == 0 {
		return fmt.Sprintf("%s%d %s", sign, m/100, a.Currency)
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, m/100, m%100, a.Currency)
}

// ParseAmount parses the display form. Cents, when present, must be exactly
// two digits.
func ParseAmount(s string) (Amount, error) {
	malformed := func() (Amount, error) {
		return Amount{}, fmt.Errorf("%w: amounts are formatted as XXXX.XX CCC, got %q", ErrInvalidEncoding, s)
	}
	num, cur, ok := strings.Cut(s, " ")
	if !ok {
		return malformed()
	}
	currency, err := ParseCurrency(cur)
	if err != nil {
		return malformed()
	}
	neg := strings.HasPrefix(num, "-")
	num = strings.TrimPrefix(num, "-")
	whole, cents := num, "00"
	if w, c, ok := strings.Cut(num, "."); ok {
		if len(c) != 2 {
			return malformed()
		}
		whole, cents = w, c
	}
	wholeN, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || wholeN < 0 {
		return malformed()
	}
	centsN, err := strconv.ParseInt(cents, 10, 64)
	if err != nil || centsN < 0 {
		return malformed()
	}
	minor := wholeN*100 + centsN
	if neg {
		minor = -minor
	}
	return Amount{Minor: minor, Currency: currency}, nil
}

func (a Amount) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Amount) UnmarshalText(text []byte) error {
	parsed, err := ParseAmount(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Amounts is a balance: at most one Amount per currency.
type Amounts map[Currency]Amount

// Add folds one amount into the balance, allocating the map if needed.
func (a *Amounts) Add(x Amount) {
	if *a == nil {
		*a = Amounts{}
	}
	(*a)[x.Currency] = Amount{
		Minor:    (*a)[x.Currency].Minor + x.Minor,
		Currency: x.Currency,
	}
}

func (a Amounts) Get(c Currency) Amount {
	if am, ok := a[c]; ok {
		return am
	}
	return Amount{Currency: c}
}

// Negative reports the first currency, in code order, with a balance below
// zero.
func (a Amounts) Negative() (Currency, bool) {
	for _, c := range a.Currencies() {
		if a[c].Minor < 0 {
			return c, true
		}
	}
	return "", false
}

func (a Amounts) Currencies() []Currency {
	out := make([]Currency, 0, len(a))
	for c := range a {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (a Amounts) Clone() Amounts {
	out := make(Amounts, len(a))
	for c, am := range a {
		out[c] = am
	}
	return out
}

func (a Amounts) Equal(b Amounts) bool {
	if len(a) != len(b) {
		return false
	}
	for c, am := range a {
		if b[c] != am {
			return false
		}
	}
	return true
}

// String joins the per-currency amounts in code order: "100.00 EUR, 90 USD".
func (a Amounts) String() string {
	parts := make([]string, 0, len(a))
	for _, c := range a.Currencies() {
		parts = append(parts, a[c].String())
	}
	return strings.Join(parts, ", ")
}

func (a Amounts) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Amounts) UnmarshalText(text []byte) error {
	out := Amounts{}
	if s := strings.TrimSpace(string(text)); s != "" {
		for _, part := range strings.Split(s, ", ") {
			am, err := ParseAmount(part)
			if err != nil {
				return err
			}
			if _, dup := out[am.Currency]; dup {
				return fmt.Errorf("%w: duplicate currency %s in %q", ErrInvalidEncoding, am.Currency, s)
			}
			out[am.Currency] = am
		}
	}
	*a = out
	return nil
}
