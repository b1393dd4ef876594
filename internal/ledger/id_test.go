package ledger

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestProquintKnownValue(t *testing.T) {
	// 0x7f000001 is the classic proquint example value "lusab-babad".
	id := AccountID{uuid.UUID{0x7f, 0x00, 0x00, 0x01}}

	got := id.String()
	want := "lusab-babad-babab-babab-babab-babab-babab-babab"
	if got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestProquintRoundtrip(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := NewAccountID()
		parsed, err := ParseAccountID(id.String())
		if err != nil {
			t.Fatalf("ParseAccountID(%q): %v", id, err)
		}
		if parsed != id {
			t.Fatalf("roundtrip of %q gave %q", id, parsed)
		}
	}
}

func TestProquintFormat(t *testing.T) {
	groups := strings.Split(NewTransactionID().String(), "-")
	if len(groups) != 8 {
		t.Fatalf("expected 8 groups, got %d", len(groups))
	}
	for _, g := range groups {
		if len(g) != 5 {
			t.Fatalf("group %q is not 5 letters", g)
		}
		for i, c := range g {
			alphabet := proquintConsonants
			if i == 1 || i == 3 {
				alphabet = proquintVowels
			}
			if !strings.ContainsRune(alphabet, c) {
				t.Fatalf("group %q has %q in position %d", g, c, i)
			}
		}
	}
}

func TestParseAccountIDRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"lusab",
		"lusab-babad",
		"lusab-babad-babab-babab-babab-babab-babab",        // 7 groups
		"lusab-babad-babab-babab-babab-babab-babab-babax",  // bad consonant
		"lusab-babad-babab-babab-babab-babab-babab-bebab",  // bad vowel
		"lusab-babad-babab-babab-babab-babab-babab-babab-", // trailing dash
		"lusab_babad_babab_babab_babab_babab_babab_babab",
		"LUSAB-babad-babab-babab-babab-babab-babab-babab",
	}
	for _, c := range cases {
		if _, err := ParseAccountID(c); err == nil {
			t.Errorf("ParseAccountID(%q) succeeded, want error", c)
		}
	}
}

func TestIDsAreTimeOrdered(t *testing.T) {
	prev := NewTransactionID()
	for i := 0; i < 50; i++ {
		next := NewTransactionID()
		if prev.Compare(next) >= 0 {
			t.Fatalf("id %s does not sort before the one created after it (%s)", prev, next)
		}
		prev = next
	}
}

// The sql backend orders transactions by their textual id, so the text form
// must sort the same way as the raw bytes.
func TestProquintPreservesByteOrder(t *testing.T) {
	ids := []AccountID{
		{uuid.UUID{0x00}},
		{uuid.UUID{0x00, 0x01}},
		{uuid.UUID{0x10}},
		{uuid.UUID{0x7f, 0x00, 0x00, 0x01}},
		{uuid.UUID{0xff, 0xff}},
	}
	for i := 1; i < len(ids); i++ {
		if !(ids[i-1].String() < ids[i].String()) {
			t.Errorf("%q should sort before %q", ids[i-1], ids[i])
		}
	}
}

func TestAxisTagging(t *testing.T) {
	id := NewAccountID()
	if id.Physical().Erase() != id {
		t.Error("Physical().Erase() lost the id")
	}
	if id.Virtual().Erase() != id {
		t.Error("Virtual().Erase() lost the id")
	}
}
