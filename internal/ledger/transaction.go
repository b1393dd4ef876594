package ledger

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Transaction is an immutable value-transfer event. Amount is the value
// moved; Inner is one of the five shapes below.
type Transaction struct {
	ID     TransactionID
	Notes  string
	Amount Amount
	Inner  TransactionInner
}

// TransactionInner is the shape of a transaction. Received and Paid are the
// only shapes that change the ledger's total value; Convert exchanges value
// across currencies but stays symmetric across the two axes.
type TransactionInner interface {
	isTransactionInner()
}

// Received: money entering the system from an external source.
type Received struct {
	Source  string
	Dst     PhysicalID
	DstVirt VirtualID
}

// Paid: money leaving the system to an external party.
type Paid struct {
	Src     PhysicalID
	SrcVirt VirtualID
	Dst     string
}

// MovePhys moves money between physical accounts.
type MovePhys struct {
	Src PhysicalID
	Dst PhysicalID
}

// MoveVirt moves money between virtual accounts.
type MoveVirt struct {
	Src VirtualID
	Dst VirtualID
}

// Convert exchanges Amount for NewAmount in place, applied to both the
// physical account and its virtual counterpart.
type Convert struct {
	Acc       PhysicalID
	AccVirt   VirtualID
	NewAmount Amount
}

func (Received) isTransactionInner() {}
func (Paid) isTransactionInner()     {}
func (MovePhys) isTransactionInner() {}
func (MoveVirt) isTransactionInner() {}
func (Convert) isTransactionInner()  {}

// Delta is one balance change produced by a transaction.
type Delta struct {
	Account AccountID
	Amount  Amount
}

// Participant is an account slot of a transaction together with the axis the
// slot requires.
type Participant struct {
	Account AccountID
	Axis    AccountType
}

// Deltas is the single fold input shared by every backend: the per-account
// balance changes of the transaction, in slot order.
func (t Transaction) Deltas() []Delta {
	switch inner := t.Inner.(type) {
	case Received:
		return []Delta{
			{inner.Dst.Erase(), t.Amount},
			{inner.DstVirt.Erase(), t.Amount},
		}
	case Paid:
		return []Delta{
			{inner.Src.Erase(), t.Amount.Neg()},
			{inner.SrcVirt.Erase(), t.Amount.Neg()},
		}
	case MovePhys:
		return []Delta{
			{inner.Src.Erase(), t.Amount.Neg()},
			{inner.Dst.Erase(), t.Amount},
		}
	case MoveVirt:
		return []Delta{
			{inner.Src.Erase(), t.Amount.Neg()},
			{inner.Dst.Erase(), t.Amount},
		}
	case Convert:
		return []Delta{
			{inner.Acc.Erase(), t.Amount.Neg()},
			{inner.Acc.Erase(), inner.NewAmount},
			{inner.AccVirt.Erase(), t.Amount.Neg()},
			{inner.AccVirt.Erase(), inner.NewAmount},
		}
	}
	panic(fmt.Sprintf("unknown transaction shape %T", t.Inner))
}

// Participants lists the two account slots and the axis each requires.
func (t Transaction) Participants() [2]Participant {
	switch inner := t.Inner.(type) {
	case Received:
		return [2]Participant{{inner.Dst.Erase(), Physical}, {inner.DstVirt.Erase(), Virtual}}
	case Paid:
		return [2]Participant{{inner.Src.Erase(), Physical}, {inner.SrcVirt.Erase(), Virtual}}
	case MovePhys:
		return [2]Participant{{inner.Src.Erase(), Physical}, {inner.Dst.Erase(), Physical}}
	case MoveVirt:
		return [2]Participant{{inner.Src.Erase(), Virtual}, {inner.Dst.Erase(), Virtual}}
	case Convert:
		return [2]Participant{{inner.Acc.Erase(), Physical}, {inner.AccVirt.Erase(), Virtual}}
	}
	panic(fmt.Sprintf("unknown transaction shape %T", t.Inner))
}

// Accounts lists the accounts the transaction touches.
func (t Transaction) Accounts() [2]AccountID {
	p := t.Participants()
	return [2]AccountID{p[0].Account, p[1].Account}
}

// Touches reports whether the transaction references the account.
func (t Transaction) Touches(id AccountID) bool {
	for _, acc := range t.Accounts() {
		if acc == id {
			return true
		}
	}
	return false
}

// BalanceOf folds the account's deltas from the given transactions. Every
// backend's notion of "current balance" must agree with this function.
func BalanceOf(id AccountID, txs []Transaction) Amounts {
	current := Amounts{}
	for _, t := range txs {
		for _, d := range t.Deltas() {
			if d.Account == id {
				current.Add(d.Amount)
			}
		}
	}
	return current
}

// SortTransactions orders by identifier, which is creation-time order.
func SortTransactions(txs []Transaction) {
	sort.Slice(txs, func(i, j int) bool { return txs[i].ID.Compare(txs[j].ID) < 0 })
}

// Transaction kinds as stored in the normalized record form.
const (
	KindReceived = "received"
	KindPaid     = "paid"
	KindMovePhys = "move_phys"
	KindMoveVirt = "move_virt"
	KindConvert  = "convert"
)

// TransactionRecord is the normalized flat form shared by the entity files,
// the wire protocol and the sql schema: the two axis-specific participant ids
// collapse into Acc1/Acc2, interpreted according to Type.
type TransactionRecord struct {
	ID            TransactionID `json:"id" toml:"id"`
	Type          string        `json:"type" toml:"type"`
	Amount        Amount        `json:"amount" toml:"amount"`
	NewAmount     *Amount       `json:"new_amount,omitempty" toml:"new_amount,omitempty"`
	ExternalParty string        `json:"external_party,omitempty" toml:"external_party,omitempty"`
	Acc1          AccountID     `json:"acc_1" toml:"acc_1"`
	Acc2          AccountID     `json:"acc_2" toml:"acc_2"`
	Notes         string        `json:"notes" toml:"notes"`
}

// Record converts to the normalized form.
func (t Transaction) Record() TransactionRecord {
	rec := TransactionRecord{ID: t.ID, Amount: t.Amount, Notes: t.Notes}
	switch inner := t.Inner.(type) {
	case Received:
		rec.Type = KindReceived
		rec.ExternalParty = inner.Source
		rec.Acc1, rec.Acc2 = inner.Dst.Erase(), inner.DstVirt.Erase()
	case Paid:
		rec.Type = KindPaid
		rec.ExternalParty = inner.Dst
		rec.Acc1, rec.Acc2 = inner.Src.Erase(), inner.SrcVirt.Erase()
	case MovePhys:
		rec.Type = KindMovePhys
		rec.Acc1, rec.Acc2 = inner.Src.Erase(), inner.Dst.Erase()
	case MoveVirt:
		rec.Type = KindMoveVirt
		rec.Acc1, rec.Acc2 = inner.Src.Erase(), inner.Dst.Erase()
	case Convert:
		rec.Type = KindConvert
		newAmount := inner.NewAmount
		rec.NewAmount = &newAmount
		rec.Acc1, rec.Acc2 = inner.Acc.Erase(), inner.AccVirt.Erase()
	default:
		panic(fmt.Sprintf("unknown transaction shape %T", t.Inner))
	}
	return rec
}

// Transaction converts back, validating the fields the record's type
// requires.
func (r TransactionRecord) Transaction() (Transaction, error) {
	t := Transaction{ID: r.ID, Notes: r.Notes, Amount: r.Amount}
	switch r.Type {
	case KindReceived:
		if r.ExternalParty == "" {
			return t, fmt.Errorf("%w: external_party is required for received transactions", ErrInvalidEncoding)
		}
		t.Inner = Received{Source: r.ExternalParty, Dst: r.Acc1.Physical(), DstVirt: r.Acc2.Virtual()}
	case KindPaid:
		if r.ExternalParty == "" {
			return t, fmt.Errorf("%w: external_party is required for paid transactions", ErrInvalidEncoding)
		}
		t.Inner = Paid{Src: r.Acc1.Physical(), SrcVirt: r.Acc2.Virtual(), Dst: r.ExternalParty}
	case KindMovePhys:
		t.Inner = MovePhys{Src: r.Acc1.Physical(), Dst: r.Acc2.Physical()}
	case KindMoveVirt:
		t.Inner = MoveVirt{Src: r.Acc1.Virtual(), Dst: r.Acc2.Virtual()}
	case KindConvert:
		if r.NewAmount == nil {
			return t, fmt.Errorf("%w: new_amount is required for convert transactions", ErrInvalidEncoding)
		}
		t.Inner = Convert{Acc: r.Acc1.Physical(), AccVirt: r.Acc2.Virtual(), NewAmount: *r.NewAmount}
	default:
		return t, fmt.Errorf("%w: unknown transaction type %q", ErrInvalidEncoding, r.Type)
	}
	return t, nil
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Record())
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	var rec TransactionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	parsed, err := rec.Transaction()
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
