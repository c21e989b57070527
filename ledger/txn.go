package ledger

import (
	"errors"
	"math"
	"time"
)

// Rent reserve charged when a record is created and refunded when it closes.
const (
	lamportsPerByteYear = 3480
	rentExemptionYears  = 2
	accountOverhead     = 128
)

// RentExempt is the lamport reserve a record of the given data length holds
// for its storage cost.
func RentExempt(dataLen int) uint64 {
	return uint64(dataLen+accountOverhead) * lamportsPerByteYear * rentExemptionYears
}

// txn stages every mutation of one instruction against a consistent snapshot
// of the store. Nothing touches the store until the staged set commits; on
// any failure the whole set is discarded.
type txn struct {
	store   Store
	now     time.Time
	view    map[Address]*Account
	created map[Address]bool
	closed  map[Address]bool
}

func newTxn(store Store, now time.Time) *txn {
	return &txn{
		store:   store,
		now:     now,
		view:    make(map[Address]*Account),
		created: make(map[Address]bool),
		closed:  make(map[Address]bool),
	}
}

// load returns the staged working copy for an address, pulling it from the
// store on first touch.
func (t *txn) load(addr Address) (*Account, error) {
	if t.closed[addr] {
		return nil, ErrAccountNotFound
	}
	if acc, ok := t.view[addr]; ok {
		return acc, nil
	}
	acc, err := t.store.Get(addr)
	if err != nil {
		return nil, err
	}
	c := acc.Clone()
	t.view[addr] = c
	return c, nil
}

func (t *txn) loadKind(addr Address, kind Kind) (*Account, error) {
	acc, err := t.load(addr)
	if err != nil {
		return nil, err
	}
	if acc.Kind != kind {
		return nil, ErrWrongAccountKind
	}
	return acc, nil
}

// create stages a new record, debiting the payer its rent reserve. The
// address must be vacant.
func (t *txn) create(addr Address, kind Kind, payer Address, data []byte) (*Account, error) {
	if _, err := t.load(addr); err == nil {
		return nil, ErrAccountExists
	} else if !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}
	rent := RentExempt(len(data))
	if err := t.debit(payer, rent); err != nil {
		return nil, err
	}
	acc := &Account{Address: addr, Kind: kind, Lamports: rent, Data: data}
	t.view[addr] = acc
	t.created[addr] = true
	return acc, nil
}

// close stages removal of a record, returning its whole lamport balance to
// the recipient.
func (t *txn) close(addr Address, refundTo Address) error {
	acc, err := t.load(addr)
	if err != nil {
		return err
	}
	if err := t.credit(refundTo, acc.Lamports); err != nil {
		return err
	}
	acc.Lamports = 0
	t.closed[addr] = true
	return nil
}

func (t *txn) transfer(from, to Address, amount uint64) error {
	if err := t.debit(from, amount); err != nil {
		return err
	}
	return t.credit(to, amount)
}

func (t *txn) debit(addr Address, amount uint64) error {
	acc, err := t.load(addr)
	if errors.Is(err, ErrAccountNotFound) {
		return ErrInsufficientFunds
	}
	if err != nil {
		return err
	}
	if amount > acc.Lamports {
		return ErrInsufficientFunds
	}
	acc.Lamports -= amount
	return nil
}

// credit vivifies a wallet account when the recipient address is vacant,
// mirroring how the environment's transfer primitive behaves.
func (t *txn) credit(addr Address, amount uint64) error {
	acc, err := t.load(addr)
	if errors.Is(err, ErrAccountNotFound) {
		acc = &Account{Address: addr, Kind: KindWallet}
		t.view[addr] = acc
		t.created[addr] = true
	} else if err != nil {
		return err
	}
	next, err := checkedAdd(acc.Lamports, amount)
	if err != nil {
		return err
	}
	acc.Lamports = next
	return nil
}

// changeSet snapshots the staged effect for an atomic commit.
func (t *txn) changeSet() *ChangeSet {
	cs := &ChangeSet{}
	for addr, acc := range t.view {
		switch {
		case t.closed[addr]:
			// Created and closed inside the same instruction nets to nothing.
			if !t.created[addr] {
				cs.Closes = append(cs.Closes, addr)
			}
		case t.created[addr]:
			cs.Creates = append(cs.Creates, acc)
		default:
			cs.Writes = append(cs.Writes, acc)
		}
	}
	return cs
}

func checkedAdd(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrMathOverflow
	}
	return a + b, nil
}
