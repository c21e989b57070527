package ledger

import "sync"

// Account is one record in the flat address-keyed record space. Wallet
// accounts carry lamports and no data; every other kind carries an encoded
// record prefixed by its discriminator.
type Account struct {
	Address  Address
	Kind     Kind
	Lamports uint64
	Data     []byte
}

func (a *Account) Clone() *Account {
	c := *a
	if a.Data != nil {
		c.Data = make([]byte, len(a.Data))
		copy(c.Data, a.Data)
	}
	return &c
}

// ChangeSet is the staged effect of one instruction. A store applies the
// whole set atomically or not at all.
type ChangeSet struct {
	Creates []*Account
	Writes  []*Account
	Closes  []Address
}

func (cs *ChangeSet) Empty() bool {
	return len(cs.Creates) == 0 && len(cs.Writes) == 0 && len(cs.Closes) == 0
}

// Store is the record space the engine executes against.
type Store interface {
	// Get returns ErrAccountNotFound for vacant addresses.
	Get(addr Address) (*Account, error)
	// Commit applies the set atomically. A create against an occupied
	// address fails the whole commit with ErrAccountExists.
	Commit(cs *ChangeSet) error
}

// MemStore is the in-process record space, used by tests and embedded
// callers. The postgres-backed store lives in the storage package.
type MemStore struct {
	mu       sync.RWMutex
	accounts map[Address]*Account
}

func NewMemStore() *MemStore {
	return &MemStore{accounts: make(map[Address]*Account)}
}

func (s *MemStore) Get(addr Address) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[addr]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return acc.Clone(), nil
}

func (s *MemStore) Commit(cs *ChangeSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range cs.Creates {
		if _, ok := s.accounts[acc.Address]; ok {
			return ErrAccountExists
		}
	}
	for _, acc := range cs.Creates {
		s.accounts[acc.Address] = acc.Clone()
	}
	for _, acc := range cs.Writes {
		s.accounts[acc.Address] = acc.Clone()
	}
	for _, addr := range cs.Closes {
		delete(s.accounts, addr)
	}
	return nil
}

// Credit adds lamports to a wallet account, creating it when absent. This is
// the deposit path of the surrounding environment, not an instruction.
func (s *MemStore) Credit(addr Address, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[addr]
	if !ok {
		s.accounts[addr] = &Account{Address: addr, Kind: KindWallet, Lamports: amount}
		return nil
	}
	next, err := checkedAdd(acc.Lamports, amount)
	if err != nil {
		return err
	}
	acc.Lamports = next
	return nil
}
