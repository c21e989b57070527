// storage/account_store.go
package storage

import (
	"errors"
	"fmt"
	"math"

	"bounty-hunt-system/ledger"
	"bounty-hunt-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountStore is the postgres-backed record space. One ledger ChangeSet
// commits inside one database transaction, so the multi-record effect of an
// instruction lands atomically or not at all.
type AccountStore struct {
	DB *gorm.DB
}

func NewAccountStore(db *gorm.DB) *AccountStore {
	return &AccountStore{DB: db}
}

func (s *AccountStore) Get(addr ledger.Address) (*ledger.Account, error) {
	var row models.AccountRow
	if err := s.DB.First(&row, "address = ?", addr.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrAccountNotFound
		}
		return nil, err
	}
	return RowToAccount(&row)
}

func (s *AccountStore) Commit(cs *ledger.ChangeSet) error {
	if cs.Empty() {
		return nil
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		for _, acc := range cs.Creates {
			if err := tx.Create(AccountToRow(acc)).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ledger.ErrAccountExists
				}
				return err
			}
		}
		for _, acc := range cs.Writes {
			row := AccountToRow(acc)
			if err := tx.Model(&models.AccountRow{}).
				Where("address = ?", row.Address).
				Updates(map[string]any{
					"kind":     row.Kind,
					"lamports": row.Lamports,
					"data":     row.Data,
				}).Error; err != nil {
				return err
			}
		}
		for _, addr := range cs.Closes {
			if err := tx.Delete(&models.AccountRow{}, "address = ?", addr.String()).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Credit adds deposited lamports to a wallet row, creating it when absent.
// Used by the deposit sync worker; instructions never call this.
func (s *AccountStore) Credit(addr ledger.Address, amount uint64) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return creditTx(tx, addr, amount)
	})
}

// CreditDeposit credits a mirrored deposit to its wallet row and marks the
// mirror row credited in the same transaction, so a crash between the two
// cannot replay the credit on the next sweep. A row already marked credited
// is a no-op.
func (s *AccountStore) CreditDeposit(addr ledger.Address, amount uint64, depositID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.DepositMirror{}).
			Where("id = ? AND credited = ?", depositID, false).
			Update("credited", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return creditTx(tx, addr, amount)
	})
}

func creditTx(tx *gorm.DB, addr ledger.Address, amount uint64) error {
	var row models.AccountRow
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&row, "address = ?", addr.String()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&models.AccountRow{
			Address:  addr.String(),
			Kind:     string(ledger.KindWallet),
			Lamports: amount,
		}).Error
	}
	if err != nil {
		return err
	}
	if row.Lamports > math.MaxUint64-amount {
		return ledger.ErrMathOverflow
	}
	return tx.Model(&row).Update("lamports", row.Lamports+amount).Error
}

func AccountToRow(acc *ledger.Account) *models.AccountRow {
	return &models.AccountRow{
		Address:  acc.Address.String(),
		Kind:     string(acc.Kind),
		Lamports: acc.Lamports,
		Data:     acc.Data,
	}
}

func RowToAccount(row *models.AccountRow) (*ledger.Account, error) {
	addr, err := ledger.ParseAddress(row.Address)
	if err != nil {
		return nil, fmt.Errorf("corrupt account row: %w", err)
	}
	return &ledger.Account{
		Address:  addr,
		Kind:     ledger.Kind(row.Kind),
		Lamports: row.Lamports,
		Data:     row.Data,
	}, nil
}
