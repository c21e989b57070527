// models/deposit.go
package models

import "time"

// DepositMirror mirrors confirmed deposits from the custody service.
// Table name: deposit_mirror
type DepositMirror struct {
	ID            string    `gorm:"primaryKey;type:uuid;not null" json:"id"` // custody service's deposit id
	WalletAddress string    `gorm:"type:varchar(64);not null;index" json:"wallet_address"`
	Amount        uint64    `gorm:"not null" json:"amount"` // lamports
	Chain         string    `gorm:"type:varchar(64);not null" json:"chain"`
	ConfirmedAt   time.Time `gorm:"not null" json:"confirmed_at"`
	Credited      bool      `gorm:"not null;default:false;index" json:"credited"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (DepositMirror) TableName() string { return "deposit_mirror" }
