// models/account.go
package models

import "time"

// AccountRow mirrors one record of the ledger's flat address space into
// Postgres. The data payload stays in its binary record form; the kind
// column exists so scans can narrow by record type without decoding.
type AccountRow struct {
	Address   string    `gorm:"primaryKey;type:varchar(64);not null" json:"address"` // base58
	Kind      string    `gorm:"type:varchar(32);not null;index" json:"kind"`
	Lamports  uint64    `gorm:"not null;default:0" json:"lamports"`
	Data      []byte    `json:"data,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
