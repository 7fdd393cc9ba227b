package entity

import (
	"time"
)

// LedgerActivity represents one entry of an avatar's transaction history as
// returned by the ledger query service. Pages are ordered newest-first.
type LedgerActivity struct {
	TxHash    string    `json:"tx_hash"`
	Method    string    `json:"method"`
	Input     string    `json:"input"`
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
}
