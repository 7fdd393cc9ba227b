package entity

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Connection represents an enriched trust counterpart of the root address.
// It is constructed once per aggregation pass and immutable afterwards; the
// engine never persists it.
type Connection struct {
	Address   common.Address   `json:"address"`
	Name      string           `json:"name"`
	Balance   float64          `json:"balance"`
	Unclaimed float64          `json:"unclaimed"`
	LastClaim *time.Time       `json:"last_claim,omitempty"`
	Mutual    bool             `json:"mutual"`
	Priority  ReminderPriority `json:"priority"`
}

// AggregationSnapshot represents the result of a single aggregation pass over
// the root address's trust network. Connections are deduplicated by
// counterpart address, never contain the root itself, and preserve the
// insertion order of the raw relation list.
type AggregationSnapshot struct {
	Root           common.Address `json:"root"`
	RootName       string         `json:"root_name"`
	TotalBalance   float64        `json:"total_balance"`
	Unclaimed      float64        `json:"unclaimed"`
	UnclaimedKnown bool           `json:"unclaimed_known"`
	Registered     bool           `json:"registered"`
	Connections    []Connection   `json:"connections"`
	TakenAt        time.Time      `json:"taken_at"`
}

// BroadcastResult represents the outcome of one reminder broadcast request.
type BroadcastResult struct {
	Root        common.Address `json:"root"`
	Connections int            `json:"connections"`
	Sent        int            `json:"sent"`
	Skipped     int            `json:"skipped"`
	Failed      int            `json:"failed"`
	DryRun      bool           `json:"dry_run"`
}
