package repository

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"circles-claim-reminder/internal/domain/entity"
)

// LedgerReader defines the read-only interface onto the remote Circles
// ledger query service. Implementations must be safe for concurrent use by
// multiple outstanding calls for different addresses.
type LedgerReader interface {
	// GetAvatar retrieves the registered avatar for an address.
	// A missing registration returns (nil, nil), not an error.
	GetAvatar(ctx context.Context, addr common.Address) (*entity.Avatar, error)

	// GetTotalBalance retrieves the CRC balance of an address summed across
	// all ledger versions.
	GetTotalBalance(ctx context.Context, addr common.Address) (float64, error)

	// GetTrustRelations retrieves up to limit raw trust relations touching
	// an address. The list may be incomplete, duplicated, or asymmetric.
	GetTrustRelations(ctx context.Context, addr common.Address, limit int) ([]entity.TrustRelation, error)

	// GetTransactionHistory retrieves up to limit history entries for an
	// address, ordered newest-first.
	GetTransactionHistory(ctx context.Context, addr common.Address, limit int) ([]entity.LedgerActivity, error)
}
