package service

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"circles-claim-reminder/internal/domain/entity"
)

// ReminderDispatcher delivers a composed reminder to a named channel.
// Delivery transport is the host's concern; the engine only ever says
// "send this text to this channel".
type ReminderDispatcher interface {
	// Dispatch sends one reminder message.
	Dispatch(ctx context.Context, msg entity.ReminderMessage) error
}

// NameResolver resolves a name-service handle to an address. Resolution
// belongs to an external collaborator; hosts without one leave it nil and
// handle requests fail with ErrUnresolvedHandle.
type NameResolver interface {
	// Resolve maps a lower-cased handle to its address.
	Resolve(ctx context.Context, handle string) (common.Address, error)
}
