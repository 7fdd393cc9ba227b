package service

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"circles-claim-reminder/internal/domain/entity"
)

// Aggregation failure modes surfaced to callers.
var (
	// ErrNotRegistered marks a root address with no registered avatar.
	// Terminal for the whole aggregation.
	ErrNotRegistered = errors.New("address is not a registered avatar")

	// ErrUnresolvedHandle marks a name-service handle request when no
	// resolver collaborator is configured.
	ErrUnresolvedHandle = errors.New("name-service handle requires an external resolver")
)

// AggregationService defines the engine's request/response surface: one
// stateless aggregation pass per call, no state shared across calls.
type AggregationService interface {
	// Aggregate resolves the root's trust graph, enriches every counterpart
	// concurrently, and returns the snapshot with connections in
	// deduplicated insertion order. Failures on the root abort with an
	// error; failures on counterparts degrade or exclude, never abort.
	Aggregate(ctx context.Context, root common.Address) (*entity.AggregationSnapshot, error)
}

// ReminderService defines the broadcast surface built on aggregation.
type ReminderService interface {
	// Broadcast aggregates for the requested identifier and dispatches one
	// reminder per flagged connection to the request's channel.
	Broadcast(ctx context.Context, req entity.ReminderRequest) (*entity.BroadcastResult, error)
}
