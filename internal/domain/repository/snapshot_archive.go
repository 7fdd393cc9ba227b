package repository

import (
	"context"

	"circles-claim-reminder/internal/domain/entity"
)

// SnapshotArchive defines the write-only interface for mirroring finished
// aggregation snapshots into a graph store. The engine never reads it back;
// aggregation correctness must not depend on archive availability.
type SnapshotArchive interface {
	// StoreSnapshot persists the avatars and trust edges of one snapshot.
	StoreSnapshot(ctx context.Context, snapshot *entity.AggregationSnapshot) error
}
