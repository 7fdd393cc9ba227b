package database

import (
	"context"
	"fmt"

	"circles-claim-reminder/internal/domain/entity"
	"circles-claim-reminder/internal/domain/repository"
	"circles-claim-reminder/internal/infrastructure/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// neo4jTimeFormat is the ISO-8601 layout Neo4J's datetime() accepts.
const neo4jTimeFormat = "2006-01-02T15:04:05.000Z"

// Neo4JSnapshotRepository implements SnapshotArchive interface
type Neo4JSnapshotRepository struct {
	client *Neo4JClient
	logger *logger.Logger
}

// NewNeo4JSnapshotRepository creates a new Neo4J snapshot repository
func NewNeo4JSnapshotRepository(client *Neo4JClient, logger *logger.Logger) repository.SnapshotArchive {
	return &Neo4JSnapshotRepository{
		client: client,
		logger: logger.WithComponent("neo4j-snapshot-repo"),
	}
}

// StoreSnapshot mirrors an aggregation snapshot into the trust-graph archive.
// The archive is write-only and optional; when disabled this is a no-op.
func (r *Neo4JSnapshotRepository) StoreSnapshot(ctx context.Context, snapshot *entity.AggregationSnapshot) error {
	if !r.client.Enabled() {
		return nil
	}

	if err := r.mergeAvatars(ctx, snapshot); err != nil {
		return err
	}
	if err := r.mergeTrustEdges(ctx, snapshot); err != nil {
		return err
	}

	r.logger.Debug("Archived aggregation snapshot",
		zap.String("root", snapshot.Root.Hex()),
		zap.Int("connections", len(snapshot.Connections)))

	return nil
}

// mergeAvatars upserts the root and every counterpart as Avatar nodes
func (r *Neo4JSnapshotRepository) mergeAvatars(ctx context.Context, snapshot *entity.AggregationSnapshot) error {
	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	query := `
		UNWIND $avatars as a
		MERGE (n:Avatar {address: a.address})
		SET n.name = a.name,
			n.balance = a.balance,
			n.unclaimed = a.unclaimed,
			n.last_claim = CASE WHEN a.last_claim IS NULL THEN n.last_claim ELSE datetime(a.last_claim) END,
			n.snapshot_at = datetime(a.snapshot_at)
	`

	snapshotAt := snapshot.TakenAt.UTC().Format(neo4jTimeFormat)

	avatars := []map[string]interface{}{{
		"address":     snapshot.Root.Hex(),
		"name":        snapshot.RootName,
		"balance":     snapshot.TotalBalance,
		"unclaimed":   snapshot.Unclaimed,
		"last_claim":  nil,
		"snapshot_at": snapshotAt,
	}}

	for _, conn := range snapshot.Connections {
		var lastClaim interface{}
		if conn.LastClaim != nil {
			lastClaim = conn.LastClaim.UTC().Format(neo4jTimeFormat)
		}

		avatars = append(avatars, map[string]interface{}{
			"address":     conn.Address.Hex(),
			"name":        conn.Name,
			"balance":     conn.Balance,
			"unclaimed":   conn.Unclaimed,
			"last_claim":  lastClaim,
			"snapshot_at": snapshotAt,
		})
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, map[string]interface{}{"avatars": avatars})
	})

	if err != nil {
		return fmt.Errorf("failed to merge avatars: %w", err)
	}

	return nil
}

// mergeTrustEdges upserts one TRUSTS edge per connection off the root
func (r *Neo4JSnapshotRepository) mergeTrustEdges(ctx context.Context, snapshot *entity.AggregationSnapshot) error {
	if len(snapshot.Connections) == 0 {
		return nil
	}

	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	query := `
		UNWIND $connections as c
		MATCH (root:Avatar {address: $root_address})
		MATCH (peer:Avatar {address: c.address})
		MERGE (root)-[t:TRUSTS]->(peer)
		SET t.mutual = c.mutual,
			t.unclaimed = c.unclaimed,
			t.priority = c.priority,
			t.snapshot_at = datetime($snapshot_at)
	`

	var connData []map[string]interface{}
	for _, conn := range snapshot.Connections {
		connData = append(connData, map[string]interface{}{
			"address":   conn.Address.Hex(),
			"mutual":    conn.Mutual,
			"unclaimed": conn.Unclaimed,
			"priority":  string(conn.Priority),
		})
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, map[string]interface{}{
			"connections":  connData,
			"root_address": snapshot.Root.Hex(),
			"snapshot_at":  snapshot.TakenAt.UTC().Format(neo4jTimeFormat),
		})
	})

	if err != nil {
		return fmt.Errorf("failed to merge trust edges: %w", err)
	}

	return nil
}
