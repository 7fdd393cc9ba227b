package service

import (
	"context"
	"fmt"
	"time"

	"circles-claim-reminder/internal/domain/entity"
	"circles-claim-reminder/internal/domain/repository"
	"circles-claim-reminder/internal/domain/service"
	"circles-claim-reminder/internal/infrastructure/logger"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// ReminderApplicationService implements ReminderService interface
type ReminderApplicationService struct {
	normalizer  *service.InputNormalizer
	resolver    service.NameResolver
	aggregator  service.AggregationService
	prioritizer *service.ReminderPrioritizer
	dispatcher  service.ReminderDispatcher
	archive     repository.SnapshotArchive
	logger      *logger.Logger
}

// NewReminderApplicationService creates a new reminder application service.
// The resolver may be nil when no name service is configured; handle
// requests then fail with ErrUnresolvedHandle.
func NewReminderApplicationService(
	normalizer *service.InputNormalizer,
	resolver service.NameResolver,
	aggregator service.AggregationService,
	prioritizer *service.ReminderPrioritizer,
	dispatcher service.ReminderDispatcher,
	archive repository.SnapshotArchive,
	logger *logger.Logger,
) service.ReminderService {
	return &ReminderApplicationService{
		normalizer:  normalizer,
		resolver:    resolver,
		aggregator:  aggregator,
		prioritizer: prioritizer,
		dispatcher:  dispatcher,
		archive:     archive,
		logger:      logger.WithComponent("reminder-service"),
	}
}

// Broadcast aggregates for the requested identifier and dispatches one
// reminder per flagged connection. Dispatch failures are counted, never
// fatal. In dry-run mode flagged reminders count as sent without leaving
// the engine.
func (s *ReminderApplicationService) Broadcast(ctx context.Context, req entity.ReminderRequest) (*entity.BroadcastResult, error) {
	root, err := s.resolveIdentifier(ctx, req.Identifier)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.aggregator.Aggregate(ctx, root)
	if err != nil {
		return nil, err
	}

	reminders := s.prioritizer.Prioritize(snapshot)

	result := &entity.BroadcastResult{
		Root:        root,
		Connections: len(snapshot.Connections),
		Skipped:     len(snapshot.Connections) - len(reminders),
		DryRun:      req.DryRun,
	}

	for _, reminder := range reminders {
		if req.DryRun {
			result.Sent++
			continue
		}

		msg := entity.ReminderMessage{
			Channel:  req.Channel,
			Text:     reminder.Text,
			Priority: reminder.Priority,
			SentAt:   time.Now().UTC(),
		}
		if err := s.dispatcher.Dispatch(ctx, msg); err != nil {
			result.Failed++
			s.logger.Error("Failed to dispatch reminder",
				zap.String("counterpart", reminder.Connection.Address.Hex()),
				zap.String("channel", req.Channel),
				zap.Error(err))
			continue
		}
		result.Sent++
	}

	s.archiveSnapshot(ctx, snapshot)

	s.logger.Info("Broadcast complete",
		zap.String("root", root.Hex()),
		zap.Int("connections", result.Connections),
		zap.Int("sent", result.Sent),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Bool("dry_run", result.DryRun))

	return result, nil
}

// resolveIdentifier normalizes raw user input and, for name-service handles,
// defers to the external resolver collaborator.
func (s *ReminderApplicationService) resolveIdentifier(ctx context.Context, raw string) (common.Address, error) {
	id, err := s.normalizer.Normalize(raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to normalize identifier: %w", err)
	}

	if id.Kind == entity.IdentifierAddress {
		return id.Address, nil
	}

	if s.resolver == nil {
		return common.Address{}, fmt.Errorf("%w: %s", service.ErrUnresolvedHandle, id.Handle)
	}

	addr, err := s.resolver.Resolve(ctx, id.Handle)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to resolve handle %s: %w", id.Handle, err)
	}
	return addr, nil
}

// archiveSnapshot mirrors the snapshot into the optional trust-graph
// archive. Archive failures are logged and swallowed: the engine's result
// never depends on the archive.
func (s *ReminderApplicationService) archiveSnapshot(ctx context.Context, snapshot *entity.AggregationSnapshot) {
	if s.archive == nil {
		return
	}
	if err := s.archive.StoreSnapshot(ctx, snapshot); err != nil {
		s.logger.Warn("Failed to archive snapshot",
			zap.String("root", snapshot.Root.Hex()),
			zap.Error(err))
	}
}
