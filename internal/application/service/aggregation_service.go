package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"circles-claim-reminder/internal/domain/entity"
	"circles-claim-reminder/internal/domain/repository"
	"circles-claim-reminder/internal/domain/service"
	"circles-claim-reminder/internal/infrastructure/config"
	"circles-claim-reminder/internal/infrastructure/logger"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// AggregationApplicationService implements AggregationService interface
type AggregationApplicationService struct {
	ledger     repository.LedgerReader
	calculator *service.AccrualCalculator
	graph      *service.TrustGraphAggregator
	config     *config.Config
	logger     *logger.Logger
}

// NewAggregationApplicationService creates a new aggregation application service
func NewAggregationApplicationService(
	ledger repository.LedgerReader,
	calculator *service.AccrualCalculator,
	graph *service.TrustGraphAggregator,
	cfg *config.Config,
	logger *logger.Logger,
) service.AggregationService {
	return &AggregationApplicationService{
		ledger:     ledger,
		calculator: calculator,
		graph:      graph,
		config:     cfg,
		logger:     logger.WithComponent("aggregation-service"),
	}
}

// Aggregate runs one stateless aggregation pass over the root's trust
// network. Root lookups that fail abort the pass; counterpart failures only
// degrade or exclude that counterpart.
func (s *AggregationApplicationService) Aggregate(ctx context.Context, root common.Address) (*entity.AggregationSnapshot, error) {
	now := time.Now().UTC()

	s.logger.Info("Aggregating trust network", zap.String("root", root.Hex()))

	avatar, err := s.ledger.GetAvatar(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch root avatar: %w", err)
	}
	if avatar == nil {
		return nil, fmt.Errorf("%w: %s", service.ErrNotRegistered, root.Hex())
	}

	balance, err := s.ledger.GetTotalBalance(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch root balance: %w", err)
	}

	unclaimed, unclaimedKnown := s.rootAccrual(ctx, root, now)

	relations, err := s.ledger.GetTrustRelations(ctx, root, s.config.Aggregation.TrustLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trust relations: %w", err)
	}

	counterparts := s.graph.Counterparts(root, relations)
	connections := s.enrichAll(ctx, counterparts, now)

	s.logger.Info("Aggregation complete",
		zap.String("root", root.Hex()),
		zap.Int("counterparts", len(counterparts)),
		zap.Int("connections", len(connections)),
		zap.Int("excluded", len(counterparts)-len(connections)))

	return &entity.AggregationSnapshot{
		Root:           root,
		RootName:       avatar.DisplayName(),
		TotalBalance:   balance,
		Unclaimed:      unclaimed,
		UnclaimedKnown: unclaimedKnown,
		Registered:     true,
		Connections:    connections,
		TakenAt:        now,
	}, nil
}

// rootAccrual computes the root's own unclaimed amount. Unlike counterparts,
// a failing root accrual never aborts or excludes anything: the amount
// degrades to 0 and is flagged unknown to the caller.
func (s *AggregationApplicationService) rootAccrual(ctx context.Context, root common.Address, now time.Time) (float64, bool) {
	history, err := s.ledger.GetTransactionHistory(ctx, root, s.config.Aggregation.HistoryLimit)
	if err != nil {
		s.logger.Warn("Failed to fetch root history, unclaimed amount unknown",
			zap.String("root", root.Hex()),
			zap.Error(err))
		return 0, false
	}

	amount, err := s.calculator.Accrue(lastClaimOf(history), now)
	if err != nil {
		s.logger.Warn("Root accrual unavailable, unclaimed amount unknown",
			zap.String("root", root.Hex()),
			zap.Error(err))
		return 0, false
	}

	return amount, true
}

// enrichJob carries one counterpart through the worker pool. The index pins
// the counterpart's slot in the result slice so the final connection list
// keeps the deduplicated insertion order no matter which fetch finishes
// first.
type enrichJob struct {
	index       int
	counterpart entity.TrustConnection
}

// enrichAll fans counterpart enrichment out over a bounded worker pool and
// compacts the results back into insertion order.
func (s *AggregationApplicationService) enrichAll(ctx context.Context, counterparts []entity.TrustConnection, now time.Time) []entity.Connection {
	results := make([]*entity.Connection, len(counterparts))

	workers := s.config.Aggregation.MaxConcurrentEnrichments
	if workers <= 0 || workers > len(counterparts) {
		workers = len(counterparts)
	}

	jobChan := make(chan enrichJob)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				results[job.index] = s.enrich(ctx, job.counterpart, now)
			}
		}()
	}

	for i, counterpart := range counterparts {
		jobChan <- enrichJob{index: i, counterpart: counterpart}
	}
	close(jobChan)
	wg.Wait()

	// Excluded counterparts leave nil slots; compact without reordering.
	connections := make([]entity.Connection, 0, len(results))
	for _, conn := range results {
		if conn != nil {
			connections = append(connections, *conn)
		}
	}
	return connections
}

// enrich builds one connection from ledger reads. A counterpart without a
// defensible accrual is excluded (nil); profile and balance failures only
// degrade their fields.
func (s *AggregationApplicationService) enrich(ctx context.Context, counterpart entity.TrustConnection, now time.Time) *entity.Connection {
	addr := counterpart.Counterpart

	history, err := s.ledger.GetTransactionHistory(ctx, addr, s.config.Aggregation.HistoryLimit)
	if err != nil {
		s.logger.Warn("Excluding counterpart, history fetch failed",
			zap.String("counterpart", addr.Hex()),
			zap.Error(err))
		return nil
	}

	lastClaim := lastClaimOf(history)
	unclaimed, err := s.calculator.Accrue(lastClaim, now)
	if err != nil {
		s.logger.Debug("Excluding counterpart, no defensible accrual",
			zap.String("counterpart", addr.Hex()),
			zap.Error(err))
		return nil
	}

	name := entity.ShortAddress(addr)
	avatar, err := s.ledger.GetAvatar(ctx, addr)
	if err != nil {
		s.logger.Warn("Profile fetch failed, falling back to short address",
			zap.String("counterpart", addr.Hex()),
			zap.Error(err))
	} else if avatar != nil {
		name = avatar.DisplayName()
	}

	var balance float64
	if b, err := s.ledger.GetTotalBalance(ctx, addr); err != nil {
		s.logger.Warn("Balance fetch failed, degrading to zero",
			zap.String("counterpart", addr.Hex()),
			zap.Error(err))
	} else {
		balance = b
	}

	return &entity.Connection{
		Address:   addr,
		Name:      name,
		Balance:   balance,
		Unclaimed: unclaimed,
		LastClaim: lastClaim,
		Mutual:    counterpart.Mutual,
		Priority:  entity.PriorityFor(unclaimed, s.config.Accrual.DailyUnit),
	}
}

// lastClaimOf extracts the most recent personalMint time from a history page.
func lastClaimOf(history []entity.LedgerActivity) *time.Time {
	if t, ok := service.LatestClaimTime(history); ok {
		return &t
	}
	return nil
}
