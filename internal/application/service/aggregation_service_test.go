package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"circles-claim-reminder/internal/domain/entity"
	domain "circles-claim-reminder/internal/domain/service"
	"circles-claim-reminder/internal/infrastructure/config"
	"circles-claim-reminder/internal/infrastructure/logger"
)

var (
	rootAddr = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	peerB    = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	peerC    = common.HexToAddress("0x00000000000000000000000000000000000000cc")
	peerD    = common.HexToAddress("0x00000000000000000000000000000000000000dd")
)

// fakeLedger is an in-memory LedgerReader with per-address failure injection.
type fakeLedger struct {
	avatars      map[common.Address]*entity.Avatar
	avatarErr    map[common.Address]error
	balances     map[common.Address]float64
	balanceErr   map[common.Address]error
	relations    []entity.TrustRelation
	relationsErr error
	history      map[common.Address][]entity.LedgerActivity
	historyErr   map[common.Address]error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		avatars:    make(map[common.Address]*entity.Avatar),
		avatarErr:  make(map[common.Address]error),
		balances:   make(map[common.Address]float64),
		balanceErr: make(map[common.Address]error),
		history:    make(map[common.Address][]entity.LedgerActivity),
		historyErr: make(map[common.Address]error),
	}
}

func (f *fakeLedger) GetAvatar(ctx context.Context, addr common.Address) (*entity.Avatar, error) {
	if err := f.avatarErr[addr]; err != nil {
		return nil, err
	}
	return f.avatars[addr], nil
}

func (f *fakeLedger) GetTotalBalance(ctx context.Context, addr common.Address) (float64, error) {
	if err := f.balanceErr[addr]; err != nil {
		return 0, err
	}
	return f.balances[addr], nil
}

func (f *fakeLedger) GetTrustRelations(ctx context.Context, addr common.Address, limit int) ([]entity.TrustRelation, error) {
	if f.relationsErr != nil {
		return nil, f.relationsErr
	}
	return f.relations, nil
}

func (f *fakeLedger) GetTransactionHistory(ctx context.Context, addr common.Address, limit int) ([]entity.LedgerActivity, error) {
	if err := f.historyErr[addr]; err != nil {
		return nil, err
	}
	return f.history[addr], nil
}

func (f *fakeLedger) register(addr common.Address, name string) {
	f.avatars[addr] = &entity.Avatar{Address: addr, Name: name, Type: entity.AvatarTypeHuman}
}

func (f *fakeLedger) claimAgo(addr common.Address, ago time.Duration) {
	f.history[addr] = []entity.LedgerActivity{{
		Method:    "personalMint",
		Timestamp: time.Now().UTC().Add(-ago),
	}}
}

func testAggregator(t *testing.T, ledger *fakeLedger, maxConcurrent int) domain.AggregationService {
	t.Helper()
	log, err := logger.NewLogger("error", "development")
	require.NoError(t, err)

	cfg := &config.Config{
		Accrual: config.AccrualConfig{HourlyRate: 1, MaxAccrualDays: 7, DailyUnit: 24},
		Aggregation: config.AggregationConfig{
			TrustLimit:               200,
			HistoryLimit:             100,
			MaxConcurrentEnrichments: maxConcurrent,
		},
	}
	calculator := domain.NewAccrualCalculator(domain.AccrualParams{
		HourlyRate:     cfg.Accrual.HourlyRate,
		MaxAccrualDays: cfg.Accrual.MaxAccrualDays,
	})
	return NewAggregationApplicationService(ledger, calculator, domain.NewTrustGraphAggregator(), cfg, log)
}

func TestAggregate_TrustNetworkScenario(t *testing.T) {
	// Root trusts B and C; B trusts root back, C does not. B claimed 50
	// hours ago, C has no history at all.
	ledger := newFakeLedger()
	ledger.register(rootAddr, "alice")
	ledger.register(peerB, "bob")
	ledger.register(peerC, "carol")
	ledger.balances[rootAddr] = 500
	ledger.balances[peerB] = 120
	ledger.relations = []entity.TrustRelation{
		{Truster: rootAddr, Trustee: peerB},
		{Truster: rootAddr, Trustee: peerC},
		{Truster: peerB, Trustee: rootAddr},
	}
	ledger.claimAgo(rootAddr, 10*time.Hour)
	ledger.claimAgo(peerB, 50*time.Hour)

	snapshot, err := testAggregator(t, ledger, 0).Aggregate(context.Background(), rootAddr)
	require.NoError(t, err)

	assert.Equal(t, rootAddr, snapshot.Root)
	assert.Equal(t, "alice", snapshot.RootName)
	assert.True(t, snapshot.Registered)
	assert.Equal(t, float64(500), snapshot.TotalBalance)
	assert.True(t, snapshot.UnclaimedKnown)
	assert.InDelta(t, 10, snapshot.Unclaimed, 0.01)

	// C is excluded: no claim history means no defensible accrual.
	require.Len(t, snapshot.Connections, 1)
	b := snapshot.Connections[0]
	assert.Equal(t, peerB, b.Address)
	assert.Equal(t, "bob", b.Name)
	assert.True(t, b.Mutual)
	assert.InDelta(t, 50, b.Unclaimed, 0.01)
	assert.Equal(t, entity.PriorityMedium, b.Priority)
	assert.Equal(t, float64(120), b.Balance)
	require.NotNil(t, b.LastClaim)
}

func TestAggregate_UnregisteredRoot(t *testing.T) {
	ledger := newFakeLedger()

	_, err := testAggregator(t, ledger, 0).Aggregate(context.Background(), rootAddr)
	require.ErrorIs(t, err, domain.ErrNotRegistered)
}

func TestAggregate_RootLookupFailuresAbort(t *testing.T) {
	boom := errors.New("connection refused")

	t.Run("avatar fetch", func(t *testing.T) {
		ledger := newFakeLedger()
		ledger.avatarErr[rootAddr] = boom

		_, err := testAggregator(t, ledger, 0).Aggregate(context.Background(), rootAddr)
		require.ErrorIs(t, err, boom)
	})

	t.Run("balance fetch", func(t *testing.T) {
		ledger := newFakeLedger()
		ledger.register(rootAddr, "alice")
		ledger.balanceErr[rootAddr] = boom

		_, err := testAggregator(t, ledger, 0).Aggregate(context.Background(), rootAddr)
		require.ErrorIs(t, err, boom)
	})

	t.Run("trust relations fetch", func(t *testing.T) {
		ledger := newFakeLedger()
		ledger.register(rootAddr, "alice")
		ledger.claimAgo(rootAddr, time.Hour)
		ledger.relationsErr = boom

		_, err := testAggregator(t, ledger, 0).Aggregate(context.Background(), rootAddr)
		require.ErrorIs(t, err, boom)
	})
}

func TestAggregate_RootAccrualFailureDegradesToUnknown(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fakeLedger)
	}{
		{
			name:  "history fetch fails",
			setup: func(l *fakeLedger) { l.historyErr[rootAddr] = errors.New("timeout") },
		},
		{
			name:  "no claim history",
			setup: func(l *fakeLedger) {},
		},
		{
			name: "future claim timestamp",
			setup: func(l *fakeLedger) {
				l.history[rootAddr] = []entity.LedgerActivity{{
					Method:    "personalMint",
					Timestamp: time.Now().UTC().Add(time.Hour),
				}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := newFakeLedger()
			ledger.register(rootAddr, "alice")
			tt.setup(ledger)

			snapshot, err := testAggregator(t, ledger, 0).Aggregate(context.Background(), rootAddr)
			require.NoError(t, err)
			assert.False(t, snapshot.UnclaimedKnown)
			assert.Zero(t, snapshot.Unclaimed)
		})
	}
}

func TestAggregate_CounterpartDegradeMatrix(t *testing.T) {
	ledger := newFakeLedger()
	ledger.register(rootAddr, "alice")
	ledger.claimAgo(rootAddr, time.Hour)
	ledger.relations = []entity.TrustRelation{{Truster: rootAddr, Trustee: peerB}}
	ledger.claimAgo(peerB, 30*time.Hour)

	// Profile and balance fetches both fail; the counterpart still makes
	// the snapshot with degraded fields.
	ledger.avatarErr[peerB] = errors.New("profile service down")
	ledger.balanceErr[peerB] = errors.New("balance service down")

	snapshot, err := testAggregator(t, ledger, 0).Aggregate(context.Background(), rootAddr)
	require.NoError(t, err)

	require.Len(t, snapshot.Connections, 1)
	b := snapshot.Connections[0]
	assert.Equal(t, entity.ShortAddress(peerB), b.Name)
	assert.Zero(t, b.Balance)
	assert.InDelta(t, 30, b.Unclaimed, 0.01)
}

func TestAggregate_CounterpartHistoryFailureExcludes(t *testing.T) {
	ledger := newFakeLedger()
	ledger.register(rootAddr, "alice")
	ledger.claimAgo(rootAddr, time.Hour)
	ledger.relations = []entity.TrustRelation{
		{Truster: rootAddr, Trustee: peerB},
		{Truster: rootAddr, Trustee: peerC},
	}
	ledger.claimAgo(peerB, 30*time.Hour)
	ledger.historyErr[peerC] = errors.New("timeout")

	snapshot, err := testAggregator(t, ledger, 0).Aggregate(context.Background(), rootAddr)
	require.NoError(t, err)

	require.Len(t, snapshot.Connections, 1)
	assert.Equal(t, peerB, snapshot.Connections[0].Address)
}

func TestAggregate_NamelessCounterpartFallsBackToShortAddress(t *testing.T) {
	ledger := newFakeLedger()
	ledger.register(rootAddr, "alice")
	ledger.claimAgo(rootAddr, time.Hour)
	ledger.relations = []entity.TrustRelation{{Truster: rootAddr, Trustee: peerD}}
	ledger.claimAgo(peerD, 26*time.Hour)
	// peerD has no registered avatar at all.

	snapshot, err := testAggregator(t, ledger, 0).Aggregate(context.Background(), rootAddr)
	require.NoError(t, err)

	require.Len(t, snapshot.Connections, 1)
	assert.Equal(t, entity.ShortAddress(peerD), snapshot.Connections[0].Name)
}

func TestAggregate_OrderStableUnderConcurrency(t *testing.T) {
	ledger := newFakeLedger()
	ledger.register(rootAddr, "alice")
	ledger.claimAgo(rootAddr, time.Hour)

	var want []common.Address
	for i := 0; i < 32; i++ {
		var peer common.Address
		peer[18] = 0x10
		peer[19] = byte(i + 1)
		want = append(want, peer)
		ledger.relations = append(ledger.relations, entity.TrustRelation{Truster: rootAddr, Trustee: peer})
		ledger.claimAgo(peer, time.Duration(i+1)*time.Hour)
	}

	for _, workers := range []int{0, 1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			snapshot, err := testAggregator(t, ledger, workers).Aggregate(context.Background(), rootAddr)
			require.NoError(t, err)
			require.Len(t, snapshot.Connections, len(want))
			for i, addr := range want {
				assert.Equal(t, addr, snapshot.Connections[i].Address, "position %d", i)
			}
		})
	}
}

func TestAggregate_NoCounterparts(t *testing.T) {
	ledger := newFakeLedger()
	ledger.register(rootAddr, "alice")
	ledger.claimAgo(rootAddr, time.Hour)

	snapshot, err := testAggregator(t, ledger, 4).Aggregate(context.Background(), rootAddr)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Connections)
}
