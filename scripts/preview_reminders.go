package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	app_service "circles-claim-reminder/internal/application/service"
	"circles-claim-reminder/internal/domain/entity"
	domain_service "circles-claim-reminder/internal/domain/service"
	"circles-claim-reminder/internal/infrastructure/config"
	"circles-claim-reminder/internal/infrastructure/logger"
	"circles-claim-reminder/internal/infrastructure/rpc"

	"go.uber.org/zap"
)

// Runs one aggregation pass against a live ledger endpoint and prints the
// ranked reminder list without dispatching anything.
func main() {
	rawInput := flag.String("address", "", "Root address to preview (required)")
	rpcURL := flag.String("rpc", "", "Circles RPC endpoint (defaults to configuration)")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall preview timeout")
	flag.Parse()

	if *rawInput == "" {
		fmt.Fprintln(os.Stderr, "usage: preview_reminders -address <hex address> [-rpc <url>]")
		os.Exit(2)
	}

	log, err := logger.NewLogger("warn", "development")
	if err != nil {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}
	if *rpcURL != "" {
		cfg.RPC.URL = *rpcURL
	}

	id, err := domain_service.NewInputNormalizer().Normalize(*rawInput)
	if err != nil {
		log.Fatal("Invalid identifier", zap.Error(err))
	}
	if id.Kind != entity.IdentifierAddress {
		log.Fatal("Handles need a name-service resolver, pass a hex address",
			zap.String("handle", id.Handle))
	}

	client := rpc.NewClient(&cfg.RPC)
	ledger := rpc.NewCirclesLedgerRepository(client, log)
	calculator := domain_service.NewAccrualCalculator(domain_service.AccrualParams{
		HourlyRate:     cfg.Accrual.HourlyRate,
		MaxAccrualDays: cfg.Accrual.MaxAccrualDays,
	})
	aggregator := app_service.NewAggregationApplicationService(
		ledger, calculator, domain_service.NewTrustGraphAggregator(), cfg, log)
	prioritizer := domain_service.NewReminderPrioritizer(cfg.Accrual.DailyUnit, cfg.Accrual.HourlyRate)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	snapshot, err := aggregator.Aggregate(ctx, id.Address)
	if err != nil {
		log.Fatal("Aggregation failed", zap.Error(err))
	}

	fmt.Printf("Root:        %s (%s)\n", snapshot.RootName, snapshot.Root.Hex())
	fmt.Printf("Balance:     %.1f CRC\n", snapshot.TotalBalance)
	if snapshot.UnclaimedKnown {
		fmt.Printf("Unclaimed:   %.1f CRC\n", snapshot.Unclaimed)
	} else {
		fmt.Printf("Unclaimed:   unknown\n")
	}
	fmt.Printf("Connections: %d\n\n", len(snapshot.Connections))

	reminders := prioritizer.Prioritize(snapshot)
	if len(reminders) == 0 {
		fmt.Println("Nobody needs a reminder right now.")
		return
	}

	for i, reminder := range reminders {
		marker := " "
		if reminder.Connection.Mutual {
			marker = "*"
		}
		fmt.Printf("%2d.%s [%s] %s\n", i+1, marker, reminder.Priority, reminder.Text)
	}
	fmt.Println("\n* = mutual trust")
}
