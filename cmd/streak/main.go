package main

import (
	"context"
	"flag"
	"fmt"

	"build-streak-go/internal/common"
	"build-streak-go/internal/config"
	"build-streak-go/internal/notes"

	"go.uber.org/zap"
)

// streak is a read-only report: current on-chain streak state plus the note
// history for one address.
func main() {
	addressFlag := flag.String("address", "", "Wallet address to report on (required)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	if *addressFlag == "" {
		zap.L().Fatal("Missing required flag: --address")
	}
	address := notes.NormalizeAddress(*addressFlag)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services, err := common.InitializeReadOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	state, err := services.Chain.ReadStreak(ctx, address)
	if err != nil {
		zap.L().Fatal("Failed to read streak state", zap.Error(err))
	}

	common.PrintHeader(fmt.Sprintf("Streak report for %s", common.ShortAddress(address)), common.DefaultWidth)
	fmt.Printf("Streak count:  %d\n", state.StreakCount)
	fmt.Printf("Last log day:  %s\n", common.FormatDay(state.LastLogDay))

	// The token id only exists once a streak has been started.
	if state.StreakCount > 0 {
		tokenID, err := services.Chain.GetTokenID(ctx, address)
		if err != nil {
			zap.L().Warn("Failed to read token id", zap.Error(err))
		} else {
			fmt.Printf("Token id:      %s\n", tokenID.String())
		}
	}

	entries, err := services.Notes.List(ctx, address)
	if err != nil {
		zap.L().Fatal("Failed to read note history", zap.Error(err))
	}

	fmt.Printf("\nNotes (%d):\n", len(entries))
	for i, entry := range entries {
		prefix := common.BoxPrefix(i == len(entries)-1)
		note := entry.Note
		if note == "" {
			note = "(no note)"
		}
		fmt.Printf("%s%s  %s\n", prefix, entry.Date, note)
	}

	common.PrintFooter("Report complete", common.DefaultWidth)
}
