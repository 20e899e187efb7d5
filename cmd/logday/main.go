package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"build-streak-go/internal/chain"
	"build-streak-go/internal/common"
	"build-streak-go/internal/config"
	"build-streak-go/internal/streak"

	"go.uber.org/zap"
)

// logday submits a daily log (or starts a streak) for the wallet configured
// via CHAIN_PRIVATE_KEY. The heavy lifting — guards, write ordering, note
// append — runs through the synchronization controller, same as the app.
func main() {
	noteFlag := flag.String("note", "", "Optional note to attach to today's log (max 500 characters)")
	startFlag := flag.Bool("start", false, "Start a new streak instead of logging a day")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services, err := common.InitializeServices(ctx, cfg, nil)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	// This command signs locally, so a key submitter is mandatory.
	keySubmitter, ok := services.Submitter.(*chain.KeySubmitter)
	if !ok {
		zap.L().Fatal("CHAIN_PRIVATE_KEY must be set to submit transactions")
	}
	address := strings.ToLower(keySubmitter.From().Hex())

	controller := streak.NewController(services.Chain, services.Notes, address)

	view := controller.Refresh(ctx)
	if view.LastError != nil {
		zap.L().Fatal("Failed to load streak state",
			zap.String("kind", string(view.LastError.Kind)),
			zap.String("message", view.LastError.Message))
	}

	common.PrintHeader(fmt.Sprintf("Streak for %s", common.ShortAddress(address)), common.DefaultWidth)
	fmt.Printf("Streak count:  %d\n", view.StreakCount)
	fmt.Printf("Last log day:  %s\n", common.FormatDay(view.LastLogDay))
	fmt.Printf("Logged today:  %t\n", view.HasLoggedToday)

	if *startFlag {
		view = controller.StartStreak(ctx)
		if view.LastError != nil {
			zap.L().Fatal("Failed to start streak",
				zap.String("kind", string(view.LastError.Kind)),
				zap.String("message", view.LastError.Message))
		}
		if view.StreakCount == 0 {
			common.PrintFooter("Start skipped: streak already exists or state not ready", common.DefaultWidth)
			return
		}
		common.PrintFooter(fmt.Sprintf("Streak started: count is now %d", view.StreakCount), common.DefaultWidth)
		return
	}

	outcome, view := controller.LogDay(ctx, *noteFlag)
	switch outcome {
	case streak.LogConfirmed:
		common.PrintFooter(fmt.Sprintf("Day logged: streak is now %d", view.StreakCount), common.DefaultWidth)
	case streak.LogConfirmedNoteWriteFailed:
		common.PrintFooter(fmt.Sprintf("Day logged on chain (streak %d), but the note could not be saved", view.StreakCount), common.DefaultWidth)
	case streak.LogSkipped:
		common.PrintFooter("Nothing to do: already logged today or no active streak", common.DefaultWidth)
	default:
		zap.L().Fatal("Failed to log day",
			zap.String("kind", string(view.LastError.Kind)),
			zap.String("message", view.LastError.Message))
	}
}
