package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	forexwatch "github.com/raykavin/forexwatch"
	"github.com/raykavin/forexwatch/pkg/analysis"
	"github.com/raykavin/forexwatch/pkg/config"
	"github.com/raykavin/forexwatch/pkg/core"
	"github.com/raykavin/forexwatch/pkg/feed"
	"github.com/raykavin/forexwatch/pkg/notification"
	"github.com/raykavin/forexwatch/pkg/storage"
	"github.com/raykavin/forexwatch/pkg/voice"
)

// Command line flags
var (
	// Replay command flags
	replaySteps int
	replaySeed  int64

	// Status command flags
	statusPair  string
	statusType  string
	statusSince string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "forexwatch",
		Short:   "Forex monitoring agent with voice alerts",
		Version: "1.0.0",
	}

	rootCmd.AddCommand(buildRunCmd())
	rootCmd.AddCommand(buildReplayCmd())
	rootCmd.AddCommand(buildStatusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the monitoring agent",
		RunE:  runAgent,
	}
}

func runAgent(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	alertLog, err := storage.FromFile(cfg.StoragePath)
	if err != nil {
		return err
	}
	defer alertLog.Close()

	options := []forexwatch.Option{
		forexwatch.WithStorage(alertLog),
		forexwatch.WithNotifier(notification.NewLogNotifier(forexwatch.DefaultLog)),
		forexwatch.WithNewsFeeder(feed.NewNewsSimulator(
			feed.WithNewsInterval(cfg.Settings.NewsInterval),
		)),
	}

	var caller core.Caller
	if cfg.Voice.Configured() {
		caller, err = voice.NewClient(cfg.Voice, forexwatch.DefaultLog)
		if err != nil {
			return err
		}
		options = append(options, forexwatch.WithVoiceCaller(caller))
	} else {
		forexwatch.DefaultLog.Warn("Voice provider not configured, alerts stay on messaging channels")
	}

	if cfg.Mail.Configured() {
		options = append(options, forexwatch.WithNotifier(notification.NewMail(cfg.Mail)))
	}

	if cfg.Analysis.Configured() {
		analyzer, err := analysis.NewClient(cfg.Analysis, forexwatch.DefaultLog)
		if err != nil {
			return err
		}
		options = append(options, forexwatch.WithAnalyzer(analyzer))
	}

	feeder := feed.NewSimulator(cfg.Settings.Pairs, feed.WithInterval(cfg.Settings.PollInterval))

	agent, err := forexwatch.NewAgent(cfg.Settings, feeder, options...)
	if err != nil {
		return err
	}

	logBalance(ctx, caller)

	return agent.Run(ctx)
}

// logBalance surfaces the voice provider credit at startup, the usual
// suspect when calls stop going through
func logBalance(ctx context.Context, caller core.Caller) {
	if caller == nil {
		return
	}

	balanceCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	balance, err := caller.Balance(balanceCtx)
	if err != nil {
		forexwatch.DefaultLog.WithError(err).Warn("Voice provider balance check failed")
		return
	}

	forexwatch.DefaultLog.Infof("Voice provider balance: %s", balance)
}
