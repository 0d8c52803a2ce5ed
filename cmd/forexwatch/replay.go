package main

import (
	"fmt"
	"os"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/raykavin/forexwatch/pkg/config"
	"github.com/raykavin/forexwatch/pkg/core"
	"github.com/raykavin/forexwatch/pkg/feed"
	"github.com/raykavin/forexwatch/pkg/market"
)

func buildReplayCmd() *cobra.Command {
	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a seeded market simulation and summarize movements",
		RunE:  runReplay,
	}

	replayCmd.Flags().IntVarP(&replaySteps, "steps", "n", 5000, "Number of simulation steps")
	replayCmd.Flags().Int64VarP(&replaySeed, "seed", "s", 42, "Random walk seed")

	return replayCmd
}

// runReplay drives the simulator without dispatching alerts: it walks
// every pair for the requested number of steps, then prints the change
// distribution and the final tracked state
func runReplay(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	simulator := feed.NewSimulator(cfg.Settings.Pairs, feed.WithSeed(replaySeed))
	tracker := market.NewTracker(cfg.Settings.Pairs)

	changes := make([]float64, 0, replaySteps*len(cfg.Settings.Pairs))
	var emergencies, spikes int

	bar := progressbar.Default(int64(replaySteps), "replaying")
	now := time.Now()

	for step := 0; step < replaySteps; step++ {
		for _, pair := range cfg.Settings.Pairs {
			tick, err := simulator.Step(pair, now.Add(time.Duration(step)*time.Second))
			if err != nil {
				return err
			}

			if err := tracker.Observe(tick); err != nil {
				return err
			}

			changes = append(changes, tick.Change)
			if eventType, ok := cfg.Settings.Thresholds.Classify(tick.Change); ok {
				switch eventType {
				case core.EventEmergencyPrice:
					emergencies++
				default:
					spikes++
				}
			}
		}

		_ = bar.Add(1)
	}

	fmt.Printf("\nChange distribution (%% per step, %d samples):\n", len(changes))
	hist := histogram.Hist(11, changes)
	if err := histogram.Fprint(os.Stdout, hist, histogram.Linear(40)); err != nil {
		return err
	}

	fmt.Printf("\nThreshold crossings: %d emergency, %d spike\n\n", emergencies, spikes)
	market.WriteReport(os.Stdout, tracker.Snapshots(), now)

	return nil
}
