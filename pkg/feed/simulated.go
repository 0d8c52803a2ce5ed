package feed

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/raykavin/forexwatch/pkg/core"
)

const (
	defaultWalkStep   = 0.003 // Max absolute fractional step of the random walk
	defaultShockProb  = 0.05  // Probability of a significant movement per step
	defaultShockMin   = 0.01  // Min absolute fractional shock
	defaultShockMax   = 0.05  // Max absolute fractional shock
	defaultSimMinimum = 0.8   // Initial price range lower bound
	defaultSimMaximum = 1.2   // Initial price range upper bound
)

// Simulator implements core.Feeder with a seeded random walk.
// Prices move a fraction of a percent per step and occasionally take a
// shock large enough to cross the alert thresholds.
type Simulator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	prices   map[string]float64
	interval time.Duration
}

// SimulatorOption configures a Simulator
type SimulatorOption func(*Simulator)

// WithSeed makes the walk deterministic, used in tests and replays
func WithSeed(seed int64) SimulatorOption {
	return func(s *Simulator) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// WithInterval overrides the step interval of the quote stream
func WithInterval(interval time.Duration) SimulatorOption {
	return func(s *Simulator) {
		s.interval = interval
	}
}

// NewSimulator creates a simulated quote source for the given pairs
func NewSimulator(pairs []string, options ...SimulatorOption) *Simulator {
	s := &Simulator{
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		prices:   make(map[string]float64, len(pairs)),
		interval: 500 * time.Millisecond,
	}

	for _, option := range options {
		option(s)
	}

	for _, pair := range pairs {
		s.prices[pair] = defaultSimMinimum + s.rng.Float64()*(defaultSimMaximum-defaultSimMinimum)
	}

	return s
}

// LastQuote returns the current simulated price for the pair
func (s *Simulator) LastQuote(_ context.Context, pair string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	price, ok := s.prices[pair]
	if !ok {
		return 0, fmt.Errorf("%w: %s", core.ErrUnknownPair, pair)
	}
	return price, nil
}

// Step advances the walk for one pair and returns the resulting tick
func (s *Simulator) Step(pair string, at time.Time) (core.Tick, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := s.prices[pair]
	if !ok {
		return core.Tick{}, fmt.Errorf("%w: %s", core.ErrUnknownPair, pair)
	}

	// Normal movement, uniform in [-walkStep, walkStep]
	change := (s.rng.Float64()*2 - 1) * defaultWalkStep

	// Occasionally create a significant event
	if s.rng.Float64() < defaultShockProb {
		change = defaultShockMin + s.rng.Float64()*(defaultShockMax-defaultShockMin)
		if s.rng.Intn(2) == 0 {
			change = -change
		}
	}

	price := last * (1 + change)
	s.prices[pair] = price

	return core.Tick{
		Pair:   pair,
		Price:  price,
		Change: change * 100,
		Time:   at,
	}, nil
}

// TicksSubscription streams simulated quotes until the context is done
func (s *Simulator) TicksSubscription(ctx context.Context, pair string) (chan core.Tick, chan error) {
	cticks := make(chan core.Tick)
	cerr := make(chan error)

	go func() {
		defer close(cticks)
		defer close(cerr)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				tick, err := s.Step(pair, now)
				if err != nil {
					cerr <- err
					return
				}

				select {
				case cticks <- tick:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return cticks, cerr
}
