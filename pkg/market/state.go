// Package market keeps the rolling per-pair observation state used to
// classify price movements.
package market

import (
	"sync"
	"time"

	"github.com/raykavin/forexwatch/pkg/core"
	"gonum.org/v1/gonum/stat"
)

const (
	historyCap       = 100 // Observations kept before trimming
	historyTrim      = 50  // Observations kept after trimming
	volatilityWindow = 20  // Observations used for the volatility estimate
)

// PricePoint is a single stored observation
type PricePoint struct {
	Price float64
	Time  time.Time
}

// PairSnapshot is a read-only copy of the tracked state for one pair
type PairSnapshot struct {
	Pair       string
	Price      float64
	Volatility float64
	LastAlert  time.Time
	Samples    int
}

type pairState struct {
	price      float64
	history    []PricePoint
	volatility float64
	lastAlert  time.Time
}

// Tracker maintains rolling price history and volatility for every
// monitored pair
type Tracker struct {
	mu    sync.RWMutex
	pairs map[string]*pairState
	order []string
}

// NewTracker creates a tracker for the given pairs
func NewTracker(pairs []string) *Tracker {
	t := &Tracker{
		pairs: make(map[string]*pairState, len(pairs)),
		order: append([]string(nil), pairs...),
	}
	for _, pair := range pairs {
		t.pairs[pair] = &pairState{}
	}
	return t
}

// Observe records a tick, trims history and refreshes the volatility
// estimate over the observation window
func (t *Tracker) Observe(tick core.Tick) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.pairs[tick.Pair]
	if !ok {
		return core.ErrUnknownPair
	}

	state.price = tick.Price
	state.history = append(state.history, PricePoint{Price: tick.Price, Time: tick.Time})

	if len(state.history) > historyCap {
		state.history = append(state.history[:0:0], state.history[len(state.history)-historyTrim:]...)
	}

	state.volatility = volatility(state.history)

	return nil
}

// volatility is the population standard deviation over the most recent
// observations
func volatility(history []PricePoint) float64 {
	window := history
	if len(window) > volatilityWindow {
		window = window[len(window)-volatilityWindow:]
	}
	if len(window) < 2 {
		return 0
	}

	prices := make([]float64, len(window))
	for i, point := range window {
		prices[i] = point.Price
	}

	return stat.PopStdDev(prices, nil)
}

// MarkAlert records the dispatch time of the last alert for the pair
func (t *Tracker) MarkAlert(pair string, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if state, ok := t.pairs[pair]; ok {
		state.lastAlert = at
	}
}

// LastAlert returns the dispatch time of the last alert for the pair.
// The zero time means the pair never alerted.
func (t *Tracker) LastAlert(pair string) time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if state, ok := t.pairs[pair]; ok {
		return state.lastAlert
	}
	return time.Time{}
}

// Snapshot returns a copy of the state for one pair
func (t *Tracker) Snapshot(pair string) (PairSnapshot, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	state, ok := t.pairs[pair]
	if !ok {
		return PairSnapshot{}, core.ErrUnknownPair
	}
	return PairSnapshot{
		Pair:       pair,
		Price:      state.price,
		Volatility: state.volatility,
		LastAlert:  state.lastAlert,
		Samples:    len(state.history),
	}, nil
}

// Snapshots returns the state of every pair in configuration order
func (t *Tracker) Snapshots() []PairSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshots := make([]PairSnapshot, 0, len(t.order))
	for _, pair := range t.order {
		state := t.pairs[pair]
		snapshots = append(snapshots, PairSnapshot{
			Pair:       pair,
			Price:      state.price,
			Volatility: state.volatility,
			LastAlert:  state.lastAlert,
			Samples:    len(state.history),
		})
	}
	return snapshots
}
