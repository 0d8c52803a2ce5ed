// Package dispatch decides whether a classified event becomes an alert
// and fans it out to the configured channels.
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/raykavin/forexwatch/pkg/core"
	"github.com/raykavin/forexwatch/pkg/logger"
)

// Outcome describes what happened to a dispatched event
type Outcome int

const (
	OutcomeDelivered Outcome = iota
	OutcomeCooldown
	OutcomeOffHours
	OutcomeMuted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeCooldown:
		return "suppressed: cooldown"
	case OutcomeOffHours:
		return "suppressed: off-hours"
	case OutcomeMuted:
		return "suppressed: muted"
	default:
		return "unknown"
	}
}

// Dispatcher gates alerts and delivers the survivors.
// Gates apply in order: mute, per-pair cooldown, market hours.
type Dispatcher struct {
	settings *core.Settings
	storage  core.AlertStorage
	caller   core.Caller
	log      logger.Logger
	clock    func() time.Time

	mu        sync.Mutex
	muted     bool
	notifiers []core.Notifier
	lastAlert map[string]time.Time
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithCaller sets the voice call client
func WithCaller(caller core.Caller) Option {
	return func(d *Dispatcher) {
		d.caller = caller
	}
}

// WithStorage sets the alert log storage
func WithStorage(storage core.AlertStorage) Option {
	return func(d *Dispatcher) {
		d.storage = storage
	}
}

// WithClock overrides the time source, used in tests
func WithClock(clock func() time.Time) Option {
	return func(d *Dispatcher) {
		d.clock = clock
	}
}

// NewDispatcher creates a dispatcher for the given settings
func NewDispatcher(settings *core.Settings, log logger.Logger, options ...Option) *Dispatcher {
	d := &Dispatcher{
		settings:  settings,
		log:       log,
		clock:     time.Now,
		lastAlert: make(map[string]time.Time),
	}

	for _, option := range options {
		option(d)
	}

	return d
}

// AddNotifier registers a notification channel
func (d *Dispatcher) AddNotifier(notifier core.Notifier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifiers = append(d.notifiers, notifier)
}

// Mute suppresses all alert delivery until Resume is called
func (d *Dispatcher) Mute() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.muted = true
}

// Resume re-enables alert delivery
func (d *Dispatcher) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.muted = false
}

// Muted reports whether delivery is currently suppressed
func (d *Dispatcher) Muted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.muted
}

// Dispatch applies the gates and, if the event survives, notifies every
// channel, places the voice call when the priority qualifies, and
// persists the alert. The cooldown timestamp advances only on delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, event core.Event, message string) (Outcome, error) {
	now := d.clock()

	d.mu.Lock()
	if d.muted {
		d.mu.Unlock()
		return OutcomeMuted, nil
	}

	if last, ok := d.lastAlert[event.Pair]; ok && now.Sub(last) < d.settings.Cooldown {
		d.mu.Unlock()
		d.log.WithField("pair", event.Pair).Debug("cooldown active, suppressing alert")
		return OutcomeCooldown, nil
	}
	d.mu.Unlock()

	if !d.settings.InSession(now) {
		d.log.Debug("outside market hours, suppressing alert")
		return OutcomeOffHours, nil
	}

	alert := core.Alert{
		Type:       event.Type,
		Pair:       event.Pair,
		Price:      event.Price,
		Change:     event.Change,
		Volatility: event.Volatility,
		Headline:   event.Headline,
		Message:    message,
		CreatedAt:  now,
	}

	d.mu.Lock()
	notifiers := append([]core.Notifier(nil), d.notifiers...)
	d.lastAlert[event.Pair] = now
	d.mu.Unlock()

	for _, notifier := range notifiers {
		notifier.OnAlert(alert)
	}

	if d.caller != nil && event.Type.Priority() <= d.settings.VoiceCeiling {
		callID, err := d.caller.Call(ctx)
		if err != nil {
			d.log.WithError(err).Error("voice call failed")
			for _, notifier := range notifiers {
				notifier.OnError(err)
			}
		} else {
			alert.CallID = callID
			d.log.WithField("call_id", callID).Info("voice call initiated")
		}
	}

	if d.storage != nil {
		if err := d.storage.CreateAlert(&alert); err != nil {
			d.log.WithError(err).Error("failed to persist alert")
			return OutcomeDelivered, err
		}
	}

	return OutcomeDelivered, nil
}

// LastAlert returns the time the pair last alerted
func (d *Dispatcher) LastAlert(pair string) (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	last, ok := d.lastAlert[pair]
	return last, ok
}
