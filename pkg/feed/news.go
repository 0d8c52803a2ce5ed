package feed

import (
	"context"
	"math/rand"
	"time"

	"github.com/raykavin/forexwatch/pkg/core"
)

const defaultNewsProb = 0.02 // Probability of a headline per sampling interval

// Headline couples a sample headline with the pair it affects
type Headline struct {
	Text string
	Pair string
}

// sampleHeadlines is the rotation used by the simulated wire
var sampleHeadlines = []Headline{
	{"ECB announces emergency interest rate hike", "EUR/USD"},
	{"US inflation exceeds forecasts", "USD/JPY"},
	{"Political crisis deepens in the UK", "GBP/USD"},
	{"Bank of Japan policy intervention in FX market", "USD/JPY"},
	{"Fed signals pause in interest rate hikes", "EUR/USD"},
	{"Geopolitical war tensions escalate", "USD/CHF"},
	{"Natural disaster impacts major economy", "AUD/USD"},
	{"Central Bank of Kenya adjusts interest rates", "USD/KES"},
	{"South African inflation outlook worsens", "USD/ZAR"},
}

// NewsSimulator implements core.NewsFeeder with a sampled headline wire
type NewsSimulator struct {
	rng       *rand.Rand
	headlines []Headline
	interval  time.Duration
	prob      float64
}

// NewsOption configures a NewsSimulator
type NewsOption func(*NewsSimulator)

// WithNewsSeed makes the headline sampling deterministic
func WithNewsSeed(seed int64) NewsOption {
	return func(n *NewsSimulator) {
		n.rng = rand.New(rand.NewSource(seed))
	}
}

// WithNewsInterval overrides the sampling interval
func WithNewsInterval(interval time.Duration) NewsOption {
	return func(n *NewsSimulator) {
		n.interval = interval
	}
}

// WithNewsProbability overrides the per-interval headline probability
func WithNewsProbability(prob float64) NewsOption {
	return func(n *NewsSimulator) {
		n.prob = prob
	}
}

// WithHeadlines replaces the sample headline rotation
func WithHeadlines(headlines []Headline) NewsOption {
	return func(n *NewsSimulator) {
		n.headlines = headlines
	}
}

// NewNewsSimulator creates a simulated news source
func NewNewsSimulator(options ...NewsOption) *NewsSimulator {
	n := &NewsSimulator{
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		headlines: sampleHeadlines,
		interval:  5 * time.Second,
		prob:      defaultNewsProb,
	}

	for _, option := range options {
		option(n)
	}

	return n
}

// Sample draws at most one headline, honoring the event probability
func (n *NewsSimulator) Sample(at time.Time) (core.NewsItem, bool) {
	if n.rng.Float64() >= n.prob {
		return core.NewsItem{}, false
	}

	headline := n.headlines[n.rng.Intn(len(n.headlines))]
	return core.NewsItem{
		Headline: headline.Text,
		Pair:     headline.Pair,
		Time:     at,
	}, true
}

// NewsSubscription streams sampled headlines until the context is done
func (n *NewsSimulator) NewsSubscription(ctx context.Context) (chan core.NewsItem, chan error) {
	cnews := make(chan core.NewsItem)
	cerr := make(chan error)

	go func() {
		defer close(cnews)
		defer close(cerr)

		ticker := time.NewTicker(n.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				item, ok := n.Sample(now)
				if !ok {
					continue
				}

				select {
				case cnews <- item:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return cnews, cerr
}
