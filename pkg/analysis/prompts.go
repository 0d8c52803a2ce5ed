package analysis

import (
	"fmt"

	"github.com/raykavin/forexwatch/pkg/core"
)

const systemPrompt = "You are a forex market analyst. Answer with a short, " +
	"plain-language assessment suitable for reading aloud over a phone call. " +
	"No markdown, no lists."

// buildPrompt renders the event into the inference prompt
func buildPrompt(event core.Event) string {
	if event.IsNews() {
		return fmt.Sprintf(
			"Generate breaking Forex news alert. Currency pair: %s. "+
				"Headline: '%s'. "+
				"Analyze potential market impact and provide trading recommendation:",
			event.Pair, event.Headline,
		)
	}

	return fmt.Sprintf(
		"Generate urgent Forex trading alert. Currency pair: %s. "+
			"Price movement: %.2f%% in last minute. "+
			"Current price: %.4f. Volatility: %.4f. "+
			"Provide concise analysis and recommendation:",
		event.Pair, event.Change, event.Price, event.Volatility,
	)
}
