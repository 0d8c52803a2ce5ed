package market

import (
	"strings"

	"github.com/raykavin/forexwatch/pkg/core"
	"github.com/samber/lo"
)

// breakingKeywords escalate a headline to breaking news priority
var breakingKeywords = []string{"emergency", "crisis", "war", "disaster"}

// ClassifyHeadline maps a headline to its event type. Headlines carrying
// a crisis keyword escalate to breaking news; everything else is routine.
func ClassifyHeadline(headline string) core.EventType {
	lower := strings.ToLower(headline)

	isBreaking := lo.SomeBy(breakingKeywords, func(keyword string) bool {
		return strings.Contains(lower, keyword)
	})

	if isBreaking {
		return core.EventBreakingNews
	}
	return core.EventNews
}
