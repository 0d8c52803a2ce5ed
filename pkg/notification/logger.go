package notification

import (
	"github.com/raykavin/forexwatch/pkg/core"
	"github.com/raykavin/forexwatch/pkg/logger"
)

// LogNotifier writes alerts to the structured log. It keeps alerts
// visible when no external channel is configured.
type LogNotifier struct {
	log logger.Logger
}

// NewLogNotifier creates a notifier backed by the given logger
func NewLogNotifier(log logger.Logger) LogNotifier {
	return LogNotifier{log: log}
}

// Notify logs a plain message
func (l LogNotifier) Notify(text string) {
	l.log.Info(text)
}

// OnAlert logs a dispatched alert with its classification fields
func (l LogNotifier) OnAlert(alert core.Alert) {
	l.log.WithFields(map[string]any{
		"type": string(alert.Type),
		"pair": alert.Pair,
	}).Info(alert.String())
}

// OnError logs a delivery error
func (l LogNotifier) OnError(err error) {
	l.log.WithError(err).Error("alert delivery error")
}
