package forexwatch

import (
	"github.com/raykavin/forexwatch/pkg/core"
	"github.com/raykavin/forexwatch/pkg/notification"
)

// initializeNotifications sets up notification systems like Telegram
func initializeNotifications(agent *Agent, settings *core.Settings) error {
	if !settings.Telegram.Enabled {
		return nil
	}

	options := []notification.Option{}
	if agent.storage != nil {
		options = append(options, notification.WithAlertStorage(agent.storage))
	}
	if agent.caller != nil {
		options = append(options, notification.WithCaller(agent.caller))
	}

	telegram, err := notification.NewTelegram(agent.dispatcher, agent.tracker, settings, options...)
	if err != nil {
		return err
	}

	agent.telegram = telegram
	agent.dispatcher.AddNotifier(telegram)

	return nil
}
