// Package notification provides implementations for various notification services
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"slices"

	"github.com/raykavin/forexwatch/pkg/core"
	"github.com/raykavin/forexwatch/pkg/dispatch"
	"github.com/raykavin/forexwatch/pkg/market"
	"github.com/raykavin/forexwatch/pkg/voice"
	log "github.com/sirupsen/logrus"
	tb "gopkg.in/tucnak/telebot.v2"
)

// Telegram implements the core.NotifierWithStart interface
type telegram struct {
	settings    *core.Settings
	dispatcher  *dispatch.Dispatcher
	tracker     *market.Tracker
	storage     core.AlertStorage
	caller      core.Caller
	defaultMenu *tb.ReplyMarkup
	client      *tb.Bot
}

// Option is a function that configures a telegram instance
type Option func(telegram *telegram)

// WithAlertStorage enables the /history command
func WithAlertStorage(storage core.AlertStorage) Option {
	return func(t *telegram) {
		t.storage = storage
	}
}

// WithCaller enables the /balance command against the voice provider
func WithCaller(caller core.Caller) Option {
	return func(t *telegram) {
		t.caller = caller
	}
}

// NewTelegram creates and initializes a new Telegram service
func NewTelegram(dispatcher *dispatch.Dispatcher, tracker *market.Tracker, settings *core.Settings, options ...Option) (core.NotifierWithStart, error) {
	// Initialize menu and poller
	menu := &tb.ReplyMarkup{ResizeReplyKeyboard: true}
	poller := &tb.LongPoller{Timeout: 10 * time.Second}

	// Create user authorization middleware
	userMiddleware := createAuthMiddleware(poller, settings)

	// Initialize bot client
	client, err := tb.NewBot(tb.Settings{
		ParseMode: tb.ModeMarkdown,
		Token:     settings.Telegram.Token,
		Poller:    userMiddleware,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	// Setup keyboard and commands
	setupKeyboard(menu)
	if err := setupCommands(client); err != nil {
		return nil, fmt.Errorf("failed to set commands: %w", err)
	}

	bot := &telegram{
		dispatcher:  dispatcher,
		tracker:     tracker,
		client:      client,
		settings:    settings,
		defaultMenu: menu,
	}

	for _, option := range options {
		option(bot)
	}

	registerHandlers(client, bot)

	return bot, nil
}

// createAuthMiddleware creates a middleware to validate authorized users
func createAuthMiddleware(poller *tb.LongPoller, settings *core.Settings) *tb.MiddlewarePoller {
	return tb.NewMiddlewarePoller(poller, func(u *tb.Update) bool {
		if u.Message == nil || u.Message.Sender == nil {
			log.Error("message or sender is nil ", u)
			return false
		}

		if slices.Contains(settings.Telegram.Users, int(u.Message.Sender.ID)) {
			return true
		}

		log.Error("unauthorized user ", u.Message.Sender.ID)
		return false
	})
}

// setupKeyboard configures the reply keyboard layout
func setupKeyboard(menu *tb.ReplyMarkup) {
	var (
		statusBtn  = menu.Text("/status")
		pairsBtn   = menu.Text("/pairs")
		historyBtn = menu.Text("/history")
		muteBtn    = menu.Text("/mute")
		resumeBtn  = menu.Text("/resume")
		balanceBtn = menu.Text("/balance")
	)

	menu.Reply(
		menu.Row(statusBtn, pairsBtn, historyBtn),
		menu.Row(muteBtn, resumeBtn, balanceBtn),
	)
}

// setupCommands configures available bot commands
func setupCommands(client *tb.Bot) error {
	return client.SetCommands([]tb.Command{
		{Text: "help", Description: "Display help instructions"},
		{Text: "status", Description: "Monitored pairs and last alerts"},
		{Text: "pairs", Description: "List monitored currency pairs"},
		{Text: "history", Description: "Recent dispatched alerts"},
		{Text: "mute", Description: "Suppress alert delivery"},
		{Text: "resume", Description: "Resume alert delivery"},
		{Text: "balance", Description: "Voice provider account balance"},
	})
}

// registerHandlers registers all command handlers
func registerHandlers(client *tb.Bot, bot *telegram) {
	client.Handle("/help", bot.HelpHandle)
	client.Handle("/status", bot.StatusHandle)
	client.Handle("/pairs", bot.PairsHandle)
	client.Handle("/history", bot.HistoryHandle)
	client.Handle("/mute", bot.MuteHandle)
	client.Handle("/resume", bot.ResumeHandle)
	client.Handle("/balance", bot.BalanceHandle)
}

// Start begins the Telegram bot and notifies all authorized users
func (t *telegram) Start() {
	go t.client.Start()
	t.sendMessageWithOptions("Forex monitoring agent initialized.", t.defaultMenu)
}

// Notify sends a message to all authorized users
func (t *telegram) Notify(text string) {
	for _, user := range t.settings.Telegram.Users {
		_, err := t.client.Send(&tb.User{ID: int64(user)}, text)
		if err != nil {
			log.WithError(err).Error("failed to send notification")
		}
	}
}

// sendMessageWithOptions sends a message to all authorized users with additional options
func (t *telegram) sendMessageWithOptions(text string, options ...interface{}) {
	for _, user := range t.settings.Telegram.Users {
		_, err := t.client.Send(&tb.User{ID: int64(user)}, text, options...)
		if err != nil {
			log.WithError(err).Error("failed to send notification with options")
		}
	}
}

// sendMessage sends a message to a specific user
func (t *telegram) sendMessage(to *tb.User, text string, options ...interface{}) {
	_, err := t.client.Send(to, text, options...)
	if err != nil {
		log.WithError(err).Error("failed to send message")
	}
}

// HelpHandle displays available commands
func (t *telegram) HelpHandle(m *tb.Message) {
	commands, err := t.client.GetCommands()
	if err != nil {
		log.WithError(err).Error("failed to get commands")
		t.OnError(err)
		return
	}

	lines := make([]string, 0, len(commands))
	for _, command := range commands {
		lines = append(lines, fmt.Sprintf("/%s - %s", command.Text, command.Description))
	}

	t.sendMessage(m.Sender, strings.Join(lines, "\n"))
}

// StatusHandle shows the tracked state of every monitored pair
func (t *telegram) StatusHandle(m *tb.Message) {
	delivery := "active"
	if t.dispatcher.Muted() {
		delivery = "muted"
	}

	session := "closed"
	if t.settings.InSession(time.Now()) {
		session = "open"
	}

	message := fmt.Sprintf("*STATUS*\nDelivery: `%s`\nMarket: `%s`\n-----\n", delivery, session)
	for _, snapshot := range t.tracker.Snapshots() {
		lastAlert := "Never"
		if !snapshot.LastAlert.IsZero() {
			lastAlert = fmt.Sprintf("%ds ago", int(time.Since(snapshot.LastAlert).Seconds()))
		}
		message += fmt.Sprintf("%s: `%.4f` | vol `%.4f` | last alert %s\n",
			snapshot.Pair, snapshot.Price, snapshot.Volatility, lastAlert)
	}

	t.sendMessage(m.Sender, message)
}

// PairsHandle lists the monitored currency pairs
func (t *telegram) PairsHandle(m *tb.Message) {
	t.sendMessage(m.Sender, fmt.Sprintf("Monitoring: `%s`", strings.Join(t.settings.Pairs, "`, `")))
}

// HistoryHandle shows the most recent dispatched alerts
func (t *telegram) HistoryHandle(m *tb.Message) {
	if t.storage == nil {
		t.sendMessage(m.Sender, "Alert history is not enabled.")
		return
	}

	alerts, err := t.storage.Alerts(core.CreatedSince(time.Now().Add(-24 * time.Hour)))
	if err != nil {
		t.OnError(err)
		return
	}

	if len(alerts) == 0 {
		t.sendMessage(m.Sender, "No alerts in the last 24 hours.")
		return
	}

	const maxEntries = 10
	if len(alerts) > maxEntries {
		alerts = alerts[len(alerts)-maxEntries:]
	}

	lines := make([]string, 0, len(alerts))
	for _, alert := range alerts {
		lines = append(lines, fmt.Sprintf("`%s` %s", alert.CreatedAt.Format("15:04:05"), alert))
	}

	t.sendMessage(m.Sender, strings.Join(lines, "\n"))
}

// MuteHandle suppresses alert delivery
func (t *telegram) MuteHandle(m *tb.Message) {
	if t.dispatcher.Muted() {
		t.sendMessage(m.Sender, "Alerts are already muted.", t.defaultMenu)
		return
	}

	t.dispatcher.Mute()
	t.sendMessage(m.Sender, "Alerts muted.", t.defaultMenu)
}

// ResumeHandle re-enables alert delivery
func (t *telegram) ResumeHandle(m *tb.Message) {
	if !t.dispatcher.Muted() {
		t.sendMessage(m.Sender, "Alerts are already active.", t.defaultMenu)
		return
	}

	t.dispatcher.Resume()
	t.sendMessage(m.Sender, "Alerts resumed.", t.defaultMenu)
}

// BalanceHandle shows the voice provider account balance
func (t *telegram) BalanceHandle(m *tb.Message) {
	if t.caller == nil {
		t.sendMessage(m.Sender, "Voice calls are not configured.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	balance, err := t.caller.Balance(ctx)
	if err != nil {
		log.WithError(err).Error("failed to get balance")
		t.OnError(err)
		return
	}

	t.sendMessage(m.Sender, fmt.Sprintf("*BALANCE*\n`%s`", balance))
}

// OnAlert notifies users about a dispatched alert
func (t *telegram) OnAlert(alert core.Alert) {
	var title string

	switch alert.Type {
	case core.EventEmergencyPrice:
		title = fmt.Sprintf("🚨 EMERGENCY PRICE MOVEMENT - %s", alert.Pair)
	case core.EventPriceSpike:
		title = fmt.Sprintf("⚡ PRICE SPIKE - %s", alert.Pair)
	case core.EventBreakingNews:
		title = fmt.Sprintf("🔴 BREAKING NEWS - %s", alert.Pair)
	case core.EventNews:
		title = fmt.Sprintf("📰 NEWS - %s", alert.Pair)
	default:
		title = fmt.Sprintf("ℹ️ %s - %s", alert.Type, alert.Pair)
	}

	message := fmt.Sprintf("%s\n-----\n%s", title, alert.Message)
	t.Notify(message)
}

// OnError notifies users about errors
func (t *telegram) OnError(err error) {
	var sb strings.Builder
	sb.WriteString("🛑 ERROR\n")

	var callError *voice.CallError
	if errors.As(err, &callError) {
		sb.WriteString("-----\n")
		sb.WriteString("Voice call failed\n")
		if callError.StatusCode != 0 {
			fmt.Fprintf(&sb, "Status: %d\n", callError.StatusCode)
		}
		sb.WriteString("-----\n")
		sb.WriteString(callError.Err.Error())

		t.Notify(sb.String())
		return
	}

	sb.WriteString("-----\n")
	sb.WriteString(err.Error())

	t.Notify(sb.String())
}
