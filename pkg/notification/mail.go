package notification

import (
	"fmt"
	"net/smtp"

	"github.com/raykavin/forexwatch/pkg/core"
	log "github.com/sirupsen/logrus"
)

// Mail handles email notifications for the application
type Mail struct {
	auth              smtp.Auth
	smtpServerPort    int
	smtpServerAddress string
	to                string
	from              string
}

// MailParams contains all parameters needed to initialize a Mail instance
type MailParams struct {
	SMTPServerPort    int
	SMTPServerAddress string
	To                string
	From              string
	Password          string
}

// Configured reports whether the parameters are enough to send mail
func (p MailParams) Configured() bool {
	return p.SMTPServerAddress != "" && p.From != "" && p.To != ""
}

// NewMail creates a new Mail instance with the provided parameters
func NewMail(params MailParams) Mail {
	return Mail{
		from:              params.From,
		to:                params.To,
		smtpServerPort:    params.SMTPServerPort,
		smtpServerAddress: params.SMTPServerAddress,
		auth: smtp.PlainAuth(
			"",
			params.From,
			params.Password,
			params.SMTPServerAddress,
		),
	}
}

// Notify sends an email notification with the given text
func (m Mail) Notify(text string) {
	serverAddress := fmt.Sprintf("%s:%d", m.smtpServerAddress, m.smtpServerPort)

	message := fmt.Sprintf(
		`To: "User" <%s>
From: "ForexWatch" <%s>
%s`,
		m.to,
		m.from,
		text,
	)

	err := smtp.SendMail(
		serverAddress,
		m.auth,
		m.from,
		[]string{m.to},
		[]byte(message),
	)

	if err != nil {
		log.WithError(err).Error("notification/mail: failed to send email")
	}
}

// OnAlert sends an alert notification with a subject per event type
func (m Mail) OnAlert(alert core.Alert) {
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
	}

	message := fmt.Sprintf("Subject: %s\n%s", title, alert.Message)
	m.Notify(message)
}

// OnError sends an error notification
func (m Mail) OnError(err error) {
	message := fmt.Sprintf("Subject: 🛑 ERROR\nError %s", err)
	m.Notify(message)
}
