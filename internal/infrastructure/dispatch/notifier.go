// Package dispatch delivers one-time verification codes out of band.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tutor-radar/internal/infrastructure/smtp"
	"github.com/tutor-radar/internal/infrastructure/sns"
)

const codeSubject = "Your varsity verification code"

// Notifier delivers a verification code to an email address.
type Notifier interface {
	DeliverCode(ctx context.Context, email, code string) error
}

// New selects the notifier named by kind ("log", "smtp" or "sns").
func New(kind string, mailer smtp.Mailer, publisher sns.Publisher) (Notifier, error) {
	switch kind {
	case "", "log":
		return LogNotifier{}, nil
	case "smtp":
		if mailer == nil {
			return nil, fmt.Errorf("smtp notifier requires a mailer")
		}
		return MailNotifier{Mailer: mailer}, nil
	case "sns":
		if publisher == nil {
			return nil, fmt.Errorf("sns notifier requires a publisher")
		}
		return SNSNotifier{Publisher: publisher}, nil
	default:
		return nil, fmt.Errorf("unknown code notifier %q", kind)
	}
}

// LogNotifier only logs the code. Used until a real mail channel is configured.
type LogNotifier struct{}

func (LogNotifier) DeliverCode(ctx context.Context, email, code string) error {
	slog.InfoContext(ctx, "mock email: verification code", "email", email, "code", code)
	return nil
}

type MailNotifier struct {
	Mailer smtp.Mailer
}

func (n MailNotifier) DeliverCode(_ context.Context, email, code string) error {
	return n.Mailer.SendEmail(email, codeSubject, codeBody(code))
}

// SNSNotifier publishes the code to a topic; a subscriber owns the actual mail delivery.
type SNSNotifier struct {
	Publisher sns.Publisher
}

func (n SNSNotifier) DeliverCode(ctx context.Context, email, code string) error {
	return n.Publisher.Publish(ctx, codeSubject, codeBody(code), map[string]string{
		"email": email,
		"kind":  "varsity_verification",
	})
}

func codeBody(code string) string {
	return "Your verification code is " + code + ".\r\nEnter it on the dashboard to confirm your university email."
}
