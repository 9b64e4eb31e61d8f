// Package notify sends roster-change confirmations to students.
package notify

import (
	"context"
	"fmt"
	"time"

	awsclient "mergington-activities/internal/common/aws"
	apperrors "mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// Notifier is told about every successful roster change. Implementations
// must not fail the request: delivery problems are theirs to log.
type Notifier interface {
	Enrolled(ctx context.Context, activity, email string)
	Withdrawn(ctx context.Context, activity, email string)
}

// NopNotifier discards every event.
type NopNotifier struct{}

func (NopNotifier) Enrolled(context.Context, string, string)  {}
func (NopNotifier) Withdrawn(context.Context, string, string) {}

type Config struct {
	FromEmail string
	Timeout   time.Duration
}

// SESNotifier emails a plain-text confirmation through Amazon SES.
type SESNotifier struct {
	config *Config
	client awsclient.SESService
	logger logger.Logger
}

func NewSESNotifier(config *Config, client awsclient.SESService, log logger.Logger) *SESNotifier {
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	return &SESNotifier{
		config: config,
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "notify", "channel": "ses"}),
	}
}

func (n *SESNotifier) Enrolled(ctx context.Context, activity, email string) {
	subject := fmt.Sprintf("You're signed up for %s", activity)
	body := fmt.Sprintf("Hi,\n\nYou are now signed up for %s at Mergington High School.\n\nSee you there!\n", activity)
	n.deliver(ctx, email, subject, body)
}

func (n *SESNotifier) Withdrawn(ctx context.Context, activity, email string) {
	subject := fmt.Sprintf("You've left %s", activity)
	body := fmt.Sprintf("Hi,\n\nYou have been unregistered from %s at Mergington High School.\n", activity)
	n.deliver(ctx, email, subject, body)
}

func (n *SESNotifier) deliver(ctx context.Context, to, subject, body string) {
	ctx, cancel := context.WithTimeout(ctx, n.config.Timeout)
	defer cancel()

	out, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.config.FromEmail),
	})
	if err != nil {
		stdErr := apperrors.NewNotificationSendFailedError("ses", err)
		n.logger.Error("notification failed", map[string]interface{}{
			"to":        to,
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
		})
		return
	}

	n.logger.Debug("notification sent", map[string]interface{}{
		"to":        to,
		"messageId": aws.ToString(out.MessageId),
	})
}
