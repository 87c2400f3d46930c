package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/alexmorbo/bttn-relay/application/port"
	"github.com/alexmorbo/bttn-relay/domain/button"
	"github.com/alexmorbo/bttn-relay/domain/remote"
	"github.com/alexmorbo/bttn-relay/domain/token"
	"github.com/alexmorbo/bttn-relay/pkg/logger"
)

// minFieldLength is counted in characters, not bytes.
const minFieldLength = 4

const (
	msgNoSMSBody        = "Error: No SMS message to send - check configuration"
	msgNoSMSNumber      = "Error: No target phone number for SMS - check configuration"
	msgNoCallURL        = "Error: No URL for the call - check configuration"
	msgNoCallNumber     = "Error: No target phone number for call - check configuration"
	msgTelephonyDown    = "Error: Unable to communicate with Twilio API endpoint"
	msgTelephonyRefused = "Error: Receive Exception from Twilio API"
)

// Dispatcher performs the outbound side of a press. SMS and call failures are
// reported to the room as Markdown and returned to the caller for logging.
type Dispatcher struct {
	messaging port.MessagingClient
	telephony port.TelephonyClient
	codec     *token.Codec
	publicURL string
	logger    *slog.Logger
}

func NewDispatcher(
	messaging port.MessagingClient,
	telephony port.TelephonyClient,
	codec *token.Codec,
	publicURL string,
	log *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		messaging: messaging,
		telephony: telephony,
		codec:     codec,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    log.With("component", "dispatcher"),
	}
}

// SendText posts the update to the button's room. Empty updates are skipped.
func (d *Dispatcher) SendText(ctx context.Context, b *button.Button, update button.Update) error {
	if update.IsEmpty() {
		return nil
	}
	if err := d.messaging.PostMessage(ctx, b.RoomID(), update); err != nil {
		actionsDispatchedCounter("message", "error").Inc()
		return fmt.Errorf("post message: %w", err)
	}
	actionsDispatchedCounter("message", "ok").Inc()
	return nil
}

func (d *Dispatcher) SendSMS(ctx context.Context, b *button.Button, spec button.SMSSpec) error {
	if utf8.RuneCountInString(spec.Message) < minFieldLength {
		d.reportInvalid(ctx, b, "sms", msgNoSMSBody)
		return button.ErrEmptyMessage
	}
	if len(spec.Numbers) == 0 {
		d.reportInvalid(ctx, b, "sms", msgNoSMSNumber)
		return button.ErrNoNumber
	}

	from := d.sourceNumber(b, spec.From, spec.Numbers)
	for _, number := range spec.Numbers {
		if err := d.telephony.SendSMS(ctx, from, number, spec.Message); err != nil {
			d.reportFailure(ctx, b, "sms", number, err)
			return fmt.Errorf("send sms to %s: %w", number, err)
		}
	}

	actionsDispatchedCounter("sms", "ok").Inc()
	d.notify(ctx, b, fmt.Sprintf("SMS '%s' has been sent to '%s'", spec.Message, strings.Join(spec.Numbers, ", ")))
	return nil
}

// PlaceCall dials every number. Without a configured url the callee is
// pointed back at this relay's /call route for the button.
func (d *Dispatcher) PlaceCall(ctx context.Context, b *button.Button, spec button.CallSpec) error {
	callbackURL := spec.URL
	if utf8.RuneCountInString(callbackURL) < minFieldLength {
		if d.publicURL == "" {
			d.reportInvalid(ctx, b, "call", msgNoCallURL)
			return button.ErrNoCallbackURL
		}
		callbackURL = d.publicURL + "/call/" + d.codec.Sign(b.Name(), token.ActionCall)
	}
	if len(spec.Numbers) == 0 {
		d.reportInvalid(ctx, b, "call", msgNoCallNumber)
		return button.ErrNoNumber
	}

	from := d.sourceNumber(b, spec.From, spec.Numbers)
	for _, number := range spec.Numbers {
		if err := d.telephony.PlaceCall(ctx, from, number, callbackURL); err != nil {
			d.reportFailure(ctx, b, "call", number, err)
			return fmt.Errorf("call %s: %w", number, err)
		}
		actionsDispatchedCounter("call", "ok").Inc()
		d.notify(ctx, b, fmt.Sprintf("Calling '%s'", number))
	}
	return nil
}

func (d *Dispatcher) sourceNumber(b *button.Button, from string, numbers []string) string {
	if from != "" {
		return from
	}
	if b.CallerID() != "" {
		return b.CallerID()
	}
	return numbers[0]
}

func (d *Dispatcher) reportInvalid(ctx context.Context, b *button.Button, kind, message string) {
	actionsDispatchedCounter(kind, "invalid").Inc()
	d.logger.Error("Action not dispatched",
		logger.Event("action_invalid",
			logger.Button(b.Name()),
			slog.String("kind", kind),
			slog.String("reason", message),
		),
	)
	d.notify(ctx, b, message)
}

func (d *Dispatcher) reportFailure(ctx context.Context, b *button.Button, kind, number string, err error) {
	actionsDispatchedCounter(kind, "error").Inc()
	d.logger.Error("Action dispatch failed",
		logger.Event("action_failed",
			logger.Button(b.Name()),
			slog.String("kind", kind),
			slog.String("number", number),
			logger.Err(err),
		),
	)

	message := msgTelephonyRefused
	if errors.Is(err, remote.ErrTransport) {
		message = msgTelephonyDown
	}
	d.notify(ctx, b, message)
}

// notify posts a Markdown status line. Failures are only logged.
func (d *Dispatcher) notify(ctx context.Context, b *button.Button, markdown string) {
	if err := d.messaging.PostMessage(ctx, b.RoomID(), button.Update{Markdown: markdown}); err != nil {
		d.logger.Warn("Failed to post notification",
			logger.Button(b.Name()),
			logger.Err(err),
		)
	}
}
