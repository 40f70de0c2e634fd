package push

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"github.com/katatrina/call-notifier/internal/notification"
	"github.com/rs/zerolog/log"
)

var ErrEmptyToken = errors.New("push request has no device token")

// MessagingClient is the subset of *messaging.Client used to submit messages.
type MessagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
	SendDryRun(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMSender delivers push requests through Firebase Cloud Messaging.
type FCMSender struct {
	client MessagingClient
	dryRun bool
}

func NewFCMSender(client MessagingClient, dryRun bool) *FCMSender {
	return &FCMSender{
		client: client,
		dryRun: dryRun,
	}
}

// BuildMessage converts a push request into an FCM message.
func BuildMessage(req notification.PushRequest) *messaging.Message {
	message := &messaging.Message{
		Token: req.Token,
		Notification: &messaging.Notification{
			Title: req.Title,
			Body:  req.Body,
		},
		Data: req.Data,
	}

	if req.AndroidPriority != "" {
		message.Android = &messaging.AndroidConfig{
			Priority: req.AndroidPriority,
		}
	}

	if req.APNSSound != "" {
		message.APNS = &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: req.APNSSound,
				},
			},
		}
	}

	return message
}

// Send submits req and returns the message ID assigned by FCM.
func (s *FCMSender) Send(ctx context.Context, req notification.PushRequest) (string, error) {
	if req.Token == "" {
		return "", ErrEmptyToken
	}

	message := BuildMessage(req)

	var (
		messageID string
		err       error
	)
	if s.dryRun {
		messageID, err = s.client.SendDryRun(ctx, message)
	} else {
		messageID, err = s.client.Send(ctx, message)
	}
	if err != nil {
		log.Error().
			Err(err).
			Str("reason", ErrorReason(err)).
			Bool("dry_run", s.dryRun).
			Msg("failed to send FCM message")
		return "", fmt.Errorf("failed to send FCM message: %w", err)
	}

	log.Info().
		Str("message_id", messageID).
		Bool("dry_run", s.dryRun).
		Msg("FCM message sent")

	return messageID, nil
}

// ErrorReason names the FCM error class of err for logging.
func ErrorReason(err error) string {
	switch {
	case err == nil:
		return ""
	case messaging.IsUnregistered(err):
		return "unregistered"
	case messaging.IsInvalidArgument(err):
		return "invalid_argument"
	case messaging.IsQuotaExceeded(err):
		return "quota_exceeded"
	case messaging.IsSenderIDMismatch(err):
		return "sender_id_mismatch"
	case messaging.IsThirdPartyAuthError(err):
		return "third_party_auth_error"
	case messaging.IsUnavailable(err):
		return "unavailable"
	case messaging.IsInternal(err):
		return "internal"
	default:
		return "unknown"
	}
}
