package notification

import (
	"context"
	"fmt"

	"github.com/katatrina/call-notifier/internal/calls"
	"github.com/rs/zerolog/log"
)

// IncomingCallBody formats the notification body shown to the callee.
func IncomingCallBody(callerName string) string {
	if callerName == "" {
		callerName = UnknownCallerName
	}

	return fmt.Sprintf("%s is calling you", callerName)
}

// Plan returns the push requests to send for a newly created call.
// It returns nothing when the callee is unknown or has no token.
func Plan(call calls.Call, callee *calls.User) []PushRequest {
	if !callee.HasToken() {
		return nil
	}

	return []PushRequest{
		{
			Token: callee.FCMToken,
			Title: IncomingCallTitle,
			Body:  IncomingCallBody(call.CallerName),
			Data: map[string]string{
				DataKeyType:   IncomingCallType,
				DataKeyCallID: call.ID,
			},
			AndroidPriority: AndroidPriorityHigh,
			APNSSound:       APNSSoundDefault,
		},
	}
}

// NotifyIncomingCall looks up the callee of call and pushes an incoming call notification to their device.
// A callee without a token is not an error.
func (s *NotificationService) NotifyIncomingCall(ctx context.Context, call calls.Call) (Result, error) {
	if err := call.Validate(); err != nil {
		return Result{}, err
	}

	callee, err := s.users.GetUser(ctx, call.CalleeID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get callee %s: %w", call.CalleeID, err)
	}

	requests := Plan(call, callee)
	if len(requests) == 0 {
		log.Debug().
			Str("call_id", call.ID).
			Str("callee_id", call.CalleeID).
			Msg("callee has no push token, skipping notification")
		return Result{}, nil
	}

	var result Result
	for _, req := range requests {
		messageID, err := s.sender.Send(ctx, req)
		if err != nil {
			return Result{}, fmt.Errorf("failed to send incoming call notification: %w", err)
		}

		result = Result{Sent: true, MessageID: messageID}
	}

	log.Info().
		Str("call_id", call.ID).
		Str("callee_id", call.CalleeID).
		Str("message_id", result.MessageID).
		Msg("incoming call notification sent")

	return result, nil
}
