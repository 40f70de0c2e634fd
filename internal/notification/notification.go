package notification

import (
	"context"

	"github.com/katatrina/call-notifier/internal/calls"
)

// UserStore resolves callees. GetUser returns (nil, nil) when the user does not exist.
type UserStore interface {
	GetUser(ctx context.Context, userID string) (*calls.User, error)
}

// Sender submits a push request to the messaging gateway and returns its message ID.
type Sender interface {
	Send(ctx context.Context, req PushRequest) (string, error)
}

type NotificationService struct {
	users  UserStore
	sender Sender
}

func NewNotificationService(users UserStore, sender Sender) *NotificationService {
	return &NotificationService{
		users:  users,
		sender: sender,
	}
}
