package storage

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/katatrina/call-notifier/internal/calls"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errClientNotInitialized = errors.New("firestore client is not initialized")

// FirestoreStore reads user documents from Firestore.
type FirestoreStore struct {
	client          *firestore.Client
	usersCollection string
}

func NewFirestoreStore(client *firestore.Client, usersCollection string) *FirestoreStore {
	return &FirestoreStore{
		client:          client,
		usersCollection: usersCollection,
	}
}

// GetUser fetches a single user document. A missing document yields (nil, nil).
func (s *FirestoreStore) GetUser(ctx context.Context, userID string) (*calls.User, error) {
	if s.client == nil {
		return nil, errClientNotInitialized
	}

	snap, err := s.client.Collection(s.usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", s.usersCollection, userID, err)
	}

	user := calls.UserFromFields(snap.Ref.ID, snap.Data())
	return &user, nil
}
