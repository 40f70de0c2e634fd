package trigger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/katatrina/call-notifier/internal/calls"
	"github.com/katatrina/call-notifier/internal/worker"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CallListener watches the calls collection and enqueues one notification task per new document.
type CallListener struct {
	client          *firestore.Client
	collection      string
	taskDistributor worker.TaskDistributor
	catchUpWindow   time.Duration
	now             func() time.Time
}

// NewCallListener creates a listener. Documents that already exist when the listener starts are
// dispatched only if they were created less than catchUpWindow ago.
func NewCallListener(client *firestore.Client, collection string, taskDistributor worker.TaskDistributor, catchUpWindow time.Duration) *CallListener {
	return &CallListener{
		client:          client,
		collection:      collection,
		taskDistributor: taskDistributor,
		catchUpWindow:   catchUpWindow,
		now:             time.Now,
	}
}

// Run blocks until ctx is canceled or the snapshot stream fails.
func (l *CallListener) Run(ctx context.Context) error {
	cutoff := l.now().Add(-l.catchUpWindow)

	it := l.client.Collection(l.collection).Snapshots(ctx)
	defer it.Stop()

	log.Info().
		Str("collection", l.collection).
		Time("cutoff", cutoff).
		Msg("listening for new calls")

	initial := true
	for {
		snap, err := it.Next()
		if err != nil {
			if ctx.Err() != nil || status.Code(err) == codes.Canceled {
				log.Info().Str("collection", l.collection).Msg("call listener stopped")
				return nil
			}
			return fmt.Errorf("failed to listen on %s: %w", l.collection, err)
		}

		for _, change := range snap.Changes {
			if !shouldDispatch(change, initial, cutoff) {
				continue
			}

			if err := l.dispatch(ctx, change.Doc.Ref.ID, change.Doc.Data()); err != nil {
				return err
			}
		}

		initial = false
	}
}

// shouldDispatch selects newly added documents. The first snapshot replays the whole
// collection, so there only documents created at or after cutoff qualify.
func shouldDispatch(change firestore.DocumentChange, initial bool, cutoff time.Time) bool {
	if change.Kind != firestore.DocumentAdded || change.Doc == nil {
		return false
	}

	if !initial {
		return true
	}

	return !change.Doc.CreateTime.Before(cutoff)
}

func (l *CallListener) dispatch(ctx context.Context, callID string, fields map[string]interface{}) error {
	call, err := calls.CallFromFields(callID, fields)
	if err != nil {
		log.Warn().
			Err(err).
			Str("call_id", callID).
			Msg("skipping malformed call record")
		return nil
	}

	err = l.taskDistributor.DistributeTaskNotifyIncomingCall(ctx, worker.NewPayloadNotifyIncomingCall(call))
	if err != nil && !errors.Is(err, worker.ErrDuplicateTask) {
		return fmt.Errorf("failed to distribute incoming call task for %s: %w", callID, err)
	}

	return nil
}
