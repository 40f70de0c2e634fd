package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/katatrina/call-notifier/internal/calls"
)

type fakeUserStore struct {
	users   map[string]*calls.User
	err     error
	lookups []string
}

func (f *fakeUserStore) GetUser(_ context.Context, userID string) (*calls.User, error) {
	f.lookups = append(f.lookups, userID)
	if f.err != nil {
		return nil, f.err
	}
	return f.users[userID], nil
}

type fakeSender struct {
	sent []PushRequest
	err  error
}

func (f *fakeSender) Send(_ context.Context, req PushRequest) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, req)
	return "projects/demo/messages/1", nil
}

func newService(users map[string]*calls.User) (*NotificationService, *fakeUserStore, *fakeSender) {
	store := &fakeUserStore{users: users}
	sender := &fakeSender{}
	return NewNotificationService(store, sender), store, sender
}

func TestIncomingCallBody(t *testing.T) {
	tests := []struct {
		callerName string
		want       string
	}{
		{"Alice", "Alice is calling you"},
		{"", "Someone is calling you"},
		{"Dr. Bob", "Dr. Bob is calling you"},
	}

	for _, tt := range tests {
		if got := IncomingCallBody(tt.callerName); got != tt.want {
			t.Errorf("IncomingCallBody(%q) = %q, want %q", tt.callerName, got, tt.want)
		}
	}
}

func TestPlan(t *testing.T) {
	call := calls.Call{ID: "c123", CalleeID: "u1", CallerName: "Alice"}

	t.Run("callee with token", func(t *testing.T) {
		reqs := Plan(call, &calls.User{ID: "u1", FCMToken: "tok-abc"})
		if len(reqs) != 1 {
			t.Fatalf("Plan() returned %d requests, want 1", len(reqs))
		}
		req := reqs[0]
		if req.Token != "tok-abc" {
			t.Errorf("Token = %q", req.Token)
		}
		if req.Title != "Incoming call" {
			t.Errorf("Title = %q", req.Title)
		}
		if req.Body != "Alice is calling you" {
			t.Errorf("Body = %q", req.Body)
		}
		if req.Data["type"] != "incoming_call" || req.Data["callId"] != "c123" || len(req.Data) != 2 {
			t.Errorf("Data = %v", req.Data)
		}
		if req.AndroidPriority != "high" {
			t.Errorf("AndroidPriority = %q", req.AndroidPriority)
		}
		if req.APNSSound != "default" {
			t.Errorf("APNSSound = %q", req.APNSSound)
		}
	})

	t.Run("callee without token", func(t *testing.T) {
		if reqs := Plan(call, &calls.User{ID: "u1"}); len(reqs) != 0 {
			t.Errorf("Plan() = %v, want none", reqs)
		}
	})

	t.Run("unknown callee", func(t *testing.T) {
		if reqs := Plan(call, nil); len(reqs) != 0 {
			t.Errorf("Plan() = %v, want none", reqs)
		}
	})

	t.Run("call id is copied verbatim", func(t *testing.T) {
		odd := calls.Call{ID: "Call_ID with spaces-ÄÖ", CalleeID: "u1"}
		reqs := Plan(odd, &calls.User{FCMToken: "t"})
		if reqs[0].Data["callId"] != odd.ID {
			t.Errorf("callId = %q, want %q", reqs[0].Data["callId"], odd.ID)
		}
	})
}

func TestNotifyIncomingCall(t *testing.T) {
	ctx := context.Background()

	t.Run("sends to callee token", func(t *testing.T) {
		svc, store, sender := newService(map[string]*calls.User{
			"u1": {ID: "u1", FCMToken: "tok-abc"},
		})

		result, err := svc.NotifyIncomingCall(ctx, calls.Call{ID: "c123", CalleeID: "u1", CallerName: "Alice"})
		if err != nil {
			t.Fatalf("NotifyIncomingCall() error = %v", err)
		}
		if !result.Sent || result.MessageID == "" {
			t.Errorf("result = %+v, want sent", result)
		}
		if len(store.lookups) != 1 || store.lookups[0] != "u1" {
			t.Errorf("lookups = %v", store.lookups)
		}
		if len(sender.sent) != 1 {
			t.Fatalf("sent %d requests, want 1", len(sender.sent))
		}
		got := sender.sent[0]
		if got.Token != "tok-abc" || got.Body != "Alice is calling you" {
			t.Errorf("request = %+v", got)
		}
		if got.Data["type"] != "incoming_call" || got.Data["callId"] != "c123" {
			t.Errorf("data = %v", got.Data)
		}
	})

	t.Run("caller name omitted", func(t *testing.T) {
		svc, _, sender := newService(map[string]*calls.User{
			"u1": {ID: "u1", FCMToken: "tok-abc"},
		})

		if _, err := svc.NotifyIncomingCall(ctx, calls.Call{ID: "c123", CalleeID: "u1"}); err != nil {
			t.Fatalf("NotifyIncomingCall() error = %v", err)
		}
		if len(sender.sent) != 1 || sender.sent[0].Body != "Someone is calling you" {
			t.Errorf("sent = %+v", sender.sent)
		}
	})

	t.Run("callee without token", func(t *testing.T) {
		svc, _, sender := newService(map[string]*calls.User{"u1": {ID: "u1"}})

		result, err := svc.NotifyIncomingCall(ctx, calls.Call{ID: "c123", CalleeID: "u1"})
		if err != nil {
			t.Fatalf("NotifyIncomingCall() error = %v", err)
		}
		if result.Sent {
			t.Error("result.Sent = true, want false")
		}
		if len(sender.sent) != 0 {
			t.Errorf("sent %d requests, want 0", len(sender.sent))
		}
	})

	t.Run("callee does not exist", func(t *testing.T) {
		svc, _, sender := newService(nil)

		if _, err := svc.NotifyIncomingCall(ctx, calls.Call{ID: "c123", CalleeID: "ghost"}); err != nil {
			t.Fatalf("NotifyIncomingCall() error = %v", err)
		}
		if len(sender.sent) != 0 {
			t.Errorf("sent %d requests, want 0", len(sender.sent))
		}
	})

	t.Run("lookup failure propagates", func(t *testing.T) {
		lookupErr := errors.New("firestore unavailable")
		svc, store, sender := newService(nil)
		store.err = lookupErr

		_, err := svc.NotifyIncomingCall(ctx, calls.Call{ID: "c123", CalleeID: "u1"})
		if !errors.Is(err, lookupErr) {
			t.Errorf("error = %v, want %v", err, lookupErr)
		}
		if len(sender.sent) != 0 {
			t.Errorf("sent %d requests, want 0", len(sender.sent))
		}
	})

	t.Run("send failure propagates", func(t *testing.T) {
		sendErr := errors.New("registration token is not registered")
		svc, _, sender := newService(map[string]*calls.User{"u1": {ID: "u1", FCMToken: "stale"}})
		sender.err = sendErr

		result, err := svc.NotifyIncomingCall(ctx, calls.Call{ID: "c123", CalleeID: "u1"})
		if !errors.Is(err, sendErr) {
			t.Errorf("error = %v, want %v", err, sendErr)
		}
		if result.Sent {
			t.Error("result.Sent = true on failure")
		}
	})

	t.Run("malformed call is rejected before lookup", func(t *testing.T) {
		svc, store, _ := newService(nil)

		_, err := svc.NotifyIncomingCall(ctx, calls.Call{ID: "c123", CalleeID: ""})
		if !errors.Is(err, calls.ErrMalformedCall) {
			t.Errorf("error = %v, want ErrMalformedCall", err)
		}
		if len(store.lookups) != 0 {
			t.Errorf("lookups = %v, want none", store.lookups)
		}
	})
}
