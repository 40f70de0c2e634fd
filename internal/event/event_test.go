package event

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/katatrina/call-notifier/internal/calls"
)

const createdCallJSON = `{
  "oldValue": {},
  "value": {
    "createTime": "2026-10-19T08:00:00.123456Z",
    "fields": {
      "calleeId": {"stringValue": "u1"},
      "callerName": {"stringValue": "Alice"},
      "video": {"booleanValue": true}
    },
    "name": "projects/demo/databases/(default)/documents/calls/c123",
    "updateTime": "2026-10-19T08:00:00.123456Z"
  },
  "updateMask": {}
}`

func decode(t *testing.T, body string) FirestoreEvent {
	t.Helper()
	var e FirestoreEvent
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	return e
}

func TestFirestoreEventCall(t *testing.T) {
	e := decode(t, createdCallJSON)

	call, err := e.Call("calls")
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	want := calls.Call{ID: "c123", CalleeID: "u1", CallerName: "Alice"}
	if call != want {
		t.Errorf("Call() = %+v, want %+v", call, want)
	}
}

func TestFirestoreEventCall_rejections(t *testing.T) {
	t.Run("update event", func(t *testing.T) {
		e := decode(t, createdCallJSON)
		e.OldValue.Name = e.Value.Name

		if _, err := e.Call("calls"); !errors.Is(err, ErrNotCreateEvent) {
			t.Errorf("Call() error = %v, want ErrNotCreateEvent", err)
		}
	})

	t.Run("other collection", func(t *testing.T) {
		e := decode(t, createdCallJSON)
		e.Value.Name = "projects/demo/databases/(default)/documents/messages/m1"

		if _, err := e.Call("calls"); !errors.Is(err, ErrUnexpectedDocument) {
			t.Errorf("Call() error = %v, want ErrUnexpectedDocument", err)
		}
	})

	t.Run("subcollection", func(t *testing.T) {
		e := decode(t, createdCallJSON)
		e.Value.Name = "projects/demo/databases/(default)/documents/rooms/r1/calls/c1"

		if _, err := e.Call("calls"); !errors.Is(err, ErrUnexpectedDocument) {
			t.Errorf("Call() error = %v, want ErrUnexpectedDocument", err)
		}
	})

	t.Run("null callee", func(t *testing.T) {
		e := decode(t, `{"value": {"name": "projects/p/databases/(default)/documents/calls/c1",
			"fields": {"calleeId": {"nullValue": null}}}}`)

		if _, err := e.Call("calls"); !errors.Is(err, calls.ErrMalformedCall) {
			t.Errorf("Call() error = %v, want ErrMalformedCall", err)
		}
	})
}

func TestValueInterface(t *testing.T) {
	e := decode(t, `{"value": {"name": "x/y", "fields": {
		"s": {"stringValue": "hello"},
		"i": {"integerValue": "12"},
		"d": {"doubleValue": 1.5},
		"b": {"booleanValue": false},
		"m": {"mapValue": {"fields": {}}}
	}}}`)

	data := e.Value.Data()
	if data["s"] != "hello" {
		t.Errorf("s = %v", data["s"])
	}
	if data["i"] != int64(12) {
		t.Errorf("i = %v (%T)", data["i"], data["i"])
	}
	if data["d"] != 1.5 {
		t.Errorf("d = %v", data["d"])
	}
	if data["b"] != false {
		t.Errorf("b = %v", data["b"])
	}
	if _, ok := data["m"].(Value); !ok {
		t.Errorf("m = %T, want Value", data["m"])
	}
}

func TestSplitDocumentName(t *testing.T) {
	tests := []struct {
		name           string
		wantCollection string
		wantID         string
		wantErr        bool
	}{
		{"projects/p/databases/(default)/documents/calls/c123", "calls", "c123", false},
		{"calls/c123", "calls", "c123", false},
		{"projects/p/databases/(default)/documents/rooms/r1/calls/c9", "rooms/r1/calls", "c9", false},
		{"projects/p/databases/(default)/documents/calls", "", "", true},
		{"calls//c1", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		collection, id, err := SplitDocumentName(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("SplitDocumentName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if collection != tt.wantCollection || id != tt.wantID {
			t.Errorf("SplitDocumentName(%q) = (%q, %q), want (%q, %q)", tt.name, collection, id, tt.wantCollection, tt.wantID)
		}
	}
}

func TestValueInterface_null(t *testing.T) {
	e := decode(t, `{"value": {"name": "x/y", "fields": {"n": {"nullValue": null}}}}`)

	v, ok := e.Value.Data()["n"]
	if !ok || v != nil {
		t.Errorf("n = %v (%T), want nil", v, v)
	}
}
