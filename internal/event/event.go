package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/katatrina/call-notifier/internal/calls"
)

var (
	ErrNotCreateEvent      = errors.New("event is not a document creation")
	ErrUnexpectedDocument  = errors.New("event document is not in the watched collection")
	ErrInvalidDocumentPath = errors.New("invalid document path")
)

// FirestoreEvent is the JSON body delivered by a Firestore document trigger.
type FirestoreEvent struct {
	OldValue FirestoreValue `json:"oldValue"`
	Value    FirestoreValue `json:"value"`
}

type FirestoreValue struct {
	Fields map[string]Value `json:"fields"`
	Name   string           `json:"name"`
}

// Value is a typed Firestore value. Only scalar types are decoded.
type Value struct {
	StringValue  *string         `json:"stringValue,omitempty"`
	IntegerValue *string         `json:"integerValue,omitempty"`
	DoubleValue  *float64        `json:"doubleValue,omitempty"`
	BooleanValue *bool           `json:"booleanValue,omitempty"`
	NullValue    json.RawMessage `json:"nullValue,omitempty"`
}

// Interface returns the Go value held by v.
// Unsupported Firestore types are returned as the Value itself.
func (v Value) Interface() interface{} {
	switch {
	case v.StringValue != nil:
		return *v.StringValue
	case v.IntegerValue != nil:
		n, err := strconv.ParseInt(*v.IntegerValue, 10, 64)
		if err != nil {
			return *v.IntegerValue
		}
		return n
	case v.DoubleValue != nil:
		return *v.DoubleValue
	case v.BooleanValue != nil:
		return *v.BooleanValue
	case v.NullValue != nil:
		return nil
	default:
		return v
	}
}

// Data flattens the typed field map.
func (fv FirestoreValue) Data() map[string]interface{} {
	data := make(map[string]interface{}, len(fv.Fields))
	for k, v := range fv.Fields {
		data[k] = v.Interface()
	}
	return data
}

// IsCreate reports whether the event describes a newly created document.
func (e FirestoreEvent) IsCreate() bool {
	return e.OldValue.Name == "" && e.Value.Name != ""
}

// Call decodes the created document into a call record.
// The document must be a direct child of collection.
func (e FirestoreEvent) Call(collection string) (calls.Call, error) {
	if !e.IsCreate() {
		return calls.Call{}, ErrNotCreateEvent
	}

	parent, id, err := SplitDocumentName(e.Value.Name)
	if err != nil {
		return calls.Call{}, err
	}
	if parent != collection {
		return calls.Call{}, fmt.Errorf("%w: %s", ErrUnexpectedDocument, parent)
	}

	return calls.CallFromFields(id, e.Value.Data())
}

// SplitDocumentName returns the collection path and document ID of a Firestore resource name,
// e.g. "projects/p/databases/(default)/documents/calls/c123" yields ("calls", "c123").
func SplitDocumentName(name string) (collection string, id string, err error) {
	path := name
	if i := strings.Index(name, "/documents/"); i >= 0 {
		path = name[i+len("/documents/"):]
	}

	segments := strings.Split(path, "/")
	if len(segments) < 2 || len(segments)%2 != 0 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidDocumentPath, name)
	}
	for _, s := range segments {
		if s == "" {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidDocumentPath, name)
		}
	}

	last := len(segments) - 1
	return strings.Join(segments[:last], "/"), segments[last], nil
}
