package calls

import (
	"errors"
	"fmt"

	"github.com/katatrina/call-notifier/internal/validator"
)

// Firestore field names written by the mobile clients.
const (
	FieldCalleeID   = "calleeId"
	FieldCallerName = "callerName"
	FieldFCMToken   = "fcmToken"
)

var ErrMalformedCall = errors.New("malformed call record")

// Call is a document of the calls collection, created by the caller's client.
type Call struct {
	ID         string
	CalleeID   string
	CallerName string
}

// User is the subset of a users document this service reads.
type User struct {
	ID       string
	FCMToken string
}

// HasToken reports whether the user can be addressed by a push notification.
func (u *User) HasToken() bool {
	return u != nil && u.FCMToken != ""
}

// Validate rejects records that cannot be resolved to a callee.
func (c Call) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: empty call id", ErrMalformedCall)
	}

	if err := validator.ValidateDocumentID(c.CalleeID); err != nil {
		return fmt.Errorf("%w: %s %s", ErrMalformedCall, FieldCalleeID, err)
	}

	return nil
}

// CallFromFields builds a Call from a document field map.
// A non-string callerName (a number, a map) is treated as absent, so the
// notification falls back to the unknown caller name instead of printing it.
func CallFromFields(id string, fields map[string]interface{}) (Call, error) {
	call := Call{ID: id}

	switch v := fields[FieldCalleeID].(type) {
	case string:
		call.CalleeID = v
	case nil:
		return call, fmt.Errorf("%w: missing %s", ErrMalformedCall, FieldCalleeID)
	default:
		return call, fmt.Errorf("%w: %s must be a string, got %T", ErrMalformedCall, FieldCalleeID, v)
	}

	if name, ok := fields[FieldCallerName].(string); ok {
		call.CallerName = name
	}

	return call, call.Validate()
}

// UserFromFields builds a User from a document field map.
// A missing, null or non-string token leaves FCMToken empty.
func UserFromFields(id string, fields map[string]interface{}) User {
	token, _ := fields[FieldFCMToken].(string)
	return User{ID: id, FCMToken: token}
}
