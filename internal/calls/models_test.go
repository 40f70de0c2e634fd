package calls

import (
	"errors"
	"testing"
)

func TestCallFromFields(t *testing.T) {
	t.Run("caller name present", func(t *testing.T) {
		call, err := CallFromFields("c123", map[string]interface{}{
			"calleeId":   "u1",
			"callerName": "Alice",
		})
		if err != nil {
			t.Fatalf("CallFromFields() error = %v", err)
		}
		want := Call{ID: "c123", CalleeID: "u1", CallerName: "Alice"}
		if call != want {
			t.Errorf("CallFromFields() = %+v, want %+v", call, want)
		}
	})

	t.Run("caller name omitted", func(t *testing.T) {
		call, err := CallFromFields("c123", map[string]interface{}{"calleeId": "u1"})
		if err != nil {
			t.Fatalf("CallFromFields() error = %v", err)
		}
		if call.CallerName != "" {
			t.Errorf("CallerName = %q, want empty", call.CallerName)
		}
	})

	t.Run("caller name not a string", func(t *testing.T) {
		call, err := CallFromFields("c123", map[string]interface{}{"calleeId": "u1", "callerName": 42})
		if err != nil {
			t.Fatalf("CallFromFields() error = %v", err)
		}
		if call.CallerName != "" {
			t.Errorf("CallerName = %q, want empty", call.CallerName)
		}
	})

	malformed := []struct {
		name   string
		id     string
		fields map[string]interface{}
	}{
		{"missing callee", "c123", map[string]interface{}{"callerName": "Alice"}},
		{"null callee", "c123", map[string]interface{}{"calleeId": nil}},
		{"numeric callee", "c123", map[string]interface{}{"calleeId": int64(7)}},
		{"empty callee", "c123", map[string]interface{}{"calleeId": ""}},
		{"callee with slash", "c123", map[string]interface{}{"calleeId": "users/u1"}},
		{"empty call id", "", map[string]interface{}{"calleeId": "u1"}},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CallFromFields(tt.id, tt.fields)
			if !errors.Is(err, ErrMalformedCall) {
				t.Errorf("CallFromFields() error = %v, want ErrMalformedCall", err)
			}
		})
	}
}

func TestUserFromFields(t *testing.T) {
	tests := []struct {
		name      string
		fields    map[string]interface{}
		wantToken string
	}{
		{"token present", map[string]interface{}{"fcmToken": "tok-abc"}, "tok-abc"},
		{"token missing", map[string]interface{}{"displayName": "Bob"}, ""},
		{"token null", map[string]interface{}{"fcmToken": nil}, ""},
		{"token wrong type", map[string]interface{}{"fcmToken": true}, ""},
		{"nil map", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := UserFromFields("u1", tt.fields)
			if user.FCMToken != tt.wantToken {
				t.Errorf("FCMToken = %q, want %q", user.FCMToken, tt.wantToken)
			}
			if user.HasToken() != (tt.wantToken != "") {
				t.Errorf("HasToken() = %v", user.HasToken())
			}
		})
	}
}

func TestUserHasTokenNil(t *testing.T) {
	var u *User
	if u.HasToken() {
		t.Error("nil user must not have a token")
	}
}
