package notification

const (
	IncomingCallTitle   = "Incoming call"
	IncomingCallType    = "incoming_call"
	UnknownCallerName   = "Someone"
	AndroidPriorityHigh = "high"
	APNSSoundDefault    = "default"
)

// Keys of the custom data payload read by the mobile app.
const (
	DataKeyType   = "type"
	DataKeyCallID = "callId"
)

// PushRequest is a single notification addressed to one device token.
type PushRequest struct {
	Token           string
	Title           string
	Body            string
	Data            map[string]string
	AndroidPriority string
	APNSSound       string
}

// Result describes what NotifyIncomingCall did for one call record.
type Result struct {
	Sent      bool
	MessageID string
}
