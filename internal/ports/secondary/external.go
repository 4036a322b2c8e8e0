package secondary

import "context"

// ScoringOracle defines the secondary port for the external scoring model.
type ScoringOracle interface {
	// Score sends the rendered instruction prompt and returns the raw reply.
	// Errors mean the oracle was unavailable; reply content is not validated here.
	Score(ctx context.Context, req OracleRequest) (*OracleReply, error)
}

// OracleRequest is one scoring call.
type OracleRequest struct {
	CheckInID string
	Prompt    string
}

// OracleReply is the free-text answer of the oracle.
type OracleReply struct {
	Text  string
	Model string
}

// NotificationGateway defines the secondary port for outbound notifications.
type NotificationGateway interface {
	// Send delivers one message. A nil error means the provider accepted it;
	// no delivery receipt is implied.
	Send(ctx context.Context, n Notification) error
}

// Notification is one outbound message.
type Notification struct {
	To      string
	Subject string
	Body    string
}
