package mailer

import "context"

// Message is one outbound email handed to the carrier gateways. To carries
// the already-resolved gateway addresses for every recipient of a single
// send call.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
	// AuthUser and AuthPassword override the transport's configured SMTP
	// credentials for this call when non-empty.
	AuthUser     string
	AuthPassword string
}

// Transport delivers gateway-addressed messages. One call covers the full
// recipient list; success and failure are indivisible across recipients.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}
