package mail

import "context"

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a single message. Delivery is attempted inline and errors propagate.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
