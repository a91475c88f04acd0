package mailer

import "context"

// Sender delivers a fully-prepared Email through a provider.
// The Email must have To, Subject and HTML set.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// Pinger is implemented by senders that can verify the provider is reachable
// and accepts the configured credentials without sending anything.
type Pinger interface {
	Ping(ctx context.Context) error
}
