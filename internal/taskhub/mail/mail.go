// Package mail delivers TaskHub's transactional email. Delivery sits behind
// Gateway so the auth flows never depend on a particular transport.
package mail

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by a gateway missing its transport settings.
var ErrNotConfigured = errors.New("mail: gateway not configured")

// Gateway sends a single HTML email. A nil error means the message was
// accepted by the transport.
type Gateway interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Message is one email as handed to a Gateway.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}
