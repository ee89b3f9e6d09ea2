package mail

import (
	"context"
	"sync"
)

// Outbox keeps sent messages in memory. Setting Err makes every Send fail
// with it, which is how callers exercise delivery failures.
type Outbox struct {
	mu   sync.Mutex
	msgs []Message
	Err  error
}

func (o *Outbox) Send(_ context.Context, to, subject, htmlBody string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.Err != nil {
		return o.Err
	}
	o.msgs = append(o.msgs, Message{To: to, Subject: subject, HTMLBody: htmlBody})
	return nil
}

// Messages returns a copy of everything sent so far.
func (o *Outbox) Messages() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]Message, len(o.msgs))
	copy(out, o.msgs)
	return out
}

// To returns the messages sent to addr, oldest first.
func (o *Outbox) To(addr string) []Message {
	var out []Message
	for _, m := range o.Messages() {
		if m.To == addr {
			out = append(out, m)
		}
	}
	return out
}

// Reset forgets all messages.
func (o *Outbox) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = nil
}
