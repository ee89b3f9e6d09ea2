// Package risk decides whether a sign-up attempt may proceed: a pluggable
// abuse check plus the disposable email domain denylist.
package risk

import "context"

// Request describes the attempt being checked.
type Request struct {
	Action string // e.g. "register"
	IP     string
	Email  string
}

// Checker returns false when the attempt should be refused. An error means
// the check itself could not run.
type Checker interface {
	Allow(ctx context.Context, req Request) (bool, error)
}

// AllowAll lets every request through.
type AllowAll struct{}

func (AllowAll) Allow(context.Context, Request) (bool, error) { return true, nil }

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context, req Request) (bool, error)

func (f CheckerFunc) Allow(ctx context.Context, req Request) (bool, error) { return f(ctx, req) }
