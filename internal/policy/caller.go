package policy

import (
	"context"

	"github.com/google/uuid"
)

// Caller is the identity an action runs under.
type Caller struct {
	AccountID uuid.UUID
	Username  string
	IsAdmin   bool
	IP        string
}

func (c Caller) Anonymous() bool {
	return c.AccountID == uuid.Nil
}

type callerKey struct{}

func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom returns the caller stored in ctx, or an anonymous caller.
func CallerFrom(ctx context.Context) Caller {
	caller, _ := ctx.Value(callerKey{}).(Caller)
	return caller
}
