// Package appctx provides request-scoped values extraction.
package appctx

import (
	"context"

	"fuelbook/internal/core/id"
)

// Actor identifies who is performing a mutating operation.
// Every audit entry records the actor; services also accept the submitter
// explicitly on their inputs, so this context value is a transport
// convenience, not the source of truth.
type Actor struct {
	UserID   id.ID
	Username string
}

type actorKey struct{}

// WithActor adds Actor to context.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor returns Actor from context, or nil.
func GetActor(ctx context.Context) *Actor {
	if v, ok := ctx.Value(actorKey{}).(*Actor); ok {
		return v
	}
	return nil
}

// GetActorID returns the acting user's ID from context or the nil ID.
func GetActorID(ctx context.Context) id.ID {
	if a := GetActor(ctx); a != nil {
		return a.UserID
	}
	return id.Nil()
}
