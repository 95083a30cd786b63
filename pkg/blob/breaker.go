package blob

import (
	"context"
	"errors"
	"time"

	"github.com/jwalitptl/dental-api/pkg/circuitbreaker"
)

// guarded fails fast while the wrapped store keeps erroring.
type guarded struct {
	store   Store
	breaker *circuitbreaker.CircuitBreaker
}

// WithBreaker wraps store so that after maxFailures consecutive failures calls
// return circuitbreaker.ErrOpen until timeout has passed. Missing keys and
// cancelled requests are not failures.
func WithBreaker(store Store, name string, maxFailures int, timeout time.Duration) Store {
	return &guarded{
		store: store,
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        name,
			MaxFailures: maxFailures,
			Timeout:     timeout,
			IsFailure: func(err error) bool {
				return err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, context.Canceled)
			},
		}),
	}
}

func (g *guarded) Put(ctx context.Context, obj Object) error {
	return g.breaker.Execute(func() error {
		return g.store.Put(ctx, obj)
	})
}

func (g *guarded) Get(ctx context.Context, key string) (*Object, error) {
	var obj *Object
	err := g.breaker.Execute(func() error {
		var err error
		obj, err = g.store.Get(ctx, key)
		return err
	})
	return obj, err
}
