package blob

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-api/pkg/circuitbreaker"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	data := []byte("%PDF-1.4")
	require.NoError(t, store.Put(ctx, Object{Key: "files/a.pdf", ContentType: "application/pdf", Data: data}))
	data[0] = 'X'

	obj, err := store.Get(ctx, "files/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", obj.ContentType)
	assert.Equal(t, []byte("%PDF-1.4"), obj.Data)

	_, err = store.Get(ctx, "files/missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

type flakyStore struct {
	err   error
	calls int
}

func (f *flakyStore) Put(context.Context, Object) error {
	f.calls++
	return f.err
}

func (f *flakyStore) Get(context.Context, string) (*Object, error) {
	f.calls++
	return nil, f.err
}

func TestWithBreaker(t *testing.T) {
	ctx := context.Background()

	missing := &flakyStore{err: ErrNotFound}
	store := WithBreaker(missing, "test", 1, time.Minute)
	for range 3 {
		_, err := store.Get(ctx, "files/missing.pdf")
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, 3, missing.calls)

	down := &flakyStore{err: errors.New("connection reset")}
	store = WithBreaker(down, "test", 2, time.Minute)
	assert.Error(t, store.Put(ctx, Object{Key: "a"}))
	assert.Error(t, store.Put(ctx, Object{Key: "a"}))
	assert.ErrorIs(t, store.Put(ctx, Object{Key: "a"}), circuitbreaker.ErrOpen)
	assert.Equal(t, 2, down.calls)
}
