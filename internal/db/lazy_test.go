package db

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct{ n int32 }

func TestLazy_ConcurrentCallersShareOneDial(t *testing.T) {
	var dials atomic.Int32
	release := make(chan struct{})

	l := NewLazy(func(ctx context.Context) (*fakeConn, error) {
		n := dials.Add(1)
		<-release
		return &fakeConn{n: n}, nil
	}, time.Second)

	const callers = 20
	var wg sync.WaitGroup
	results := make([]*fakeConn, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = l.Get(context.Background())
		}(i)
	}

	// let the goroutines pile up behind the in-flight dial
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), dials.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}

	again, err := l.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, results[0], again)
	assert.Equal(t, int32(1), dials.Load())
}

func TestLazy_FailedDialIsRetried(t *testing.T) {
	var dials atomic.Int32
	boom := errors.New("connection refused")

	l := NewLazy(func(ctx context.Context) (*fakeConn, error) {
		if dials.Add(1) == 1 {
			return nil, boom
		}
		return &fakeConn{}, nil
	}, time.Second)

	_, err := l.Get(context.Background())
	assert.ErrorIs(t, err, boom)

	conn, err := l.Get(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, conn)
	assert.Equal(t, int32(2), dials.Load())
}

func TestLazy_Close(t *testing.T) {
	l := NewLazy(func(ctx context.Context) (*fakeConn, error) {
		return &fakeConn{}, nil
	}, time.Second)

	closed := 0
	closeFn := func(*fakeConn) error { closed++; return nil }

	require.NoError(t, l.Close(closeFn))
	assert.Equal(t, 0, closed)

	_, err := l.Get(context.Background())
	require.NoError(t, err)

	require.NoError(t, l.Close(closeFn))
	assert.Equal(t, 1, closed)

	_, ok := l.Peek()
	assert.False(t, ok)
}
