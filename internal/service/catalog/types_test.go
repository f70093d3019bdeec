package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakewriter/internal/domain"
)

type fakeReader struct {
	types map[string]domain.TypeMap
	err   error
	calls atomic.Int32
	delay time.Duration
}

func (f *fakeReader) GetTableTypes(_ context.Context, database, table string) (domain.TypeMap, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.types[database+"."+table], nil
}

func newTestService(r domain.TableTypesReader) *TypesService {
	return NewTypesService(r, 0, 0, slog.New(slog.DiscardHandler))
}

func TestTypesService_Found(t *testing.T) {
	r := &fakeReader{types: map[string]domain.TypeMap{"db.t": {"a": "int"}}}
	svc := newTestService(r)

	got, err := svc.GetTableTypes(context.Background(), "db", "t")
	require.NoError(t, err)
	assert.Equal(t, domain.TypeMap{"a": "int"}, got)
}

func TestTypesService_ReturnsCopy(t *testing.T) {
	stored := domain.TypeMap{"a": "int"}
	r := &fakeReader{types: map[string]domain.TypeMap{"db.t": stored}}
	svc := newTestService(r)

	got, err := svc.GetTableTypes(context.Background(), "db", "t")
	require.NoError(t, err)
	got["a"] = "string"
	assert.Equal(t, "int", stored["a"])
}

func TestTypesService_MissingTable(t *testing.T) {
	svc := newTestService(&fakeReader{})

	got, err := svc.GetTableTypes(context.Background(), "db", "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTypesService_PropagatesError(t *testing.T) {
	boom := errors.New("catalog unavailable")
	svc := newTestService(&fakeReader{err: boom})

	_, err := svc.GetTableTypes(context.Background(), "db", "t")
	assert.ErrorIs(t, err, boom)
}

func TestTypesService_CoalescesConcurrentLookups(t *testing.T) {
	r := &fakeReader{
		types: map[string]domain.TypeMap{"db.t": {"a": "int"}},
		delay: 50 * time.Millisecond,
	}
	svc := newTestService(r)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.GetTableTypes(context.Background(), "db", "t")
			assert.NoError(t, err)
			assert.Equal(t, "int", got["a"])
		}()
	}
	wg.Wait()

	assert.Less(t, r.calls.Load(), int32(8))
}

func TestTypesService_ThrottleHonoursContext(t *testing.T) {
	r := &fakeReader{types: map[string]domain.TypeMap{}}
	svc := NewTypesService(r, 0.001, 1, slog.New(slog.DiscardHandler))

	_, err := svc.GetTableTypes(context.Background(), "db", "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = svc.GetTableTypes(ctx, "db", "b")
	assert.Error(t, err)
	assert.Equal(t, int32(1), r.calls.Load())
}

type blockingReader struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingReader) GetTableTypes(ctx context.Context, _, _ string) (domain.TypeMap, error) {
	if b.calls.Add(1) == 1 {
		close(b.started)
	}
	select {
	case <-b.release:
		return domain.TypeMap{"a": "int"}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestTypesService_CancelledCallerDoesNotFailOthers(t *testing.T) {
	r := &blockingReader{started: make(chan struct{}), release: make(chan struct{})}
	svc := newTestService(r)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := svc.GetTableTypes(ctxA, "db", "t")
		errA <- err
	}()
	<-r.started

	type result struct {
		types domain.TypeMap
		err   error
	}
	resB := make(chan result, 1)
	go func() {
		got, err := svc.GetTableTypes(context.Background(), "db", "t")
		resB <- result{got, err}
	}()
	time.Sleep(50 * time.Millisecond) // let B join the in-flight lookup

	cancelA()
	require.ErrorIs(t, <-errA, context.Canceled)

	close(r.release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, domain.TypeMap{"a": "int"}, b.types)
	assert.Equal(t, int32(1), r.calls.Load())
}
