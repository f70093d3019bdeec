package catalog

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"lakewriter/internal/domain"
)

// Compile-time check: TypesService is itself a TableTypesReader.
var _ domain.TableTypesReader = (*TypesService)(nil)

// lookupTimeout bounds one shared catalog call, throttle wait included.
const lookupTimeout = 30 * time.Second

// TypesService fronts a catalog reader. Concurrent lookups of the same table
// share one catalog call, and calls are throttled by a token bucket.
type TypesService struct {
	reader  domain.TableTypesReader
	limiter *rate.Limiter // nil means unthrottled
	group   singleflight.Group
	logger  *slog.Logger
}

// NewTypesService creates a TypesService. A non-positive rps disables throttling.
func NewTypesService(reader domain.TableTypesReader, rps float64, burst int, logger *slog.Logger) *TypesService {
	s := &TypesService{reader: reader, logger: logger}
	if rps > 0 {
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return s
}

// GetTableTypes returns a private copy of the table's registered column types,
// or nil when the table does not exist. Catalog errors are returned unchanged.
//
// The shared catalog call is detached from ctx so one caller giving up does
// not fail the others; each caller still stops waiting when its own ctx ends.
func (s *TypesService) GetTableTypes(ctx context.Context, database, table string) (domain.TypeMap, error) {
	key := database + "\x00" + table
	ch := s.group.DoChan(key, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()
		if s.limiter != nil {
			if err := s.limiter.Wait(callCtx); err != nil {
				return nil, err
			}
		}
		return s.reader.GetTableTypes(callCtx, database, table)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	types, _ := res.Val.(domain.TypeMap)
	s.logger.Debug("catalog types lookup",
		"database", database, "table", table, "found", types != nil, "shared", res.Shared)
	if types == nil {
		return nil, nil
	}
	return types.Clone(), nil
}
