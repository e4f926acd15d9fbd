package metrics

import (
	"context"
	"errors"

	"github.com/iho/qatledger/internal/usecase"
)

type instrumentedCache struct {
	usecase.Cache
	m *Metrics
}

// InstrumentCache counts hits, misses and errors of cache lookups.
func (m *Metrics) InstrumentCache(cache usecase.Cache) usecase.Cache {
	return &instrumentedCache{Cache: cache, m: m}
}

func (c *instrumentedCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.Cache.Get(ctx, key)
	switch {
	case err == nil:
		c.m.CacheLookups.WithLabelValues("hit").Inc()
	case errors.Is(err, usecase.ErrCacheMiss):
		c.m.CacheLookups.WithLabelValues("miss").Inc()
	default:
		c.m.CacheLookups.WithLabelValues("error").Inc()
	}
	return val, err
}
