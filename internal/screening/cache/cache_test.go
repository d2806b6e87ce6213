package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tenet/internal/screening"
	"tenet/internal/screening/cache"
)

func TestFingerprintIsStable(t *testing.T) {
	filters := screening.Filters{
		BDS:     &screening.BDSOptions{SubCategories: []string{"settlement construction"}},
		Defense: &screening.TagOptions{},
	}
	assert.Equal(t, cache.Fingerprint(filters), cache.Fingerprint(filters))
	assert.NotEqual(t, cache.Fingerprint(filters), cache.Fingerprint(screening.Filters{Defense: &screening.TagOptions{}}))
}

func TestNilCacheIsSafe(t *testing.T) {
	ctx := context.Background()
	c := cache.New(nil, time.Minute, nil)
	assert.Nil(t, c)

	_, ok := c.Get(ctx, "ESLT", "fp")
	assert.False(t, ok)
	c.Set(ctx, "ESLT", "fp", []byte(`row`))
	c.Invalidate(ctx, "ESLT")
}
