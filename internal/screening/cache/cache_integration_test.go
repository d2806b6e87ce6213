//go:build integration

package cache_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"tenet/internal/screening"
	"tenet/internal/screening/cache"
	"tenet/pkg/testutil/containers"
)

type VerdictCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.VerdictCache
}

func TestVerdictCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(VerdictCacheSuite))
}

func (s *VerdictCacheSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.cache = cache.New(s.redis.Client, time.Minute, slog.Default())
}

func (s *VerdictCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *VerdictCacheSuite) TestSetGetRoundTrip() {
	ctx := context.Background()
	fp := cache.Fingerprint(screening.Filters{Defense: &screening.TagOptions{}})
	payload := []byte(`{"ticker":"ESLT","verdict":"EXCLUDED"}`)

	_, ok := s.cache.Get(ctx, "ESLT", fp)
	s.False(ok, "empty cache should miss")

	s.cache.Set(ctx, "eslt", fp, payload)

	// Ticker casing never splits the cache.
	got, ok := s.cache.Get(ctx, "ESLT", fp)
	s.Require().True(ok)
	s.Equal(payload, got)
}

func (s *VerdictCacheSuite) TestFingerprintSeparatesFilterSets() {
	ctx := context.Background()
	defenseOnly := cache.Fingerprint(screening.Filters{Defense: &screening.TagOptions{}})
	allCategories := cache.Fingerprint(screening.Filters{BDS: &screening.BDSOptions{}, Defense: &screening.TagOptions{}})
	s.NotEqual(defenseOnly, allCategories)

	s.cache.Set(ctx, "ESLT", defenseOnly, []byte(`defense`))

	_, ok := s.cache.Get(ctx, "ESLT", allCategories)
	s.False(ok, "rows computed under different filters must not collide")
}

func (s *VerdictCacheSuite) TestInvalidateDropsAllFingerprints() {
	ctx := context.Background()
	first := cache.Fingerprint(screening.Filters{Defense: &screening.TagOptions{}})
	second := cache.Fingerprint(screening.Filters{BDS: &screening.BDSOptions{}})

	s.cache.Set(ctx, "ESLT", first, []byte(`a`))
	s.cache.Set(ctx, "ESLT", second, []byte(`b`))
	s.cache.Set(ctx, "GD", first, []byte(`c`))

	s.cache.Invalidate(ctx, "eslt")

	_, ok := s.cache.Get(ctx, "ESLT", first)
	s.False(ok)
	_, ok = s.cache.Get(ctx, "ESLT", second)
	s.False(ok)

	// Other tickers keep their rows.
	got, ok := s.cache.Get(ctx, "GD", first)
	s.Require().True(ok)
	s.Equal([]byte(`c`), got)
}

func (s *VerdictCacheSuite) TestEntriesExpire() {
	ctx := context.Background()
	short := cache.New(s.redis.Client, 50*time.Millisecond, slog.Default())
	fp := cache.Fingerprint(screening.Filters{Surveillance: &screening.TagOptions{}})

	short.Set(ctx, "PL", fp, []byte(`row`))
	_, ok := short.Get(ctx, "PL", fp)
	s.Require().True(ok)

	time.Sleep(100 * time.Millisecond)

	_, ok = short.Get(ctx, "PL", fp)
	s.False(ok, "entry should expire with the TTL")
}
