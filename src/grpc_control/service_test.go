package grpc_control

import (
	"context"
	"net"
	"testing"
	"time"

	"astrografia/src/cache"
	datasource "astrografia/src/data_source"
	"astrografia/src/data_source/sky"
	"astrografia/src/ephemeris"
	"astrografia/src/logger"
	"astrografia/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fixture struct {
	client *ControlClient
	conn   *grpc.ClientConn
	cached *ephemeris.Cached
}

func newFixture(t *testing.T, svc *ControlService) *fixture {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := NewServer(&models.MConfig{}, svc, logger.NewNop())
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &fixture{client: NewControlClient(conn), conn: conn}
}

func newService(t *testing.T) (*ControlService, *ephemeris.Cached) {
	t.Helper()
	log := logger.NewNop()
	cfg := &models.MConfig{}

	lru, err := cache.NewLRU(16)
	require.NoError(t, err)
	chain := ephemeris.NewChain(log, ephemeris.NewApproxEphemeris(cfg))
	cached := ephemeris.NewCached(chain, lru)

	feeds := datasource.NewFeedManager(nil, log, sky.NewSource(cfg, nil, log))
	return NewControlService(cached, chain, feeds, log), cached
}

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return c
}

// -----------------------------------------------------------------------------

func TestHealthServing(t *testing.T) {
	svc, _ := newService(t)
	f := newFixture(t, svc)

	resp, err := healthpb.NewHealthClient(f.conn).Check(ctx(t), &healthpb.HealthCheckRequest{Service: HealthService})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestCacheStatsAndReset(t *testing.T) {
	svc, cached := newService(t)
	f := newFixture(t, svc)

	birth, err := ephemeris.NewBirthData("Ana", time.Date(1990, 5, 15, 10, 30, 0, 0, time.UTC), -23.55, -46.63, "America/Sao_Paulo", "São Paulo")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := cached.ComputeRaw(context.Background(), birth)
		require.NoError(t, err)
	}

	stats, err := f.client.CacheStats(ctx(t))
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)
	assert.InDelta(t, 2.0/3.0, stats.HitRatio, 1e-9)

	reset, err := f.client.ResetCache(ctx(t))
	require.NoError(t, err)
	assert.True(t, reset.Success)
	assert.Equal(t, 1, reset.Cleared)

	stats, err = f.client.CacheStats(ctx(t))
	require.NoError(t, err)
	assert.Zero(t, stats.Hits)
	assert.Zero(t, stats.Size)
}

func TestListAdaptersAndSources(t *testing.T) {
	svc, _ := newService(t)
	f := newFixture(t, svc)

	adapters, err := f.client.ListAdapters(ctx(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"approx"}, adapters.Adapters)

	sources, err := f.client.ListSources(ctx(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"sky"}, sources.Sources)

	removed, err := f.client.RemoveSource(ctx(t), "sky")
	require.NoError(t, err)
	assert.True(t, removed.Success)

	again, err := f.client.RemoveSource(ctx(t), "sky")
	require.NoError(t, err)
	assert.False(t, again.Success)

	_, err = f.client.RemoveSource(ctx(t), "")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestDisabledComponents(t *testing.T) {
	f := newFixture(t, NewControlService(nil, nil, nil, logger.NewNop()))

	_, err := f.client.CacheStats(ctx(t))
	assert.Equal(t, codes.Unavailable, status.Code(err))
	_, err = f.client.ResetCache(ctx(t))
	assert.Equal(t, codes.Unavailable, status.Code(err))

	adapters, err := f.client.ListAdapters(ctx(t))
	require.NoError(t, err)
	assert.Empty(t, adapters.Adapters)
}
