package grpc_control

import (
	"context"
	"fmt"

	"astrografia/src/ephemeris"
	"astrografia/src/logger"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ChartCache is the memoization layer the control plane inspects.
type ChartCache interface {
	Stats() ephemeris.CacheStats
	Reset(ctx context.Context)
}

// AdapterLister reports the ephemeris providers in fallback order.
type AdapterLister interface {
	Adapters() []string
}

// FeedController manages the live snapshot sources.
type FeedController interface {
	SourceNames() []string
	RemoveSource(name string) error
}

// ControlService implements ControlServer over the running components. Any of
// them may be nil when disabled.
type ControlService struct {
	Cache    ChartCache
	Adapters AdapterLister
	Feeds    FeedController
	Logger   *logger.Logger
}

// NewControlService creates a new instance of ControlService
func NewControlService(cache ChartCache, adapters AdapterLister, feeds FeedController, log *logger.Logger) *ControlService {
	return &ControlService{
		Cache:    cache,
		Adapters: adapters,
		Feeds:    feeds,
		Logger:   log,
	}
}

// -----------------------------------------------------------------------------

func (s *ControlService) CacheStats(ctx context.Context, req *Empty) (*CacheStatsResponse, error) {
	if s.Cache == nil {
		return nil, status.Error(codes.Unavailable, "chart cache is disabled")
	}
	stats := s.Cache.Stats()
	out := &CacheStatsResponse{Hits: stats.Hits, Misses: stats.Misses, Size: stats.Size}
	if total := stats.Hits + stats.Misses; total > 0 {
		out.HitRatio = float64(stats.Hits) / float64(total)
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) ResetCache(ctx context.Context, req *Empty) (*ResetCacheResponse, error) {
	if s.Cache == nil {
		return nil, status.Error(codes.Unavailable, "chart cache is disabled")
	}
	cleared := s.Cache.Stats().Size
	s.Cache.Reset(ctx)
	s.Logger.Info("gRPC: chart cache reset, %d entries cleared", cleared)
	return &ResetCacheResponse{
		Success: true,
		Message: fmt.Sprintf("Cleared %d cached charts", cleared),
		Cleared: cleared,
	}, nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) ListAdapters(ctx context.Context, req *Empty) (*ListAdaptersResponse, error) {
	if s.Adapters == nil {
		return &ListAdaptersResponse{Adapters: []string{}}, nil
	}
	return &ListAdaptersResponse{Adapters: s.Adapters.Adapters()}, nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) ListSources(ctx context.Context, req *Empty) (*ListSourcesResponse, error) {
	if s.Feeds == nil {
		return &ListSourcesResponse{Sources: []string{}}, nil
	}
	return &ListSourcesResponse{Sources: s.Feeds.SourceNames()}, nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) RemoveSource(ctx context.Context, req *RemoveSourceRequest) (*SourceControlResponse, error) {
	if req.Name == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}
	if s.Feeds == nil {
		return nil, status.Error(codes.Unavailable, "sky feed is disabled")
	}

	if err := s.Feeds.RemoveSource(req.Name); err != nil {
		return &SourceControlResponse{
			Success:      false,
			Message:      fmt.Sprintf("Failed to remove source: %v", err),
			CurrentState: "unknown",
		}, nil
	}

	s.Logger.Info("gRPC: removed source %s", req.Name)
	return &SourceControlResponse{
		Success:      true,
		Message:      fmt.Sprintf("Removed source %s", req.Name),
		CurrentState: "removed",
	}, nil
}
