package grpc_control

// Empty is the request of the argument-less control calls.
type Empty struct{}

type CacheStatsResponse struct {
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	Size     int     `json:"size"`
	HitRatio float64 `json:"hit_ratio"`
}

type ResetCacheResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Cleared int    `json:"cleared"`
}

type ListAdaptersResponse struct {
	Adapters []string `json:"adapters"`
}

type ListSourcesResponse struct {
	Sources []string `json:"sources"`
}

type RemoveSourceRequest struct {
	Name string `json:"name"`
}

type SourceControlResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	CurrentState string `json:"current_state"`
}
