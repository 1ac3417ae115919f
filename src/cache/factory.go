package cache

import (
	"astrografia/src/interfaces"
	"astrografia/src/logger"
	"astrografia/src/models"
)

// NewFromConfig returns the LRU cache, tiered over Redis when enabled.
// An unreachable Redis degrades to the LRU alone.
func NewFromConfig(cfg models.MCacheConfig, log *logger.Logger) (interfaces.IChartCache, error) {
	local, err := NewLRU(cfg.Size)
	if err != nil {
		return nil, err
	}
	if !cfg.RedisEnabled {
		return local, nil
	}
	shared, err := NewRedis(cfg, log)
	if err != nil {
		log.Warning("redis cache disabled: %v", err)
		return local, nil
	}
	log.Info("chart cache tiered over redis at %s", cfg.RedisAddr)
	return NewTiered(local, shared), nil
}
