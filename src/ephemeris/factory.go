package ephemeris

import (
	"fmt"

	"astrografia/src/interfaces"
	"astrografia/src/logger"
	"astrografia/src/models"
)

// NewFromConfig builds the configured adapter chain wrapped in the chart cache.
func NewFromConfig(cfg *models.MConfig, netMgr interfaces.INetworkManager, cache interfaces.IChartCache, log *logger.Logger) (*Cached, *Chain, error) {
	var adapters []interfaces.IEphemeris
	for _, name := range cfg.Ephemeris.Adapters {
		switch name {
		case "meeus":
			m, err := NewMeeusEphemeris(cfg, log.Named("MeeusEphemeris"))
			if err != nil {
				return nil, nil, err
			}
			adapters = append(adapters, m)
		case "remote":
			adapters = append(adapters, NewRemoteEphemeris(cfg, netMgr, log.Named("RemoteEphemeris")))
		case "approx":
			adapters = append(adapters, NewApproxEphemeris(cfg))
		default:
			return nil, nil, fmt.Errorf("unknown ephemeris adapter: %q", name)
		}
	}
	chain := NewChain(log.Named("EphemerisChain"), adapters...)
	return NewCached(chain, cache), chain, nil
}
