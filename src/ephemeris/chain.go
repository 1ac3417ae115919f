package ephemeris

import (
	"context"
	"fmt"
	"strings"

	"astrografia/src/helpers"
	"astrografia/src/interfaces"
	"astrografia/src/logger"
	"astrografia/src/models"
)

// Chain tries adapters in order until one produces a chart.
// Validation errors are returned immediately since no adapter can fix them.
type Chain struct {
	adapters []interfaces.IEphemeris
	Logger   *logger.Logger
}

// -----------------------------------------------------------------------------

func NewChain(log *logger.Logger, adapters ...interfaces.IEphemeris) *Chain {
	return &Chain{adapters: adapters, Logger: log}
}

// -----------------------------------------------------------------------------

func (c *Chain) Name() string {
	names := make([]string, 0, len(c.adapters))
	for _, a := range c.adapters {
		names = append(names, a.Name())
	}
	return strings.Join(names, ">")
}

// -----------------------------------------------------------------------------

// Adapters lists the adapter names in try order.
func (c *Chain) Adapters() []string {
	names := make([]string, 0, len(c.adapters))
	for _, a := range c.adapters {
		names = append(names, a.Name())
	}
	return names
}

// -----------------------------------------------------------------------------

func (c *Chain) ComputeRaw(ctx context.Context, birth models.MBirthData) (*models.MRawChart, error) {
	if len(c.adapters) == 0 {
		return nil, helpers.NewInternalComputationError("no ephemeris adapter configured", nil)
	}

	var failures []string
	var lastErr error
	for _, a := range c.adapters {
		raw, err := a.ComputeRaw(ctx, birth)
		if err == nil {
			return raw, nil
		}
		if helpers.IsValidation(err) {
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.Logger.Warning("ephemeris adapter %s failed: %v", a.Name(), err)
		failures = append(failures, fmt.Sprintf("%s: %v", a.Name(), err))
		lastErr = err
	}

	return nil, helpers.NewInternalComputationError(
		fmt.Sprintf("all ephemeris adapters failed (%s)", strings.Join(failures, "; ")), lastErr)
}
