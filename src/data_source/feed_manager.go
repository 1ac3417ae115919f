package datasource

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"astrografia/src/interfaces"
	"astrografia/src/logger"
	"astrografia/src/models"
)

const snapshotBuffer = 16

// FeedManager runs a set of snapshot sources and forwards everything they
// produce to the exchanger.
type FeedManager struct {
	Sources   map[string]interfaces.IDataSource
	Exchanger interfaces.IDataExchanger
	Logger    *logger.Logger

	mu         sync.RWMutex
	ctx        context.Context
	cancelFunc context.CancelFunc
	outputChan chan *models.MSkySnapshot
	wg         sync.WaitGroup
	forwardWg  sync.WaitGroup
}

// -----------------------------------------------------------------------------

func NewFeedManager(exchanger interfaces.IDataExchanger, log *logger.Logger, sources ...interfaces.IDataSource) *FeedManager {
	m := &FeedManager{
		Sources:   make(map[string]interfaces.IDataSource),
		Exchanger: exchanger,
		Logger:    log,
	}
	for _, s := range sources {
		m.Sources[s.Name()] = s
	}
	return m
}

// -----------------------------------------------------------------------------

// AddSource registers a source and starts it if the manager is running.
func (m *FeedManager) AddSource(source interfaces.IDataSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := source.Name()
	if _, exists := m.Sources[name]; exists {
		return fmt.Errorf("source %s already exists", name)
	}
	m.Sources[name] = source
	m.Logger.Info("Added source: %s", name)

	if m.ctx != nil {
		if err := source.Start(m.ctx, m.outputChan, &m.wg); err != nil {
			return fmt.Errorf("failed to start source %s: %w", name, err)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// RemoveSource stops and forgets a source.
func (m *FeedManager) RemoveSource(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	source, exists := m.Sources[name]
	if !exists {
		return fmt.Errorf("source %s not found", name)
	}
	if m.ctx != nil {
		if err := source.Stop(); err != nil {
			m.Logger.Warning("Error stopping source %s: %v", name, err)
		}
	}
	delete(m.Sources, name)
	m.Logger.Info("Removed source: %s", name)
	return nil
}

// -----------------------------------------------------------------------------

// SourceNames lists the registered sources in name order.
func (m *FeedManager) SourceNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.Sources))
	for name := range m.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// -----------------------------------------------------------------------------

// Start launches every source and the forwarding loop.
func (m *FeedManager) Start(parentCtx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx != nil {
		return fmt.Errorf("feed manager is already running")
	}

	ctx, cancel := context.WithCancel(parentCtx)
	m.ctx = ctx
	m.cancelFunc = cancel
	m.outputChan = make(chan *models.MSkySnapshot, snapshotBuffer)

	m.forwardWg.Add(1)
	go m.forward(ctx, m.outputChan)

	for _, src := range m.Sources {
		if err := src.Start(ctx, m.outputChan, &m.wg); err != nil {
			m.Logger.Error("Failed to start source %s: %v", src.Name(), err)
			cancel()
			m.ctx = nil
			return err
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// Stop cancels every source and waits for them and the forwarder to exit.
func (m *FeedManager) Stop() error {
	m.mu.Lock()
	if m.ctx == nil {
		m.mu.Unlock()
		return nil
	}
	m.Logger.Info("Stopping feed manager...")
	m.cancelFunc()
	m.ctx = nil
	m.cancelFunc = nil
	m.mu.Unlock()

	m.wg.Wait()
	m.forwardWg.Wait()
	m.Logger.Info("Feed manager stopped.")
	return nil
}

// -----------------------------------------------------------------------------

// Run starts the manager and blocks until ctx is done.
func (m *FeedManager) Run(ctx context.Context) error {
	if err := m.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return m.Stop()
}

// -----------------------------------------------------------------------------

func (m *FeedManager) forward(ctx context.Context, in <-chan *models.MSkySnapshot) {
	defer m.forwardWg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case snapshot := <-in:
			m.Logger.Debug("sky snapshot %d computed in %.3fs", snapshot.Timestamp, snapshot.ComputeSeconds)
			m.Exchanger.Broadcast(snapshot)
		}
	}
}
