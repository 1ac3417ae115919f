package main

import (
	"fmt"

	"astrografia/src/analysis"
	"astrografia/src/cache"
	"astrografia/src/config"
	"astrografia/src/ephemeris"
	"astrografia/src/interfaces"
	"astrografia/src/logger"
	"astrografia/src/narrative"
	"astrografia/src/network"
	"astrografia/src/storage"

	"github.com/spf13/cobra"
)

// core bundles the components every command needs.
type core struct {
	Config  *config.Config
	Logger  *logger.Logger
	Network interfaces.INetworkManager
	Cached  *ephemeris.Cached
	Chain   *ephemeris.Chain
	Facade  *analysis.AnalysisFacade
}

// -----------------------------------------------------------------------------

// loadConfig reads the file named by the persistent --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	conf, err := config.NewConfig(path)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return conf, nil
}

// -----------------------------------------------------------------------------

// setupCore builds the network manager, chart cache, ephemeris chain and facade.
func setupCore(cmd *cobra.Command) (*core, error) {
	conf, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	appLogger := logger.NewLogger(conf, conf.Name)

	networkManager := network.NewAsyncNetworkManager(conf.MConfig, appLogger.Named("NetworkManager"))

	chartCache, err := cache.NewFromConfig(conf.Cache, appLogger.Named("ChartCache"))
	if err != nil {
		appLogger.Error("Failed to init chart cache: %v", err)
		return nil, err
	}

	cached, chain, err := ephemeris.NewFromConfig(conf.MConfig, networkManager, chartCache, appLogger)
	if err != nil {
		appLogger.Error("Failed to init ephemeris: %v", err)
		return nil, err
	}
	appLogger.Info("Ephemeris adapters: %v", chain.Adapters())

	return &core{
		Config:  conf,
		Logger:  appLogger,
		Network: networkManager,
		Cached:  cached,
		Chain:   chain,
		Facade:  analysis.NewAnalysisFacade(conf.MConfig, cached, appLogger.Named("Analysis")),
	}, nil
}

// -----------------------------------------------------------------------------

// setupDatabase opens the configured backend and creates its tables.
func setupDatabase(c *core) (interfaces.IDatabase, error) {
	db, err := storage.NewDatabase(c.Config.MConfig, c.Logger.Named("Database"))
	if err != nil {
		c.Logger.Error("Failed to init db: %v", err)
		return nil, err
	}
	if err := db.Initialize(); err != nil {
		c.Logger.Error("Failed to migrate db: %v", err)
		db.Close()
		return nil, err
	}
	return db, nil
}

// -----------------------------------------------------------------------------

// setupInterpreter wraps the configured narrator with retries and fallback.
func setupInterpreter(c *core) (*narrative.Interpreter, error) {
	narrator, err := narrative.NewNarrator(c.Config.Narrative, c.Network)
	if err != nil {
		c.Logger.Error("Failed to init narrator: %v", err)
		return nil, err
	}
	c.Logger.Info("Narrative provider: %s", narrator.Name())
	return narrative.NewInterpreter(narrator, c.Config.Narrative.Retries, c.Logger.Named("Interpreter")), nil
}
