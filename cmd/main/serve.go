package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"astrografia/src/auth"
	datasource "astrografia/src/data_source"
	"astrografia/src/data_source/sky"
	"astrografia/src/geocoding"
	pb "astrografia/src/grpc_control"
	"astrografia/src/server"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, websocket sky feed and gRPC control plane",
	RunE:  runServe,
}

// -----------------------------------------------------------------------------

func runServe(cmd *cobra.Command, args []string) error {
	c, err := setupCore(cmd)
	if err != nil {
		return err
	}
	defer c.Logger.Sync()

	db, err := setupDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	interpreter, err := setupInterpreter(c)
	if err != nil {
		return err
	}

	srv := server.NewAPIServer(c.Config.MConfig, server.Dependencies{
		Facade:      c.Facade,
		Database:    db,
		Tokens:      auth.NewTokenManager(c.Config.Auth),
		Interpreter: interpreter,
		Geocoder:    geocoding.NewGeocoder(c.Config.MConfig, c.Network, c.Logger.Named("Geocoder")),
	}, c.Logger.Named("APIServer"))

	var feeds pb.FeedController
	var manager *datasource.FeedManager
	if c.Config.Sky.Enabled {
		source := sky.NewSource(c.Config.MConfig, c.Facade, c.Logger.Named("SkySource"))
		manager = datasource.NewFeedManager(srv, c.Logger.Named("FeedManager"), source)
		feeds = manager
	}

	controlLogger := c.Logger.Named("ControlService")
	control := pb.NewServer(c.Config.MConfig, pb.NewControlService(c.Cached, c.Chain, feeds, controlLogger), controlLogger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)
	g.Go(control.Start)
	if manager != nil {
		g.Go(func() error { return manager.Run(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		c.Logger.Info("Shutting down...")
		control.Stop()
		return srv.Stop()
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		c.Logger.Error("Server failed: %v", err)
		return err
	}
	c.Logger.Info("Shutdown complete.")
	return nil
}
