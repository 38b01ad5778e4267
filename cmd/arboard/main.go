package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"

	"github.com/spatialsync/arboard/internal/config"
	"github.com/spatialsync/arboard/internal/core/events"
	"github.com/spatialsync/arboard/internal/core/observability/log"
	"github.com/spatialsync/arboard/internal/core/session"
	"github.com/spatialsync/arboard/internal/core/tracking"
	"github.com/spatialsync/arboard/internal/injector"
	"github.com/spatialsync/arboard/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := injector.BuildLogger(cfg)

	bus := events.NewBus()
	sim := tracking.NewSimulator(simulatorConfig(cfg.Simulation))
	sess := session.New(session.Config{
		AspectRatio:    cfg.Board.AspectRatio,
		MinHitDistance: cfg.Board.MinHitDistance,
	}, sim, bus, logger)
	srv := server.New(cfg.Server, sess, bus, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting",
		log.String("listen_addr", cfg.Server.ListenAddr),
		log.Int("frame_rate", cfg.Simulation.FrameRate))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx)
	})
	g.Go(func() error {
		interval := time.Second / time.Duration(cfg.Simulation.FrameRate)
		return sess.Run(ctx, interval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("exited", log.Error(err))
		os.Exit(1)
	}
	logger.Info("stopped")
}

func simulatorConfig(c config.SimulationConfig) tracking.SimulatorConfig {
	cfg := tracking.DefaultSimulatorConfig()
	cfg.Seed = c.Seed
	cfg.PlaneYaw = c.PlaneYaw
	cfg.PlaneExtent = mgl64.Vec2{c.PlaneWidth, c.PlaneDepth}
	cfg.PositionJitter = c.PositionJitter
	cfg.YawJitter = c.YawJitter
	cfg.HitDropout = c.HitDropout
	cfg.PlaneDropout = c.PlaneDropout
	return cfg
}
