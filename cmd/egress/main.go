// Egress coordinator - hazard-aware evacuation guidance server.
// Runs the fixed-cadence coordination loop and exposes the REST and
// websocket surface for occupants, sensors, and monitor dashboards.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/egresslab/go-egress/internal/config"
	"github.com/egresslab/go-egress/internal/log"
	"github.com/egresslab/go-egress/pkg/engine"
	"github.com/egresslab/go-egress/pkg/pathfind"
	"github.com/egresslab/go-egress/pkg/web"
)

func main() {
	port := flag.String("port", config.Port(config.DefaultPort), "HTTP listen port")
	logLevel := flag.String("log-level", config.LogLevel("info"), "log level: debug, info, warn, error")
	period := flag.Duration("period", time.Second, "coordination cycle period")
	width := flag.Int("width", config.DefaultGridWidth, "grid width in cells")
	height := flag.Int("height", config.DefaultGridHeight, "grid height in cells")
	floorHeight := flag.Float64("floor-height", config.DefaultFloorHeight, "floor height in meters")
	stale := flag.Duration("stale-timeout", 30*time.Second, "drop occupants silent for this long (0 disables)")
	flag.Parse()

	log.Init(*logLevel)

	cfg := engine.DefaultConfig()
	cfg.CyclePeriod = *period
	cfg.StaleTimeout = *stale
	cfg.Planner.Bounds = pathfind.Bounds{Width: *width, Height: *height}
	cfg.Planner.FloorHeight = *floorHeight

	eng := engine.New(cfg)
	server := web.NewServer(*port, eng)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server.StartAsync()
	log.Info("egress coordinator up",
		"port", *port, "period", *period,
		"grid", map[string]int{"width": *width, "height": *height})

	eng.Run(ctx) // blocks until signal

	if err := server.Shutdown(); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("bye")
}
