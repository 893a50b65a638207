package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/zeusync/racecollide/internal/core/events/bus"
	"github.com/zeusync/racecollide/internal/core/observability/log"
	"github.com/zeusync/racecollide/internal/injector"
	"github.com/zeusync/racecollide/internal/sim"
)

const (
	flagSettings  = "settings"
	flagShapes    = "shapes"
	flagLevel     = "level"
	flagTick      = "tick"
	flagMaxTicks  = "max-ticks"
	flagAutopilot = "autopilot"
	flagLogLevel  = "log-level"
	flagReport    = "report-every"
)

func main() {
	app := &cli.App{
		Name:  "racesim",
		Usage: "run a headless race through the collision manager",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagSettings,
				Value: "configs/settings.yaml",
				Usage: "numeric game options `FILE`",
			},
			&cli.StringSliceFlag{
				Name:  flagShapes,
				Value: cli.NewStringSlice("configs/shapes.yaml"),
				Usage: "shape catalog `FILE`s, applied in order",
			},
			&cli.StringFlag{
				Name:  flagLevel,
				Value: "configs/level.yaml",
				Usage: "track `FILE`",
			},
			&cli.DurationFlag{
				Name:  flagTick,
				Value: 16 * time.Millisecond,
				Usage: "simulated time per tick",
			},
			&cli.IntFlag{
				Name:  flagMaxTicks,
				Value: 10_000,
				Usage: "stop after this many ticks",
			},
			&cli.BoolFlag{
				Name:  flagAutopilot,
				Value: true,
				Usage: "steer the car towards the next checkpoint",
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Value: "info",
				Usage: "debug, info, warn or error",
			},
			&cli.IntFlag{
				Name:  flagReport,
				Value: 60,
				Usage: "log the race state every N ticks, 0 disables it",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println("Error running race:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := log.NewDevelopment(log.ParseLevel(c.String(flagLogLevel)))

	events := bus.New()
	if _, err := events.Subscribe(bus.Wildcard, logEvent(logger)); err != nil {
		return err
	}

	race, err := injector.InitializeRace(ctx,
		injector.SettingsPath(c.String(flagSettings)),
		injector.ShapePaths(c.StringSlice(flagShapes)),
		injector.Autopilot(c.Bool(flagAutopilot)),
		events,
	)
	if err != nil {
		return err
	}
	defer race.Close()

	level, err := sim.LoadLevelFile(c.String(flagLevel))
	if err != nil {
		return err
	}
	if err = level.Build(race); err != nil {
		return err
	}
	logger.Info("Race loaded",
		log.String("level", level.Name),
		log.Int("objects", len(race.Manager().Objects())),
		log.Float64("check_radius", race.Manager().CheckRadius()),
	)

	snap, err := drive(ctx, race, logger, c.Duration(flagTick), c.Int(flagMaxTicks), c.Int(flagReport))
	if err != nil {
		return err
	}

	metrics := race.Manager().Metrics()
	logger.Info("Race finished",
		log.String("status", snap.Status.String()),
		log.Duration("elapsed", snap.Elapsed),
		log.Int("lap", snap.Lap),
		log.Int("pickups", snap.Pickups),
		log.Int("bounces", snap.Bounces),
		log.Uint64("scans", metrics.Scans),
		log.Uint64("narrow_phase", metrics.NarrowPhase),
		log.Uint64("culled", metrics.PairsCulled),
		log.Duration("last_scan", metrics.LastScan),
		log.Uint64("events", events.GetMetrics().Published),
	)
	return nil
}

func logEvent(logger log.Log) bus.EventHandler {
	return func(e bus.Event) error {
		switch data := e.Data().(type) {
		case sim.CrashEvent:
			logger.Debug("Crash", log.String("obstacle", data.Obstacle), log.Vec3("contact", data.Contact))
		case sim.LapEvent:
			logger.Info("Lap", log.Int("lap", data.Lap), log.Int("laps", data.Laps))
		case sim.FinishedEvent:
			logger.Info("Finish line", log.String("status", data.Status.String()), log.Duration("elapsed", data.Elapsed))
		default:
			logger.Debug("Race event", log.String("type", e.Type()), log.Any("data", data))
		}
		return nil
	}
}

func drive(ctx context.Context, race *sim.Race, logger log.Log, tick time.Duration, maxTicks, reportEvery int) (sim.Snapshot, error) {
	snap := race.Snapshot()
	for i := 1; i <= maxTicks && snap.Status == sim.StatusRunning; i++ {
		select {
		case <-ctx.Done():
			logger.Warn("Race interrupted")
			return snap, nil
		default:
		}

		var err error
		if snap, err = race.Tick(tick); err != nil {
			return snap, err
		}

		if reportEvery > 0 && i%reportEvery == 0 {
			logger.Debug("Race state",
				log.Int("tick", i),
				log.Vec3("car", snap.CarPosition),
				log.Int("next_checkpoint", snap.NextCheckPoint),
				log.Duration("remaining", snap.Remaining),
			)
		}
	}
	return snap, nil
}
