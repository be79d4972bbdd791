package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"github.com/urfave/cli"

	"github.com/Versifine/strafe/internal/character"
	"github.com/Versifine/strafe/internal/config"
	"github.com/Versifine/strafe/internal/debug"
	"github.com/Versifine/strafe/internal/event"
	"github.com/Versifine/strafe/internal/locomotion"
	"github.com/Versifine/strafe/internal/logger"
	"github.com/Versifine/strafe/internal/stream"
	"github.com/Versifine/strafe/internal/world"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	app := makeapp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("strafe failed", "error", err)
		os.Exit(1)
	}
}

func makeapp() *cli.App {
	app := cli.NewApp()
	app.Name = "strafe"
	app.Usage = "quake-style locomotion sandbox"

	configFlag := cli.StringFlag{Name: "config", Value: defaultConfigPath, Usage: "Path to the YAML config"}

	app.Commands = []cli.Command{
		{
			Name:  "console",
			Usage: "Drive a character from the terminal",
			Flags: []cli.Flag{configFlag},
			Action: func(c *cli.Context) error {
				return consoleAction(c.String("config"))
			},
		},
		{
			Name:  "simulate",
			Usage: "Run a headless simulation and log a summary",
			Flags: []cli.Flag{
				configFlag,
				cli.IntFlag{Name: "ticks", Value: 600, Usage: "Number of ticks to run"},
				cli.BoolFlag{Name: "forward", Usage: "Hold forward the whole run"},
				cli.IntFlag{Name: "jump-every", Value: 0, Usage: "Press jump every N ticks (0 disables)"},
				cli.Float64Flag{Name: "yaw", Value: 0, Usage: "Heading in degrees"},
				cli.BoolFlag{Name: "realtime", Usage: "Pace ticks to wall time instead of running flat out"},
			},
			Action: func(c *cli.Context) error {
				return simulateAction(c.String("config"), simulateOptions{
					ticks:     c.Int("ticks"),
					forward:   c.Bool("forward"),
					jumpEvery: c.Int("jump-every"),
					yaw:       c.Float64("yaw"),
					realtime:  c.Bool("realtime"),
				})
			},
		},
	}

	return app
}

// setup loads the config and installs the process logger. The returned
// func releases the log file, if any.
func setup(path string) (*config.Config, func(), error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	logCfg := logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format}
	if cfg.Logging.File != "" {
		f, err := logger.OpenFile(cfg.Logging.File)
		if err != nil {
			return nil, nil, errors.Wrap(err, "set up logging")
		}
		logCfg.Output = f
		cleanup = func() { _ = f.Close() }
	}
	logger.Init(logCfg)
	return cfg, cleanup, nil
}

// buildArena lays a flat floor plus a step and a crouch tunnel to try the
// collider against.
func buildArena(halfSize int) *world.Terrain {
	t := world.FlatTerrain(halfSize)
	if halfSize < 8 {
		return t
	}
	t.Fill(4, 0, -2, 4, 0, 2, true)
	t.Fill(-6, 1, -2, -3, 1, 2, true)
	return t
}

func startStream(ctx context.Context, cfg *config.Config) *stream.Hub {
	if !cfg.Stream.Enabled {
		return nil
	}
	hub := stream.NewHub(stream.DefaultBufferSize)
	go func() {
		if err := hub.Serve(ctx, cfg.Stream.Listen); err != nil {
			slog.Error("Stream server stopped", "error", err)
		}
	}()
	return hub
}

// worldDriver routes console ticks through the world so watchers see them.
type worldDriver struct {
	*character.Character
	world *world.World
	id    uuid.UUID
	hub   *stream.Hub
}

func (d *worldDriver) Tick(in locomotion.Input, dt float64) error {
	tick, err := d.world.Step(map[uuid.UUID]locomotion.Input{d.id: in}, dt)
	if err != nil {
		return err
	}
	if d.hub != nil {
		d.hub.Broadcast(tick, d.world.Snapshots())
	}
	return nil
}

func consoleAction(configPath string) error {
	cfg, cleanup, err := setup(configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := event.NewBus()
	event.LogAll(bus)

	w := world.New(buildArena(cfg.Simulation.ArenaSize), cfg.Locomotion, bus)
	id := w.Spawn(mgl64.Vec3(cfg.Simulation.Spawn))
	ch, _ := w.Character(id)

	driver := &worldDriver{Character: ch, world: w, id: id, hub: startStream(ctx, cfg)}
	interval := time.Second / time.Duration(cfg.Simulation.TickRate)
	return debug.NewConsole(driver, interval).Start(ctx)
}

type simulateOptions struct {
	ticks     int
	forward   bool
	jumpEvery int
	yaw       float64
	realtime  bool
}

func (o simulateOptions) input(tick uint64) locomotion.Input {
	in := locomotion.Input{Yaw: o.yaw}
	if o.forward {
		in.Move = mgl64.Vec2{0, 1}
	}
	if o.jumpEvery > 0 && tick%uint64(o.jumpEvery) == 0 {
		in.Jump = true
	}
	return in
}

func simulateAction(configPath string, opts simulateOptions) error {
	cfg, cleanup, err := setup(configPath)
	if err != nil {
		return err
	}
	defer cleanup()
	if opts.ticks <= 0 {
		return errors.Errorf("ticks must be > 0, got %d", opts.ticks)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := event.NewBus()
	event.LogAll(bus)
	var jumps, landings atomic.Int64
	bus.Subscribe(event.EventJump, func(any) { jumps.Add(1) })
	bus.Subscribe(event.EventLanded, func(any) { landings.Add(1) })

	w := world.New(buildArena(cfg.Simulation.ArenaSize), cfg.Locomotion, bus)
	id := w.Spawn(mgl64.Vec3(cfg.Simulation.Spawn))
	hub := startStream(ctx, cfg)
	log := logger.Component("simulate")

	inputs := func(tick uint64) map[uuid.UUID]locomotion.Input {
		return map[uuid.UUID]locomotion.Input{id: opts.input(tick)}
	}
	rate := uint64(cfg.Simulation.TickRate)
	observe := func(tick uint64, snaps []character.Snapshot) {
		if hub != nil {
			hub.Broadcast(tick, snaps)
		}
		if tick%rate == 0 && len(snaps) > 0 {
			s := snaps[0]
			log.Info("Simulation progress", "tick", tick, "position", s.Position, "speed", s.Speed, "grounded", s.Grounded)
		}
	}

	start := time.Now()
	if opts.realtime {
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		err = w.Run(runCtx, cfg.Simulation.TickRate, inputs, func(tick uint64, snaps []character.Snapshot) {
			observe(tick, snaps)
			if tick >= uint64(opts.ticks) {
				cancel()
			}
		})
	} else {
		err = runFlat(ctx, w, opts.ticks, cfg.Simulation.TickInterval(), inputs, observe)
	}
	if err != nil {
		return err
	}

	bus.Wait()
	ch, _ := w.Character(id)
	final := ch.Snapshot()
	log.Info("Simulation finished",
		"ticks", w.Tick(),
		"sim_seconds", float64(w.Tick())*cfg.Simulation.TickInterval(),
		"wall", time.Since(start).Round(time.Millisecond).String(),
		"position", final.Position,
		"speed", final.Speed,
		"jumps", jumps.Load(),
		"landings", landings.Load(),
	)
	return nil
}

func runFlat(ctx context.Context, w *world.World, ticks int, dt float64, inputs world.InputFunc, observe world.Observer) error {
	for i := 0; i < ticks; i++ {
		if ctx.Err() != nil {
			return nil
		}
		tick, err := w.Step(inputs(w.Tick()+1), dt)
		if err != nil {
			return err
		}
		observe(tick, w.Snapshots())
	}
	return nil
}
