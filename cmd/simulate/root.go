package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ramsesyok/billiards/internal/config"
	"github.com/ramsesyok/billiards/internal/game"
	"github.com/ramsesyok/billiards/internal/observability"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Summary is the final report printed after a run.
type Summary struct {
	Frames        int        `json:"frames"`
	Elapsed       float64    `json:"elapsed"`
	Settled       bool       `json:"settled"`
	KineticEnergy float64    `json:"kinetic_energy"`
	Momentum      game.Vec2  `json:"momentum"`
	Frame         game.Frame `json:"frame"`
}

// newRootCmd builds the simulate command. Flags may also be set through
// BILLIARDS_SIM_<FLAG> environment variables.
func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("BILLIARDS_SIM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a headless billiards break and print the resulting frame as JSON.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// stdout carries the JSON output.
			observability.Initialize(config.LoggerConfig{
				ServiceName: "billiards-simulate",
				Level:       v.GetString("log-level"),
				Format:      "console",
			}, zapcore.Lock(os.Stderr))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			defer observability.Sync()
			return runSimulation(cmd, v)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.Flags()
	f.String("rack", "nine-ball", "rack layout: "+strings.Join(game.RackNames(), ", "))
	f.Float64("dt", 1.0/60, "seconds per frame")
	f.Int("frames", 600, "frames to simulate")
	f.Bool("until-rest", false, "stop as soon as every ball is at rest (bounded by --max-frames)")
	f.Int("max-frames", 100000, "frame limit for --until-rest")
	f.Int("every", 0, "also print every Nth frame as a JSON line (0 disables)")

	f.Float64("width", game.NineFootTableWidth, "table width in metres")
	f.Float64("height", game.NineFootTableHeight, "table height in metres")
	f.Float64("radius", game.DefaultBallRadius, "ball radius in metres")
	f.Float64("friction", game.DefaultFriction, "rolling friction coefficient")
	f.Float64("magnus", game.DefaultMagnus, "Magnus coefficient")
	f.Float64("spin-decay", game.DefaultSpinDecay, "spin decay rate per second")

	f.Float64("cue-x", 0, "cue ball x (default: a fifth of the width)")
	f.Float64("cue-y", 0, "cue ball y (default: half the height)")
	f.Float64("cue-vx", 3.0, "cue ball x velocity")
	f.Float64("cue-vy", 1.0, "cue ball y velocity")
	f.Float64("cue-spin", 30.0, "cue ball spin")

	f.String("log-level", "warn", "log level")

	_ = v.BindPFlags(f)
	return cmd
}

func runSimulation(cmd *cobra.Command, v *viper.Viper) error {
	logger := observability.GetLogger().Named("simulate")

	dt := v.GetFloat64("dt")
	frames := v.GetInt("frames")
	untilRest := v.GetBool("until-rest")
	if dt <= 0 {
		return errors.New("--dt must be positive")
	}
	limit := frames
	if untilRest {
		limit = v.GetInt("max-frames")
	}
	if limit < 0 {
		return errors.New("frame limit must not be negative")
	}

	table := game.Table{
		Width:     v.GetFloat64("width"),
		Height:    v.GetFloat64("height"),
		Friction:  v.GetFloat64("friction"),
		Magnus:    v.GetFloat64("magnus"),
		SpinDecay: v.GetFloat64("spin-decay"),
	}
	if table.Width <= 0 || table.Height <= 0 {
		return fmt.Errorf("table size must be positive, got %vx%v", table.Width, table.Height)
	}
	radius := v.GetFloat64("radius")

	b := game.DefaultBreak(table.Width, table.Height, radius)
	offsets, err := game.RackByName(v.GetString("rack"), radius)
	if err != nil {
		return err
	}
	b.RackOffsets = offsets
	if v.IsSet("cue-x") {
		b.CuePos.X = v.GetFloat64("cue-x")
	}
	if v.IsSet("cue-y") {
		b.CuePos.Y = v.GetFloat64("cue-y")
	}
	b.CueVel = game.NewVec2(v.GetFloat64("cue-vx"), v.GetFloat64("cue-vy"))
	b.CueSpin = v.GetFloat64("cue-spin")

	engine := table.NewEngine()
	b.Apply(engine)
	logger.Info("Simulation started",
		zap.Int("balls", len(engine.Balls())), zap.Float64("dt", dt), zap.Int("limit", limit))

	enc := json.NewEncoder(cmd.OutOrStdout())
	every := v.GetInt("every")
	n, elapsed := 0, 0.0
	for n < limit {
		if untilRest && engine.AllStopped() {
			break
		}
		engine.Update(dt)
		n++
		elapsed += dt
		if every > 0 && n%every == 0 {
			if err := enc.Encode(engine.Snapshot(n, elapsed)); err != nil {
				return fmt.Errorf("write frame: %w", err)
			}
		}
	}

	summary := Summary{
		Frames:        n,
		Elapsed:       elapsed,
		Settled:       engine.AllStopped(),
		KineticEnergy: engine.KineticEnergy(),
		Momentum:      engine.Momentum(),
		Frame:         engine.Snapshot(n, elapsed),
	}
	logger.Info("Simulation finished",
		zap.Int("frames", n), zap.Bool("settled", summary.Settled))
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
