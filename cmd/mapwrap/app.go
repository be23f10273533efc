package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"mapped-wrap/internal/config"
	"mapped-wrap/internal/deform"
	"mapped-wrap/internal/logging"
	"mapped-wrap/internal/metrics"
	"mapped-wrap/internal/rig"
	"mapped-wrap/internal/scene"
	"mapped-wrap/internal/store"
	"mapped-wrap/internal/store/file"
	"mapped-wrap/internal/store/redis"

	"github.com/spf13/cobra"
)

// app is the state shared by every command: the loaded scene, the deformers
// restored from the store, and the rig built over them.
type app struct {
	cfg     config.Config
	log     *slog.Logger
	scene   *scene.Scene
	store   store.Store
	metrics *metrics.Recorder
	rig     *rig.Rig
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	flags := config.Flags{}
	flags.Scene, _ = cmd.Flags().GetString("scene")
	flags.Store, _ = cmd.Flags().GetString("store")
	flags.LogLevel, _ = cmd.Flags().GetString("log-level")
	flags.OutputDir, _ = cmd.Flags().GetString("output")
	flags.Workers, _ = cmd.Flags().GetInt("workers")
	if cmd.Flags().Changed("tolerance") {
		tol, _ := cmd.Flags().GetFloat64("tolerance")
		flags.Tolerance = &tol
	}
	if err := cfg.Resolve(flags); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func openStore(cfg config.Config) store.Store {
	if cfg.Store == config.StoreRedis {
		return redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redis.WithPrefix(cfg.RedisPrefix))
	}
	return file.New(cfg.StoreDir)
}

// openApp loads config, scene and persisted deformers.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if cfg.Scene == "" {
		return nil, errors.New("no scene given; use --scene or the config file")
	}

	sc, err := scene.Load(cfg.Scene)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		log:     logging.NewWriter(cmd.ErrOrStderr(), level),
		scene:   sc,
		store:   openStore(cfg),
		metrics: metrics.New(),
	}

	mode := deform.WeightSquared
	if cfg.LinearEnvelope {
		mode = deform.WeightLinear
	}
	a.rig = rig.New(sc, rig.WithLogger(a.log), rig.WithWeightMode(mode), rig.WithMetrics(a.metrics))

	states, err := store.LoadAll(cmd.Context(), a.store)
	if err != nil {
		a.close()
		return nil, err
	}
	if err := a.rig.Restore(states...); err != nil {
		a.close()
		return nil, err
	}
	a.log.Debug("app ready", "scene", cfg.Scene, "store", cfg.Store, "deformers", len(states))
	return a, nil
}

// save persists one deformer.
func (a *app) save(ctx context.Context, ref string) error {
	s, err := a.rig.Deformer(ref)
	if err != nil {
		return err
	}
	if err := a.store.Save(ctx, s); err != nil {
		return fmt.Errorf("save %s: %w", s.Name, err)
	}
	return nil
}

func (a *app) close() {
	if c, ok := a.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.log.Warn("closing store", "err", err)
		}
	}
}
