package main

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"sleeptimer/internal/core/input"
	"sleeptimer/internal/core/session"
	"sleeptimer/internal/host"
	"sleeptimer/internal/platform"
	"sleeptimer/internal/player"
	"sleeptimer/internal/storage"
)

// runtime is one wired session host and its platform attachments.
type runtime struct {
	log   zerolog.Logger
	guard *platform.InstanceGuard
	store *storage.Store
	host  *host.Host
	keys  *platform.MediaKeys
}

func (c *cli) configDir() (string, error) {
	if c.cfg.ConfigDir != "" {
		return c.cfg.ConfigDir, nil
	}
	return storage.DefaultConfigDir(appName)
}

func (c *cli) startRuntime() (*runtime, error) {
	log := c.log

	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		return nil, err
	}

	dir, err := c.configDir()
	if err != nil {
		_ = guard.Release()
		return nil, err
	}
	store, err := storage.OpenStore(dir)
	if err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("settings unreadable, using defaults")
	}
	if c.opts.minutes != 0 {
		if err := store.SetDurationMinutes(c.opts.minutes); err != nil {
			log.Warn().Err(err).Msg("duration not persisted")
		}
	}

	notifier := platform.NewNotifier(displayName)
	gate := platform.NewGate(store.BackgroundAllowed, notifier, log)

	playerName := c.cfg.Player
	if playerName == "" {
		playerName = store.Settings().PlayerBusName
	}
	bridge := player.NewSystemBridge(playerName, platform.MediaKeysBusName, log)

	clock := clockwork.NewRealClock()
	controller := session.New(c.cfg.SessionConfig(store.DurationMinutes()), bridge, session.Options{
		Clock:  clock,
		Logger: log,
	})
	coordinator := input.NewCoordinator(c.cfg.InputConfig(), clock, log)
	sessionHost := host.New(controller, coordinator, gate, store, log)

	rt := &runtime{log: log, guard: guard, store: store, host: sessionHost}

	keys, err := platform.ListenMediaKeys(platform.MediaKeysBusName, sessionHost.HandleButton, sessionHost.Shutdown, log)
	if err != nil {
		log.Warn().Err(err).Msg("media keys unavailable")
	} else {
		rt.keys = keys
		stream, _ := sessionHost.Subscribe()
		go keys.Follow(stream)
	}

	completions, _ := sessionHost.Subscribe()
	go platform.WatchCompletions(completions, notifier, log)

	guard.Serve(func() string {
		return statusLine(sessionHost.Snapshot())
	})

	log.Info().
		Str("config_dir", dir).
		Int("minutes", store.DurationMinutes()).
		Bool("permitted", gate.IsPermitted()).
		Msg("sleep timer ready")
	return rt, nil
}

// Close shuts the session down and releases platform resources.
func (rt *runtime) Close() error {
	rt.host.Shutdown()
	if err := rt.keys.Close(); err != nil {
		rt.log.Warn().Err(err).Msg("close media keys")
	}
	if err := rt.guard.Release(); err != nil {
		return fmt.Errorf("release instance lock: %w", err)
	}
	return nil
}
