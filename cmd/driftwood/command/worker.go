package command

import (
	"context"
	"fmt"
	"time"

	"github.com/driftwood-mud/driftwood/internal/commands"
	"github.com/driftwood-mud/driftwood/internal/driver"
	"github.com/driftwood-mud/driftwood/internal/game"
	"github.com/driftwood-mud/driftwood/internal/listener"
	"github.com/driftwood-mud/driftwood/internal/persist"
	"github.com/driftwood-mud/driftwood/internal/player"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Blueprint definitions and the live object registry
	dict, err := cfg.Storage.BuildDictionary()
	if err != nil {
		return nil, fmt.Errorf("loading blueprint assets: %w", err)
	}
	registry := game.NewRegistry(dict)

	// Persistence: save-file store and the world loader
	store, err := cfg.Persist.BuildStore()
	if err != nil {
		return nil, fmt.Errorf("creating save store: %w", err)
	}
	loader, err := cfg.Persist.BuildLoader(store, persist.LoaderConfig{
		LoadObject:  registry.LoadObject,
		CloneObject: registry.CloneObject,
		FindObject:  registry.FindObject,
	})
	if err != nil {
		return nil, fmt.Errorf("creating loader: %w", err)
	}

	// Messaging
	nats, err := cfg.Nats.BuildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	world := game.NewWorld(registry, loader,
		game.WithAutosave(cfg.Persist.autosave()),
		game.WithPublisher(nats),
	)

	// Restore the world before any listener can admit a player.
	if err := world.Bootstrap(context.Background(), cfg.Persist.Preload); err != nil {
		return nil, err
	}

	cmdHandler := commands.NewHandler(world, nats)
	playerManager := player.NewPlayerManager(world, cmdHandler, nats, store, cfg.Player.Blueprint, cfg.Player.StartRoom)
	connManager := listener.NewConnectionManager(playerManager)

	// Create Listeners
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		worker, err := l.BuildListener(connManager)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = worker
	}

	tick, err := time.ParseDuration(cfg.TickInterval)
	if err != nil {
		return nil, fmt.Errorf("parsing tick_interval: %w", err)
	}

	return service.WorkerList{
		"nats":      nats,
		"driver":    driver.NewDriver([]driver.Manager{world}, driver.WithTickLength(tick)),
		"players":   playerManager,
		"listeners": &listeners,
	}, nil
}
