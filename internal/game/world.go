package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/driftwood-mud/driftwood/internal/persist"
)

// Publisher delivers out-of-band notices (save announcements, broadcasts)
// to connected players.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// AnnounceSubject is the subject server-wide notices are published on.
const AnnounceSubject = "server-announce"

// World owns the live object registry and its persistence. It restores the
// world at startup and snapshots it periodically from the driver tick.
type World struct {
	registry *Registry
	loader   *persist.Loader
	pub      Publisher

	autosave time.Duration

	mu       sync.Mutex
	saving   bool
	lastSave time.Time
}

type WorldOpt func(*World)

// WithAutosave enables periodic world snapshots. Zero disables them.
func WithAutosave(interval time.Duration) WorldOpt {
	return func(w *World) {
		w.autosave = interval
	}
}

// WithPublisher announces saves to connected players.
func WithPublisher(pub Publisher) WorldOpt {
	return func(w *World) {
		w.pub = pub
	}
}

func NewWorld(registry *Registry, loader *persist.Loader, opts ...WorldOpt) *World {
	w := &World{
		registry: registry,
		loader:   loader,
		lastSave: time.Now(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

func (w *World) Registry() *Registry {
	return w.registry
}

func (w *World) Loader() *persist.Loader {
	return w.loader
}

// Bootstrap warms up the given blueprint paths and restores the last world
// snapshot. It must complete before any player connection is admitted;
// the composition root runs it while building workers, before listeners
// start.
func (w *World) Bootstrap(ctx context.Context, preload []string) error {
	if len(preload) > 0 {
		res := w.loader.Preload(ctx, preload)
		slog.InfoContext(ctx, "blueprints preloaded",
			"loaded", len(res.Success), "failed", len(res.Failed), "total", res.Total)
	}

	if _, err := w.loader.LoadWorld(ctx); err != nil {
		return fmt.Errorf("restoring world: %w", err)
	}
	return nil
}

// Tick runs the autosave check. It satisfies the driver's Manager interface.
func (w *World) Tick(ctx context.Context) error {
	if w.autosave <= 0 {
		return nil
	}

	w.mu.Lock()
	due := !w.saving && time.Since(w.lastSave) >= w.autosave
	if due {
		w.saving = true
	}
	w.mu.Unlock()

	if !due {
		return nil
	}
	defer func() {
		w.mu.Lock()
		w.saving = false
		w.lastSave = time.Now()
		w.mu.Unlock()
	}()

	// An autosave failure shouldn't kill the tick driver; log and retry on
	// a later tick.
	if err := w.Save(ctx); err != nil {
		slog.WarnContext(ctx, "autosave failed", "error", err)
	}
	return nil
}

// Save snapshots every persisted live object and announces the save.
func (w *World) Save(ctx context.Context) error {
	objs := w.registry.PersistedObjects()
	if err := w.loader.SaveWorld(ctx, objs); err != nil {
		return err
	}

	if w.pub != nil {
		if err := w.pub.Publish(AnnounceSubject, []byte("The world has been saved.")); err != nil {
			slog.WarnContext(ctx, "announcing world save", "error", err)
		}
	}
	return nil
}

// EnsureRoom returns the live room at path, loading its blueprint on
// demand. Returns nil if the path isn't a live or loadable room.
func (w *World) EnsureRoom(ctx context.Context, path string) *Room {
	obj := w.registry.Get(path)
	if obj == nil {
		loaded, err := w.registry.LoadObject(ctx, path)
		if err != nil {
			slog.WarnContext(ctx, "loading room", "path", path, "error", err)
			return nil
		}
		if loaded == nil {
			return nil
		}
		obj = loaded.(Object)
	}

	room, ok := obj.(*Room)
	if !ok {
		return nil
	}
	return room
}
