package persist

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-errors"
)

// The adapter trio is the loader's entire surface into the object system:
// any implementation that can load a blueprint singleton, mint a fresh clone
// from a blueprint, and look up an already-live object can be substituted
// without touching loader internals.
type (
	// ObjectLoaderFunc loads the blueprint singleton at path. It returns
	// (nil, nil) when no such blueprint exists.
	ObjectLoaderFunc func(ctx context.Context, path string) (Object, error)

	// ObjectClonerFunc instantiates a new clone from the blueprint at path.
	ObjectClonerFunc func(ctx context.Context, path string) (Object, error)

	// FindObjectFunc looks up an already-live object by its exact path,
	// clone ordinal included. No suffix-stripping fallback: "/items/sword"
	// never matches "/items/sword#3".
	FindObjectFunc func(path string) Object
)

type LoaderConfig struct {
	Store      *FileStore
	Serializer *Serializer

	LoadObject  ObjectLoaderFunc
	CloneObject ObjectClonerFunc
	FindObject  FindObjectFunc

	// VoidRoom is the room path new players fall back to when their start
	// room can't be loaded.
	VoidRoom string
}

func (c *LoaderConfig) Validate() error {
	el := errors.NewErrorList()

	if c.Store == nil {
		el.Add(fmt.Errorf("store is required"))
	}
	if c.Serializer == nil {
		el.Add(fmt.Errorf("serializer is required"))
	}
	if c.LoadObject == nil {
		el.Add(fmt.Errorf("load object func is required"))
	}
	if c.CloneObject == nil {
		el.Add(fmt.Errorf("clone object func is required"))
	}
	if c.FindObject == nil {
		el.Add(fmt.Errorf("find object func is required"))
	}

	return el.Err()
}

// Loader orchestrates blueprint preload, whole-world save/restore, and
// player load/create. It delegates bytes to the FileStore, per-object
// conversion to the Serializer, and instantiation/lookup to the injected
// object-system adapter.
type Loader struct {
	store *FileStore
	ser   *Serializer

	loadObject  ObjectLoaderFunc
	cloneObject ObjectClonerFunc
	findObject  FindObjectFunc

	voidRoom string
}

func NewLoader(cfg LoaderConfig) (*Loader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("loader config: %w", err)
	}

	return &Loader{
		store:       cfg.Store,
		ser:         cfg.Serializer,
		loadObject:  cfg.LoadObject,
		cloneObject: cfg.CloneObject,
		findObject:  cfg.FindObject,
		voidRoom:    cfg.VoidRoom,
	}, nil
}

// PreloadResult reports the outcome of a best-effort bulk preload.
type PreloadResult struct {
	Success []string
	Failed  []string
	Total   int
}

// Preload warms up each blueprint path independently. A failure on one path
// is recorded and does not abort the batch; there is no rollback.
func (l *Loader) Preload(ctx context.Context, paths []string) PreloadResult {
	res := PreloadResult{Total: len(paths)}

	for _, path := range paths {
		obj, err := l.loadObject(ctx, path)
		if err != nil {
			slog.WarnContext(ctx, "preload failed", "path", path, "error", err)
			res.Failed = append(res.Failed, path)
			continue
		}
		if obj == nil {
			slog.WarnContext(ctx, "preload found no blueprint", "path", path)
			res.Failed = append(res.Failed, path)
			continue
		}
		res.Success = append(res.Success, path)
	}

	return res
}

// WorldResult reports entity-level outcomes of a world restore. Failures to
// resolve an environment reference degrade silently to "unparented" and are
// not counted here.
type WorldResult struct {
	Loaded  int
	Failed  int
	Skipped int
}

// LoadWorld restores the last world snapshot. It runs in two passes:
// materialize every entity first, then wire environment references. The
// split exists because environment references are forward references in
// file order: an item's container may appear later in the unordered list
// than the item itself, or not at all if it's a static blueprint room. A
// single pass would fail or succeed depending on list ordering; splitting
// materialization from wiring makes the restore order-independent.
//
// LoadWorld is a one-shot startup operation: it must complete before the
// server admits player connections.
func (l *Loader) LoadWorld(ctx context.Context) (WorldResult, error) {
	var res WorldResult

	ws := l.store.LoadWorldState()
	if ws == nil {
		// Fresh world, nothing to restore.
		return res, nil
	}

	start := time.Now()

	// Pass 1: instantiate every entity and apply its scalar fields. An
	// entity that fails here will not exist as a container or containee in
	// pass 2.
	live := make(map[string]Object, len(ws.Objects))
	for _, st := range ws.Objects {
		obj := l.materialize(ctx, st, &res)
		if obj != nil {
			live[st.ObjectPath] = obj
		}
	}

	// Pass 2: wire environment references, resolving against this restore's
	// objects first and falling back to the live registry for objects that
	// existed independently (static rooms loaded as blueprints).
	for _, st := range ws.Objects {
		if st.Environment == nil {
			continue
		}
		obj, ok := live[st.ObjectPath]
		if !ok {
			continue
		}

		env := live[st.Environment.Path]
		if env == nil {
			env = l.findObject(st.Environment.Path)
		}
		if env == nil {
			// The container no longer exists; the object stays unparented.
			slog.WarnContext(ctx, "environment not found, leaving object unparented",
				"object", st.ObjectPath, "environment", st.Environment.Path)
			continue
		}

		if err := obj.MoveTo(env); err != nil {
			slog.WarnContext(ctx, "moving restored object into environment",
				"object", st.ObjectPath, "environment", st.Environment.Path, "error", err)
		}
	}

	slog.InfoContext(ctx, "world restored",
		"loaded", res.Loaded, "failed", res.Failed, "skipped", res.Skipped,
		"duration", time.Since(start))

	return res, nil
}

func (l *Loader) materialize(ctx context.Context, st ObjectState, res *WorldResult) Object {
	id, err := ParseObjectID(st.ObjectPath)
	if err != nil {
		slog.WarnContext(ctx, "skipping snapshot entry with bad path", "path", st.ObjectPath, "error", err)
		res.Skipped++
		return nil
	}

	var obj Object
	if st.IsClone {
		obj, err = l.cloneObject(ctx, id.Blueprint())
	} else {
		obj, err = l.loadObject(ctx, st.ObjectPath)
	}
	if err != nil {
		slog.WarnContext(ctx, "instantiating saved object", "path", st.ObjectPath, "error", err)
		res.Failed++
		return nil
	}
	if obj == nil {
		slog.WarnContext(ctx, "blueprint for saved object no longer exists", "path", st.ObjectPath)
		res.Skipped++
		return nil
	}

	if err := l.ser.Deserialize(st, obj); err != nil {
		slog.WarnContext(ctx, "restoring saved object state", "path", st.ObjectPath, "error", err)
		res.Failed++
		return nil
	}

	res.Loaded++
	return obj
}

// SaveWorld serializes every given object into one snapshot and writes it
// atomically. An object that fails to serialize is logged and left out; its
// failure never aborts the rest of the snapshot.
func (l *Loader) SaveWorld(ctx context.Context, objects []Object) error {
	ws := &WorldState{Objects: make([]ObjectState, 0, len(objects))}

	for _, obj := range objects {
		st, err := l.ser.Serialize(obj)
		if err != nil {
			slog.WarnContext(ctx, "serializing object", "object", obj.ID().String(), "error", err)
			continue
		}
		ws.Objects = append(ws.Objects, st)
	}

	if err := l.store.SaveWorldState(ws); err != nil {
		return fmt.Errorf("writing world snapshot: %w", err)
	}

	slog.InfoContext(ctx, "world saved", "objects", len(ws.Objects))
	return nil
}

// LoadPlayer restores the player saved under name, cloning a fresh object
// from blueprint. It returns (nil, nil) when no save exists; the caller
// decides whether to create a new character.
//
// A single player name must not have two loads in flight at once; the
// session layer serializes login attempts per name.
func (l *Loader) LoadPlayer(ctx context.Context, name string, blueprint string) (Object, error) {
	save := l.store.LoadPlayer(name)
	if save == nil {
		return nil, nil
	}

	// Each login gets an independent clone, never a cached instance.
	obj, err := l.cloneObject(ctx, blueprint)
	if err != nil {
		return nil, fmt.Errorf("cloning player blueprint %q: %w", blueprint, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("player blueprint %q not found", blueprint)
	}

	if err := l.ser.Deserialize(save.State, obj); err != nil {
		slog.WarnContext(ctx, "restoring player fields", "player", name, "error", err)
	}

	// The Restorable hook covers player-specific state the generic
	// serializer doesn't know about. Without it, at minimum the saved name
	// is applied so the object is never nameless.
	if r, ok := obj.(Restorable); ok {
		if err := r.RestoreSave(save); err != nil {
			slog.WarnContext(ctx, "player restore hook", "player", name, "error", err)
		}
	} else if n, ok := obj.(Nameable); ok {
		n.SetName(save.Name)
	}

	if save.Location != "" {
		if room := l.findObject(save.Location); room != nil {
			if err := obj.MoveTo(room); err != nil {
				slog.WarnContext(ctx, "moving player to saved location", "player", name, "location", save.Location, "error", err)
			}
		} else {
			// The room was removed or renamed since last save. Refusing
			// login over a stale location would be worse than a wrong
			// starting room, so the player stays wherever the clone
			// defaults to.
			slog.WarnContext(ctx, "saved location no longer exists", "player", name, "location", save.Location)
		}
	}

	return obj, nil
}

// CreatePlayer clones a fresh player from blueprint, names it, and moves it
// to startRoom, loading the room blueprint on demand and falling back to
// the configured void room. This is the new-character path; it shares no
// state with LoadPlayer.
func (l *Loader) CreatePlayer(ctx context.Context, name string, blueprint string, startRoom string) (Object, error) {
	obj, err := l.cloneObject(ctx, blueprint)
	if err != nil {
		return nil, fmt.Errorf("cloning player blueprint %q: %w", blueprint, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("player blueprint %q not found", blueprint)
	}

	if n, ok := obj.(Nameable); ok {
		n.SetName(name)
	}

	room := l.resolveRoom(ctx, startRoom)
	if room == nil && l.voidRoom != "" && startRoom != l.voidRoom {
		slog.WarnContext(ctx, "start room unavailable, using void room", "room", startRoom, "void", l.voidRoom)
		room = l.resolveRoom(ctx, l.voidRoom)
	}
	if room != nil {
		if err := obj.MoveTo(room); err != nil {
			slog.WarnContext(ctx, "moving new player to start room", "player", name, "error", err)
		}
	}

	return obj, nil
}

func (l *Loader) resolveRoom(ctx context.Context, path string) Object {
	if path == "" {
		return nil
	}
	if room := l.findObject(path); room != nil {
		return room
	}

	room, err := l.loadObject(ctx, path)
	if err != nil {
		slog.WarnContext(ctx, "loading room blueprint", "room", path, "error", err)
		return nil
	}
	return room
}

// SavePlayer captures obj into save's embedded state, stamps the current
// location and time, and writes the save file atomically.
func (l *Loader) SavePlayer(ctx context.Context, save *PlayerSaveData, obj Object) error {
	st, err := l.ser.Serialize(obj)
	if err != nil {
		return fmt.Errorf("serializing player %q: %w", save.Name, err)
	}
	save.State = st

	save.Location = ""
	if env := obj.Environment(); env != nil {
		save.Location = env.ID().String()
	}
	save.LastSeen = time.Now().UTC()

	return l.store.SavePlayer(save)
}

// PlayerExists is a passthrough to the store's existence check, kept here
// for API ergonomics.
func (l *Loader) PlayerExists(name string) bool {
	return l.store.PlayerExists(name)
}
