package game

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/driftwood-mud/driftwood/internal/persist"
	"github.com/driftwood-mud/driftwood/internal/storage"
)

// Dictionary bundles the blueprint definition stores, one per entity kind.
// Definition paths follow "/<kind>/<asset id>", e.g. "/items/rusty-sword".
type Dictionary struct {
	Rooms   storage.Storer[*RoomSpec]
	Items   storage.Storer[*ItemSpec]
	Mobiles storage.Storer[*MobileSpec]
	Players storage.Storer[*CharacterSpec]
}

// Registry is the table of live objects. It satisfies the persistence
// loader's adapter trio: LoadObject materializes blueprint singletons,
// CloneObject mints fresh clone instances, and FindObject looks up
// already-live objects by exact path.
type Registry struct {
	dict *Dictionary

	mu       sync.RWMutex
	live     map[string]Object
	ordinals map[string]uint64
}

func NewRegistry(dict *Dictionary) *Registry {
	return &Registry{
		dict:     dict,
		live:     map[string]Object{},
		ordinals: map[string]uint64{},
	}
}

// LoadObject returns the live blueprint singleton for path, constructing it
// from its definition on first use. Returns (nil, nil) when no definition
// exists.
func (r *Registry) LoadObject(ctx context.Context, path string) (persist.Object, error) {
	r.mu.RLock()
	obj, ok := r.live[path]
	r.mu.RUnlock()
	if ok {
		return obj, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under the write lock; another load may have won.
	if obj, ok := r.live[path]; ok {
		return obj, nil
	}

	obj, err := r.construct(persist.BlueprintID(path))
	if err != nil || obj == nil {
		return nil, err
	}

	r.live[path] = obj
	return obj, nil
}

// CloneObject mints a new clone of the blueprint at path. Ordinals are
// per-path, start at 1, and are never reused within a process, so two
// clones of the same blueprint always have distinct identities.
func (r *Registry) CloneObject(ctx context.Context, path string) (persist.Object, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ordinals[path]++
	obj, err := r.construct(persist.CloneID(path, r.ordinals[path]))
	if err != nil || obj == nil {
		return nil, err
	}

	r.live[obj.ID().String()] = obj
	return obj, nil
}

// FindObject looks up a live object by exact path, clone ordinal included.
// A blueprint path never matches a clone of that blueprint and vice versa.
func (r *Registry) FindObject(path string) persist.Object {
	r.mu.RLock()
	defer r.mu.RUnlock()

	obj, ok := r.live[path]
	if !ok {
		return nil
	}
	return obj
}

// Get is FindObject returning the richer game Object.
func (r *Registry) Get(path string) Object {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.live[path]
}

// Remove takes an object out of the live table and out of its container.
// Its contents are left in place, unparented.
func (r *Registry) Remove(obj Object) {
	if env := obj.Environment(); env != nil {
		if h, ok := env.(holder); ok {
			h.detach(obj)
		}
	}
	if b, ok := obj.(interface{ clearEnv() }); ok {
		b.clearEnv()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.live, obj.ID().String())
}

// PersistedObjects returns the live objects that belong in a world
// snapshot: every clone except ephemeral ones (player characters, which are
// saved per player).
func (r *Registry) PersistedObjects() []persist.Object {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var objs []persist.Object
	for _, obj := range r.live {
		if !obj.ID().IsClone {
			continue
		}
		if e, ok := obj.(interface{ Ephemeral() bool }); ok && e.Ephemeral() {
			continue
		}
		objs = append(objs, obj)
	}
	return objs
}

// construct builds a live entity from its definition. Returns (nil, nil)
// when no definition exists for the path. Callers hold r.mu.
func (r *Registry) construct(id persist.ObjectID) (Object, error) {
	kind, assetId, err := splitPath(id.Path)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "rooms":
		if spec := r.dict.Rooms.Get(assetId); spec != nil {
			return NewRoom(id, spec), nil
		}
	case "items":
		if spec := r.dict.Items.Get(assetId); spec != nil {
			return NewItem(id, spec), nil
		}
	case "mobiles":
		if spec := r.dict.Mobiles.Get(assetId); spec != nil {
			return NewMobile(id, spec), nil
		}
	case "players":
		if spec := r.dict.Players.Get(assetId); spec != nil {
			return NewCharacter(id, spec), nil
		}
	default:
		return nil, fmt.Errorf("path %q: unknown kind %q: %w", id.Path, kind, ErrBadPath)
	}

	return nil, nil
}

func splitPath(path string) (kind, assetId string, err error) {
	trimmed, ok := strings.CutPrefix(path, "/")
	if !ok {
		return "", "", fmt.Errorf("path %q is not absolute: %w", path, ErrBadPath)
	}

	kind, assetId, ok = strings.Cut(trimmed, "/")
	if !ok || kind == "" || assetId == "" || strings.Contains(assetId, "/") {
		return "", "", fmt.Errorf("path %q is not /<kind>/<id>: %w", path, ErrBadPath)
	}
	return kind, assetId, nil
}
