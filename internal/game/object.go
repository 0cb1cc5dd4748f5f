package game

import (
	"fmt"
	"slices"
	"sync"

	"github.com/driftwood-mud/driftwood/internal/persist"
	"github.com/driftwood-mud/driftwood/internal/storage"
	"github.com/pixil98/go-errors"
)

// Object is a live entity in the world: a room, an item, a mobile, or a
// player character. Every Object also satisfies persist.Object so the
// persistence subsystem can snapshot it.
type Object interface {
	ID() persist.ObjectID
	Name() string
	Short() string

	Environment() persist.Object
	MoveTo(dest persist.Object) error
	Contents() []Object
}

// Env returns o's container as a game Object, or nil when o is top-level.
func Env(o Object) Object {
	if e, ok := o.Environment().(Object); ok {
		return e
	}
	return nil
}

// holder is satisfied by every entity through BaseObject; it keeps
// containment bookkeeping inside this package.
type holder interface {
	attach(Object)
	detach(Object)
}

// BaseObject carries the state shared by every entity: identity, naming,
// containment, and the extension property bag. Entity types embed it and
// bind themselves to it at construction.
type BaseObject struct {
	mu   sync.Mutex
	self Object

	id    persist.ObjectID
	name  string
	short string

	env      persist.Object
	contents []Object

	ext storage.ExtensionState
}

// bind wires the embedding entity to its base. Every constructor must call
// it before the object is shared.
func (o *BaseObject) bind(self Object, id persist.ObjectID, name, short string) {
	o.self = self
	o.id = id
	o.name = name
	o.short = short
}

func (o *BaseObject) ID() persist.ObjectID {
	return o.id
}

func (o *BaseObject) Name() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.name
}

func (o *BaseObject) SetName(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.name = name
}

func (o *BaseObject) Short() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.short == "" {
		return o.name
	}
	return o.short
}

func (o *BaseObject) Environment() persist.Object {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.env
}

// Contents returns a copy of the objects held by this one.
func (o *BaseObject) Contents() []Object {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.contents)
}

// MoveTo places the object inside dest, detaching it from its current
// container. Moving an object into itself or into anything it transitively
// contains is rejected.
func (o *BaseObject) MoveTo(dest persist.Object) error {
	container, ok := dest.(holder)
	if !ok {
		return fmt.Errorf("%s: %w", dest.ID(), ErrNotContainer)
	}

	for env := dest; env != nil; env = env.Environment() {
		if env == persist.Object(o.self) {
			return fmt.Errorf("moving %s into %s: %w", o.id, dest.ID(), ErrCircularMove)
		}
	}

	o.mu.Lock()
	old := o.env
	o.mu.Unlock()

	if old == dest {
		return nil
	}
	if old != nil {
		if h, ok := old.(holder); ok {
			h.detach(o.self)
		}
	}
	container.attach(o.self)

	o.mu.Lock()
	o.env = dest
	o.mu.Unlock()
	return nil
}

func (o *BaseObject) attach(obj Object) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.contents = append(o.contents, obj)
}

func (o *BaseObject) detach(obj Object) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.contents = slices.DeleteFunc(o.contents, func(c Object) bool { return c == obj })
}

// clearEnv drops the container link without touching the container's side.
// Used by the registry when an object is removed from the world.
func (o *BaseObject) clearEnv() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.env = nil
}

// SetProperty stores a custom property in the extension bag.
func (o *BaseObject) SetProperty(key string, v any) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ext.Set(key, v)
}

// Property reads a custom property into out.
func (o *BaseObject) Property(key string, out any) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ext.Get(key, out)
}

// CaptureState projects the base fields. Entity types that carry more state
// extend the bag this returns.
func (o *BaseObject) CaptureState() (persist.Fields, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	f := persist.Fields{}
	el := errors.NewErrorList()
	el.Add(f.Set("name", o.name))
	el.Add(f.Set("short", o.short))
	if len(o.ext) > 0 {
		el.Add(f.Set("ext", o.ext))
	}
	return f, el.Err()
}

// RestoreState applies the base fields. Fields missing from the bag keep the
// blueprint values already on the object.
func (o *BaseObject) RestoreState(f persist.Fields) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	el := errors.NewErrorList()
	addGet := func(key string, out any) {
		if _, err := f.Get(key, out); err != nil {
			el.Add(err)
		}
	}
	addGet("name", &o.name)
	addGet("short", &o.short)
	addGet("ext", &o.ext)
	return el.Err()
}
