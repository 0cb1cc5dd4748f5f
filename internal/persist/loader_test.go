package persist

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

// testRegistry backs the adapter trio with an in-memory blueprint table and
// per-path clone ordinals, mirroring how a real object registry behaves.
type testRegistry struct {
	blueprints map[string]testObject
	loadErr    map[string]error
	cloneErr   map[string]error

	live     map[string]Object
	ordinals map[string]uint64
}

func newTestRegistry() *testRegistry {
	return &testRegistry{
		blueprints: map[string]testObject{},
		loadErr:    map[string]error{},
		cloneErr:   map[string]error{},
		live:       map[string]Object{},
		ordinals:   map[string]uint64{},
	}
}

func (r *testRegistry) load(_ context.Context, path string) (Object, error) {
	if err := r.loadErr[path]; err != nil {
		return nil, err
	}
	if obj, ok := r.live[path]; ok {
		return obj, nil
	}

	tpl, ok := r.blueprints[path]
	if !ok {
		return nil, nil
	}

	obj := &testObject{id: BlueprintID(path), health: tpl.health, level: tpl.level}
	r.live[path] = obj
	return obj, nil
}

func (r *testRegistry) clone(_ context.Context, path string) (Object, error) {
	if err := r.cloneErr[path]; err != nil {
		return nil, err
	}

	tpl, ok := r.blueprints[path]
	if !ok {
		return nil, nil
	}

	r.ordinals[path]++
	obj := &testObject{id: CloneID(path, r.ordinals[path]), health: tpl.health, level: tpl.level}
	r.live[obj.ID().String()] = obj
	return obj, nil
}

func (r *testRegistry) find(path string) Object {
	obj, ok := r.live[path]
	if !ok {
		return nil
	}
	return obj
}

func newTestLoader(t *testing.T, reg *testRegistry, voidRoom string) (*Loader, *FileStore) {
	t.Helper()

	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}

	loader, err := NewLoader(LoaderConfig{
		Store:       store,
		Serializer:  NewSerializer(),
		LoadObject:  reg.load,
		CloneObject: reg.clone,
		FindObject:  reg.find,
		VoidRoom:    voidRoom,
	})
	if err != nil {
		t.Fatalf("creating loader: %v", err)
	}

	return loader, store
}

func TestLoaderConfig_Validate(t *testing.T) {
	cfg := LoaderConfig{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected empty config to fail validation")
	}

	if _, err := NewLoader(cfg); err == nil {
		t.Fatal("expected NewLoader to reject an empty config")
	}
}

func TestLoader_Preload(t *testing.T) {
	reg := newTestRegistry()
	reg.blueprints["/rooms/void"] = testObject{}
	reg.blueprints["/rooms/temple"] = testObject{}
	reg.loadErr["/rooms/broken"] = fmt.Errorf("bad asset")
	loader, _ := newTestLoader(t, reg, "")

	res := loader.Preload(context.Background(), []string{
		"/rooms/void", "/rooms/broken", "/rooms/temple", "/rooms/missing",
	})

	testutil.AssertEqual(t, "total", res.Total, 4)
	if !reflect.DeepEqual(res.Success, []string{"/rooms/void", "/rooms/temple"}) {
		t.Errorf("unexpected successes: %v", res.Success)
	}
	if !reflect.DeepEqual(res.Failed, []string{"/rooms/broken", "/rooms/missing"}) {
		t.Errorf("unexpected failures: %v", res.Failed)
	}
}

func TestLoader_LoadWorldFresh(t *testing.T) {
	loader, _ := newTestLoader(t, newTestRegistry(), "")

	res, err := loader.LoadWorld(context.Background())
	if err != nil {
		t.Fatalf("loading fresh world: %v", err)
	}

	testutil.AssertEqual(t, "loaded", res.Loaded, 0)
	testutil.AssertEqual(t, "failed", res.Failed, 0)
	testutil.AssertEqual(t, "skipped", res.Skipped, 0)
}

func TestLoader_LoadWorldOrderIndependent(t *testing.T) {
	// A sword inside a bag inside a static room. The snapshot list is
	// unordered, so both orderings must wire containment identically.
	sword := ObjectState{
		ObjectPath:  "/items/rusty-sword#5",
		IsClone:     true,
		Environment: &ObjectReference{Path: "/items/bag#9"},
	}
	bag := ObjectState{
		ObjectPath:  "/items/bag#9",
		IsClone:     true,
		Environment: &ObjectReference{Path: "/rooms/void"},
	}
	room := ObjectState{ObjectPath: "/rooms/void"}

	orderings := map[string][]ObjectState{
		"containers first": {room, bag, sword},
		"contents first":   {sword, bag, room},
	}

	for name, objects := range orderings {
		t.Run(name, func(t *testing.T) {
			reg := newTestRegistry()
			reg.blueprints["/rooms/void"] = testObject{}
			reg.blueprints["/items/bag"] = testObject{}
			reg.blueprints["/items/rusty-sword"] = testObject{}
			loader, store := newTestLoader(t, reg, "")

			if err := store.SaveWorldState(&WorldState{Objects: objects}); err != nil {
				t.Fatalf("seeding snapshot: %v", err)
			}

			res, err := loader.LoadWorld(context.Background())
			if err != nil {
				t.Fatalf("loading world: %v", err)
			}
			testutil.AssertEqual(t, "loaded", res.Loaded, 3)
			testutil.AssertEqual(t, "failed", res.Failed, 0)

			liveSword := reg.find("/items/rusty-sword#1")
			liveBag := reg.find("/items/bag#1")
			liveRoom := reg.find("/rooms/void")
			if liveSword == nil || liveBag == nil || liveRoom == nil {
				t.Fatal("expected all three objects to be live after restore")
			}

			testutil.AssertEqual(t, "sword in bag", liveSword.Environment() == liveBag, true)
			testutil.AssertEqual(t, "bag in room", liveBag.Environment() == liveRoom, true)
		})
	}
}

func TestLoader_LoadWorldIsolatesFailures(t *testing.T) {
	reg := newTestRegistry()
	reg.blueprints["/rooms/void"] = testObject{}
	reg.blueprints["/mobiles/rat"] = testObject{health: 10}
	reg.cloneErr["/mobiles/ghost"] = fmt.Errorf("spawn failure")
	loader, store := newTestLoader(t, reg, "")

	err := store.SaveWorldState(&WorldState{Objects: []ObjectState{
		{ObjectPath: "/rooms/void"},
		{ObjectPath: "/mobiles/ghost#1", IsClone: true, Environment: &ObjectReference{Path: "/rooms/void"}},
		{ObjectPath: "/mobiles/rat#2", IsClone: true, Environment: &ObjectReference{Path: "/rooms/void"}},
	}})
	if err != nil {
		t.Fatalf("seeding snapshot: %v", err)
	}

	res, err := loader.LoadWorld(context.Background())
	if err != nil {
		t.Fatalf("loading world: %v", err)
	}

	testutil.AssertEqual(t, "loaded", res.Loaded, 2)
	testutil.AssertEqual(t, "failed", res.Failed, 1)

	rat := reg.find("/mobiles/rat#1")
	if rat == nil {
		t.Fatal("expected the rat to survive its neighbor's failure")
	}
	testutil.AssertEqual(t, "rat in room", rat.Environment() == reg.find("/rooms/void"), true)
}

func TestLoader_LoadWorldSkips(t *testing.T) {
	reg := newTestRegistry()
	reg.blueprints["/rooms/void"] = testObject{}
	loader, store := newTestLoader(t, reg, "")

	err := store.SaveWorldState(&WorldState{Objects: []ObjectState{
		{ObjectPath: "/rooms/void"},
		{ObjectPath: "/items/deleted-blueprint#3", IsClone: true},
		{ObjectPath: "#bad"},
	}})
	if err != nil {
		t.Fatalf("seeding snapshot: %v", err)
	}

	res, err := loader.LoadWorld(context.Background())
	if err != nil {
		t.Fatalf("loading world: %v", err)
	}

	testutil.AssertEqual(t, "loaded", res.Loaded, 1)
	testutil.AssertEqual(t, "skipped", res.Skipped, 2)
	testutil.AssertEqual(t, "failed", res.Failed, 0)
}

func TestLoader_LoadWorldMintsFreshOrdinals(t *testing.T) {
	reg := newTestRegistry()
	reg.blueprints["/mobiles/rat"] = testObject{health: 10}
	loader, store := newTestLoader(t, reg, "")

	err := store.SaveWorldState(&WorldState{Objects: []ObjectState{
		{ObjectPath: "/mobiles/rat#40", IsClone: true},
		{ObjectPath: "/mobiles/rat#41", IsClone: true},
	}})
	if err != nil {
		t.Fatalf("seeding snapshot: %v", err)
	}

	res, err := loader.LoadWorld(context.Background())
	if err != nil {
		t.Fatalf("loading world: %v", err)
	}
	testutil.AssertEqual(t, "loaded", res.Loaded, 2)

	// Restored clones are new instances with distinct ordinals, never the
	// saved ones.
	first := reg.find("/mobiles/rat#1")
	second := reg.find("/mobiles/rat#2")
	if first == nil || second == nil {
		t.Fatal("expected two freshly minted clones")
	}
	testutil.AssertEqual(t, "distinct instances", first == second, false)
}

func TestLoader_LoadWorldMissingEnvironment(t *testing.T) {
	reg := newTestRegistry()
	reg.blueprints["/items/bag"] = testObject{}
	loader, store := newTestLoader(t, reg, "")

	err := store.SaveWorldState(&WorldState{Objects: []ObjectState{
		{ObjectPath: "/items/bag#1", IsClone: true, Environment: &ObjectReference{Path: "/rooms/demolished"}},
	}})
	if err != nil {
		t.Fatalf("seeding snapshot: %v", err)
	}

	res, err := loader.LoadWorld(context.Background())
	if err != nil {
		t.Fatalf("loading world: %v", err)
	}
	testutil.AssertEqual(t, "loaded", res.Loaded, 1)

	bag := reg.find("/items/bag#1")
	if bag == nil {
		t.Fatal("expected the bag to be live")
	}
	if bag.Environment() != nil {
		t.Fatalf("expected unparented bag, got environment %v", bag.Environment().ID())
	}
}

func TestLoader_SaveWorldRoundTrip(t *testing.T) {
	ctx := context.Background()

	reg := newTestRegistry()
	reg.blueprints["/rooms/void"] = testObject{}
	reg.blueprints["/mobiles/rat"] = testObject{health: 10, level: 1}
	loader, store := newTestLoader(t, reg, "")

	room, err := reg.load(ctx, "/rooms/void")
	if err != nil {
		t.Fatalf("loading room: %v", err)
	}
	rat, err := reg.clone(ctx, "/mobiles/rat")
	if err != nil {
		t.Fatalf("cloning rat: %v", err)
	}
	rat.(*testObject).health = 4
	if err := rat.MoveTo(room); err != nil {
		t.Fatalf("moving rat: %v", err)
	}

	if err := loader.SaveWorld(ctx, []Object{rat}); err != nil {
		t.Fatalf("saving world: %v", err)
	}

	// Restore into a second object space sharing the same store.
	reg2 := newTestRegistry()
	reg2.blueprints["/rooms/void"] = testObject{}
	reg2.blueprints["/mobiles/rat"] = testObject{health: 10, level: 1}
	loader2, err := NewLoader(LoaderConfig{
		Store:       store,
		Serializer:  NewSerializer(),
		LoadObject:  reg2.load,
		CloneObject: reg2.clone,
		FindObject:  reg2.find,
	})
	if err != nil {
		t.Fatalf("creating second loader: %v", err)
	}
	if _, err := reg2.load(ctx, "/rooms/void"); err != nil {
		t.Fatalf("preloading room: %v", err)
	}

	res, err := loader2.LoadWorld(ctx)
	if err != nil {
		t.Fatalf("restoring world: %v", err)
	}
	testutil.AssertEqual(t, "loaded", res.Loaded, 1)

	restored, ok := reg2.find("/mobiles/rat#1").(*testObject)
	if !ok {
		t.Fatal("expected a restored rat clone")
	}
	testutil.AssertEqual(t, "health", restored.health, 4)
	testutil.AssertEqual(t, "level", restored.level, 1)
	testutil.AssertEqual(t, "in room", restored.Environment() == reg2.find("/rooms/void"), true)
}

func TestLoader_SaveWorldSkipsFailingObjects(t *testing.T) {
	ctx := context.Background()

	reg := newTestRegistry()
	reg.blueprints["/mobiles/rat"] = testObject{health: 10}
	loader, store := newTestLoader(t, reg, "")

	good, err := reg.clone(ctx, "/mobiles/rat")
	if err != nil {
		t.Fatalf("cloning: %v", err)
	}
	bad := &testObject{id: CloneID("/mobiles/rat", 99), captureErr: fmt.Errorf("capture boom")}

	if err := loader.SaveWorld(ctx, []Object{bad, good}); err != nil {
		t.Fatalf("saving world: %v", err)
	}

	ws := store.LoadWorldState()
	if ws == nil {
		t.Fatal("expected a snapshot on disk")
	}
	testutil.AssertEqual(t, "object count", len(ws.Objects), 1)
	testutil.AssertEqual(t, "surviving object", ws.Objects[0].ObjectPath, good.ID().String())
}

func TestLoader_LoadPlayerNoSave(t *testing.T) {
	loader, _ := newTestLoader(t, newTestRegistry(), "")

	obj, err := loader.LoadPlayer(context.Background(), "alice", "/players/adventurer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj != nil {
		t.Fatalf("expected nil object for unknown player, got %v", obj.ID())
	}
}

func TestLoader_LoadPlayer(t *testing.T) {
	ctx := context.Background()

	reg := newTestRegistry()
	reg.blueprints["/players/adventurer"] = testObject{health: 20, level: 1}
	reg.blueprints["/rooms/temple"] = testObject{}
	loader, store := newTestLoader(t, reg, "")

	if _, err := reg.load(ctx, "/rooms/temple"); err != nil {
		t.Fatalf("loading room: %v", err)
	}

	var f Fields
	if err := f.Set("health", 12); err != nil {
		t.Fatalf("building fields: %v", err)
	}
	if err := f.Set("level", 5); err != nil {
		t.Fatalf("building fields: %v", err)
	}
	err := store.SavePlayer(&PlayerSaveData{
		Name:     "Alice",
		Location: "/rooms/temple",
		State:    ObjectState{ObjectPath: "/players/adventurer#3", IsClone: true, Fields: f},
	})
	if err != nil {
		t.Fatalf("seeding save: %v", err)
	}

	obj, err := loader.LoadPlayer(ctx, "alice", "/players/adventurer")
	if err != nil {
		t.Fatalf("loading player: %v", err)
	}
	char, ok := obj.(*testObject)
	if !ok {
		t.Fatal("expected a cloned player object")
	}

	testutil.AssertEqual(t, "clone identity", char.ID().IsClone, true)
	testutil.AssertEqual(t, "name", char.name, "Alice")
	testutil.AssertEqual(t, "health", char.health, 12)
	testutil.AssertEqual(t, "level", char.level, 5)
	testutil.AssertEqual(t, "location", char.Environment() == reg.find("/rooms/temple"), true)
}

func TestLoader_LoadPlayerMissingLocation(t *testing.T) {
	ctx := context.Background()

	reg := newTestRegistry()
	reg.blueprints["/players/adventurer"] = testObject{health: 20}
	loader, store := newTestLoader(t, reg, "")

	err := store.SavePlayer(&PlayerSaveData{
		Name:     "Bob",
		Location: "/rooms/demolished",
		State:    ObjectState{ObjectPath: "/players/adventurer#1", IsClone: true},
	})
	if err != nil {
		t.Fatalf("seeding save: %v", err)
	}

	obj, err := loader.LoadPlayer(ctx, "bob", "/players/adventurer")
	if err != nil {
		t.Fatalf("loading player: %v", err)
	}
	if obj == nil {
		t.Fatal("expected a player despite the missing room")
	}
	if obj.Environment() != nil {
		t.Fatalf("expected no environment, got %v", obj.Environment().ID())
	}
}

func TestLoader_LoadPlayerEachLoginGetsFreshClone(t *testing.T) {
	ctx := context.Background()

	reg := newTestRegistry()
	reg.blueprints["/players/adventurer"] = testObject{health: 20}
	loader, store := newTestLoader(t, reg, "")

	err := store.SavePlayer(&PlayerSaveData{
		Name:  "Alice",
		State: ObjectState{ObjectPath: "/players/adventurer#1", IsClone: true},
	})
	if err != nil {
		t.Fatalf("seeding save: %v", err)
	}

	first, err := loader.LoadPlayer(ctx, "alice", "/players/adventurer")
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	second, err := loader.LoadPlayer(ctx, "alice", "/players/adventurer")
	if err != nil {
		t.Fatalf("second load: %v", err)
	}

	testutil.AssertEqual(t, "distinct clones", first == second, false)
	testutil.AssertEqual(t, "distinct ordinals", first.ID() == second.ID(), false)
}

func TestLoader_CreatePlayer(t *testing.T) {
	ctx := context.Background()

	reg := newTestRegistry()
	reg.blueprints["/players/adventurer"] = testObject{health: 20, level: 1}
	reg.blueprints["/rooms/temple"] = testObject{}
	loader, _ := newTestLoader(t, reg, "/rooms/void")

	obj, err := loader.CreatePlayer(ctx, "Carol", "/players/adventurer", "/rooms/temple")
	if err != nil {
		t.Fatalf("creating player: %v", err)
	}
	char := obj.(*testObject)

	testutil.AssertEqual(t, "name", char.name, "Carol")
	testutil.AssertEqual(t, "clone", char.ID().IsClone, true)
	testutil.AssertEqual(t, "fresh health", char.health, 20)
	testutil.AssertEqual(t, "fresh level", char.level, 1)
	testutil.AssertEqual(t, "in start room", char.Environment() == reg.find("/rooms/temple"), true)
}

func TestLoader_CreatePlayerFallsBackToVoid(t *testing.T) {
	ctx := context.Background()

	reg := newTestRegistry()
	reg.blueprints["/players/adventurer"] = testObject{health: 20}
	reg.blueprints["/rooms/void"] = testObject{}
	loader, _ := newTestLoader(t, reg, "/rooms/void")

	obj, err := loader.CreatePlayer(ctx, "Dave", "/players/adventurer", "/rooms/missing")
	if err != nil {
		t.Fatalf("creating player: %v", err)
	}

	testutil.AssertEqual(t, "in void room", obj.Environment() == reg.find("/rooms/void"), true)
}

func TestLoader_CreatePlayerMissingBlueprint(t *testing.T) {
	loader, _ := newTestLoader(t, newTestRegistry(), "")

	if _, err := loader.CreatePlayer(context.Background(), "Eve", "/players/missing", ""); err == nil {
		t.Fatal("expected error for a missing player blueprint")
	}
}

func TestLoader_SavePlayer(t *testing.T) {
	ctx := context.Background()

	reg := newTestRegistry()
	reg.blueprints["/players/adventurer"] = testObject{health: 20}
	reg.blueprints["/rooms/temple"] = testObject{}
	loader, store := newTestLoader(t, reg, "")

	obj, err := loader.CreatePlayer(ctx, "Alice", "/players/adventurer", "/rooms/temple")
	if err != nil {
		t.Fatalf("creating player: %v", err)
	}
	obj.(*testObject).health = 13

	before := time.Now()
	save := &PlayerSaveData{Name: "Alice"}
	if err := loader.SavePlayer(ctx, save, obj); err != nil {
		t.Fatalf("saving player: %v", err)
	}

	testutil.AssertEqual(t, "location stamped", save.Location, "/rooms/temple")
	if save.LastSeen.Before(before) {
		t.Fatalf("expected LastSeen to be stamped, got %v", save.LastSeen)
	}
	testutil.AssertEqual(t, "exists", loader.PlayerExists("alice"), true)

	out := store.LoadPlayer("alice")
	if out == nil {
		t.Fatal("expected the save on disk")
	}
	var health int
	found, err := out.State.Fields.Get("health", &health)
	if err != nil || !found {
		t.Fatalf("reading saved health: found=%v err=%v", found, err)
	}
	testutil.AssertEqual(t, "saved health", health, 13)
}
