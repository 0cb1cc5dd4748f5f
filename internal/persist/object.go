package persist

// Object is the surface the persistence subsystem needs from a live entity.
// The object system supplies richer types; the loader and serializer only
// ever see this.
type Object interface {
	ID() ObjectID

	// Environment returns the object's current container, or nil when the
	// object is top-level.
	Environment() Object

	// MoveTo places the object inside dest, detaching it from its current
	// container first.
	MoveTo(dest Object) error
}

// Persistable is the optional capability of objects that carry mutable state
// worth snapshotting. Objects without it still serialize (identity and
// environment only).
type Persistable interface {
	Object

	// CaptureState projects the object's mutable fields into a bag. The
	// projection must be stable: capturing an unchanged object twice yields
	// identical bags.
	CaptureState() (Fields, error)

	// RestoreState applies a captured bag. Fields missing from the bag keep
	// their current values; unknown fields are ignored.
	RestoreState(Fields) error
}

// Restorable is the optional capability of objects that need custom restore
// logic beyond the generic field projection, e.g. a player character
// rebuilding account-level state from its save file.
type Restorable interface {
	RestoreSave(save *PlayerSaveData) error
}

// Nameable is the fallback used when a restored player object has no
// Restorable hook: at minimum the name from the save file is applied so the
// object is never nameless.
type Nameable interface {
	SetName(name string)
}
