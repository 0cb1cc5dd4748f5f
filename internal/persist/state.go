package persist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ObjectReference points at another entity by its logical path. References
// are resolved only at reconstruction time, never by memory address, and are
// meaningful only within the object space they were captured from.
type ObjectReference struct {
	Path string `json:"path"`
}

// Fields is the bag of mutable state captured from one live object. Values
// are kept as raw JSON so a snapshot written by a newer server round-trips
// through an older one without losing fields it doesn't understand.
type Fields map[string]json.RawMessage

// Set stores v under key after marshalling it to JSON.
func (f *Fields) Set(key string, v any) error {
	if *f == nil {
		*f = Fields{}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal field %q: %w", key, err)
	}

	(*f)[key] = json.RawMessage(b)
	return nil
}

// Get unmarshals the field at key into out. Returns (found=false, nil) if
// the field is not present, leaving out untouched so blueprint defaults
// survive snapshots that predate the field.
func (f Fields) Get(key string, out any) (bool, error) {
	if f == nil {
		return false, nil
	}

	raw, ok := f[key]
	if !ok || len(raw) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("unmarshal field %q: %w", key, err)
	}
	return true, nil
}

// Equal reports whether two bags hold identical fields.
func (f Fields) Equal(other Fields) bool {
	if len(f) != len(other) {
		return false
	}
	for k, v := range f {
		ov, ok := other[k]
		if !ok || !bytes.Equal(v, ov) {
			return false
		}
	}
	return true
}

// ObjectState is the snapshot of one entity: its identity, how to
// re-instantiate it, where it was contained, and its mutable fields.
type ObjectState struct {
	// ObjectPath is the identity key: the definition path for a blueprint
	// singleton, or "<path>#<ordinal>" for a clone instance.
	ObjectPath string `json:"object_path"`

	// IsClone selects the instantiation strategy on restore.
	IsClone bool `json:"is_clone,omitempty"`

	// Environment is the entity's container at save time. Absent means the
	// entity was top-level.
	Environment *ObjectReference `json:"environment,omitempty"`

	Fields Fields `json:"fields,omitempty"`
}

// WorldState is the full snapshot of every persisted entity. The list is
// unordered; consumers must not assume containers appear before contents.
type WorldState struct {
	Objects []ObjectState `json:"objects"`
}

// PlayerSaveData is a player's save file, persisted independently of the
// world snapshot so a login never has to materialize the whole world.
type PlayerSaveData struct {
	// Name is the character's display name. The save file key is the
	// case-normalized form.
	Name string `json:"name"`

	// Password is the bcrypt hash of the login credential.
	Password string `json:"password,omitempty"`

	State ObjectState `json:"state"`

	// Location is the path of the room the player was in when saved.
	Location string `json:"location,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	LastSeen  time.Time `json:"last_seen,omitempty"`
}
