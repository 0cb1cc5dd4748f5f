package game

import (
	"fmt"
	"maps"

	"github.com/driftwood-mud/driftwood/internal/persist"
	"github.com/pixil98/go-errors"
)

// RoomSpec defines a room loaded from asset files. Rooms are blueprint
// singletons: one live instance per definition path, never cloned.
type RoomSpec struct {
	// Name is the room's title line (e.g., "The Village Square")
	Name string `json:"name"`

	// Description is shown when a player looks at the room
	Description string `json:"description"`

	// Exits maps a direction keyword to the path of the destination room
	// (e.g., {"north": "/rooms/millbrook-gate"})
	Exits map[string]string `json:"exits,omitempty"`
}

// Validate satisfies storage.ValidatingSpec
func (s *RoomSpec) Validate() error {
	el := errors.NewErrorList()
	if s.Name == "" {
		el.Add(fmt.Errorf("room name is required"))
	}
	if s.Description == "" {
		el.Add(fmt.Errorf("room description is required"))
	}
	for dir, dest := range s.Exits {
		if dest == "" {
			el.Add(fmt.Errorf("exit %q has no destination", dir))
		}
	}
	return el.Err()
}

// Room is a live location in the containment graph. Everything in play is
// transitively inside some room, except objects left unparented by a failed
// restore.
type Room struct {
	BaseObject

	description string
	exits       map[string]string
}

func NewRoom(id persist.ObjectID, spec *RoomSpec) *Room {
	r := &Room{
		description: spec.Description,
		exits:       maps.Clone(spec.Exits),
	}
	r.bind(r, id, spec.Name, spec.Name)
	return r
}

func (r *Room) Description() string {
	return r.description
}

// Exits returns the direction → room path map.
func (r *Room) Exits() map[string]string {
	return maps.Clone(r.exits)
}

// Exit returns the destination path for a direction, or "" if there is no
// such exit.
func (r *Room) Exit(dir string) string {
	return r.exits[dir]
}
