package game

import (
	"fmt"
	"strings"

	"github.com/driftwood-mud/driftwood/internal/persist"
	"github.com/pixil98/go-errors"
)

// ItemSpec defines a type of item loaded from asset files. Many clone
// instances can be minted from one definition.
type ItemSpec struct {
	Name string `json:"name"`

	// Short is used in action messages (e.g., "a rusty sword")
	Short string `json:"short"`

	// Description is shown when a player looks at the item
	Description string `json:"description"`

	// Aliases are keywords players can use to target this item
	Aliases []string `json:"aliases,omitempty"`

	Value int `json:"value,omitempty"`
}

// Validate satisfies storage.ValidatingSpec
func (s *ItemSpec) Validate() error {
	el := errors.NewErrorList()
	if s.Name == "" {
		el.Add(fmt.Errorf("item name is required"))
	}
	if s.Short == "" {
		el.Add(fmt.Errorf("item short description is required"))
	}
	return el.Err()
}

// Item is a live instance of an ItemSpec, usually a clone.
type Item struct {
	BaseObject

	description string
	aliases     []string
	value       int
}

func NewItem(id persist.ObjectID, spec *ItemSpec) *Item {
	i := &Item{
		description: spec.Description,
		aliases:     spec.Aliases,
		value:       spec.Value,
	}
	i.bind(i, id, spec.Name, spec.Short)
	return i
}

func (i *Item) Description() string {
	return i.description
}

func (i *Item) Value() int {
	return i.value
}

// Matches reports whether word targets this item by name or alias.
func (i *Item) Matches(word string) bool {
	if strings.EqualFold(word, i.Name()) {
		return true
	}
	for _, a := range i.aliases {
		if strings.EqualFold(word, a) {
			return true
		}
	}
	return false
}
