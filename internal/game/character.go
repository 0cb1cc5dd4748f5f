package game

import (
	"fmt"

	"github.com/driftwood-mud/driftwood/internal/persist"
	"github.com/pixil98/go-errors"
)

// CharacterSpec is the player blueprint: the definition every player
// character is cloned from at login.
type CharacterSpec struct {
	Name string `json:"name"`

	// Description is shown when a player looks at this character
	Description string `json:"description"`

	MaxHealth int `json:"max_health"`

	// Title is the default title for new characters (e.g., "the Newbie")
	Title string `json:"title,omitempty"`
}

// Validate satisfies storage.ValidatingSpec
func (s *CharacterSpec) Validate() error {
	el := errors.NewErrorList()
	if s.Name == "" {
		el.Add(fmt.Errorf("character name is required"))
	}
	if s.MaxHealth < 1 {
		el.Add(fmt.Errorf("character max_health must be positive"))
	}
	return el.Err()
}

// Character is a live player character. Each login mints an independent
// clone from the blueprint; two sessions never share an instance.
//
// Characters are persisted through their own save files rather than the
// world snapshot, so they are excluded from world saves (see Ephemeral).
type Character struct {
	BaseObject

	description string
	maxHealth   int

	health     int
	title      string
	experience int
}

func NewCharacter(id persist.ObjectID, spec *CharacterSpec) *Character {
	c := &Character{
		description: spec.Description,
		maxHealth:   spec.MaxHealth,
		health:      spec.MaxHealth,
		title:       spec.Title,
	}
	c.bind(c, id, spec.Name, spec.Name)
	return c
}

func (c *Character) Description() string {
	return c.description
}

func (c *Character) Health() (cur, max int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.health, c.maxHealth
}

func (c *Character) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.title
}

func (c *Character) SetTitle(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.title = title
}

func (c *Character) Experience() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.experience
}

func (c *Character) GainExperience(amount int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.experience += amount
}

// Ephemeral marks the character as excluded from world snapshots: player
// state lives in per-player save files.
func (c *Character) Ephemeral() bool {
	return true
}

func (c *Character) CaptureState() (persist.Fields, error) {
	f, err := c.BaseObject.CaptureState()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	el := errors.NewErrorList()
	el.Add(f.Set("health", c.health))
	el.Add(f.Set("title", c.title))
	el.Add(f.Set("experience", c.experience))
	return f, el.Err()
}

func (c *Character) RestoreState(f persist.Fields) error {
	if err := c.BaseObject.RestoreState(f); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	el := errors.NewErrorList()
	for key, out := range map[string]any{
		"health":     &c.health,
		"title":      &c.title,
		"experience": &c.experience,
	} {
		if _, err := f.Get(key, out); err != nil {
			el.Add(err)
		}
	}
	if c.health > c.maxHealth {
		c.health = c.maxHealth
	}
	return el.Err()
}

// RestoreSave rebuilds account-level state from the save file after the
// generic field restore has run.
func (c *Character) RestoreSave(save *persist.PlayerSaveData) error {
	c.SetName(save.Name)
	if c.Title() == "" {
		c.SetTitle("the Newbie")
	}
	return nil
}
