package game

import (
	"fmt"

	"github.com/driftwood-mud/driftwood/internal/persist"
	"github.com/pixil98/go-errors"
)

// MobileSpec defines a type of NPC loaded from asset files.
type MobileSpec struct {
	Name string `json:"name"`

	// Short is used in action messages (e.g., "a sewer rat")
	Short string `json:"short"`

	// Description is shown when a player looks at the mobile
	Description string `json:"description"`

	MaxHealth int `json:"max_health"`
	Level     int `json:"level,omitempty"`
}

// Validate satisfies storage.ValidatingSpec
func (s *MobileSpec) Validate() error {
	el := errors.NewErrorList()
	if s.Name == "" {
		el.Add(fmt.Errorf("mobile name is required"))
	}
	if s.Short == "" {
		el.Add(fmt.Errorf("mobile short description is required"))
	}
	if s.MaxHealth < 1 {
		el.Add(fmt.Errorf("mobile max_health must be positive"))
	}
	return el.Err()
}

// Mobile is a live NPC instance. Its health and level survive a world
// save/restore cycle; everything else comes back from the blueprint.
type Mobile struct {
	BaseObject

	description string
	maxHealth   int

	health int
	level  int
}

func NewMobile(id persist.ObjectID, spec *MobileSpec) *Mobile {
	m := &Mobile{
		description: spec.Description,
		maxHealth:   spec.MaxHealth,
		health:      spec.MaxHealth,
		level:       spec.Level,
	}
	m.bind(m, id, spec.Name, spec.Short)
	return m
}

func (m *Mobile) Description() string {
	return m.description
}

func (m *Mobile) Health() (cur, max int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.health, m.maxHealth
}

// Damage reduces health, clamping at zero.
func (m *Mobile) Damage(amount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.health -= amount
	if m.health < 0 {
		m.health = 0
	}
}

func (m *Mobile) CaptureState() (persist.Fields, error) {
	f, err := m.BaseObject.CaptureState()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	el := errors.NewErrorList()
	el.Add(f.Set("health", m.health))
	el.Add(f.Set("level", m.level))
	return f, el.Err()
}

func (m *Mobile) RestoreState(f persist.Fields) error {
	if err := m.BaseObject.RestoreState(f); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	el := errors.NewErrorList()
	if _, err := f.Get("health", &m.health); err != nil {
		el.Add(err)
	}
	if _, err := f.Get("level", &m.level); err != nil {
		el.Add(err)
	}
	if m.health > m.maxHealth {
		m.health = m.maxHealth
	}
	return el.Err()
}
