package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

type Config struct {
	TickInterval string           `json:"tick_interval"`
	Listeners    []ListenerConfig `json:"listeners"`
	Storage      StorageConfig    `json:"storage"`
	Persist      PersistConfig    `json:"persist"`
	Nats         NatsConfig       `json:"nats"`
	Player       PlayerConfig     `json:"player"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	d, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		el.Add(fmt.Errorf("parsing tick_interval: %w", err))
	} else if d < time.Second {
		el.Add(fmt.Errorf("tick_interval must be at least 1 second"))
	}

	for i, l := range c.Listeners {
		err := l.validate()
		if err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
	}

	el.Add(c.Storage.validate())
	el.Add(c.Persist.validate())
	el.Add(c.Nats.validate())
	el.Add(c.Player.validate())

	return el.Err()
}

// PlayerConfig wires the login path: which blueprint every character is
// cloned from, and where new characters start.
type PlayerConfig struct {
	Blueprint string `json:"blueprint"`
	StartRoom string `json:"start_room"`
}

func (c *PlayerConfig) validate() error {
	el := errors.NewErrorList()

	if c.Blueprint == "" {
		el.Add(fmt.Errorf("blueprint is required"))
	}
	if c.StartRoom == "" {
		el.Add(fmt.Errorf("start_room is required"))
	}

	return el.Err()
}
