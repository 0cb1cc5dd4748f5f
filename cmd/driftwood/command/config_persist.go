package command

import (
	"fmt"
	"time"

	"github.com/driftwood-mud/driftwood/internal/persist"
	"github.com/pixil98/go-errors"
)

// PersistConfig configures the save-file store and the restore behavior.
type PersistConfig struct {
	// Path is the directory holding the world snapshot and player saves.
	Path string `json:"path"`

	// VoidRoom is where players end up when nothing else resolves.
	VoidRoom string `json:"void_room"`

	// Preload lists blueprint paths warmed up before the world restore.
	Preload []string `json:"preload,omitempty"`

	// AutosaveInterval between world snapshots. Empty disables autosave.
	AutosaveInterval string `json:"autosave_interval,omitempty"`
}

func (c *PersistConfig) validate() error {
	el := errors.NewErrorList()

	if c.Path == "" {
		el.Add(fmt.Errorf("path is required"))
	}
	if c.VoidRoom == "" {
		el.Add(fmt.Errorf("void_room is required"))
	}
	if c.AutosaveInterval != "" {
		d, err := time.ParseDuration(c.AutosaveInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing autosave_interval: %w", err))
		} else if d < time.Minute {
			el.Add(fmt.Errorf("autosave_interval must be at least 1 minute"))
		}
	}

	return el.Err()
}

func (c *PersistConfig) autosave() time.Duration {
	if c.AutosaveInterval == "" {
		return 0
	}
	d, _ := time.ParseDuration(c.AutosaveInterval)
	return d
}

func (c *PersistConfig) BuildStore() (*persist.FileStore, error) {
	return persist.NewFileStore(c.Path)
}

func (c *PersistConfig) BuildLoader(store *persist.FileStore, cfg persist.LoaderConfig) (*persist.Loader, error) {
	cfg.Store = store
	cfg.Serializer = persist.NewSerializer()
	cfg.VoidRoom = c.VoidRoom
	return persist.NewLoader(cfg)
}
