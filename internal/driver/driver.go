package driver

import (
	"context"
	"fmt"
	"time"
)

const (
	DefaultTickLength = time.Second * 2
)

// Manager is anything that wants a periodic heartbeat (world autosave,
// future zone resets).
type Manager interface {
	Tick(context.Context) error
}

type Driver struct {
	tickLength time.Duration
	managers   []Manager
}

func NewDriver(managers []Manager, opts ...DriverOpt) *Driver {
	d := &Driver{
		tickLength: DefaultTickLength,
		managers:   managers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Start runs the tick loop until ctx is cancelled. A manager returning an
// error stops the driver; managers that can recover should log instead.
func (d *Driver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := d.Tick(ctx); err != nil {
				return err
			}
		}
	}
}

func (d *Driver) Tick(ctx context.Context) error {
	for i, m := range d.managers {
		if err := m.Tick(ctx); err != nil {
			return fmt.Errorf("ticking manager %d: %w", i, err)
		}
	}
	return nil
}
