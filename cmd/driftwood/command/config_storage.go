package command

import (
	"fmt"
	"os"

	"github.com/driftwood-mud/driftwood/internal/game"
	"github.com/driftwood-mud/driftwood/internal/storage"
	"github.com/pixil98/go-errors"
)

// StorageConfig points at the blueprint asset directories, one per entity
// kind.
type StorageConfig struct {
	Rooms   AssetConfig[*game.RoomSpec]      `json:"rooms"`
	Items   AssetConfig[*game.ItemSpec]      `json:"items"`
	Mobiles AssetConfig[*game.MobileSpec]    `json:"mobiles"`
	Players AssetConfig[*game.CharacterSpec] `json:"players"`
}

func (c *StorageConfig) BuildDictionary() (*game.Dictionary, error) {
	rooms, err := c.Rooms.BuildAssetStore()
	if err != nil {
		return nil, fmt.Errorf("creating room store: %w", err)
	}
	items, err := c.Items.BuildAssetStore()
	if err != nil {
		return nil, fmt.Errorf("creating item store: %w", err)
	}
	mobiles, err := c.Mobiles.BuildAssetStore()
	if err != nil {
		return nil, fmt.Errorf("creating mobile store: %w", err)
	}
	players, err := c.Players.BuildAssetStore()
	if err != nil {
		return nil, fmt.Errorf("creating player store: %w", err)
	}

	return &game.Dictionary{
		Rooms:   rooms,
		Items:   items,
		Mobiles: mobiles,
		Players: players,
	}, nil
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()
	el.Add(c.Rooms.Validate("rooms"))
	el.Add(c.Items.Validate("items"))
	el.Add(c.Mobiles.Validate("mobiles"))
	el.Add(c.Players.Validate("players"))
	return el.Err()
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildAssetStore() (*storage.AssetStore[T], error) {
	return storage.NewAssetStore[T](c.Path)
}
