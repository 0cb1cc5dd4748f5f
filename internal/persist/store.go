package persist

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/driftwood-mud/driftwood/internal/storage"
	"golang.org/x/text/cases"
)

const (
	worldFileName = "world.json"
	playerDirName = "players"
)

// FileStore is durable key→blob storage with two key spaces: the world
// snapshot under a single well-known file, and one save file per
// case-normalized player name. It knows nothing about object semantics.
//
// Reads degrade safely: a missing or corrupt file reads back as "not found"
// rather than an error, so a bad save never prevents the server from
// booting. Writes go through a temp file and rename so a crash mid-write
// leaves the prior good state on disk.
type FileStore struct {
	dir  string
	fold cases.Caser

	mu sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, playerDirName), 0755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	return &FileStore{
		dir:  dir,
		fold: cases.Fold(),
	}, nil
}

// LoadWorldState returns the last saved world snapshot, or nil if none
// exists or the file doesn't parse.
func (s *FileStore) LoadWorldState() *WorldState {
	var ws WorldState
	if !s.read(s.worldPath(), &ws) {
		return nil
	}
	return &ws
}

// SaveWorldState atomically replaces the world snapshot.
func (s *FileStore) SaveWorldState(ws *WorldState) error {
	return s.write(s.worldPath(), ws)
}

// LoadPlayer returns the save file for name, or nil if the player has never
// saved or the file doesn't parse.
func (s *FileStore) LoadPlayer(name string) *PlayerSaveData {
	var save PlayerSaveData
	if !s.read(s.playerPath(name), &save) {
		return nil
	}
	return &save
}

// SavePlayer atomically replaces the save file for save.Name.
func (s *FileStore) SavePlayer(save *PlayerSaveData) error {
	if save.Name == "" {
		return fmt.Errorf("player save has no name")
	}
	return s.write(s.playerPath(save.Name), save)
}

// PlayerExists checks for a save file without deserializing it.
func (s *FileStore) PlayerExists(name string) bool {
	_, err := os.Stat(s.playerPath(name))
	return err == nil
}

func (s *FileStore) read(path string, out any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("reading save file", "path", path, "error", err)
		}
		return false
	}

	if err := json.Unmarshal(data, out); err != nil {
		// Corrupt data is treated as missing so the server still boots.
		slog.Warn("save file is corrupt, treating as missing", "path", path, "error", err)
		return false
	}
	return true
}

func (s *FileStore) write(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshalling save: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return storage.AtomicWrite(path, data, 0644)
}

func (s *FileStore) worldPath() string {
	return filepath.Join(s.dir, worldFileName)
}

func (s *FileStore) playerPath(name string) string {
	return filepath.Join(s.dir, playerDirName, fmt.Sprintf("%s.json", s.fold.String(name)))
}
