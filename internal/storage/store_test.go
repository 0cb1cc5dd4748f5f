package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
)

// blueprintSpec implements ValidatingSpec for testing AssetStore
type blueprintSpec struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func (s *blueprintSpec) Validate() error {
	return nil
}

func writeAsset(t *testing.T, dir, file, id string, spec *blueprintSpec) {
	t.Helper()

	asset := Asset[*blueprintSpec]{
		Version:    1,
		Identifier: id,
		Spec:       spec,
	}
	data, err := json.Marshal(asset)
	if err != nil {
		t.Fatalf("failed to marshal test asset: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, file), data, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
}

func TestNewAssetStore(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewAssetStore[*blueprintSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "path", store.path, tmpDir)
	testutil.AssertEqual(t, "records length", len(store.records), 0)
}

func TestNewAssetStore_NonExistentDirectory(t *testing.T) {
	_, err := NewAssetStore[*blueprintSpec]("/nonexistent/path/that/does/not/exist")
	if err == nil {
		t.Error("expected error for non-existent directory")
	}
}

func TestNewAssetStore_WithExistingAssets(t *testing.T) {
	tmpDir := t.TempDir()
	writeAsset(t, tmpDir, "item-1.json", "item-1", &blueprintSpec{Name: "First", Value: 1})
	writeAsset(t, tmpDir, "item-2.json", "item-2", &blueprintSpec{Name: "Second", Value: 2})

	store, err := NewAssetStore[*blueprintSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "record count", len(store.records), 2)

	item1 := store.Get("item-1")
	if item1 == nil {
		t.Fatal("expected item-1 to be loaded")
	}
	testutil.AssertEqual(t, "item-1 name", item1.Name, "First")
	testutil.AssertEqual(t, "item-1 value", item1.Value, 1)
}

func TestNewAssetStore_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, "bad.json"), []byte(`{invalid json`), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	if _, err := NewAssetStore[*blueprintSpec](tmpDir); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestNewAssetStore_ValidationError(t *testing.T) {
	tmpDir := t.TempDir()

	// Version 0 fails asset validation
	asset := Asset[*blueprintSpec]{
		Version:    0,
		Identifier: "test",
		Spec:       &blueprintSpec{Name: "Test", Value: 1},
	}
	data, err := json.Marshal(asset)
	if err != nil {
		t.Fatalf("failed to marshal test asset: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "test.json"), data, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	if _, err := NewAssetStore[*blueprintSpec](tmpDir); err == nil {
		t.Error("expected validation error")
	}
}

func TestNewAssetStore_DuplicateKey(t *testing.T) {
	tmpDir := t.TempDir()

	subDir := filepath.Join(tmpDir, "subdir")
	if err := os.Mkdir(subDir, 0755); err != nil {
		t.Fatalf("failed to create subdir: %v", err)
	}

	// Two files with the same ID in different directories
	writeAsset(t, tmpDir, "file1.json", "duplicate-id", &blueprintSpec{Name: "Test", Value: 1})
	writeAsset(t, subDir, "file2.json", "duplicate-id", &blueprintSpec{Name: "Test", Value: 1})

	if _, err := NewAssetStore[*blueprintSpec](tmpDir); err == nil {
		t.Error("expected duplicate key error")
	}
}

func TestNewAssetStore_IgnoresNonJSONFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeAsset(t, tmpDir, "valid.json", "valid", &blueprintSpec{Name: "Valid", Value: 1})

	if err := os.WriteFile(filepath.Join(tmpDir, "readme.txt"), []byte("ignore me"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	store, err := NewAssetStore[*blueprintSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "record count", len(store.records), 1)
}

func TestAssetStore_Get(t *testing.T) {
	store, err := NewAssetStore[*blueprintSpec](t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	store.records = map[string]*blueprintSpec{
		"existing": {Name: "Test", Value: 42},
	}

	tests := map[string]struct {
		id       string
		expNil   bool
		expName  string
		expValue int
	}{
		"get existing record": {
			id:       "existing",
			expName:  "Test",
			expValue: 42,
		},
		"get non-existing record": {
			id:     "nonexistent",
			expNil: true,
		},
		"get empty id": {
			id:     "",
			expNil: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			result := store.Get(tt.id)

			if tt.expNil {
				if result != nil {
					t.Errorf("expected nil, got %v", result)
				}
				return
			}

			if result == nil {
				t.Fatal("expected non-nil result")
			}
			testutil.AssertEqual(t, "name", result.Name, tt.expName)
			testutil.AssertEqual(t, "value", result.Value, tt.expValue)
		})
	}
}

func TestAssetStore_GetAll(t *testing.T) {
	store, err := NewAssetStore[*blueprintSpec](t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	store.records = map[string]*blueprintSpec{
		"one": {Name: "One", Value: 1},
		"two": {Name: "Two", Value: 2},
	}

	result := store.GetAll()
	testutil.AssertEqual(t, "count", len(result), 2)

	// Mutating the result must not touch the store's records.
	delete(result, "one")
	testutil.AssertEqual(t, "original intact", len(store.records), 2)
}

func TestAssetStore_Save(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewAssetStore[*blueprintSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	if err := store.Save("test-id", &blueprintSpec{Name: "TestItem", Value: 100}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cached := store.Get("test-id")
	if cached == nil {
		t.Fatal("expected cached record")
	}
	testutil.AssertEqual(t, "cached name", cached.Name, "TestItem")

	// And the asset file is on disk.
	data, err := os.ReadFile(filepath.Join(tmpDir, "test-id.json"))
	if err != nil {
		t.Fatalf("failed to read saved file: %v", err)
	}

	var asset Asset[*blueprintSpec]
	if err := json.Unmarshal(data, &asset); err != nil {
		t.Fatalf("failed to unmarshal saved data: %v", err)
	}

	testutil.AssertEqual(t, "asset version", asset.Version, uint(1))
	testutil.AssertEqual(t, "asset id", asset.Identifier, "test-id")
	testutil.AssertEqual(t, "spec name", asset.Spec.Name, "TestItem")
}

func TestAtomicWrite(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "out.json")

	if err := AtomicWrite(path, []byte(`{"a":1}`), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	testutil.AssertEqual(t, "contents", string(data), `{"a":1}`)

	// Overwrite replaces the contents and leaves no temp file behind.
	if err := AtomicWrite(path, []byte(`{"a":2}`), 0644); err != nil {
		t.Fatalf("unexpected error on overwrite: %v", err)
	}
	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading overwritten file: %v", err)
	}
	testutil.AssertEqual(t, "overwritten contents", string(data), `{"a":2}`)

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("expected temp file to be gone after rename")
	}
}
