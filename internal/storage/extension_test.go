package storage

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestExtensionState_Set(t *testing.T) {
	tests := map[string]struct {
		initial ExtensionState
		key     string
		value   any
		expErr  bool
	}{
		"set on nil map": {
			initial: nil,
			key:     "test",
			value:   map[string]string{"foo": "bar"},
		},
		"set on existing map": {
			initial: ExtensionState{},
			key:     "count",
			value:   42,
		},
		"set struct value": {
			initial: ExtensionState{},
			key:     "data",
			value:   struct{ Name string }{"test"},
		},
		"marshal error with channel": {
			initial: ExtensionState{},
			key:     "bad",
			value:   make(chan int),
			expErr:  true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e := tt.initial
			err := e.Set(tt.key, tt.value)

			if tt.expErr {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if _, ok := e[tt.key]; !ok {
				t.Errorf("key %q not found after Set", tt.key)
			}
		})
	}
}

func TestExtensionState_Get(t *testing.T) {
	type testData struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	preloaded := ExtensionState{}
	if err := preloaded.Set("data", testData{Name: "test", Count: 5}); err != nil {
		t.Fatalf("failed to set preloaded data: %v", err)
	}

	var out testData
	found, err := preloaded.Get("data", &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "found", found, true)
	testutil.AssertEqual(t, "value", out, testData{Name: "test", Count: 5})

	found, err = preloaded.Get("missing", &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "missing found", found, false)

	var nilState ExtensionState
	found, err = nilState.Get("anything", &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "nil map found", found, false)
}

func TestExtensionState_Get_UnmarshalError(t *testing.T) {
	e := ExtensionState{
		"bad": []byte(`{"invalid json`),
	}

	var out map[string]string
	found, err := e.Get("bad", &out)

	testutil.AssertEqual(t, "found", found, true)
	testutil.AssertErrorContains(t, err, "unmarshal extension")
}

func TestExtensionState_Delete(t *testing.T) {
	e := ExtensionState{"target": []byte(`"value"`), "other": []byte(`"keep"`)}
	e.Delete("target")
	if _, ok := e["target"]; ok {
		t.Error("key should have been deleted")
	}
	testutil.AssertEqual(t, "remaining", len(e), 1)

	// Deleting from a nil map is a no-op.
	var nilState ExtensionState
	nilState.Delete("anything")
}
