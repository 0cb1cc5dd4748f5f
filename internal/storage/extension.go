package storage

import (
	"encoding/json"
	"fmt"
)

// ExtensionState is a bag of custom properties attached to a live entity,
// kept as raw JSON so properties written by content the server doesn't know
// about survive a save/load cycle.
type ExtensionState map[string]json.RawMessage

// Set marshals v and stores it under key, allocating the map on first use.
func (e *ExtensionState) Set(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal extension %q: %w", key, err)
	}

	if *e == nil {
		*e = ExtensionState{}
	}
	(*e)[key] = json.RawMessage(b)
	return nil
}

// Get unmarshals the value at key into out. A missing key returns
// (found=false, nil) and leaves out untouched.
func (e ExtensionState) Get(key string, out any) (bool, error) {
	raw, ok := e[key]
	if !ok || len(raw) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("unmarshal extension %q: %w", key, err)
	}
	return true, nil
}

// Delete removes key, if present.
func (e ExtensionState) Delete(key string) {
	delete(e, key)
}
