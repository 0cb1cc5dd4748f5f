package persist

import (
	"fmt"
	"strconv"
	"strings"
)

// ObjectID identifies a live object. A blueprint singleton is identified by
// its definition path alone (e.g. "/items/rusty-sword"); a clone carries the
// definition path plus the ordinal minted when it was cloned. The wire
// encoding is "<path>#<ordinal>" for clones and the bare path for blueprints.
type ObjectID struct {
	Path    string
	Ordinal uint64
	IsClone bool
}

// BlueprintID returns the identity of the blueprint singleton at path.
func BlueprintID(path string) ObjectID {
	return ObjectID{Path: path}
}

// CloneID returns the identity of clone number ordinal of the blueprint at path.
func CloneID(path string, ordinal uint64) ObjectID {
	return ObjectID{Path: path, Ordinal: ordinal, IsClone: true}
}

// ParseObjectID decodes the wire encoding. A string without a '#' is a
// blueprint path; "<path>#<ordinal>" is a clone. This is the only place the
// clone suffix is parsed.
func ParseObjectID(s string) (ObjectID, error) {
	if s == "" {
		return ObjectID{}, fmt.Errorf("empty object path")
	}

	idx := strings.LastIndexByte(s, '#')
	if idx < 0 {
		return BlueprintID(s), nil
	}

	path := s[:idx]
	if path == "" {
		return ObjectID{}, fmt.Errorf("object path %q has no blueprint path", s)
	}

	ordinal, err := strconv.ParseUint(s[idx+1:], 10, 64)
	if err != nil {
		return ObjectID{}, fmt.Errorf("object path %q has a malformed clone ordinal", s)
	}

	return CloneID(path, ordinal), nil
}

// String returns the wire encoding.
func (id ObjectID) String() string {
	if !id.IsClone {
		return id.Path
	}
	return id.Path + "#" + strconv.FormatUint(id.Ordinal, 10)
}

// Blueprint returns the definition path, with any clone ordinal stripped.
func (id ObjectID) Blueprint() string {
	return id.Path
}
