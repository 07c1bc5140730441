package domain

import (
	"strconv"
	"strings"
)

// tempIDPrefix marks identifiers that were generated locally and never sent to the store.
const tempIDPrefix = "temp-"

// SubtaskID identifies a subtask either by a local temporary key (a draft)
// or by the store-assigned numeric ID (a persisted subtask).
// The zero value identifies nothing.
type SubtaskID struct {
	temp      string
	persisted int
}

// TempID returns the identity of a draft with the given local key.
func TempID(key string) SubtaskID {
	return SubtaskID{temp: key}
}

// PersistedID returns the identity of a subtask stored under id.
func PersistedID(id int) SubtaskID {
	return SubtaskID{persisted: id}
}

// ParseSubtaskID parses the String form of a SubtaskID.
func ParseSubtaskID(s string) (SubtaskID, bool) {
	if key, ok := strings.CutPrefix(s, tempIDPrefix); ok && key != "" {
		return TempID(key), true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return SubtaskID{}, false
	}
	return PersistedID(n), true
}

// IsZero reports whether id identifies nothing.
func (id SubtaskID) IsZero() bool {
	return id.temp == "" && id.persisted == 0
}

// IsTemp reports whether id is a local draft identity.
func (id SubtaskID) IsTemp() bool {
	return id.temp != ""
}

// Persisted returns the store ID, and false for draft identities.
func (id SubtaskID) Persisted() (int, bool) {
	if id.temp != "" || id.persisted == 0 {
		return 0, false
	}
	return id.persisted, true
}

// String returns "temp-<key>" for drafts and the decimal ID for persisted subtasks.
func (id SubtaskID) String() string {
	switch {
	case id.temp != "":
		return tempIDPrefix + id.temp
	case id.persisted != 0:
		return strconv.Itoa(id.persisted)
	}
	return ""
}
