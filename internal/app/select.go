package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"cmdipass/internal/domain"
)

// ErrEntryNotFound is matched by every EntryNotFoundError.
var ErrEntryNotFound = errors.New("entry not found")

// Selector picks one entry out of a result list, by position or by UUID.
type Selector struct {
	Index  int
	UUID   string
	byUUID bool
}

// ByIndex selects the entry at the 0-based position i.
func ByIndex(i int) Selector { return Selector{Index: i} }

// ByUUID selects the entry whose UUID equals u. Hyphens and case are
// ignored.
func ByUUID(u string) Selector { return Selector{UUID: u, byUUID: true} }

// Pick returns the selected entry.
func (s Selector) Pick(entries []domain.Entry) (domain.Entry, error) {
	if s.byUUID {
		for _, e := range entries {
			if sameUUID(e.UUID, s.UUID) {
				return e, nil
			}
		}
		return domain.Entry{}, &EntryNotFoundError{Selector: s}
	}
	if s.Index < 0 || s.Index >= len(entries) {
		return domain.Entry{}, &EntryNotFoundError{Selector: s}
	}
	return entries[s.Index], nil
}

// sameUUID compares KeePass UUIDs, which are sent as 32 hex digits, against
// user input that may be in the hyphenated form.
func sameUUID(a, b string) bool {
	ua, errA := uuid.Parse(a)
	ub, errB := uuid.Parse(b)
	if errA == nil && errB == nil {
		return ua == ub
	}
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// EntryNotFoundError reports a selector that matched nothing.
type EntryNotFoundError struct {
	Selector Selector
}

func (e *EntryNotFoundError) Error() string {
	if e.Selector.byUUID {
		return fmt.Sprintf("No entry found with UUID %s", e.Selector.UUID)
	}
	return fmt.Sprintf("No entry found at index %d", e.Selector.Index)
}

// Is implements errors.Is for sentinel error matching.
func (e *EntryNotFoundError) Is(target error) bool { return target == ErrEntryNotFound }
