package memberships

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Roster sort modes.
const (
	SortRecent  = "recent"
	SortEngaged = "engaged"
)

// RosterQuery narrows and orders a room's approved roster.
type RosterQuery struct {
	ClassificationID *uuid.UUID
	Search           string
	Sort             string
}

// FilterSort applies classification and search filters, then orders the
// entries. Search is a case-insensitive substring match over full name,
// one-liner and LinkedIn handle. SortEngaged orders by engagement count
// descending; ties (and SortRecent throughout) keep insertion order, newest
// first for recent.
func FilterSort(entries []RosterEntry, q RosterQuery) []RosterEntry {
	out := make([]RosterEntry, 0, len(entries))
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	for _, e := range entries {
		if q.ClassificationID != nil && e.ClassificationID != *q.ClassificationID {
			continue
		}
		if needle != "" && !matches(e, needle) {
			continue
		}
		out = append(out, e)
	}

	switch q.Sort {
	case SortEngaged:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].EngagementCount > out[j].EngagementCount
		})
	default: // SortRecent
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].JoinedAt.After(out[j].JoinedAt)
		})
	}
	return out
}

func matches(e RosterEntry, needle string) bool {
	return strings.Contains(strings.ToLower(e.FullName), needle) ||
		strings.Contains(strings.ToLower(e.OneLiner), needle) ||
		strings.Contains(strings.ToLower(e.LinkedInUsername), needle)
}
