package memberships

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(name, oneLiner, linkedin string, joinedAt time.Time, classID uuid.UUID, engaged int) RosterEntry {
	return RosterEntry{
		MembershipID:     uuid.New(),
		UserID:           uuid.New(),
		ClassificationID: classID,
		FullName:         name,
		OneLiner:         oneLiner,
		LinkedInUsername: linkedin,
		JoinedAt:         joinedAt,
		EngagementCount:  engaged,
	}
}

func names(entries []RosterEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.FullName
	}
	return out
}

func TestFilterSortSearchMatchesSubstrings(t *testing.T) {
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	cl := uuid.New()
	entries := []RosterEntry{
		entry("Ana Gomez", "Founder at Acme", "ana-gomez", base, cl, 0),
		entry("Ben Lee", "Backend engineer", "benlee", base.Add(time.Minute), cl, 0),
		entry("Carla Diaz", "Banana importer", "cdiaz", base.Add(2*time.Minute), cl, 0),
	}

	got := FilterSort(entries, RosterQuery{Search: "ana"})
	require.Len(t, got, 2)
	// "ana" hits "Ana Gomez" by name and "Banana importer" by one-liner,
	// never "Ben Lee".
	assert.ElementsMatch(t, []string{"Ana Gomez", "Carla Diaz"}, names(got))

	got = FilterSort(entries, RosterQuery{Search: "BENLEE"})
	require.Len(t, got, 1)
	assert.Equal(t, "Ben Lee", got[0].FullName)

	got = FilterSort(entries, RosterQuery{Search: "nobody"})
	assert.Empty(t, got)
}

func TestFilterSortClassificationFilter(t *testing.T) {
	base := time.Now()
	speakers := uuid.New()
	attendees := uuid.New()
	entries := []RosterEntry{
		entry("Ana Gomez", "", "", base, speakers, 0),
		entry("Ben Lee", "", "", base, attendees, 0),
	}
	got := FilterSort(entries, RosterQuery{ClassificationID: &speakers})
	require.Len(t, got, 1)
	assert.Equal(t, "Ana Gomez", got[0].FullName)
}

func TestFilterSortRecentOrdersNewestFirst(t *testing.T) {
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	cl := uuid.New()
	entries := []RosterEntry{
		entry("First", "", "", base, cl, 0),
		entry("Second", "", "", base.Add(time.Hour), cl, 0),
		entry("Third", "", "", base.Add(2*time.Hour), cl, 0),
	}
	got := FilterSort(entries, RosterQuery{Sort: SortRecent})
	assert.Equal(t, []string{"Third", "Second", "First"}, names(got))
}

func TestFilterSortEngagedOrdersByClicks(t *testing.T) {
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	cl := uuid.New()
	entries := []RosterEntry{
		entry("Quiet", "", "", base, cl, 0),
		entry("Popular", "", "", base.Add(time.Minute), cl, 5),
		entry("Middling", "", "", base.Add(2*time.Minute), cl, 2),
	}
	got := FilterSort(entries, RosterQuery{Sort: SortEngaged})
	assert.Equal(t, []string{"Popular", "Middling", "Quiet"}, names(got))
}

func TestFilterSortEngagedTiesKeepInsertionOrder(t *testing.T) {
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	cl := uuid.New()
	entries := []RosterEntry{
		entry("Early", "", "", base, cl, 3),
		entry("Late", "", "", base.Add(time.Minute), cl, 3),
	}
	got := FilterSort(entries, RosterQuery{Sort: SortEngaged})
	assert.Equal(t, []string{"Early", "Late"}, names(got))
}
