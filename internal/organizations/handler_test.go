package organizations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidSlug(t *testing.T) {
	valid := []string{"acme", "tech-week-2026", "a1", "xy"}
	for _, s := range valid {
		assert.True(t, ValidSlug(s), "slug %q should be valid", s)
	}

	invalid := []string{"", "a", "Acme", "tech week", "-leading", "trailing space ", "under_score"}
	for _, s := range invalid {
		assert.False(t, ValidSlug(s), "slug %q should be invalid", s)
	}
}
