package profiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLinkedIn(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"ana-gomez", "ana-gomez"},
		{"  ana-gomez  ", "ana-gomez"},
		{"https://www.linkedin.com/in/ana-gomez/", "ana-gomez"},
		{"linkedin.com/in/ana-gomez", "ana-gomez"},
		{"www.linkedin.com/in/ana-gomez", "ana-gomez"},
		{"http://linkedin.com/in/ana-gomez/", "ana-gomez"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeLinkedIn(tc.in), "input %q", tc.in)
	}
}

func TestValidLinkedIn(t *testing.T) {
	assert.True(t, ValidLinkedIn("ana-gomez"))
	assert.True(t, ValidLinkedIn("ben2lee"))
	assert.False(t, ValidLinkedIn(""))
	assert.False(t, ValidLinkedIn("ab"))
	assert.False(t, ValidLinkedIn("has spaces"))
	assert.False(t, ValidLinkedIn("unicode-héllo"))
}
