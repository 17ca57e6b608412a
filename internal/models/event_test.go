package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty column", "", []string{}},
		{"single", "music", []string{"music"}},
		{"ordered", "music,tech,art", []string{"music", "tech", "art"}},
		{"trims whitespace", " music , tech ", []string{"music", "tech"}},
		{"drops empties", "music,,tech,", []string{"music", "tech"}},
		{"only separators", ",,,", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitTags(tt.in))
		})
	}
}

func TestTagsRoundTrip(t *testing.T) {
	tags := []string{"conference", "go", "backend"}
	assert.Equal(t, tags, SplitTags(JoinTags(tags)))
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"Pending", "pending", "PENDING"} {
		st, ok := ParseStatus(s)
		assert.True(t, ok)
		assert.Equal(t, StatusPending, st)
	}
	_, ok := ParseStatus("archived")
	assert.False(t, ok)
	_, ok = ParseStatus("")
	assert.False(t, ok)
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("Admin")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, r)

	// role claims are matched verbatim; casing matters
	_, ok = ParseRole("admin")
	assert.False(t, ok)
	_, ok = ParseRole("SuperUser")
	assert.False(t, ok)
}
