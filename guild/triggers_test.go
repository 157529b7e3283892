package guild

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleTriggers_Resolve(t *testing.T) {
	triggers := RoleTriggers{
		"100": {MessageID: "m1", Priority: 1},
		"200": {MessageID: "m2", Priority: 5},
		"300": {MessageID: "m3", Priority: 5},
	}

	tests := []struct {
		name   string
		added  []string
		want   string
		wantOK bool
	}{
		{name: "highest priority wins", added: []string{"100", "200"}, want: "m2", wantOK: true},
		{name: "order does not beat priority", added: []string{"200", "100"}, want: "m2", wantOK: true},
		{name: "tie keeps first listed", added: []string{"300", "200"}, want: "m3", wantOK: true},
		{name: "unknown roles ignored", added: []string{"999", "100"}, want: "m1", wantOK: true},
		{name: "empty", added: nil},
		{name: "no match", added: []string{"999"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := triggers.Resolve(tt.added)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoleTriggers_SetDeleteSorted(t *testing.T) {
	triggers := make(RoleTriggers)
	triggers.Set("2", "b", 1)
	triggers.Set("1", "a", 1)
	triggers.Set("3", "c", 9)
	triggers.Set("2", "b2", 0)

	assert.Equal(t, []RoleTriggerEntry{
		{RoleID: "3", RoleTrigger: RoleTrigger{MessageID: "c", Priority: 9}},
		{RoleID: "1", RoleTrigger: RoleTrigger{MessageID: "a", Priority: 1}},
		{RoleID: "2", RoleTrigger: RoleTrigger{MessageID: "b2", Priority: 0}},
	}, triggers.Sorted())

	assert.True(t, triggers.Delete("3"))
	assert.False(t, triggers.Delete("3"))
	assert.Len(t, triggers, 2)
}
