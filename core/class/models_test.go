package class

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumeral(t *testing.T) {
	tests := []struct {
		name   string
		want   int
		wantOk bool
	}{
		{name: "9", want: 9, wantOk: true},
		{name: "10 Science", want: 10, wantOk: true},
		{name: "  12", want: 12, wantOk: true},
		{name: "07", want: 7, wantOk: true},
		{name: "+5", want: 5, wantOk: true},
		{name: "-3", want: -3, wantOk: true},
		{name: "Nine"},
		{name: "Class 9"},
		{name: ""},
		{name: "-"},
		{name: "12345678901"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Numeral(tt.name)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPopulateRefs(t *testing.T) {
	refs := []Ref{{ID: "a"}, {ID: "b", Name: "stale"}}
	got := PopulateRefs(refs, map[string]Class{"a": {ID: "a", Name: "5"}})
	assert.Equal(t, []Ref{{ID: "a", Name: "5"}, {ID: "b"}}, got)
}
