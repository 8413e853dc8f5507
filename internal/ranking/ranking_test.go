package ranking

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geolayer/internal/dataset"
)

func v(x float64) *float64 { return &x }

type names map[string]string

func (n names) DisplayName(code string) string {
	if s, ok := n[code]; ok {
		return s
	}
	return code
}

func store(values map[string]float64) *dataset.Store {
	m := make(map[string]map[string]*float64, len(values))
	for code, x := range values {
		m[code] = map[string]*float64{"2020": v(x)}
	}
	return dataset.New(m)
}

func TestRank_ExcludesNonPositive(t *testing.T) {
	s := store(map[string]float64{"a": 10, "b": 0, "c": -5, "d": 20})

	got := Rank(s, "2020", Top, nil)
	require.Len(t, got, 2)
	assert.Equal(t, Entry{Code: "d", DisplayName: "d", Value: 20, Position: 1}, got[0])
	assert.Equal(t, Entry{Code: "a", DisplayName: "a", Value: 10, Position: 2}, got[1])
}

func TestRank_Bottom(t *testing.T) {
	s := store(map[string]float64{"a": 10, "b": 3, "d": 20})

	got := Rank(s, "2020", Bottom, names{"b": "Bravo"})
	require.Len(t, got, 3)
	assert.Equal(t, []string{"b", "a", "d"}, []string{got[0].Code, got[1].Code, got[2].Code})
	assert.Equal(t, "Bravo", got[0].DisplayName)
	assert.Equal(t, 3, got[2].Position)
}

func TestRank_TiesByCode(t *testing.T) {
	s := store(map[string]float64{"zz": 5, "aa": 5, "mm": 5, "top": 9})

	for _, order := range []Order{Top, Bottom} {
		got := Rank(s, "2020", order, nil)
		require.Len(t, got, 4)
		var tied []string
		for _, e := range got {
			if e.Value == 5 {
				tied = append(tied, e.Code)
			}
		}
		assert.Equal(t, []string{"aa", "mm", "zz"}, tied, order)
	}
}

func TestRank_MissingKey(t *testing.T) {
	s := store(map[string]float64{"a": 1, "b": math.Inf(1)})
	assert.Empty(t, Rank(s, "1999", Top, nil))
	assert.Len(t, Rank(s, "2020", Top, nil), 1)
}

func TestPage(t *testing.T) {
	entries := make([]Entry, 12)
	for i := range entries {
		entries[i].Position = i + 1
	}

	tests := []struct {
		name          string
		shown, size   int
		wantLen, rest int
	}{
		{"first page", 0, 5, 5, 7},
		{"show more", 5, 5, 10, 2},
		{"past end", 10, 5, 12, 0},
		{"negative", -3, -1, 0, 12},
		{"zero size", 4, 0, 4, 8},
		{"huge shown", math.MaxInt, 10, 12, 0},
		{"huge size", 3, math.MaxInt, 12, 0},
		{"both huge", math.MaxInt, math.MaxInt, 12, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rest := Page(entries, tt.shown, tt.size)
			assert.Len(t, got, tt.wantLen)
			assert.Equal(t, tt.rest, rest)
		})
	}

	got, rest := Page(nil, 0, 5)
	assert.Empty(t, got)
	assert.Equal(t, 0, rest)
}

func TestParseOrder(t *testing.T) {
	tests := []struct {
		in      string
		want    Order
		wantErr bool
	}{
		{"top", Top, false},
		{"DESC", Top, false},
		{"", Top, false},
		{" bottom ", Bottom, false},
		{"asc", Bottom, false},
		{"sideways", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOrder(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
