// Package ranking produces ordered Top-N and Bottom-N views of a store slice.
package ranking

import (
	"math"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geolayer/internal/dataset"
)

// Order selects the sort direction.
type Order string

// Supported orders.
const (
	Top    Order = "top"
	Bottom Order = "bottom"
)

// ParseOrder accepts top/desc and bottom/asc, case-insensitively.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "top", "desc":
		return Top, nil
	case "bottom", "asc":
		return Bottom, nil
	default:
		return "", eris.Errorf("ranking: unknown order %q", s)
	}
}

// Entry is one ranked region.
type Entry struct {
	Code        string  `json:"code"`
	DisplayName string  `json:"display_name"`
	Value       float64 `json:"value"`
	Position    int     `json:"position"`
}

// Namer resolves a code to a display name.
type Namer interface {
	DisplayName(code string) string
}

// Rank orders the store's values at key. Zero, negative and non-finite
// values are excluded. Equal values are ordered by code so the result is
// stable across calls.
func Rank(s *dataset.Store, key string, order Order, names Namer) []Entry {
	slice := s.Slice(key)
	out := make([]Entry, 0, len(slice))
	for code, v := range slice {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		name := code
		if names != nil {
			name = names.DisplayName(code)
		}
		out = append(out, Entry{Code: code, DisplayName: name, Value: v})
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Value != b.Value {
			if order == Bottom {
				return a.Value < b.Value
			}
			return a.Value > b.Value
		}
		return a.Code < b.Code
	})
	for i := range out {
		out[i].Position = i + 1
	}
	return out
}

// Page returns the first shown+size entries and how many remain after them.
// shown is the number already visible; a negative shown or size is treated
// as zero.
func Page(entries []Entry, shown, size int) ([]Entry, int) {
	shown = max(shown, 0)
	size = max(size, 0)
	if shown >= len(entries) {
		return entries, 0
	}
	end := shown + min(size, len(entries)-shown)
	return entries[:end], len(entries) - end
}
