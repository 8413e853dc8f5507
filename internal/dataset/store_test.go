package dataset

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geolayer/internal/region"
)

func f(v float64) *float64 { return &v }

func TestGet_CaseInsensitiveFallback(t *testing.T) {
	s := New(map[string]map[string]*float64{
		"ID": {"2020": f(4.5)},
	})

	v, ok := s.Get("id", "2020")
	require.True(t, ok)
	assert.Equal(t, 4.5, v)

	v, ok = s.Get("ID", "2020")
	require.True(t, ok)
	assert.Equal(t, 4.5, v)

	_, ok = s.Get("id", "2021")
	assert.False(t, ok)
	_, ok = s.Get("us", "2020")
	assert.False(t, ok)
}

func TestNew_DropsMissingValues(t *testing.T) {
	s := New(map[string]map[string]*float64{
		"A": {"2019": f(1), "2020": nil},
		"B": {"2020": nil},
		"C": {"2020": f(math.NaN()), "2021": f(math.Inf(1))},
		"D": {"2020": f(0)},
	})

	assert.Equal(t, []string{"A", "D"}, s.Codes())
	assert.Equal(t, 2, s.Len())

	_, ok := s.Get("A", "2020")
	assert.False(t, ok, "null is absence")

	v, ok := s.Get("D", "2020")
	require.True(t, ok, "zero is a real value")
	assert.Equal(t, 0.0, v)
}

func TestTimeKeys_Ordering(t *testing.T) {
	s := New(map[string]map[string]*float64{
		"A": {"2010": f(1), "2009": f(2), "1999": f(3)},
	})
	assert.Equal(t, []string{"1999", "2009", "2010"}, s.TimeKeys())
	assert.Equal(t, "2010", s.LatestKey())

	hours := New(map[string]map[string]*float64{
		"A": {"10": f(1), "2": f(2), "0": f(3)},
	})
	assert.Equal(t, []string{"0", "2", "10"}, hours.TimeKeys())

	src := New(map[string]map[string]*float64{
		"A": {"b": f(1), "a": f(2), "2001": f(3)},
	}, WithTimeKeys([]string{"b", "missing", "a"}))
	assert.Equal(t, []string{"b", "a", "2001"}, src.TimeKeys())
	assert.Equal(t, "2001", src.LatestKey())

	assert.Equal(t, "", New(nil).LatestKey())
}

func TestTimeless(t *testing.T) {
	s := New(map[string]map[string]*float64{
		"A": {AllKey: f(7)},
	})
	require.True(t, s.Timeless())

	v, ok := s.Get("A", "2020")
	require.True(t, ok)
	assert.Equal(t, 7.0, v)
}

func TestNormalizerMergesCodes(t *testing.T) {
	s := New(map[string]map[string]*float64{
		"id":  {"2019": f(1)},
		"IDN": {"2020": f(2)},
	}, WithNormalizer(func(raw string) string {
		if strings.EqualFold(raw, "id") {
			return "IDN"
		}
		return raw
	}), WithGranularity(region.Province))

	assert.Equal(t, []string{"IDN"}, s.Codes())
	assert.Equal(t, region.Province, s.Granularity())
	v, ok := s.Get("IDN", "2019")
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
}

func TestNormalizerCollisionIsDeterministic(t *testing.T) {
	values := map[string]map[string]*float64{
		"Aceh":           {"2020": f(1)},
		"PROVINSI ACEH":  {"2020": f(2)},
		"aceh":           {"2020": f(3)},
		"Nanggroe Aceh":  {"2021": f(4)},
		"Daerah Lainnya": {"2020": f(5)},
	}
	norm := WithNormalizer(func(raw string) string {
		if strings.Contains(strings.ToUpper(raw), "ACEH") {
			return "ACEH"
		}
		return raw
	})

	for i := 0; i < 20; i++ {
		s := New(values, norm)
		v, ok := s.Get("ACEH", "2020")
		require.True(t, ok)
		// "aceh" sorts after "PROVINSI ACEH" and "Aceh".
		assert.Equal(t, 3.0, v)
		v, ok = s.Get("ACEH", "2021")
		require.True(t, ok)
		assert.Equal(t, 4.0, v)
	}
}

func TestOverallRange_Declared(t *testing.T) {
	values := map[string]map[string]*float64{
		"A": {"2020": f(3)},
		"B": {"2020": f(7)},
	}

	lo, hi, ok := New(values, WithValueRange(f(0), f(100))).OverallRange()
	require.True(t, ok)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 100.0, hi)

	for _, tt := range []struct {
		name   string
		lo, hi *float64
	}{
		{"missing max", f(0), nil},
		{"inverted", f(10), f(1)},
		{"non-finite", f(math.Inf(-1)), f(1)},
	} {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi, ok := New(values, WithValueRange(tt.lo, tt.hi)).OverallRange()
			require.True(t, ok)
			assert.Equal(t, 3.0, lo)
			assert.Equal(t, 7.0, hi)
		})
	}
}

func TestSliceAndRange(t *testing.T) {
	s := New(map[string]map[string]*float64{
		"A": {"2020": f(3), "2021": f(30)},
		"B": {"2020": f(-1)},
		"C": {"2021": f(5)},
	})

	assert.Equal(t, map[string]float64{"A": 3, "B": -1}, s.Slice("2020"))

	lo, hi, ok := s.Range("2020")
	require.True(t, ok)
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 3.0, hi)

	_, _, ok = s.Range("1900")
	assert.False(t, ok)

	lo, hi, ok = s.OverallRange()
	require.True(t, ok)
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 30.0, hi)

	_, _, ok = New(nil).OverallRange()
	assert.False(t, ok)
}

func TestFromDescriptor(t *testing.T) {
	payload := `{
		"type": "choropleth",
		"years": ["2019", "2020"],
		"value_column": "GDP",
		"data": {"IDN": {"2019": 1.5, "2020": null}, "USA": {"2020": 2.5}},
		"geojson_file": null
	}`
	d, err := DecodeDescriptor("gdp", []byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "gdp", d.LayerName())
	assert.Equal(t, "", d.GeometryReference())

	s := FromDescriptor(d)
	assert.Equal(t, "gdp", s.Name())
	assert.Equal(t, "GDP", s.Label())
	assert.Equal(t, []string{"2019", "2020"}, s.TimeKeys())
	assert.Equal(t, []string{"IDN", "USA"}, s.Codes())

	lo, hi, ok := s.OverallRange()
	require.True(t, ok)
	assert.Equal(t, 1.5, lo)
	assert.Equal(t, 2.5, hi)
}

func TestFromDescriptor_DeclaredRange(t *testing.T) {
	payload := `{
		"years": ["2020"],
		"data": {"IDN": {"2020": 4}, "USA": {"2020": 6}},
		"min_value": 1,
		"max_value": 10
	}`
	d, err := DecodeDescriptor("gdp", []byte(payload))
	require.NoError(t, err)

	lo, hi, ok := FromDescriptor(d).OverallRange()
	require.True(t, ok)
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 10.0, hi)
}

func TestDecodeDescriptor_Errors(t *testing.T) {
	_, err := DecodeDescriptor("x", []byte(`{`))
	require.Error(t, err)

	_, err = DecodeDescriptor("x", []byte(`{"years":[]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no data")
}
