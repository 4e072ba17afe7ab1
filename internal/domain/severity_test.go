package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sightingsAt(cities ...string) []Sighting {
	out := make([]Sighting, 0, len(cities))
	for i, c := range cities {
		out = append(out, Sighting{ID: i + 1, City: c, Species: "A", Date: "2025-01-01"})
	}
	return out
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		maxCount int
		expected SeverityTier
	}{
		{"max is high", 8, 8, High},
		{"exactly 75% is high", 6, 8, High},
		{"just below 75% is medium", 5, 8, Medium},
		{"exactly 25% is medium", 2, 8, Medium},
		{"just below 25% is low", 1, 8, Low},
		{"zero count is low", 0, 8, Low},
		{"zero max guarded", 0, 0, Low},
		{"single sighting", 1, 1, High},
		{"half of two is medium", 1, 2, Medium},
		{"75% of four", 3, 4, High},
		{"25% of four", 1, 4, Medium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TierFor(tt.count, tt.maxCount))
		})
	}
}

func TestClassify(t *testing.T) {
	t.Run("empty input yields empty mapping", func(t *testing.T) {
		m := Classify(nil)
		assert.Equal(t, 0, m.Len())
		assert.Empty(t, m.AsMap())
	})

	t.Run("leeds and york", func(t *testing.T) {
		m := Classify(sightingsAt("Leeds", "Leeds", "York"))
		assert.Equal(t, map[string]SeverityTier{"Leeds": High, "York": Medium}, m.AsMap())
	})

	t.Run("three tiers", func(t *testing.T) {
		in := sightingsAt(
			"Leeds", "Leeds", "Leeds", "Leeds", "Leeds", "Leeds", "Leeds", "Leeds",
			"York", "York",
			"Hull",
		)
		m := Classify(in)
		assert.Equal(t, High, m.Tier("Leeds"))
		assert.Equal(t, Medium, m.Tier("York"))
		assert.Equal(t, Low, m.Tier("Hull"))
	})

	t.Run("ties at max are all high", func(t *testing.T) {
		m := Classify(sightingsAt("Leeds", "York", "Leeds", "York"))
		assert.Equal(t, High, m.Tier("Leeds"))
		assert.Equal(t, High, m.Tier("York"))
	})

	t.Run("order independent", func(t *testing.T) {
		a := Classify(sightingsAt("Leeds", "York", "Leeds", "Hull", "Leeds"))
		b := Classify(sightingsAt("Hull", "Leeds", "Leeds", "Leeds", "York"))
		assert.Equal(t, a.AsMap(), b.AsMap())
	})

	t.Run("absent location falls back to low", func(t *testing.T) {
		m := Classify(sightingsAt("Leeds"))
		_, ok := m.Lookup("Bath")
		assert.False(t, ok)
		assert.Equal(t, Low, m.Tier("Bath"))
	})
}

func TestClassify_HighestCountIsHigh(t *testing.T) {
	inputs := [][]string{
		{"A"},
		{"A", "B", "C"},
		{"A", "A", "A", "B", "C", "C"},
		{"A", "B", "B", "B", "B", "B", "B", "B", "B", "B", "B", "C"},
	}
	for _, cities := range inputs {
		in := sightingsAt(cities...)
		counts := CountByLocation(in)
		maxCount := 0
		for _, n := range counts {
			maxCount = max(maxCount, n)
		}

		m := Classify(in)
		for city, n := range counts {
			if n == maxCount {
				assert.Equal(t, High, m.Tier(city), "city %s with max count %d", city, n)
			}
		}
	}
}

func TestClassify_Monotonic(t *testing.T) {
	in := sightingsAt(
		"A", "A", "A", "A", "A", "A", "A", "A", "A", "A", "A", "A",
		"B", "B", "B", "B", "B", "B", "B", "B", "B",
		"C", "C", "C", "C", "C", "C", "C", "C",
		"D", "D", "D",
		"E", "E",
		"F",
	)
	counts := CountByLocation(in)
	m := Classify(in)

	for a, na := range counts {
		for b, nb := range counts {
			if na >= nb {
				assert.GreaterOrEqual(t, m.Tier(a), m.Tier(b), "%s(%d) vs %s(%d)", a, na, b, nb)
			}
		}
	}
}

func TestParseSeverityTier(t *testing.T) {
	for _, s := range []string{"low", "LOW", " Medium ", "high"} {
		_, err := ParseSeverityTier(s)
		require.NoError(t, err, s)
	}

	_, err := ParseSeverityTier("critical")
	require.ErrorIs(t, err, ErrUnknownSeverity)

	_, err = ParseSeverityTier("")
	require.ErrorIs(t, err, ErrUnknownSeverity)
}

func TestSeverityTier_Color(t *testing.T) {
	assert.Equal(t, "green", Low.Color())
	assert.Equal(t, "orange", Medium.Color())
	assert.Equal(t, "red", High.Color())
}

func TestSeverityMapping_JSON(t *testing.T) {
	m := Classify(sightingsAt("Leeds", "Leeds", "York"))

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Leeds":"high","York":"medium"}`, string(data))

	var decoded SeverityMapping
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, m.AsMap(), decoded.AsMap())

	empty, err := json.Marshal(SeverityMapping{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(empty))
}

func TestSeverityMapping_AsMapIsACopy(t *testing.T) {
	m := Classify(sightingsAt("Leeds"))
	cp := m.AsMap()
	cp["Leeds"] = Low
	assert.Equal(t, High, m.Tier("Leeds"))
}
