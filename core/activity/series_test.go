package activity

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

// seqSource replays vals in a loop.
type seqSource struct {
	vals []int
	i    int
}

func (s *seqSource) Intn(n int) int {
	v := s.vals[s.i%len(s.vals)] % n
	s.i++
	return v
}

func TestGenerateSeries(t *testing.T) {
	src := &seqSource{vals: []int{10, 3, 90, 59, 60, 0, 99}}

	got := GenerateSeries(src, MustParseDate("2024-01-01"), MustParseDate("2024-01-05"))
	want := []Sample{
		{Date: MustParseDate("2024-01-01"), Count: 4},
		{Date: MustParseDate("2024-01-03"), Count: 1},
		{Date: MustParseDate("2024-01-04"), Count: 10},
		{Date: MustParseDate("2024-01-05"), Count: 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GenerateSeries() mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerator_GenerateSeries_edges(t *testing.T) {
	day := MustParseDate("2024-03-10")

	tests := []struct {
		name       string
		start, end Date
		maxLen     int
	}{
		{name: "start after end", start: day.AddDays(1), end: day, maxLen: 0},
		{name: "single day", start: day, end: day, maxLen: 1},
		{name: "one year", start: WindowStart(day), end: day, maxLen: 366},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewGenerator(7).GenerateSeries(tt.start, tt.end)
			assert.NotNil(t, got)
			assert.LessOrEqual(t, len(got), tt.maxLen)

			for i, s := range got {
				assert.False(t, s.Date.Before(tt.start), "sample %v before start", s.Date)
				assert.False(t, s.Date.After(tt.end), "sample %v after end", s.Date)
				assert.GreaterOrEqual(t, s.Count, 1)
				assert.LessOrEqual(t, s.Count, DefaultMaxCount)
				if i > 0 {
					assert.True(t, got[i-1].Date.Before(s.Date), "dates must be strictly ascending")
				}
			}
		})
	}
}

func TestGenerator_deterministic(t *testing.T) {
	start, end := MustParseDate("2023-03-11"), MustParseDate("2024-03-10")

	first := NewGenerator(42).GenerateSeries(start, end)
	second := NewGenerator(42).GenerateSeries(start, end)
	other := NewGenerator(43).GenerateSeries(start, end)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
}

func TestGenerator_density(t *testing.T) {
	start, end := MustParseDate("2023-03-11"), MustParseDate("2024-03-10")

	full := &Generator{Source: &seqSource{vals: []int{0}}, MaxCount: 3, Density: 100}
	got := full.GenerateSeries(start, end)
	assert.Len(t, got, 366)
	for _, s := range got {
		assert.Equal(t, 1, s.Count)
	}

	// Intn(100) always returns 99, which a 99% density rejects
	none := &Generator{Source: &seqSource{vals: []int{99}}, Density: 99}
	assert.Empty(t, none.GenerateSeries(start, end))
}

func TestGenerateSeries_nilSource(t *testing.T) {
	start, end := MustParseDate("2024-01-01"), MustParseDate("2024-01-31")

	var zero Generator
	for _, got := range [][]Sample{zero.GenerateSeries(start, end), GenerateSeries(nil, start, end)} {
		assert.LessOrEqual(t, len(got), 31)
		for _, s := range got {
			assert.False(t, s.Date.Before(start) || s.Date.After(end), s.Date.String())
			assert.True(t, s.Count >= 1 && s.Count <= DefaultMaxCount, "count %d", s.Count)
		}
	}
}
