package activity

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func daySamples(counts map[string]int) []Sample {
	samples := make([]Sample, 0, len(counts))
	for d, n := range counts {
		samples = append(samples, Sample{Date: MustParseDate(d), Count: n})
	}
	return samples
}

func TestNewHeatmap(t *testing.T) {
	today := MustParseDate("2024-03-10")
	samples := daySamples(map[string]int{"2024-01-01": 12, "2024-03-09": 2})

	hm := NewHeatmap(samples, today, true, DefaultPalette)

	assert.Equal(t, MustParseDate("2023-03-11"), hm.Start)
	assert.Equal(t, today, hm.End)
	assert.True(t, hm.WeekStartsOnMonday)
	assert.Equal(t, 5, hm.LeadingPlaceholders)
	assert.Equal(t, 53, hm.Weeks)
	require.Len(t, hm.Cells, 371)
	assert.Len(t, hm.Months, 13)

	assert.Equal(t, HeatmapCell{
		GridCell: GridCell{IsPlaceholder: true},
		Bucket:   BucketNone,
		Color:    "transparent",
	}, hm.Cells[0])

	assert.Equal(t, HeatmapCell{
		GridCell: GridCell{Date: MustParseDate("2024-01-01"), Count: 12},
		Bucket:   6,
		Color:    DefaultPalette[6],
		Tooltip:  "12 contributions on Monday, January 1, 2024",
	}, hm.Cells[301])

	assert.Equal(t, HeatmapCell{
		GridCell: GridCell{Date: today},
		Bucket:   0,
		Color:    DefaultPalette[0],
		Tooltip:  "No contributions on Sunday, March 10, 2024",
	}, hm.Cells[370])

	cols := hm.Columns()
	require.Len(t, cols, 53)
	for _, col := range cols {
		assert.Len(t, col, DaysPerWeek)
	}
	// Jan 1 2024 is a Monday: first row of its column
	assert.Equal(t, MustParseDate("2024-01-01"), cols[43][0].Date)
}

func TestComputeStats(t *testing.T) {
	today := MustParseDate("2024-03-10")

	tests := []struct {
		name   string
		counts map[string]int
		want   Stats
	}{
		{name: "empty"},
		{
			name: "streak ending yesterday",
			counts: map[string]int{
				"2024-01-01": 12,
				"2024-03-01": 1, "2024-03-02": 1, "2024-03-03": 1, "2024-03-04": 1,
				"2024-03-08": 1, "2024-03-09": 2,
			},
			want: Stats{Total: 19, ActiveDays: 7, MaxCount: 12, CurrentStreak: 2, LongestStreak: 4},
		},
		{
			name:   "streak ending today",
			counts: map[string]int{"2024-03-08": 1, "2024-03-09": 1, "2024-03-10": 3},
			want:   Stats{Total: 5, ActiveDays: 3, MaxCount: 3, CurrentStreak: 3, LongestStreak: 3},
		},
		{
			name:   "broken streak",
			counts: map[string]int{"2024-03-07": 1, "2024-03-08": 1},
			want:   Stats{Total: 2, ActiveDays: 2, MaxCount: 1, CurrentStreak: 0, LongestStreak: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeStats(BuildGrid(daySamples(tt.counts), today, true))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderSVG(t *testing.T) {
	today := MustParseDate("2024-03-10")
	hm := NewHeatmap(daySamples(map[string]int{"2024-01-01": 5}), today, true, DefaultPalette)

	opts := DefaultSVGOptions
	opts.Title = "Ana & <Ion>"

	var buf bytes.Buffer
	require.NoError(t, RenderSVG(&buf, hm, &opts))
	svg := buf.String()

	assert.True(t, strings.HasPrefix(svg, "<svg "))
	assert.True(t, strings.HasSuffix(svg, "</svg>\n"))
	assert.Equal(t, 366, strings.Count(svg, "<rect "))
	assert.Contains(t, svg, "Ana &amp; &lt;Ion&gt;")
	assert.Contains(t, svg, `data-date="2024-01-01" data-count="5"`)
	assert.Contains(t, svg, "<title>5 contributions on Monday, January 1, 2024</title>")
	assert.Contains(t, svg, ">Mon</text>")
	assert.NotContains(t, svg, "transparent")

	buf.Reset()
	require.NoError(t, RenderSVG(&buf, hm, nil))
	assert.NotContains(t, buf.String(), `class="title"`)
	assert.Equal(t, 366, strings.Count(buf.String(), "<rect "))
}
