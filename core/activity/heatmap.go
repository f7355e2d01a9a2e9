package activity

// HeatmapCell is a GridCell with its presentation attached.
type HeatmapCell struct {
	GridCell
	Bucket  Bucket `json:"bucket"`
	Color   string `json:"color"`
	Tooltip string `json:"tooltip,omitempty"`
}

type Stats struct {
	Total         int `json:"total"`
	ActiveDays    int `json:"active_days"`
	MaxCount      int `json:"max_count"`
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

// Heatmap is the view-model of a contribution grid.
type Heatmap struct {
	Start               Date          `json:"start"`
	End                 Date          `json:"end"`
	WeekStartsOnMonday  bool          `json:"week_starts_on_monday"`
	LeadingPlaceholders int           `json:"leading_placeholders"`
	Weeks               int           `json:"weeks"`
	Cells               []HeatmapCell `json:"cells"`
	Months              []MonthLabel  `json:"months"`
	Stats               Stats         `json:"stats"`
}

// NewHeatmap runs samples through the grid and presentation mappers.
func NewHeatmap(samples []Sample, today Date, weekStartsOnMonday bool, palette Palette) Heatmap {
	grid := BuildGrid(samples, today, weekStartsOnMonday)

	cells := make([]HeatmapCell, len(grid))
	for i, c := range grid {
		b := CellBucket(c)
		tip, _ := TooltipText(c)
		cells[i] = HeatmapCell{GridCell: c, Bucket: b, Color: palette.Color(b), Tooltip: tip}
	}

	return Heatmap{
		Start:               WindowStart(today),
		End:                 today,
		WeekStartsOnMonday:  weekStartsOnMonday,
		LeadingPlaceholders: LeadingPlaceholders(grid),
		Weeks:               len(Weeks(grid)),
		Cells:               cells,
		Months:              MonthLabels(grid),
		Stats:               computeStats(grid),
	}
}

// Columns chunks the cells into week columns, like Weeks.
func (hm Heatmap) Columns() [][]HeatmapCell {
	cols := make([][]HeatmapCell, 0, hm.Weeks)
	for i := 0; i < len(hm.Cells); i += DaysPerWeek {
		end := i + DaysPerWeek
		if end > len(hm.Cells) {
			end = len(hm.Cells)
		}
		cols = append(cols, hm.Cells[i:end])
	}
	return cols
}

// computeStats expects real cells in ascending date order.
// The current streak ends today, or yesterday when nothing was recorded today yet.
func computeStats(cells []GridCell) Stats {
	var st Stats
	run := 0
	for _, c := range cells {
		if c.IsPlaceholder {
			continue
		}
		st.Total += c.Count
		if c.Count > st.MaxCount {
			st.MaxCount = c.Count
		}
		if c.Count > 0 {
			st.ActiveDays++
			run++
			if run > st.LongestStreak {
				st.LongestStreak = run
			}
		} else {
			run = 0
		}
	}

	i := len(cells) - 1
	if i >= 0 && !cells[i].IsPlaceholder && cells[i].Count == 0 {
		i--
	}
	for ; i >= 0 && !cells[i].IsPlaceholder && cells[i].Count > 0; i-- {
		st.CurrentStreak++
	}
	return st
}
