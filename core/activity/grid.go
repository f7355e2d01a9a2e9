package activity

import "time"

// DaysPerWeek is the number of rows of the grid.
const DaysPerWeek = 7

// GridCell is one square of the heatmap: a real day or a leading placeholder.
type GridCell struct {
	Date          Date `json:"date"`
	Count         int  `json:"count"`
	IsPlaceholder bool `json:"is_placeholder"`
}

// WindowStart returns the first day of the rolling one-year window ending on today (inclusive).
func WindowStart(today Date) Date {
	return today.AddDate(-1, 0, 1)
}

// WeekdayIndex returns the grid row of wd: Mon=0..Sun=6 when weeks start on Monday, Sun=0..Sat=6 otherwise.
func WeekdayIndex(wd time.Weekday, weekStartsOnMonday bool) int {
	if !weekStartsOnMonday {
		return int(wd)
	}
	if wd == time.Sunday {
		return 6
	}
	return int(wd) - 1
}

// CountsByDate indexes samples by date. Duplicates are summed and negative counts ignored.
func CountsByDate(samples []Sample) map[Date]int {
	counts := make(map[Date]int, len(samples))
	for _, s := range samples {
		if s.Count <= 0 || s.Date.IsZero() {
			continue
		}
		counts[s.Date] += s.Count
	}
	return counts
}

// BuildGrid lays the window ending on today out as column-major week cells:
// leading placeholders so the first day lands on its weekday row, then one cell per day.
// The last week may be partial.
func BuildGrid(samples []Sample, today Date, weekStartsOnMonday bool) []GridCell {
	start := WindowStart(today)
	counts := CountsByDate(samples)
	leading := WeekdayIndex(start.Weekday(), weekStartsOnMonday)
	days := start.DaysUntil(today) + 1

	cells := make([]GridCell, 0, leading+days)
	for i := 0; i < leading; i++ {
		cells = append(cells, GridCell{IsPlaceholder: true})
	}
	for d := start; !d.After(today); d = d.AddDays(1) {
		cells = append(cells, GridCell{Date: d, Count: counts[d]})
	}
	return cells
}

// LeadingPlaceholders counts the placeholders at the front of cells.
func LeadingPlaceholders(cells []GridCell) int {
	n := 0
	for _, c := range cells {
		if !c.IsPlaceholder {
			break
		}
		n++
	}
	return n
}

// Weeks chunks cells into columns of DaysPerWeek. The last column may be shorter.
func Weeks(cells []GridCell) [][]GridCell {
	weeks := make([][]GridCell, 0, (len(cells)+DaysPerWeek-1)/DaysPerWeek)
	for i := 0; i < len(cells); i += DaysPerWeek {
		end := i + DaysPerWeek
		if end > len(cells) {
			end = len(cells)
		}
		weeks = append(weeks, cells[i:end])
	}
	return weeks
}
