package activity

import (
	"fmt"
	"time"
)

// Bucket is the colour tier of a cell.
type Bucket int

const (
	// BucketNone is reserved for placeholders; they render transparent.
	BucketNone Bucket = -1

	NumBuckets = 10
)

// ColorBucket maps a count onto tiers 0 | 1-2 | 3-4 | 5-6 | 7-8 | 9-10 | 11-12 | 13-14 | 15-16 | 17+.
func ColorBucket(count int) Bucket {
	if count <= 0 {
		return 0
	}
	b := (count + 1) / 2
	if b >= NumBuckets {
		b = NumBuckets - 1
	}
	return Bucket(b)
}

// CellBucket is ColorBucket for real cells and BucketNone for placeholders.
func CellBucket(cell GridCell) Bucket {
	if cell.IsPlaceholder {
		return BucketNone
	}
	return ColorBucket(cell.Count)
}

// Palette holds one CSS colour per bucket, from the zero tier up.
type Palette [NumBuckets]string

var DefaultPalette = Palette{
	"#ebedf0",
	"#dbeafe",
	"#bfdbfe",
	"#93c5fd",
	"#60a5fa",
	"#3b82f6",
	"#2563eb",
	"#1d4ed8",
	"#1e40af",
	"#1e3a8a",
}

func (p Palette) Color(b Bucket) string {
	if b < 0 || int(b) >= len(p) {
		return "transparent"
	}
	return p[b]
}

// MonthLabel positions a month name above the week column holding its first day.
type MonthLabel struct {
	Name   string `json:"name"`
	Year   int    `json:"year"`
	Column int    `json:"column"`
}

// MonthLabels labels each calendar month among the real cells at the column of its first day.
// Columns are strictly increasing, which costs one label per month in a corner case: when the
// window opens with a month fragment that shares its column with the next month's first day,
// only the next month is labelled, so the window has one label fewer than distinct months.
func MonthLabels(cells []GridCell) []MonthLabel {
	labels := make([]MonthLabel, 0, 13)
	var (
		lastYear  int
		lastMonth time.Month
	)
	for i, c := range cells {
		if c.IsPlaceholder || c.Date.IsZero() {
			continue
		}
		if c.Date.Year() == lastYear && c.Date.Month() == lastMonth {
			continue
		}
		lastYear, lastMonth = c.Date.Year(), c.Date.Month()

		label := MonthLabel{
			Name:   c.Date.Month().String()[:3],
			Year:   c.Date.Year(),
			Column: i / DaysPerWeek,
		}
		if n := len(labels); n > 0 && labels[n-1].Column == label.Column {
			labels[n-1] = label
			continue
		}
		labels = append(labels, label)
	}
	return labels
}

// TooltipText describes a real cell, eg. "5 contributions on Monday, January 1, 2024".
// ok is false for placeholders.
func TooltipText(cell GridCell) (text string, ok bool) {
	if cell.IsPlaceholder || cell.Date.IsZero() {
		return "", false
	}
	var what string
	switch {
	case cell.Count <= 0:
		what = "No contributions"
	case cell.Count == 1:
		what = "1 contribution"
	default:
		what = fmt.Sprintf("%d contributions", cell.Count)
	}
	return what + " on " + cell.Date.Time().Format("Monday, January 2, 2006"), true
}
