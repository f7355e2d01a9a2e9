package activity

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/pkg/errors"
)

type SVGOptions struct {
	CellSize    int
	CellPadding int
	FontSize    int
	FontFamily  string
	Title       string
	// WeekdayLabels prints Mon/Wed/Fri in front of their rows.
	WeekdayLabels bool
}

var DefaultSVGOptions = SVGOptions{
	CellSize:      11,
	CellPadding:   3,
	FontSize:      10,
	FontFamily:    "sans-serif",
	WeekdayLabels: true,
}

var (
	mondayFirstRows = [DaysPerWeek]string{"Mon", "", "Wed", "", "Fri", "", ""}
	sundayFirstRows = [DaysPerWeek]string{"", "Mon", "", "Wed", "", "Fri", ""}
)

// RenderSVG writes hm as a standalone SVG document. Placeholders are not drawn.
func RenderSVG(w io.Writer, hm Heatmap, opts *SVGOptions) error {
	if opts == nil {
		o := DefaultSVGOptions
		opts = &o
	}
	step := opts.CellSize + opts.CellPadding

	titleHeight := 0
	if opts.Title != "" {
		titleHeight = opts.FontSize + 8
	}
	labelWidth := 0
	if opts.WeekdayLabels {
		labelWidth = 3 * opts.FontSize
	}
	top := titleHeight + opts.FontSize + 4
	width := labelWidth + hm.Weeks*step + opts.CellPadding
	height := top + DaysPerWeek*step + opts.CellPadding

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`+"\n", width, height)
	fmt.Fprintf(&sb, `  <style>.label{font-family:%s;font-size:%dpx;fill:#666}.title{font-family:%s;font-size:%dpx;fill:#333;font-weight:bold}</style>`+"\n",
		opts.FontFamily, opts.FontSize, opts.FontFamily, opts.FontSize)

	if opts.Title != "" {
		fmt.Fprintf(&sb, `  <text x="%d" y="%d" class="title">%s</text>`+"\n",
			opts.CellPadding, opts.FontSize, html.EscapeString(opts.Title))
	}

	for _, m := range hm.Months {
		x := labelWidth + opts.CellPadding + m.Column*step
		fmt.Fprintf(&sb, `  <text x="%d" y="%d" class="label">%s</text>`+"\n", x, titleHeight+opts.FontSize, m.Name)
	}

	if opts.WeekdayLabels {
		rows := sundayFirstRows
		if hm.WeekStartsOnMonday {
			rows = mondayFirstRows
		}
		for i, name := range rows {
			if name == "" {
				continue
			}
			y := top + opts.CellPadding + i*step + opts.CellSize - 1
			fmt.Fprintf(&sb, `  <text x="0" y="%d" class="label">%s</text>`+"\n", y, name)
		}
	}

	for i, c := range hm.Cells {
		if c.IsPlaceholder {
			continue
		}
		x := labelWidth + opts.CellPadding + (i/DaysPerWeek)*step
		y := top + opts.CellPadding + (i%DaysPerWeek)*step
		fmt.Fprintf(&sb, `  <rect x="%d" y="%d" width="%d" height="%d" rx="2" fill="%s" data-date="%s" data-count="%d">`+"\n",
			x, y, opts.CellSize, opts.CellSize, c.Color, c.Date, c.Count)
		fmt.Fprintf(&sb, "    <title>%s</title>\n", html.EscapeString(c.Tooltip))
		sb.WriteString("  </rect>\n")
	}
	sb.WriteString("</svg>\n")

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return errors.Wrap(err, "writing heatmap svg")
	}
	return nil
}
