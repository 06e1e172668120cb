// Package report renders grouped review activity for the terminal.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rivo/uniseg"

	"github.com/naka-gawa/gh-review-activity/internal/domain"
)

// actionGlyphs maps actions to the icon printed in front of the title.
// Actions missing from the table use otherGlyph.
var actionGlyphs = map[domain.Action]string{
	domain.ActionApproved:         "✅",
	domain.ActionChangesRequested: "❌",
	domain.ActionCommented:        "💬",
}

const (
	otherGlyph = "👀"
	ellipsis   = "..."
)

// Glyph returns the icon for action.
func Glyph(action domain.Action) string {
	if g, ok := actionGlyphs[action]; ok {
		return g
	}
	return otherGlyph
}

// Formatter renders DayBuckets as one aligned line per activity.
type Formatter struct {
	// TitleWidth is the number of terminal cells titles are padded or cut to.
	TitleWidth int
}

// NewFormatter creates a Formatter with the given title width.
func NewFormatter(titleWidth int) *Formatter {
	return &Formatter{TitleWidth: titleWidth}
}

// Format returns the report with the most recent day first. Activities of a day
// keep their order. Lines are separated by "\n" without a trailing newline.
func (f *Formatter) Format(buckets domain.DayBuckets) string {
	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))

	var lines []string
	for _, day := range days {
		label := dayLabel(day)
		for _, a := range buckets[day] {
			lines = append(lines, fmt.Sprintf("[%s] %s %s %s", label, Glyph(a.Action), fitTitle(a.Title, f.TitleWidth), a.URL))
		}
	}
	return strings.Join(lines, "\n")
}

// dayLabel prefixes a YYYY-MM-DD key with its weekday, e.g. "Thu 2025-01-16".
func dayLabel(day string) string {
	t, err := time.Parse(domain.DayLayout, day)
	if err != nil {
		return day
	}
	return t.Format("Mon ") + day
}

// fitTitle collapses whitespace in title and pads or cuts it to exactly width
// terminal cells. Cut titles end in an ellipsis.
func fitTitle(title string, width int) string {
	title = strings.Join(strings.Fields(title), " ")
	w := uniseg.StringWidth(title)
	if w <= width {
		return title + strings.Repeat(" ", width-w)
	}

	budget := max(width-len(ellipsis), 0)
	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(title)
	for g.Next() {
		if used+g.Width() > budget {
			break
		}
		b.WriteString(g.Str())
		used += g.Width()
	}
	// A wide character that did not fit leaves a gap to fill.
	return b.String() + ellipsis + strings.Repeat(" ", budget-used)
}
