package render

import (
	"strings"

	"github.com/katalvlaran/gridroute/gridgraph"
)

// ASCII glyphs.
const (
	GlyphOpen    = '.'
	GlyphBlocked = '#'
	GlyphAbsent  = ' '
	GlyphPath    = '*'
	GlyphStart   = 'S'
	GlyphGoal    = 'G'
)

// ASCII draws the bounding box of m one row per y, top row first.
// Path cells show '*', the first and last as 'S' and 'G'. marks overrides any
// cell, including ones outside the map; it may be nil. Trailing blanks are
// trimmed from every line.
func ASCII(m *gridgraph.TraversabilityMap, path []gridgraph.Coordinate, marks map[gridgraph.Coordinate]rune) string {
	if m == nil {
		return ""
	}
	lo, hi, ok := m.Bounds()
	if !ok && len(path) == 0 && len(marks) == 0 {
		return ""
	}
	extend := func(c gridgraph.Coordinate) {
		if !ok {
			lo, hi, ok = c, c, true
			return
		}
		lo.X, lo.Y = min(lo.X, c.X), min(lo.Y, c.Y)
		hi.X, hi.Y = max(hi.X, c.X), max(hi.Y, c.Y)
	}
	for _, c := range path {
		extend(c)
	}
	for c := range marks {
		extend(c)
	}

	overlay := make(map[gridgraph.Coordinate]rune, len(path)+len(marks))
	for i, c := range path {
		switch i {
		case 0:
			overlay[c] = GlyphStart
		case len(path) - 1:
			overlay[c] = GlyphGoal
		default:
			overlay[c] = GlyphPath
		}
	}
	for c, r := range marks {
		overlay[c] = r
	}

	var b strings.Builder
	line := make([]rune, 0, hi.X-lo.X+1)
	for y := lo.Y; y <= hi.Y; y++ {
		line = line[:0]
		for x := lo.X; x <= hi.X; x++ {
			c := gridgraph.C(x, y)
			if r, hit := overlay[c]; hit {
				line = append(line, r)
				continue
			}
			switch m.State(c) {
			case gridgraph.Open:
				line = append(line, GlyphOpen)
			case gridgraph.Blocked:
				line = append(line, GlyphBlocked)
			default:
				line = append(line, GlyphAbsent)
			}
		}
		b.WriteString(strings.TrimRight(string(line), " "))
		b.WriteByte('\n')
	}
	return b.String()
}
