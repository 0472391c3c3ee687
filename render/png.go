// Package render draws a TraversabilityMap and a route as a PNG raster
// (github.com/fogleman/gg) or as plain text.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"strconv"

	"github.com/fogleman/gg"

	"github.com/katalvlaran/gridroute/gridgraph"
)

var (
	// ErrEmptyMap indicates a map with no surveyed cells.
	ErrEmptyMap = errors.New("render: map has no cells")
	// ErrOptionViolation indicates an invalid Option.
	ErrOptionViolation = errors.New("render: invalid option supplied")
)

// DefaultCellPx is the edge length of one cell in pixels.
const DefaultCellPx = 60

// Palette.
var (
	ColorBackground   = color.RGBA{255, 255, 255, 255}
	ColorAbsent       = color.RGBA{238, 238, 238, 255}
	ColorBlockedCell  = color.RGBA{250, 232, 220, 255}
	ColorGrid         = color.RGBA{211, 211, 211, 255}
	ColorStructure    = color.RGBA{139, 69, 19, 255}
	ColorLandmark     = color.RGBA{34, 139, 34, 255}
	ColorConstruction = color.RGBA{128, 128, 128, 255}
	ColorPath         = color.RGBA{220, 20, 60, 255}
	ColorLabel        = color.RGBA{64, 64, 64, 255}
)

// Option configures a drawing.
type Option func(*Options)

// Options holds drawing parameters.
type Options struct {
	CellPx       int
	Structures   map[gridgraph.Coordinate]gridgraph.Category
	Construction []gridgraph.Coordinate
	Labels       bool

	err error
}

// DefaultOptions returns 60 px cells, axis labels on, and no markers.
func DefaultOptions() Options {
	return Options{CellPx: DefaultCellPx, Labels: true}
}

// WithCellPx sets the cell edge in pixels, at least 4.
func WithCellPx(px int) Option {
	return func(o *Options) {
		if px < 4 {
			o.err = fmt.Errorf("%w: cell size %d < 4", ErrOptionViolation, px)
			return
		}
		o.CellPx = px
	}
}

// WithStructures supplies the structure category per coordinate for markers.
func WithStructures(s map[gridgraph.Coordinate]gridgraph.Category) Option {
	return func(o *Options) { o.Structures = s }
}

// WithConstruction supplies the construction-site coordinates.
func WithConstruction(cs []gridgraph.Coordinate) Option {
	return func(o *Options) { o.Construction = cs }
}

// WithLabels toggles the axis labels.
func WithLabels(on bool) Option {
	return func(o *Options) { o.Labels = on }
}

// canvas maps grid coordinates to pixel centers.
type canvas struct {
	dc     *gg.Context
	lo, hi gridgraph.Coordinate
	px     float64
	margin float64
}

func (cv *canvas) center(c gridgraph.Coordinate) (float64, float64) {
	return cv.margin + (float64(c.X-cv.lo.X)+0.5)*cv.px,
		cv.margin + (float64(c.Y-cv.lo.Y)+0.5)*cv.px
}

// Draw renders m and path onto a new gg context. Y grows downward, so the
// smallest y is the top row.
//
// Layers, bottom to top: cell fill, grid lines, construction squares,
// structure markers, route polyline, endpoint rings.
func Draw(m *gridgraph.TraversabilityMap, path []gridgraph.Coordinate, opts ...Option) (*gg.Context, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}
	if m == nil {
		return nil, ErrEmptyMap
	}
	lo, hi, ok := m.Bounds()
	if !ok {
		return nil, ErrEmptyMap
	}

	px := float64(o.CellPx)
	margin := 0.0
	if o.Labels {
		margin = px / 2
	}
	w := int(2*margin + float64(hi.X-lo.X+1)*px)
	h := int(2*margin + float64(hi.Y-lo.Y+1)*px)
	cv := &canvas{dc: gg.NewContext(w, h), lo: lo, hi: hi, px: px, margin: margin}

	cv.dc.SetColor(ColorBackground)
	cv.dc.Clear()
	cv.cells(m)
	cv.grid()
	if o.Labels {
		cv.labels()
	}
	for _, c := range o.Construction {
		cv.square(c, 0.7, ColorConstruction)
	}
	for c, cat := range o.Structures {
		cv.marker(c, cat)
	}
	cv.route(path)
	return cv.dc, nil
}

// Image is Draw returning the raster.
func Image(m *gridgraph.TraversabilityMap, path []gridgraph.Coordinate, opts ...Option) (image.Image, error) {
	dc, err := Draw(m, path, opts...)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// Encode writes the drawing to w as PNG.
func Encode(w io.Writer, m *gridgraph.TraversabilityMap, path []gridgraph.Coordinate, opts ...Option) error {
	img, err := Image(m, path, opts...)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// PNG writes the drawing to file.
func PNG(file string, m *gridgraph.TraversabilityMap, path []gridgraph.Coordinate, opts ...Option) error {
	f, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := Encode(f, m, path, opts...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (cv *canvas) cells(m *gridgraph.TraversabilityMap) {
	for y := cv.lo.Y; y <= cv.hi.Y; y++ {
		for x := cv.lo.X; x <= cv.hi.X; x++ {
			c := gridgraph.C(x, y)
			switch m.State(c) {
			case gridgraph.Open:
				continue
			case gridgraph.Blocked:
				cv.square(c, 1, ColorBlockedCell)
			default:
				cv.square(c, 1, ColorAbsent)
			}
		}
	}
}

func (cv *canvas) grid() {
	dc := cv.dc
	dc.SetColor(ColorGrid)
	dc.SetLineWidth(1)
	cols, rows := cv.hi.X-cv.lo.X+1, cv.hi.Y-cv.lo.Y+1
	right := cv.margin + float64(cols)*cv.px
	bottom := cv.margin + float64(rows)*cv.px
	for i := 0; i <= cols; i++ {
		x := cv.margin + float64(i)*cv.px
		dc.DrawLine(x, cv.margin, x, bottom)
	}
	for j := 0; j <= rows; j++ {
		y := cv.margin + float64(j)*cv.px
		dc.DrawLine(cv.margin, y, right, y)
	}
	dc.Stroke()
}

func (cv *canvas) labels() {
	dc := cv.dc
	dc.SetColor(ColorLabel)
	for x := cv.lo.X; x <= cv.hi.X; x++ {
		cx, _ := cv.center(gridgraph.C(x, cv.lo.Y))
		dc.DrawStringAnchored(strconv.Itoa(x), cx, cv.margin/2, 0.5, 0.5)
	}
	for y := cv.lo.Y; y <= cv.hi.Y; y++ {
		_, cy := cv.center(gridgraph.C(cv.lo.X, y))
		dc.DrawStringAnchored(strconv.Itoa(y), cv.margin/2, cy, 0.5, 0.5)
	}
}

// square fills a centered square covering frac of the cell edge.
func (cv *canvas) square(c gridgraph.Coordinate, frac float64, col color.Color) {
	cx, cy := cv.center(c)
	s := cv.px * frac
	cv.dc.SetColor(col)
	cv.dc.DrawRectangle(cx-s/2, cy-s/2, s, s)
	cv.dc.Fill()
}

// marker draws apartments and buildings as brown circles, the café as a
// green square, and home as a green triangle.
func (cv *canvas) marker(c gridgraph.Coordinate, cat gridgraph.Category) {
	cx, cy := cv.center(c)
	r := cv.px * 0.3
	dc := cv.dc
	switch cat {
	case gridgraph.CategoryApartment, gridgraph.CategoryBuilding:
		dc.SetColor(ColorStructure)
		dc.DrawCircle(cx, cy, r)
	case gridgraph.CategoryBandalgomCoffee:
		dc.SetColor(ColorLandmark)
		dc.DrawRectangle(cx-r, cy-r, 2*r, 2*r)
	case gridgraph.CategoryMyHome:
		dc.SetColor(ColorLandmark)
		dc.DrawRegularPolygon(3, cx, cy, r*1.2, 0)
	default:
		return
	}
	dc.Fill()
}

func (cv *canvas) route(path []gridgraph.Coordinate) {
	if len(path) == 0 {
		return
	}
	dc := cv.dc
	dc.SetColor(ColorPath)
	if len(path) > 1 {
		dc.SetLineWidth(cv.px / 6)
		dc.SetLineCapRound()
		dc.SetLineJoinRound()
		dc.MoveTo(cv.center(path[0]))
		for _, c := range path[1:] {
			dc.LineTo(cv.center(c))
		}
		dc.Stroke()
	}
	dc.SetLineWidth(cv.px / 15)
	for _, c := range []gridgraph.Coordinate{path[0], path[len(path)-1]} {
		cx, cy := cv.center(c)
		dc.DrawCircle(cx, cy, cv.px*0.42)
		dc.Stroke()
	}
}
