// Package export renders incident maps to image and text files.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"incimap/internal/incident"
	"incimap/internal/layout"
	"incimap/internal/mapfile"
	"incimap/internal/render"
)

var (
	// ErrEmpty is returned when there is nothing to draw.
	ErrEmpty    = errors.New("nothing to export")
	// ErrTooLarge is returned when the output would exceed its size cap.
	ErrTooLarge = render.ErrTooLarge
)

// MaxPixels caps the area of an exported image.
const MaxPixels = 1 << 25

var (
	colorBackground = color.White
	colorInk        = color.Black
	colorCardFill   = color.RGBA{R: 0xf5, G: 0xf7, B: 0xfa, A: 0xff}
	colorHolding    = color.RGBA{R: 0x2e, G: 0x9e, B: 0x4f, A: 0xff}
	colorBreached   = color.RGBA{R: 0xd6, G: 0x33, B: 0x2f, A: 0xff}
)

const (
	padding     = 32.0
	fontSize    = 13.0
	lineHeight  = 18.0
	textInset   = 10.0
	arrowSize   = 8.0
	arrowAngle  = 0.5
	markerSize  = 9.0
	cornerRound = 6.0
)

// Options control PNG output.
type Options struct {
	ShowDetails bool
	// Scale multiplies map units to pixels. Zero means 1.
	Scale float64
}

func loadFace(size float64) (font.Face, error) {
	f, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// Image draws d and returns the drawing context.
func Image(d incident.Document, opts Options) (*gg.Context, error) {
	min, max, ok := render.Bounds(d.Nodes, opts.ShowDetails)
	if !ok {
		return nil, ErrEmpty
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	spanX := max.X - min.X + 2*padding
	spanY := max.Y - min.Y + 2*padding
	fw, fh := math.Ceil(spanX*scale), math.Ceil(spanY*scale)
	if !(fw*fh <= MaxPixels) {
		return nil, ErrTooLarge
	}

	dc := gg.NewContext(int(fw), int(fh))
	dc.SetColor(colorBackground)
	dc.Clear()
	dc.Scale(scale, scale)
	dc.Translate(padding-min.X, padding-min.Y)

	face, err := loadFace(fontSize)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)

	cardW, cardH := layout.Footprint(layout.Item{}, opts.ShowDetails)
	byID := make(map[string]incident.Node, len(d.Nodes))
	for _, n := range d.Nodes {
		byID[n.ID] = n
	}

	for _, e := range d.Edges {
		from, okFrom := byID[e.FromID]
		to, okTo := byID[e.ToID]
		if !okFrom || !okTo {
			continue
		}
		x1, y1 := from.Position.X+cardW/2, from.Position.Y+cardH
		x2, y2 := to.Position.X+cardW/2, to.Position.Y
		if to.Position.Y < from.Position.Y+cardH && from.Position.Y < to.Position.Y+cardH {
			// side by side
			y1, y2 = from.Position.Y+cardH/2, to.Position.Y+cardH/2
			if to.Position.X >= from.Position.X {
				x1, x2 = from.Position.X+cardW, to.Position.X
			} else {
				x1, x2 = from.Position.X, to.Position.X+cardW
			}
		}
		drawEdge(dc, x1, y1, x2, y2)
		for _, b := range d.Barriers {
			if b.Guards(e) {
				drawBarrier(dc, (x1+x2)/2, (y1+y2)/2, b)
				break
			}
		}
	}

	for _, n := range d.Nodes {
		drawCard(dc, n, cardW, cardH, opts.ShowDetails)
	}

	if title := d.Title(); title != "" {
		dc.SetColor(colorInk)
		dc.DrawString(title, min.X, min.Y-padding/2)
	}
	return dc, nil
}

// PNG encodes the rendered map to w.
func PNG(w io.Writer, d incident.Document, opts Options) error {
	dc, err := Image(d, opts)
	if err != nil {
		return err
	}
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// PNGFile writes the rendered map to path.
func PNGFile(path string, d incident.Document, opts Options) error {
	var buf bytes.Buffer
	if err := PNG(&buf, d, opts); err != nil {
		return err
	}
	return mapfile.WriteFile(path, buf.Bytes())
}

func drawEdge(dc *gg.Context, x1, y1, x2, y2 float64) {
	dc.SetColor(colorInk)
	dc.SetLineWidth(1.5)
	dc.DrawLine(x1, y1, x2, y2)
	dc.Stroke()
	drawArrow(dc, x1, y1, x2, y2)
}

func drawArrow(dc *gg.Context, fx, fy, tx, ty float64) {
	dx, dy := tx-fx, ty-fy
	length := math.Hypot(dx, dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length

	dc.MoveTo(tx, ty)
	dc.LineTo(tx-arrowSize*dx+arrowSize*dy*arrowAngle, ty-arrowSize*dy-arrowSize*dx*arrowAngle)
	dc.LineTo(tx-arrowSize*dx-arrowSize*dy*arrowAngle, ty-arrowSize*dy+arrowSize*dx*arrowAngle)
	dc.ClosePath()
	dc.Fill()
}

func drawBarrier(dc *gg.Context, x, y float64, b incident.Barrier) {
	fill := colorHolding
	if b.Breached {
		fill = colorBreached
	}
	dc.SetColor(fill)
	dc.DrawRectangle(x-markerSize, y-markerSize, 2*markerSize, 2*markerSize)
	dc.Fill()
	if b.Breached {
		dc.SetColor(colorBackground)
		dc.SetLineWidth(2)
		dc.DrawLine(x-markerSize/2, y-markerSize/2, x+markerSize/2, y+markerSize/2)
		dc.DrawLine(x-markerSize/2, y+markerSize/2, x+markerSize/2, y-markerSize/2)
		dc.Stroke()
	}
	if b.Description != "" {
		dc.SetColor(fill)
		dc.DrawStringAnchored(b.Description, x+markerSize+4, y, 0, 0.35)
	}
}

func drawCard(dc *gg.Context, n incident.Node, w, h float64, details bool) {
	x, y := n.Position.X, n.Position.Y
	dc.SetColor(colorCardFill)
	dc.DrawRoundedRectangle(x, y, w, h, cornerRound)
	dc.Fill()
	dc.SetColor(colorInk)
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x, y, w, h, cornerRound)
	dc.Stroke()

	var lines []string
	for _, line := range render.CardLines(n, details) {
		lines = append(lines, dc.WordWrap(line, w-2*textInset)...)
	}
	for i, line := range lines {
		ty := y + textInset + lineHeight*float64(i+1) - 4
		if ty > y+h-textInset/2 {
			break
		}
		dc.DrawString(line, x+textInset, ty)
	}
}
