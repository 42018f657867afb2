package render

import (
	"image/color"

	"oledblink-go/x/mathx"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// Kind tags the variant held by a Primitive.
type Kind uint8

const (
	KindText Kind = iota
	KindRect
)

// Baseline selects which line of the text box sits on the origin's y.
type Baseline uint8

const (
	BaselineTop        Baseline = iota // top of the tallest glyph
	BaselineAlphabetic                 // the font's own baseline
)

type Style struct {
	Font  tinyfont.Fonter
	Color color.RGBA
}

// Primitive is a drawable built once at startup: a line of text or a
// filled rectangle. Fields not used by Kind are ignored.
type Primitive struct {
	Kind Kind
	X, Y int16

	Text     string
	Baseline Baseline
	Style    Style

	W, H int16
	Fill color.RGBA
}

func Text(s string, x, y int16, b Baseline, st Style) Primitive {
	return Primitive{Kind: KindText, X: x, Y: y, Text: s, Baseline: b, Style: st}
}

func Rect(x, y, w, h int16, fill color.RGBA) Primitive {
	return Primitive{Kind: KindRect, X: x, Y: y, W: w, H: h, Fill: fill}
}

type rectFiller interface {
	FillRectangle(x, y, width, height int16, c color.RGBA) error
}

// Draw renders p into d's buffer. Nothing is flushed.
func (p Primitive) Draw(d drivers.Displayer) error {
	switch p.Kind {
	case KindText:
		y := p.Y
		if p.Baseline == BaselineTop {
			y += Ascent(p.Style.Font)
		}
		tinyfont.WriteLine(d, p.Style.Font, p.X, y, p.Text, p.Style.Color)
		return nil
	case KindRect:
		if f, ok := d.(rectFiller); ok {
			return f.FillRectangle(p.X, p.Y, p.W, p.H, p.Fill)
		}
		dw, dh := d.Size()
		x0, x1, okx := mathx.ClipSpan(p.X, p.W, dw)
		y0, y1, oky := mathx.ClipSpan(p.Y, p.H, dh)
		if !okx || !oky {
			return nil
		}
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				d.SetPixel(x, y, p.Fill)
			}
		}
		return nil
	}
	return errUnknownKind
}

// Ascent is the distance from the font's baseline to the top of its
// tallest printable ASCII glyph.
func Ascent(f tinyfont.Fonter) int16 {
	var top int8
	for r := rune(' '); r <= '~'; r++ {
		if off := f.GetGlyph(r).Info().YOffset; off < top {
			top = off
		}
	}
	return -int16(top)
}
