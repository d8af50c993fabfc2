// Package raster draws a rendered invoice onto an RGBA image.
//
// Layout runs twice over the same code path: once without a destination to
// measure the page height, then again onto an image of that height.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"sync"

	"github.com/diewo77/gst-invoices/internal/render"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// BaseWidth is the unscaled surface width in pixels (A4 at 96 dpi).
const BaseWidth = 794

// Options controls the surface size.
type Options struct {
	// Scale multiplies every dimension; 1.5 gives a crisp print.
	Scale float64
	// Width is the unscaled width; zero means BaseWidth.
	Width int
}

// Rasterizer draws documents. It is safe for concurrent use.
type Rasterizer struct {
	opts Options
}

// New returns a Rasterizer with the given options.
func New(opts Options) *Rasterizer {
	if opts.Width == 0 {
		opts.Width = BaseWidth
	}
	return &Rasterizer{opts: opts}
}

var (
	fontsOnce   sync.Once
	regularFont *opentype.Font
	boldFont    *opentype.Font
	fontsErr    error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		regularFont, fontsErr = opentype.Parse(goregular.TTF)
		if fontsErr != nil {
			return
		}
		boldFont, fontsErr = opentype.Parse(gobold.TTF)
	})
	return fontsErr
}

// Rasterize draws doc and returns the image. A non-positive scale or width
// yields an empty image, which callers must treat as a failed capture.
func (r *Rasterizer) Rasterize(doc *render.Document) (image.Image, error) {
	if doc == nil {
		return nil, errors.New("raster: nil document")
	}
	width := int(math.Round(float64(r.opts.Width) * r.opts.Scale))
	if r.opts.Scale <= 0 || width <= 0 {
		return image.NewRGBA(image.Rectangle{}), nil
	}
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("raster: load fonts: %w", err)
	}
	faces, err := newFaces(r.opts.Scale)
	if err != nil {
		return nil, err
	}
	defer faces.Close()

	measure := &painter{faces: faces, scale: r.opts.Scale, width: width}
	height := layout(measure, doc)
	if height <= 0 {
		return image.NewRGBA(image.Rectangle{}), nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	paint := &painter{dst: dst, faces: faces, scale: r.opts.Scale, width: width}
	layout(paint, doc)
	return dst, nil
}

type faces struct {
	small, regular, bold, smallBold, title font.Face
}

func newFaces(scale float64) (*faces, error) {
	mk := func(f *opentype.Font, size float64) (font.Face, error) {
		return opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size * scale,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}
	var (
		fs  faces
		err error
	)
	if fs.small, err = mk(regularFont, 9); err != nil {
		return nil, fmt.Errorf("raster: face: %w", err)
	}
	if fs.regular, err = mk(regularFont, 11); err != nil {
		return nil, fmt.Errorf("raster: face: %w", err)
	}
	if fs.bold, err = mk(boldFont, 11); err != nil {
		return nil, fmt.Errorf("raster: face: %w", err)
	}
	if fs.smallBold, err = mk(boldFont, 9); err != nil {
		return nil, fmt.Errorf("raster: face: %w", err)
	}
	if fs.title, err = mk(boldFont, 16); err != nil {
		return nil, fmt.Errorf("raster: face: %w", err)
	}
	return &fs, nil
}

func (f *faces) Close() {
	for _, face := range []font.Face{f.small, f.regular, f.bold, f.smallBold, f.title} {
		if face != nil {
			face.Close()
		}
	}
}

// glyphs the Go fonts do not carry
var substitutions = strings.NewReplacer("₹", "Rs.")

// painter draws when dst is set and only measures otherwise.
type painter struct {
	dst   *image.RGBA
	faces *faces
	scale float64
	width int
}

func (p *painter) px(v float64) int {
	return int(math.Round(v * p.scale))
}

func (p *painter) lineHeight(face font.Face) int {
	return face.Metrics().Height.Ceil()
}

func (p *painter) clean(face font.Face, s string) string {
	s = substitutions.Replace(s)
	return strings.Map(func(r rune) rune {
		if r == '\t' {
			return ' '
		}
		if _, ok := face.GlyphAdvance(r); !ok {
			return '?'
		}
		return r
	}, s)
}

func (p *painter) measure(face font.Face, s string) int {
	return font.MeasureString(face, p.clean(face, s)).Ceil()
}

// text draws s with its top-left corner at (x, top) and returns the line height.
func (p *painter) text(face font.Face, s string, x, top int) int {
	h := p.lineHeight(face)
	if p.dst == nil || s == "" {
		return h
	}
	d := font.Drawer{
		Dst:  p.dst,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(x, top+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(p.clean(face, s))
	return h
}

// textRight draws s right-aligned so that it ends at x.
func (p *painter) textRight(face font.Face, s string, x, top int) int {
	return p.text(face, s, x-p.measure(face, s), top)
}

// textCenter draws s centred between x0 and x1.
func (p *painter) textCenter(face font.Face, s string, x0, x1, top int) int {
	return p.text(face, s, x0+(x1-x0-p.measure(face, s))/2, top)
}

// clip shortens s with an ellipsis until it fits into w.
func (p *painter) clip(face font.Face, s string, w int) string {
	if p.measure(face, s) <= w {
		return s
	}
	r := []rune(s)
	for len(r) > 0 {
		r = r[:len(r)-1]
		if c := string(r) + "..."; p.measure(face, c) <= w {
			return c
		}
	}
	return ""
}

// wrap breaks s into lines no wider than w. Words longer than w are clipped.
func (p *painter) wrap(face font.Face, s string, w int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	cur := ""
	for _, word := range words {
		next := word
		if cur != "" {
			next = cur + " " + word
		}
		if p.measure(face, next) <= w {
			cur = next
			continue
		}
		if cur != "" {
			lines = append(lines, cur)
		}
		cur = p.clip(face, word, w)
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// paragraph draws wrapped text and returns the consumed height.
func (p *painter) paragraph(face font.Face, s string, x, top, w int) int {
	y := top
	for _, l := range p.wrap(face, s, w) {
		y += p.text(face, l, x, y)
	}
	return y - top
}

func (p *painter) hline(x0, x1, y int) {
	if p.dst == nil {
		return
	}
	for x := x0; x <= x1; x++ {
		p.dst.Set(x, y, color.Black)
	}
}

func (p *painter) vline(x, y0, y1 int) {
	if p.dst == nil {
		return
	}
	for y := y0; y <= y1; y++ {
		p.dst.Set(x, y, color.Black)
	}
}

func (p *painter) box(x0, y0, x1, y1 int) {
	p.hline(x0, x1, y0)
	p.hline(x0, x1, y1)
	p.vline(x0, y0, y1)
	p.vline(x1, y0, y1)
}
