package ogimage

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	Width  = 1200
	Height = 630

	margin    = 80
	titleSize = 60
	siteSize  = 30
	maxLines  = 4
	maxTitle  = 140
)

// SystemFontPaths are common install locations of CJK-capable fonts. They are
// tried after the configured fonts; missing files are skipped.
var SystemFontPaths = []string{
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Bold.ttc",
	"/usr/share/fonts/noto-cjk/NotoSansCJK-Bold.ttc",
	"/usr/share/fonts/google-noto-cjk/NotoSansCJK-Bold.ttc",
	"/usr/share/fonts/truetype/noto/NotoSansCJK-Bold.ttc",
}

var (
	backgroundTop    = color.RGBA{R: 0x1e, G: 0x29, B: 0x3b, A: 0xff}
	backgroundBottom = color.RGBA{R: 0x0f, G: 0x17, B: 0x2a, A: 0xff}
	accent           = color.RGBA{R: 0x38, G: 0xbd, B: 0xf8, A: 0xff}
	muted            = color.RGBA{R: 0x94, G: 0xa3, B: 0xb8, A: 0xff}
)

// Renderer draws OG cards. Its fonts are parsed once; faces are built per
// render because opentype faces are not safe for concurrent use.
type Renderer struct {
	fonts []*opentype.Font
	// extra faces go after the parsed fonts and before the bitmap face
	extra []font.Face
}

// New loads each font file in fontPaths (TTF, OTF or a TTC collection) ahead
// of the built-in Go Bold face. Missing files are skipped.
func New(fontPaths ...string) (*Renderer, error) {
	r := &Renderer{}
	for _, path := range fontPaths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", path, err)
		}
		collection, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", path, err)
		}
		f, err := collection.Font(0)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", path, err)
		}
		slog.Info("og image font loaded", "path", path)
		r.fonts = append(r.fonts, f)
	}

	goBold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse go bold: %w", err)
	}
	r.fonts = append(r.fonts, goBold)
	return r, nil
}

func (r *Renderer) faces(size float64) (chain, error) {
	faces := make(chain, 0, len(r.fonts)+len(r.extra)+1)
	for _, f := range r.fonts {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			return nil, fmt.Errorf("create font face: %w", err)
		}
		faces = append(faces, face)
	}
	faces = append(faces, r.extra...)
	return append(faces, basicfont.Face7x13), nil
}

// Render writes a 1200x630 PNG with the title wrapped over up to four lines
// and the site name underneath.
func (r *Renderer) Render(w io.Writer, title, siteName string) error {
	titleFace, err := r.faces(titleSize)
	if err != nil {
		return err
	}
	siteFace, err := r.faces(siteSize)
	if err != nil {
		return err
	}

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	fillGradient(img)
	xdraw.Draw(img, image.Rect(margin, margin, margin+120, margin+8), image.NewUniform(accent), image.Point{}, xdraw.Src)

	measure := func(s string) int { return font.MeasureString(titleFace, s).Ceil() }
	lines := Wrap(truncate(strings.TrimSpace(title), maxTitle), measure, Width-2*margin, maxLines)
	if len(lines) == 0 {
		lines = []string{siteName}
	}

	metrics := titleFace.Metrics()
	lineHeight := metrics.Height.Ceil() + 8
	top := margin + 60
	d := &font.Drawer{Dst: img, Src: image.White, Face: titleFace}
	for i, l := range lines {
		d.Dot = fixed.P(margin, top+i*lineHeight+metrics.Ascent.Ceil())
		d.DrawString(l)
	}

	if siteName != "" {
		siteMetrics := siteFace.Metrics()
		y := top + len(lines)*lineHeight + 40
		if limit := Height - margin - siteMetrics.Height.Ceil(); y > limit {
			y = limit
		}
		d = &font.Drawer{Dst: img, Src: image.NewUniform(muted), Face: siteFace}
		d.Dot = fixed.P(margin, y+siteMetrics.Ascent.Ceil())
		d.DrawString(siteName)
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode og image: %w", err)
	}
	return nil
}

// chain draws each rune with the first face that has a glyph for it. Runes no
// face covers leave a gap instead of a replacement box.
type chain []font.Face

func (c chain) pick(r rune) font.Face {
	if f, ok := c.cover(r); ok {
		return f
	}
	return c[len(c)-1]
}

func (c chain) cover(r rune) (font.Face, bool) {
	for _, f := range c {
		if _, ok := f.GlyphAdvance(r); ok {
			return f, true
		}
	}
	return nil, false
}

func (c chain) Close() error {
	var errs []error
	for _, f := range c {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

func (c chain) Glyph(dot fixed.Point26_6, r rune) (image.Rectangle, image.Image, image.Point, fixed.Int26_6, bool) {
	f, ok := c.cover(r)
	if !ok {
		advance, _ := c[len(c)-1].GlyphAdvance(r)
		return image.Rectangle{}, nil, image.Point{}, advance, false
	}
	return f.Glyph(dot, r)
}

func (c chain) GlyphBounds(r rune) (fixed.Rectangle26_6, fixed.Int26_6, bool) {
	return c.pick(r).GlyphBounds(r)
}

func (c chain) GlyphAdvance(r rune) (fixed.Int26_6, bool) {
	return c.pick(r).GlyphAdvance(r)
}

func (c chain) Kern(r0, r1 rune) fixed.Int26_6 {
	f := c.pick(r0)
	if f != c.pick(r1) {
		return 0
	}
	return f.Kern(r0, r1)
}

func (c chain) Metrics() font.Metrics {
	m := c[0].Metrics()
	for _, f := range c[1:] {
		fm := f.Metrics()
		m.Height = max(m.Height, fm.Height)
		m.Ascent = max(m.Ascent, fm.Ascent)
		m.Descent = max(m.Descent, fm.Descent)
	}
	return m
}

func fillGradient(img *image.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		t := float64(y-b.Min.Y) / float64(b.Dy())
		c := color.RGBA{
			R: lerp(backgroundTop.R, backgroundBottom.R, t),
			G: lerp(backgroundTop.G, backgroundBottom.G, t),
			B: lerp(backgroundTop.B, backgroundBottom.B, t),
			A: 0xff,
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

// Wrap breaks text into at most maxLines lines no wider than maxWidth, as
// reported by measure. Words wider than a line are split between runes, which
// also covers scripts written without spaces. Cut text ends with an ellipsis.
func Wrap(text string, measure func(string) int, maxWidth, maxLines int) []string {
	if maxWidth <= 0 || maxLines <= 0 {
		return nil
	}

	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if measure(candidate) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		for measure(word) > maxWidth {
			var head string
			head, word = splitToFit(word, measure, maxWidth)
			lines = append(lines, head)
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}

	if len(lines) > maxLines {
		lines = lines[:maxLines]
		last := []rune(lines[maxLines-1])
		for len(last) > 0 && measure(string(last)+"…") > maxWidth {
			last = last[:len(last)-1]
		}
		lines[maxLines-1] = strings.TrimRight(string(last), " ") + "…"
	}
	return lines
}

// splitToFit returns the longest prefix of word that fits, at least one rune.
func splitToFit(word string, measure func(string) int, maxWidth int) (string, string) {
	runes := []rune(word)
	n := 1
	for n < len(runes) && measure(string(runes[:n+1])) <= maxWidth {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
