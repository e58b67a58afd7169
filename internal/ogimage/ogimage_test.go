package ogimage

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// blockFace draws a solid square for every CJK rune and nothing else.
type blockFace struct{ size int }

func (f blockFace) covers(r rune) bool { return r >= 0x3000 && r <= 0x9fff }

func (f blockFace) Close() error { return nil }

func (f blockFace) Glyph(dot fixed.Point26_6, r rune) (image.Rectangle, image.Image, image.Point, fixed.Int26_6, bool) {
	if !f.covers(r) {
		return image.Rectangle{}, nil, image.Point{}, 0, false
	}
	x, y := dot.X.Round(), dot.Y.Round()
	return image.Rect(x+4, y-f.size+4, x+f.size-4, y), image.Opaque, image.Point{}, fixed.I(f.size), true
}

func (f blockFace) GlyphBounds(r rune) (fixed.Rectangle26_6, fixed.Int26_6, bool) {
	if !f.covers(r) {
		return fixed.Rectangle26_6{}, 0, false
	}
	return fixed.R(0, -f.size, f.size, 0), fixed.I(f.size), true
}

func (f blockFace) GlyphAdvance(r rune) (fixed.Int26_6, bool) {
	if !f.covers(r) {
		return 0, false
	}
	return fixed.I(f.size), true
}

func (f blockFace) Kern(rune, rune) fixed.Int26_6 { return 0 }

func (f blockFace) Metrics() font.Metrics {
	return font.Metrics{Height: fixed.I(f.size), Ascent: fixed.I(f.size)}
}

func renderImage(t *testing.T, r *Renderer, title string) image.Image {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, title, ""))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	return img
}

func whitePixels(img image.Image) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r == 0xffff && g == 0xffff && bl == 0xffff {
				n++
			}
		}
	}
	return n
}

func TestRenderProducesPNG(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "Building a blog backend in Go", "Example Blog"))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, Width, img.Bounds().Dx())
	assert.Equal(t, Height, img.Bounds().Dy())
	assert.NotZero(t, whitePixels(img))
}

func TestRenderEmptyTitle(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "", ""))
	assert.NotZero(t, buf.Len())
}

func TestNewSkipsMissingFonts(t *testing.T) {
	r, err := New("/nonexistent/font.ttf", "")
	require.NoError(t, err)
	assert.Len(t, r.fonts, 1)

	_, err = New("ogimage_test.go")
	assert.Error(t, err)
}

func TestRenderJapaneseTitleUsesFallbackFace(t *testing.T) {
	const title = "日本語のタイトル"

	r, err := New()
	require.NoError(t, err)
	assert.Zero(t, whitePixels(renderImage(t, r, title)), "no loaded face has these glyphs")

	r.extra = []font.Face{blockFace{size: titleSize}}
	assert.Greater(t, whitePixels(renderImage(t, r, title)), 8*40*40)
}

func TestRenderJapaneseTitleWithSystemFont(t *testing.T) {
	r, err := New(SystemFontPaths...)
	require.NoError(t, err)
	if len(r.fonts) < 2 {
		t.Skip("no CJK font installed")
	}
	assert.NotZero(t, whitePixels(renderImage(t, r, "日本語のタイトル")))
}

func TestChainPicksFirstFaceWithGlyph(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	faces, err := r.faces(titleSize)
	require.NoError(t, err)
	block := blockFace{size: 10}
	c := append(chain{faces[0], block}, faces[1:]...)

	assert.Equal(t, faces[0], c.pick('A'))
	assert.Equal(t, font.Face(block), c.pick('日'))
	assert.Zero(t, c.Kern('A', '日'))
}

func runeCount(s string) int { return utf8.RuneCountInString(s) }

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"one two", "three"}, Wrap("one two three", runeCount, 7, 4))
	assert.Equal(t, []string{"abcde", "fgh"}, Wrap("abcdefgh", runeCount, 5, 4))
	assert.Empty(t, Wrap("", runeCount, 10, 4))

	lines := Wrap(strings.Repeat("word ", 40), runeCount, 10, 2)
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[1], "…"))
	for _, l := range lines {
		assert.LessOrEqual(t, runeCount(l), 10)
	}
}

func TestWrapUnspacedScript(t *testing.T) {
	lines := Wrap("日本語のタイトルです", runeCount, 4, 4)
	assert.Equal(t, []string{"日本語の", "タイトル", "です"}, lines)
}
