package ansiart

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, fill color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, fill)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestImageToAnsi(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}

	art := ImageToAnsi(img, 4, 2)
	lines := strings.Split(strings.TrimSuffix(art, "\n"), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Equal(t, 4, VisibleWidth(line))
		assert.Equal(t, "▀▀▀▀", StripAnsi(line))
	}
	assert.True(t, strings.HasPrefix(lines[0], "\x1b[38;2;"))
}

func TestRendererCaches(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "card.png")
	writePNG(t, imagePath, color.RGBA{0, 0, 255, 255})

	r := &Renderer{CacheDir: filepath.Join(dir, "cache"), Width: 6, Height: 3}
	art, err := r.Render(imagePath)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSuffix(art, "\n"), "\n"), 3)

	entries, err := os.ReadDir(filepath.Join(dir, "cache", "ansi_cache"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// The cached render is served even once the image is gone
	require.NoError(t, os.Remove(imagePath))
	cached, err := r.Render(imagePath)
	require.NoError(t, err)
	assert.Equal(t, art, cached)
}

func TestRenderErrors(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer("")

	_, err := r.Render(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	notImage := filepath.Join(dir, "notes.png")
	require.NoError(t, os.WriteFile(notImage, []byte("not an image"), 0644))
	_, err = r.Render(notImage)
	assert.Error(t, err)
}

func TestIsLocal(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "card.png")
	writePNG(t, imagePath, color.White)

	assert.True(t, IsLocal(imagePath))
	assert.False(t, IsLocal(dir))
	assert.False(t, IsLocal(""))
	assert.False(t, IsLocal("https://images.example/card.png"))
	assert.False(t, IsLocal(filepath.Join(dir, "missing.png")))
}

func TestWrapText(t *testing.T) {
	lines := WrapText("The quick brown fox jumps over the lazy dog", 15)
	assert.Equal(t, []string{"The quick brown", "fox jumps over", "the lazy dog"}, lines)

	assert.Equal(t, []string{""}, WrapText("   ", 20))
	assert.Equal(t, []string{"short"}, WrapText("short", 3), "tiny widths fall back to a sane default")
}

func TestSideBySide(t *testing.T) {
	out := SideBySide("ab\ncd\n", []string{"one", "two", "three"}, 2)
	assert.Equal(t, "  ab  one\n  cd  two\n      three\n", out)

	assert.Equal(t, "  one\n", SideBySide("", []string{"one"}, 4))
}
