// Package ansiart renders card images as ANSI half-block art for the terminal.
// Only local image files are rendered; remote image references are left to
// richer front-ends.
package ansiart

import (
	"crypto/md5"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
)

const (
	DefaultWidth  = 32
	DefaultHeight = 16
)

// Renderer converts images and caches the result under CacheDir
type Renderer struct {
	CacheDir string
	Width    int
	Height   int
}

// NewRenderer creates a renderer with the default art size
func NewRenderer(cacheDir string) *Renderer {
	return &Renderer{CacheDir: cacheDir, Width: DefaultWidth, Height: DefaultHeight}
}

// IsLocal reports whether an image reference points at a file on disk
func IsLocal(ref string) bool {
	if ref == "" || strings.Contains(ref, "://") {
		return false
	}
	info, err := os.Stat(ref)
	return err == nil && !info.IsDir()
}

// Render returns the ANSI art for the image at path, generating and caching it
// on first use
func (r *Renderer) Render(path string) (string, error) {
	if r.CacheDir == "" {
		return r.generate(path)
	}

	cacheDir := filepath.Join(r.CacheDir, "ansi_cache")
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create ANSI cache directory: %w", err)
	}

	// Size is part of the key so a resized render never reuses a stale cache entry
	key := fmt.Sprintf("%s@%dx%d", path, r.Width, r.Height)
	cachePath := filepath.Join(cacheDir, fmt.Sprintf("%x.ansi", md5.Sum([]byte(key))))
	if data, err := os.ReadFile(cachePath); err == nil {
		return string(data), nil
	}

	art, err := r.generate(path)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(cachePath, []byte(art), 0644); err != nil {
		return "", fmt.Errorf("failed to write ANSI art to cache: %w", err)
	}
	return art, nil
}

func (r *Renderer) generate(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	width, height := r.Width, r.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return ImageToAnsi(img, width, height), nil
}

// ImageToAnsi converts an image to width x height cells of upper half blocks.
// Each cell covers a 2x2 pixel square of the resized image: the top pair becomes
// the foreground and the bottom pair the background.
func ImageToAnsi(img image.Image, width, height int) string {
	resized := resize.Resize(uint(width*2), uint(height*2), img, resize.Lanczos3)

	var sb strings.Builder
	for y := 0; y < height*2; y += 2 {
		for x := 0; x < width*2; x += 2 {
			top := averageColor(colorAt(resized, x, y), colorAt(resized, x+1, y))
			bottom := averageColor(colorAt(resized, x, y+1), colorAt(resized, x+1, y+1))
			sb.WriteString(halfBlock(top, bottom))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func colorAt(img image.Image, x, y int) colorful.Color {
	var c color.Color = color.RGBA{0, 0, 0, 255}
	if (image.Point{X: x, Y: y}).In(img.Bounds()) {
		c = img.At(x, y)
	}
	col, _ := colorful.MakeColor(c)
	return col
}

func averageColor(colors ...colorful.Color) colorful.Color {
	var r, g, b float64
	for _, c := range colors {
		r += c.R
		g += c.G
		b += c.B
	}
	count := float64(len(colors))
	return colorful.Color{R: r / count, G: g / count, B: b / count}.Clamped()
}

func halfBlock(fg, bg colorful.Color) string {
	r1, g1, b1 := fg.RGB255()
	r2, g2, b2 := bg.RGB255()
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀\x1b[0m", r1, g1, b1, r2, g2, b2)
}

// StripAnsi removes ANSI SGR escape sequences from a string
func StripAnsi(s string) string {
	var sb strings.Builder
	inEscape := false
	for _, c := range s {
		switch {
		case inEscape:
			if c == 'm' {
				inEscape = false
			}
		case c == '\033':
			inEscape = true
		default:
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// VisibleWidth returns the number of runes a string occupies once escapes are removed
func VisibleWidth(s string) int {
	return len([]rune(StripAnsi(s)))
}

// WrapText wraps text to lines of at most width runes, breaking on whitespace
func WrapText(text string, width int) []string {
	if width < 10 {
		width = 40
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, word := range words {
		switch {
		case current == "":
			current = word
		case len([]rune(current))+1+len([]rune(word)) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	return append(lines, current)
}

// SideBySide joins an art block and text lines into one layout, the art on the left
func SideBySide(art string, info []string, spacing int) string {
	artLines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	if art == "" {
		artLines = nil
	}

	artWidth := 0
	for _, line := range artLines {
		if w := VisibleWidth(line); w > artWidth {
			artWidth = w
		}
	}
	col := artWidth + spacing
	if len(artLines) == 0 {
		col = 0
	}

	var sb strings.Builder
	for i := 0; i < max(len(artLines), len(info)); i++ {
		sb.WriteString("  ")
		if i < len(artLines) {
			sb.WriteString(artLines[i])
			sb.WriteString(strings.Repeat(" ", col-VisibleWidth(artLines[i])))
		} else {
			sb.WriteString(strings.Repeat(" ", col))
		}
		if i < len(info) {
			sb.WriteString(info[i])
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
