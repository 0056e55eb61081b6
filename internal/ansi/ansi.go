// Package ansi turns card images into terminal art made of half-block
// characters with 24-bit colors.
package ansi

import (
	"context"
	"crypto/md5"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
)

// Renderer downloads images and converts them, caching the result on disk.
type Renderer struct {
	CacheDir   string
	Width      int
	Height     int
	TrueColor  bool
	HTTPClient *http.Client
}

func NewRenderer(cacheDir string, width, height int) *Renderer {
	return &Renderer{
		CacheDir:   cacheDir,
		Width:      width,
		Height:     height,
		TrueColor:  true,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Render returns the ANSI art for the image at url, using the cache when
// a previous conversion exists.
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("no image url")
	}

	cachePath := ""
	if r.CacheDir != "" {
		mode := "24bit"
		if !r.TrueColor {
			mode = "plain"
		}
		cacheFilename := fmt.Sprintf("%x-%dx%d-%s.ansi", md5.Sum([]byte(url)), r.Width, r.Height, mode)
		cachePath = filepath.Join(r.CacheDir, cacheFilename)
		if data, err := os.ReadFile(cachePath); err == nil {
			return string(data), nil
		}
	}

	img, err := r.download(ctx, url)
	if err != nil {
		return "", err
	}
	art := ImageToAnsi(img, r.Width, r.Height, r.TrueColor)

	if cachePath != "" {
		if err := os.MkdirAll(r.CacheDir, 0755); err != nil {
			return art, fmt.Errorf("failed to create ANSI cache directory: %w", err)
		}
		if err := os.WriteFile(cachePath, []byte(art), 0644); err != nil {
			return art, fmt.Errorf("failed to write ANSI art to cache: %w", err)
		}
	}
	return art, nil
}

func (r *Renderer) download(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := r.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// ImageToAnsi converts an image to width x height character cells. Each
// cell covers a 2x2 pixel block: the top pair becomes the foreground of an
// upper half block, the bottom pair its background.
func ImageToAnsi(img image.Image, width, height int, trueColor bool) string {
	resized := resize.Resize(uint(width*2), uint(height*2), img, resize.Lanczos3)

	var buffer strings.Builder
	for y := 0; y < height*2; y += 2 {
		for x := 0; x < width*2; x += 2 {
			col1, _ := colorful.MakeColor(getColorAt(resized, x, y))
			col2, _ := colorful.MakeColor(getColorAt(resized, x+1, y))
			col3, _ := colorful.MakeColor(getColorAt(resized, x, y+1))
			col4, _ := colorful.MakeColor(getColorAt(resized, x+1, y+1))

			fg := colorfulToColor(averageColor(col1, col2))
			bg := colorfulToColor(averageColor(col3, col4))

			buffer.WriteString(ansiColorString('▀', fg, bg, trueColor))
		}
		buffer.WriteString("\n")
	}
	return buffer.String()
}

func getColorAt(img image.Image, x, y int) color.Color {
	bounds := img.Bounds()
	if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
		return img.At(x, y)
	}
	return color.RGBA{0, 0, 0, 255}
}

func averageColor(colors ...colorful.Color) colorful.Color {
	var r, g, b float64
	for _, c := range colors {
		r += c.R
		g += c.G
		b += c.B
	}
	count := float64(len(colors))
	return colorful.Color{R: r / count, G: g / count, B: b / count}
}

func colorfulToColor(c colorful.Color) color.Color {
	c = c.Clamped()
	return color.RGBA{R: uint8(c.R * 255), G: uint8(c.G * 255), B: uint8(c.B * 255), A: 255}
}

func ansiColorString(char rune, fg, bg color.Color, trueColor bool) string {
	if !trueColor {
		return string(char)
	}
	r1, g1, b1, _ := fg.RGBA()
	r2, g2, b2, _ := bg.RGBA()
	r1, g1, b1 = r1>>8, g1>>8, b1>>8
	r2, g2, b2 = r2>>8, g2>>8, b2>>8

	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm%c\x1b[0m",
		r1, g1, b1, r2, g2, b2, char)
}

// StripAnsi removes ANSI escape sequences from a string
func StripAnsi(s string) string {
	var result strings.Builder
	inEscape := false
	for _, c := range s {
		if inEscape {
			if c == 'm' {
				inEscape = false
			}
		} else if c == '\033' {
			inEscape = true
		} else {
			result.WriteRune(c)
		}
	}
	return result.String()
}

// VisibleWidth returns the printed width of a line, ignoring escapes.
func VisibleWidth(s string) int {
	return len([]rune(StripAnsi(s)))
}
