package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"clipbot/types"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
)

func loadFontFace(size float64) (font.Face, error) {
	parsedFont, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	face := truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	return face, nil
}

// Thumbnail draws title over the first segment's picture and saves a JPEG.
// A video segment contributes a grabbed frame.
func (r *Renderer) Thumbnail(ctx context.Context, segments []types.Segment, title string, p Profile, workDir, out string) (string, error) {
	var bg image.Image
	for i, seg := range segments {
		src := seg.Media.Path
		if src == "" {
			continue
		}
		if seg.Media.Type == types.MediaVideo {
			frame := filepath.Join(workDir, fmt.Sprintf("frame_%03d.jpg", i))
			if err := r.run(ctx, frameGrab(src, frame, min(1, seg.Duration/2))); err != nil {
				r.log.Warn("frame grab failed", "segment", i+1, "error", err)
				continue
			}
			src = frame
		}
		img, err := gg.LoadImage(src)
		if err != nil {
			r.log.Warn("thumbnail background unreadable", "path", src, "error", err)
			continue
		}
		bg = img
		break
	}

	dc, err := DrawThumbnail(bg, title, p.ThumbWidth, p.ThumbHeight)
	if err != nil {
		return "", err
	}
	if err := gg.SaveJPG(out, dc.Image(), 90); err != nil {
		return "", fmt.Errorf("failed to save thumbnail: %w", err)
	}
	return out, nil
}

// DrawThumbnail composes the thumbnail in memory. bg may be nil.
func DrawThumbnail(bg image.Image, title string, w, h int) (*gg.Context, error) {
	dc := gg.NewContext(w, h)
	dc.SetColor(color.RGBA{0x1a, 0x1a, 0x2e, 0xff})
	dc.Clear()

	if bg != nil {
		drawCover(dc, bg, w, h)
	}

	// darken the lower half so the title stays readable
	grad := gg.NewLinearGradient(0, float64(h)*0.35, 0, float64(h))
	grad.AddColorStop(0, color.RGBA{0, 0, 0, 0})
	grad.AddColorStop(1, color.RGBA{0, 0, 0, 0xd0})
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()

	size := float64(min(w, h)) / 9
	face, err := loadFontFace(size)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)

	maxWidth := float64(w) * 0.88
	lines := dc.WordWrap(strings.ToUpper(strings.TrimSpace(title)), maxWidth)
	if len(lines) > 4 {
		lines = append(lines[:3], lines[3]+"…")
	}
	lineHeight := size * 1.15
	y := float64(h) - float64(h)/14 - lineHeight*float64(len(lines)-1)

	for _, line := range lines {
		drawOutlined(dc, line, float64(w)/2, y, size/14)
		y += lineHeight
	}
	return dc, nil
}

func drawCover(dc *gg.Context, img image.Image, w, h int) {
	b := img.Bounds()
	scale := max(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	dc.Push()
	dc.Translate(float64(w)/2, float64(h)/2)
	dc.Scale(scale, scale)
	dc.DrawImageAnchored(img, 0, 0, 0.5, 0.5)
	dc.Pop()
}

func drawOutlined(dc *gg.Context, s string, x, y, stroke float64) {
	dc.SetColor(color.Black)
	n := max(int(stroke), 2)
	for dy := -n; dy <= n; dy++ {
		for dx := -n; dx <= n; dx++ {
			if dx*dx+dy*dy > n*n {
				continue
			}
			dc.DrawStringAnchored(s, x+float64(dx), y+float64(dy), 0.5, 1)
		}
	}
	dc.SetColor(color.RGBA{0xff, 0xd7, 0x00, 0xff})
	dc.DrawStringAnchored(s, x, y, 0.5, 1)
}
