package frame

import (
	"bytes"
	"image/color"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
)

// Share-image dimensions expected by the host feed.
const (
	imageWidth  = 1200
	imageHeight = 630
)

// RenderShareImage draws the fixed-size shareable graphic: a diagonal
// purple gradient with the app title and tagline centered.
func RenderShareImage(cfg *Config) ([]byte, error) {
	dc := gg.NewContext(imageWidth, imageHeight)

	grad := gg.NewLinearGradient(0, 0, imageWidth, imageHeight)
	grad.AddColorStop(0, color.RGBA{R: 0x66, G: 0x7e, B: 0xea, A: 0xff})
	grad.AddColorStop(1, color.RGBA{R: 0x76, G: 0x4b, B: 0xa2, A: 0xff})
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, imageWidth, imageHeight)
	dc.Fill()

	if cfg.FontFile != "" {
		if err := dc.LoadFontFace(cfg.FontFile, 72); err != nil {
			// Keep rendering with the default face rather than failing the
			// whole surface over a missing font.
			zap.L().Warn("Unable to load share-image font", zap.String("file", cfg.FontFile), zap.Error(err))
		}
	}

	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(cfg.Title, imageWidth/2, imageHeight/2-40, 0.5, 0.5)
	dc.SetRGBA(1, 1, 1, 0.8)
	dc.DrawStringAnchored(cfg.Tagline, imageWidth/2, imageHeight/2+30, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
