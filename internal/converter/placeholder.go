package converter

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"
)

// PlaceholderConverter writes a fixed number of blank slide images instead of
// calling the conversion service. It exists to unblock local development when
// no ConvertAPI secret is configured; bootstrap wiring must never select it in
// production.
type PlaceholderConverter struct {
	SlideCount int
}

func NewPlaceholderConverter(slideCount int) *PlaceholderConverter {
	if slideCount <= 0 {
		slideCount = 3
	}
	return &PlaceholderConverter{SlideCount: slideCount}
}

func (p *PlaceholderConverter) Convert(_ context.Context, pptxPath, outputDir string) ([]SlideImage, error) {
	if _, err := os.Stat(pptxPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("pptx file does not exist: %s", pptxPath)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	blank := image.NewRGBA(image.Rect(0, 0, DefaultSlideWidth, DefaultSlideHeight))
	draw.Draw(blank, blank.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	images := make([]SlideImage, 0, p.SlideCount)
	for i := 0; i < p.SlideCount; i++ {
		outputPath := filepath.Join(outputDir, fmt.Sprintf("slide_%d.jpg", i))
		out, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", outputPath, err)
		}
		if err := jpeg.Encode(out, blank, nil); err != nil {
			out.Close()
			return nil, fmt.Errorf("failed to encode placeholder image: %w", err)
		}
		out.Close()

		images = append(images, SlideImage{
			SlideIndex: i,
			ImagePath:  outputPath,
			Width:      DefaultSlideWidth,
			Height:     DefaultSlideHeight,
		})
	}

	return images, nil
}
