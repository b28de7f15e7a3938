// Package converter turns a PPTX file into one raster image per slide. The
// production implementation delegates to the ConvertAPI HTTP service; the
// placeholder implementation is a development stand-in that must never serve
// real users.
package converter

import (
	"context"
	"errors"
)

// Default dimensions recorded when the conversion service does not report the
// rendered size.
const (
	DefaultSlideWidth  = 800
	DefaultSlideHeight = 600
)

// SlideImage describes one rendered slide written to the output directory.
type SlideImage struct {
	SlideIndex int    `json:"slide_index"`
	ImagePath  string `json:"image_path"` // absolute path of the written file
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

// Converter renders each slide of a pptx file into outputDir as
// slide_<index>.jpg. Calling it twice on the same file redoes all the work;
// nothing is cached.
type Converter interface {
	Convert(ctx context.Context, pptxPath, outputDir string) ([]SlideImage, error)
}

// ErrUnauthorized indicates the conversion service rejected our credentials.
var ErrUnauthorized = errors.New("conversion service rejected the API credentials")
