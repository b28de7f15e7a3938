// Package pptx writes field values into a PowerPoint file by injecting
// positioned text boxes into the slide XML. It works directly on the OOXML
// zip structure, the same way the rest of the Office formats are handled.
package pptx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// EMU (english metric units) per inch; OOXML positions shapes in EMU and the
// rendered slide images are treated as 96 DPI.
const (
	emuPerInch   = 914400
	renderedDPI  = 96
	emuPerPixel  = emuPerInch / renderedDPI
	defaultCx    = 12192000 // 16:9 slide width in EMU
	defaultCy    = 6858000
)

// FieldValue is one filled field: geometry in pixels relative to the rendered
// slide image, plus that image's pixel dimensions for scaling into EMU.
type FieldValue struct {
	SlideIndex  int
	Label       string
	Value       string
	X           float64
	Y           float64
	Width       float64
	Height      float64
	ImageWidth  int
	ImageHeight int
}

type Filler struct {
	inputFile  string
	outputFile string
	tempDir    string
}

func NewFiller(inputFile, outputFile string) *Filler {
	return &Filler{
		inputFile:  inputFile,
		outputFile: outputFile,
		tempDir:    filepath.Join(os.TempDir(), fmt.Sprintf("pptx_fill_%d", time.Now().UnixNano())),
	}
}

func (f *Filler) Unzip() error {
	reader, err := zip.OpenReader(f.inputFile)
	if err != nil {
		return fmt.Errorf("failed to open pptx file: %w", err)
	}
	defer reader.Close()

	if err := os.MkdirAll(f.tempDir, 0755); err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}

	for _, file := range reader.File {
		if err := f.extractFile(file); err != nil {
			return fmt.Errorf("failed to extract file %s: %w", file.Name, err)
		}
	}

	return nil
}

func (f *Filler) extractFile(file *zip.File) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	// Entry names come from the archive; keep them inside the temp dir.
	cleaned := filepath.Clean(file.Name)
	if strings.HasPrefix(cleaned, "..") {
		return fmt.Errorf("archive entry %s escapes the extraction directory", file.Name)
	}
	path := filepath.Join(f.tempDir, cleaned)

	if file.FileInfo().IsDir() {
		return os.MkdirAll(path, file.FileInfo().Mode())
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	outFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.FileInfo().Mode())
	if err != nil {
		return err
	}
	defer outFile.Close()

	_, err = io.Copy(outFile, rc)
	return err
}

var slideFilePattern = regexp.MustCompile(`^slide(\d+)\.xml$`)

// SlideCount reports how many slides the unzipped presentation contains.
func (f *Filler) SlideCount() (int, error) {
	slidesDir := filepath.Join(f.tempDir, "ppt", "slides")
	entries, err := os.ReadDir(slidesDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read slides directory: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if slideFilePattern.MatchString(entry.Name()) {
			count++
		}
	}
	return count, nil
}

var sldSzPattern = regexp.MustCompile(`<p:sldSz[^>]*\bcx="(\d+)"[^>]*\bcy="(\d+)"`)

// slideSize reads the presentation's slide dimensions in EMU.
func (f *Filler) slideSize() (cx, cy int64) {
	cx, cy = defaultCx, defaultCy
	content, err := os.ReadFile(filepath.Join(f.tempDir, "ppt", "presentation.xml"))
	if err != nil {
		return cx, cy
	}
	m := sldSzPattern.FindSubmatch(content)
	if m == nil {
		return cx, cy
	}
	if v, err := strconv.ParseInt(string(m[1]), 10, 64); err == nil {
		cx = v
	}
	if v, err := strconv.ParseInt(string(m[2]), 10, 64); err == nil {
		cy = v
	}
	return cx, cy
}

// InjectFields adds one text-box shape per field value into the corresponding
// slide XML. Field geometry is scaled from rendered-image pixels to EMU using
// the presentation's actual slide size.
func (f *Filler) InjectFields(values []FieldValue) error {
	slideCx, slideCy := f.slideSize()

	bySlide := make(map[int][]FieldValue)
	for _, v := range values {
		bySlide[v.SlideIndex] = append(bySlide[v.SlideIndex], v)
	}

	shapeID := 9000 // above anything PowerPoint itself generates
	for slideIndex, slideValues := range bySlide {
		slidePath := filepath.Join(f.tempDir, "ppt", "slides", fmt.Sprintf("slide%d.xml", slideIndex+1))
		content, err := os.ReadFile(slidePath)
		if err != nil {
			return fmt.Errorf("failed to read slide %d: %w", slideIndex, err)
		}

		contentStr := string(content)
		closing := "</p:spTree>"
		if !strings.Contains(contentStr, closing) {
			return fmt.Errorf("slide %d has no shape tree", slideIndex)
		}

		var shapes strings.Builder
		for _, v := range slideValues {
			shapeID++
			shapes.WriteString(f.textBoxXML(shapeID, v, slideCx, slideCy))
		}

		contentStr = strings.Replace(contentStr, closing, shapes.String()+closing, 1)
		if err := os.WriteFile(slidePath, []byte(contentStr), 0644); err != nil {
			return fmt.Errorf("failed to write slide %d: %w", slideIndex, err)
		}
	}

	return nil
}

func (f *Filler) textBoxXML(shapeID int, v FieldValue, slideCx, slideCy int64) string {
	imgW := v.ImageWidth
	if imgW <= 0 {
		imgW = int(slideCx / emuPerPixel)
	}
	imgH := v.ImageHeight
	if imgH <= 0 {
		imgH = int(slideCy / emuPerPixel)
	}

	x := int64(v.X / float64(imgW) * float64(slideCx))
	y := int64(v.Y / float64(imgH) * float64(slideCy))
	cx := int64(v.Width / float64(imgW) * float64(slideCx))
	cy := int64(v.Height / float64(imgH) * float64(slideCy))
	if cx <= 0 {
		cx = emuPerInch
	}
	if cy <= 0 {
		cy = emuPerInch / 4
	}

	var name, value strings.Builder
	xml.EscapeText(&name, []byte(v.Label))
	xml.EscapeText(&value, []byte(v.Value))

	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="field_%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`+
		`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`+
		`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:noFill/></p:spPr>`+
		`<p:txBody><a:bodyPr wrap="square" rtlCol="0"/><a:lstStyle/><a:p><a:r><a:t>%s</a:t></a:r></a:p></p:txBody></p:sp>`,
		shapeID, name.String(), x, y, cx, cy, value.String())
}

func (f *Filler) Rezip() error {
	outputFile, err := os.Create(f.outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer outputFile.Close()

	zipWriter := zip.NewWriter(outputFile)
	defer zipWriter.Close()

	return filepath.Walk(f.tempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(f.tempDir, path)
		if err != nil {
			return err
		}

		writer, err := zipWriter.Create(filepath.ToSlash(relPath))
		if err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(writer, file)
		return err
	})
}

func (f *Filler) Cleanup() {
	os.RemoveAll(f.tempDir)
}
