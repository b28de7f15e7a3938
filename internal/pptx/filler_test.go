package pptx

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSlideXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/></p:spTree></p:cSld></p:sld>`

const testPresentationXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:sldSz cx="9144000" cy="6858000"/></p:presentation>`

// writeTestPptx builds a minimal presentation archive with the given number
// of slides.
func writeTestPptx(t *testing.T, slideCount int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.pptx")
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create pptx: %v", err)
	}
	defer out.Close()

	w := zip.NewWriter(out)
	entries := map[string]string{
		"[Content_Types].xml":  `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"ppt/presentation.xml": testPresentationXML,
	}
	for i := 1; i <= slideCount; i++ {
		entries[fmt.Sprintf("ppt/slides/slide%d.xml", i)] = testSlideXML
	}
	for name, content := range entries {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return path
}

func readZipEntry(t *testing.T, zipPath, entryName string) string {
	t.Helper()
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("open zip %s: %v", zipPath, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name == entryName {
			rc, err := f.Open()
			if err != nil {
				t.Fatalf("open entry %s: %v", entryName, err)
			}
			defer rc.Close()
			data, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("read entry %s: %v", entryName, err)
			}
			return string(data)
		}
	}
	t.Fatalf("entry %s not found in %s", entryName, zipPath)
	return ""
}

func TestFillerSlideCount(t *testing.T) {
	input := writeTestPptx(t, 3)
	filler := NewFiller(input, filepath.Join(t.TempDir(), "out.pptx"))
	if err := filler.Unzip(); err != nil {
		t.Fatalf("Unzip: %v", err)
	}
	defer filler.Cleanup()

	count, err := filler.SlideCount()
	if err != nil {
		t.Fatalf("SlideCount: %v", err)
	}
	if count != 3 {
		t.Errorf("SlideCount = %d, want 3", count)
	}
}

func TestFillerInjectsTextBox(t *testing.T) {
	input := writeTestPptx(t, 2)
	output := filepath.Join(t.TempDir(), "out.pptx")

	filler := NewFiller(input, output)
	if err := filler.Unzip(); err != nil {
		t.Fatalf("Unzip: %v", err)
	}
	defer filler.Cleanup()

	values := []FieldValue{
		{
			SlideIndex:  1,
			Label:       "Title",
			Value:       "Q1 <Results> & More",
			X:           400,
			Y:           300,
			Width:       200,
			Height:      50,
			ImageWidth:  800,
			ImageHeight: 600,
		},
	}
	if err := filler.InjectFields(values); err != nil {
		t.Fatalf("InjectFields: %v", err)
	}
	if err := filler.Rezip(); err != nil {
		t.Fatalf("Rezip: %v", err)
	}

	// Only slide 2 (index 1) was touched.
	untouched := readZipEntry(t, output, "ppt/slides/slide1.xml")
	if strings.Contains(untouched, "field_Title") {
		t.Error("slide 1 should not have been modified")
	}

	filled := readZipEntry(t, output, "ppt/slides/slide2.xml")
	if !strings.Contains(filled, "field_Title") {
		t.Fatal("slide 2 is missing the injected shape")
	}
	if !strings.Contains(filled, "Q1 &lt;Results&gt; &amp; More") {
		t.Error("field value was not XML-escaped into the slide")
	}
	// 400px of an 800px-wide image is half of the 9144000 EMU slide width.
	if !strings.Contains(filled, `<a:off x="4572000" y="3429000"/>`) {
		t.Errorf("shape offset not scaled to EMU as expected:\n%s", filled)
	}
	if !strings.Contains(filled, `<a:ext cx="2286000" cy="571500"/>`) {
		t.Errorf("shape extent not scaled to EMU as expected:\n%s", filled)
	}
	if !strings.Contains(filled, "</p:spTree>") {
		t.Error("shape tree closing tag lost during injection")
	}
}

func TestFillerMissingValueLeavesEmptyText(t *testing.T) {
	input := writeTestPptx(t, 1)
	output := filepath.Join(t.TempDir(), "out.pptx")

	filler := NewFiller(input, output)
	if err := filler.Unzip(); err != nil {
		t.Fatalf("Unzip: %v", err)
	}
	defer filler.Cleanup()

	if err := filler.InjectFields([]FieldValue{{SlideIndex: 0, Label: "Empty", ImageWidth: 800, ImageHeight: 600}}); err != nil {
		t.Fatalf("InjectFields: %v", err)
	}
	if err := filler.Rezip(); err != nil {
		t.Fatalf("Rezip: %v", err)
	}

	filled := readZipEntry(t, output, "ppt/slides/slide1.xml")
	if !strings.Contains(filled, "<a:t></a:t>") {
		t.Error("empty value should render an empty text run")
	}
}
