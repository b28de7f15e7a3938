package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// Store abstracts where template sources and generated exports live. Paths are
// always canonical relative paths (see CanonicalPath); backends must reject
// anything else so a bad path can never reach the database.
type Store interface {
	// Save writes the reader's content at relPath, creating parent directories
	// (or object prefixes) as needed, and returns the number of bytes written.
	Save(ctx context.Context, relPath string, reader io.Reader) (int64, error)
	Open(ctx context.Context, relPath string) (io.ReadCloser, error)
	Delete(ctx context.Context, relPath string) error
	// DeletePrefix removes everything stored under the given directory prefix.
	DeletePrefix(ctx context.Context, relPrefix string) error
}

// CanonicalPath normalizes a storage path to the single representation that is
// allowed into the database: forward slashes, no leading slash or drive prefix,
// no "."/".." segments, no duplicated segments from concatenation bugs.
func CanonicalPath(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "/")

	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == "" {
		return "", fmt.Errorf("empty storage path %q", p)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("storage path %q escapes the base directory", p)
	}

	// Collapse immediately repeated segments ("uploads/uploads/x") left by
	// careless path joins.
	segments := strings.Split(cleaned, "/")
	out := segments[:1]
	for _, seg := range segments[1:] {
		if seg == out[len(out)-1] {
			continue
		}
		out = append(out, seg)
	}

	return strings.Join(out, "/"), nil
}

// TemplateSourcePath returns the canonical location of an uploaded pptx.
func TemplateSourcePath(templateID, filename string) string {
	return fmt.Sprintf("templates/%s/%s", templateID, filename)
}

// SlideImagePath returns the canonical location of one rendered slide image.
func SlideImagePath(templateID string, slideIndex int) string {
	return fmt.Sprintf("templates/%s/slide_%d.jpg", templateID, slideIndex)
}

// ExportPath returns the canonical location of a generated document.
func ExportPath(userID, filename string) string {
	return fmt.Sprintf("exports/%s/%s", userID, filename)
}
