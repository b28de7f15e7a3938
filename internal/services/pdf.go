package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/starwalkn/gotenberg-go-client/v8"
	"github.com/starwalkn/gotenberg-go-client/v8/document"
)

// PDFService converts generated pptx documents to PDF through Gotenberg's
// LibreOffice route. This is the export-time conversion path; it is entirely
// independent of the ConvertAPI slide rasterization used at edit time.
type PDFService struct {
	client  *gotenberg.Client
	timeout time.Duration
}

func NewPDFService(gotenbergURL string, timeoutStr string) (*PDFService, error) {
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		timeout = 30 * time.Second
		log.Printf("Warning: failed to parse Gotenberg timeout %q, using default 30s: %v", timeoutStr, err)
	}

	httpClient := &http.Client{
		Timeout: timeout,
	}

	client, err := gotenberg.NewClient(gotenbergURL, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gotenberg client: %w", err)
	}

	return &PDFService{
		client:  client,
		timeout: timeout,
	}, nil
}

// ConvertPptxToPDF converts the pptx at pptxPath and stores the PDF at
// outputPath, retrying transient failures a bounded number of times.
func (s *PDFService) ConvertPptxToPDF(ctx context.Context, pptxPath, outputPath string) error {
	const maxRetries = 3
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		doc, err := document.FromPath("document.pptx", pptxPath)
		if err != nil {
			return fmt.Errorf("failed to create document from path: %w", err)
		}

		req := gotenberg.NewLibreOfficeRequest(doc)

		convertCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err = s.client.Store(convertCtx, req, outputPath)
		cancel()
		if err == nil {
			return nil
		}

		lastErr = err
		log.Printf("PDF conversion attempt %d/%d failed: %v", attempt, maxRetries, err)
		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * time.Second)
		}
	}

	return fmt.Errorf("failed to convert document after %d attempts: %w", maxRetries, lastErr)
}

// ConvertPptxToPDFStream converts and returns the PDF body for callers that
// stream the result instead of storing it.
func (s *PDFService) ConvertPptxToPDFStream(ctx context.Context, pptxReader io.Reader) (io.ReadCloser, error) {
	doc, err := document.FromReader("document.pptx", pptxReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create document from reader: %w", err)
	}

	req := gotenberg.NewLibreOfficeRequest(doc)

	convertCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Send(convertCtx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to convert document: %w", err)
	}

	return resp.Body, nil
}
