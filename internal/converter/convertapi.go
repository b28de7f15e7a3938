package converter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Substrings ConvertAPI uses across its error payloads when the secret is
// missing or wrong. Matching on them lets callers distinguish a configuration
// problem from a transient outage.
var authErrorMarkers = []string{
	"Unauthorized",
	"credentials not set",
	"Code: 401",
	"Code: 4013",
}

// ConvertAPIClient renders pptx slides to JPEG through the ConvertAPI service.
// One call per conversion, no retries: a slide whose download fails is skipped
// and conversion continues with the remaining slides.
type ConvertAPIClient struct {
	secret     string
	baseURL    string
	httpClient *http.Client
}

func NewConvertAPIClient(secret, baseURL, timeoutStr string) *ConvertAPIClient {
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		timeout = 120 * time.Second
		log.Printf("Warning: failed to parse ConvertAPI timeout %q, using default 120s: %v", timeoutStr, err)
	}

	return &ConvertAPIClient{
		secret:  secret,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type convertResponse struct {
	ConversionCost int           `json:"ConversionCost"`
	Files          []convertFile `json:"Files"`
}

type convertFile struct {
	FileName string `json:"FileName"`
	FileExt  string `json:"FileExt"`
	FileSize int64  `json:"FileSize"`
	URL      string `json:"Url"`
}

type convertError struct {
	Code    int    `json:"Code"`
	Message string `json:"Message"`
}

func (c *ConvertAPIClient) Convert(ctx context.Context, pptxPath, outputDir string) ([]SlideImage, error) {
	if _, err := os.Stat(pptxPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("pptx file does not exist: %s", pptxPath)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	result, err := c.requestConversion(ctx, pptxPath)
	if err != nil {
		return nil, err
	}

	log.Printf("ConvertAPI returned %d slide images for %s", len(result.Files), filepath.Base(pptxPath))

	images := make([]SlideImage, 0, len(result.Files))
	for i, file := range result.Files {
		outputPath := filepath.Join(outputDir, fmt.Sprintf("slide_%d.jpg", i))
		if err := c.downloadFile(ctx, file.URL, outputPath); err != nil {
			log.Printf("Warning: failed to download slide %d: %v", i, err)
			continue
		}
		images = append(images, SlideImage{
			SlideIndex: i,
			ImagePath:  outputPath,
			Width:      DefaultSlideWidth,
			Height:     DefaultSlideHeight,
		})
	}

	return images, nil
}

func (c *ConvertAPIClient) requestConversion(ctx context.Context, pptxPath string) (*convertResponse, error) {
	file, err := os.Open(pptxPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open pptx file %s: %w", pptxPath, err)
	}
	defer file.Close()

	body := &strings.Builder{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("File", filepath.Base(pptxPath))
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart request: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read pptx file %s: %w", pptxPath, err)
	}
	if err := writer.WriteField("ImageQuality", "100"); err != nil {
		return nil, fmt.Errorf("failed to build multipart request: %w", err)
	}
	if err := writer.WriteField("StoreFile", "true"); err != nil {
		return nil, fmt.Errorf("failed to build multipart request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart request: %w", err)
	}

	url := fmt.Sprintf("%s/convert/pptx/to/jpg?Secret=%s", c.baseURL, c.secret)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to create conversion request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("conversion request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.classifyError(resp.StatusCode, respBody)
	}

	var result convertResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode conversion response: %w", err)
	}

	return &result, nil
}

func (c *ConvertAPIClient) classifyError(statusCode int, body []byte) error {
	var apiErr convertError
	message := string(body)
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		message = fmt.Sprintf("%s (Code: %d)", apiErr.Message, apiErr.Code)
	}

	if statusCode == http.StatusUnauthorized || isAuthError(message) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, message)
	}

	return fmt.Errorf("conversion service returned HTTP %d: %s", statusCode, message)
}

func isAuthError(message string) bool {
	for _, marker := range authErrorMarkers {
		if strings.Contains(message, marker) {
			return true
		}
	}
	return false
}

func (c *ConvertAPIClient) downloadFile(ctx context.Context, url, outputPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download returned HTTP %d", resp.StatusCode)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outputPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(outputPath)
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	return nil
}
