package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/logger"
)

// DefaultPDFServiceURL is where the PDF parsing service listens by default.
const DefaultPDFServiceURL = "http://localhost:8081"

// PDFServiceParser implements ports.DocumentParser by posting PDF bytes to
// the Python parsing service (pdf_service.py). It is the fallback when
// pdftotext is missing or fails on a file.
type PDFServiceParser struct {
	serviceURL string
	client     *http.Client
	cmd        *exec.Cmd
}

// NewPDFServiceParser creates a parser for the service at serviceURL.
func NewPDFServiceParser(serviceURL string) *PDFServiceParser {
	if serviceURL == "" {
		serviceURL = DefaultPDFServiceURL
	}
	return &PDFServiceParser{
		serviceURL: serviceURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// parseResponse is the service response format.
type parseResponse struct {
	Text    string `json:"text"`
	Pages   int    `json:"pages"`
	Library string `json:"library,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Parse extracts text from PDF bytes via the service.
func (p *PDFServiceParser) Parse(ctx context.Context, data []byte, filename string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.serviceURL+"/parse", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Filename", filename)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling PDF service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var result parseResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decoding response (status %d): %w", resp.StatusCode, err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("PDF parse error: %s", result.Error)
	}

	logger.Debugf("PDF service parsed %s: %d pages via %s", filename, result.Pages, result.Library)
	return result.Text, nil
}

// SupportedFormats returns formats this parser handles.
func (p *PDFServiceParser) SupportedFormats() []string {
	return []string{"pdf"}
}

// StartService runs pdf_service.py from scriptDir and waits until its
// health check passes. The returned function stops the process.
func (p *PDFServiceParser) StartService(ctx context.Context, scriptDir string) (func(), error) {
	script := filepath.Join(scriptDir, "pdf_service.py")
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("pdf_service.py not found at %s: %w", script, err)
	}

	p.cmd = exec.Command("python3", script)
	p.cmd.Stdout = os.Stdout
	p.cmd.Stderr = os.Stderr
	if err := p.cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting PDF service: %w", err)
	}

	stop := func() {
		if p.cmd != nil && p.cmd.Process != nil {
			_ = p.cmd.Process.Kill()
			_ = p.cmd.Wait()
		}
	}

	deadline := time.Now().Add(10 * time.Second)
	for !p.IsServiceHealthy(ctx) {
		if time.Now().After(deadline) {
			stop()
			return nil, fmt.Errorf("PDF service at %s did not become healthy", p.serviceURL)
		}
		select {
		case <-ctx.Done():
			stop()
			return nil, ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
	}

	logger.Infof("PDF service started at %s", p.serviceURL)
	return stop, nil
}

// IsServiceHealthy checks if the service is running.
func (p *PDFServiceParser) IsServiceHealthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.serviceURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
