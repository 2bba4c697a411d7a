// Package llm provides the Ollama LLM adapter.
// Clean Architecture: Adapter implementing ports.LLMService.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/0xcro3dile/adaptiverag/internal/domain"
	"github.com/0xcro3dile/adaptiverag/internal/domain/ports"
	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/logger"
)

// DefaultTimeout bounds a non-streaming generation.
const DefaultTimeout = 60 * time.Second

// OllamaLLMAdapter implements ports.LLMService using Ollama API.
// Requests are not retried.
type OllamaLLMAdapter struct {
	baseURL      string
	model        string
	client       *http.Client
	streamClient *http.Client
}

// NewOllamaLLMAdapter creates a new Ollama LLM adapter. A zero timeout
// means DefaultTimeout.
func NewOllamaLLMAdapter(baseURL, model string, timeout time.Duration) *OllamaLLMAdapter {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OllamaLLMAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
		// Streams end when the model is done or ctx is cancelled.
		streamClient: &http.Client{},
	}
}

// ollamaGenerateRequest is the Ollama generate API request.
type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

// ollamaGenerateResponse is the Ollama generate API response.
type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (a *OllamaLLMAdapter) newRequest(ctx context.Context, prompt string, stream bool, opts ports.GenerateOptions) (*http.Request, error) {
	reqBody := ollamaGenerateRequest{
		Model:  a.model,
		Prompt: prompt,
		Stream: stream,
	}
	if opts.Temperature != nil || opts.NumPredict > 0 {
		reqBody.Options = map[string]any{}
		if opts.Temperature != nil {
			reqBody.Options["temperature"] = *opts.Temperature
		}
		if opts.NumPredict > 0 {
			reqBody.Options["num_predict"] = opts.NumPredict
		}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/generate", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// Generate produces a complete response for the prompt.
func (a *OllamaLLMAdapter) Generate(ctx context.Context, prompt string, opts ports.GenerateOptions) (string, error) {
	req, err := a.newRequest(ctx, prompt, false, opts)
	if err != nil {
		return "", err
	}

	logger.Debugf("generating with %s (%d prompt chars)", a.model, len(prompt))
	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		return "", classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	var genResp ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	logger.Debugf("generation took %s", time.Since(start).Round(time.Millisecond))
	return genResp.Response, nil
}

// GenerateStream produces a real streaming response via Ollama's streaming API.
// Returns a channel of StreamTokens for real-time UI updates.
func (a *OllamaLLMAdapter) GenerateStream(ctx context.Context, prompt string, opts ports.GenerateOptions) (<-chan ports.StreamToken, error) {
	req, err := a.newRequest(ctx, prompt, true, opts)
	if err != nil {
		return nil, err
	}

	resp, err := a.streamClient.Do(req)
	if err != nil {
		return nil, classify(err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}

	ch := make(chan ports.StreamToken, 100)

	go func() {
		defer close(ch)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				ch <- ports.StreamToken{Done: true, Error: ctx.Err()}
				return
			default:
			}

			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var chunk ollamaGenerateResponse
			if err := json.Unmarshal(line, &chunk); err != nil {
				logger.Debugf("skipping malformed stream line: %v", err)
				continue
			}

			ch <- ports.StreamToken{
				Content: chunk.Response,
				Done:    chunk.Done,
			}

			if chunk.Done {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			ch <- ports.StreamToken{Done: true, Error: classify(err)}
		}
	}()

	return ch, nil
}

// Ping checks that the Ollama server answers.
func (a *OllamaLLMAdapter) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return classify(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

// Model returns the configured model name.
func (a *OllamaLLMAdapter) Model() string {
	return a.model
}

// classify maps transport failures onto the domain's LLM errors.
func classify(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrLLMTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrLLMUnavailable, err)
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &domain.LLMStatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
