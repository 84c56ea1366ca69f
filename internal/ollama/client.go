// Package ollama is a client for the hosted completion API. The upstream
// speaks the Ollama generate protocol: a JSON request against /api/generate
// answered either by a single JSON object or by a newline-delimited stream
// of partial-response objects.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Upstream health states reported by Health.
const (
	StatusHealthy     = "healthy"
	StatusUnhealthy   = "unhealthy"
	StatusUnreachable = "unreachable"
)

// Options are the generation parameters sent with every request.
type Options struct {
	Temperature      float64
	MaxTokens        int
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
}

// Config configures a Client.
type Config struct {
	BaseURL string
	Model   string
	Options Options

	// Upper bounds on total wait per call kind.
	GenerateTimeout time.Duration
	StreamTimeout   time.Duration
	ProbeTimeout    time.Duration

	// HTTPClient overrides the transport; nil uses http.DefaultClient.
	// Timeouts are enforced via request contexts, not the client.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Client issues completion requests. Safe for concurrent use.
type Client struct {
	baseURL         string
	model           string
	opts            Options
	generateTimeout time.Duration
	streamTimeout   time.Duration
	probeTimeout    time.Duration
	httpClient      *http.Client
	logger          *slog.Logger
}

// New creates a Client from cfg.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		model:           cfg.Model,
		opts:            cfg.Options,
		generateTimeout: cfg.GenerateTimeout,
		streamTimeout:   cfg.StreamTimeout,
		probeTimeout:    cfg.ProbeTimeout,
		httpClient:      httpClient,
		logger:          logger,
	}
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate issues a blocking completion request and returns the full
// generated text. Non-success upstream statuses are errors.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.generateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.generateTimeout)
		defer cancel()
	}

	body, err := c.doGenerate(ctx, generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]any{
			"temperature":       c.opts.Temperature,
			"max_tokens":        c.opts.MaxTokens,
			"top_p":             c.opts.TopP,
			"frequency_penalty": c.opts.FrequencyPenalty,
			"presence_penalty":  c.opts.PresencePenalty,
		},
	})
	if err != nil {
		return "", err
	}
	defer body.Close()

	var resp generateResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	return resp.Response, nil
}

// Stream issues a streaming completion request and calls fn for each decoded
// chunk. Malformed chunks are skipped; the stream ends after a done chunk.
// An error returned by fn aborts the stream and is returned unchanged.
func (c *Client) Stream(ctx context.Context, prompt string, fn func(token string, done bool) error) error {
	if c.streamTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.streamTimeout)
		defer cancel()
	}

	body, err := c.doGenerate(ctx, generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: true,
		Options: map[string]any{
			"temperature": c.opts.Temperature,
			"max_tokens":  c.opts.MaxTokens,
		},
	})
	if err != nil {
		return err
	}
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 512*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var chunk generateResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			// Malformed chunks are not fatal to the stream.
			c.logger.Debug("skipping malformed stream chunk", "error", err)
			continue
		}

		if err := fn(chunk.Response, chunk.Done); err != nil {
			return err
		}
		if chunk.Done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	// Upstream closed without a done chunk.
	return errors.New("stream ended without completion signal")
}

func (c *Client) doGenerate(ctx context.Context, payload generateRequest) (io.ReadCloser, error) {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call completion api: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("completion api: %s: %s", resp.Status, excerpt)
	}
	return resp.Body, nil
}

// Health probes the upstream with a short timeout and maps the result to a
// coarse status string for the health endpoint.
func (c *Client) Health(ctx context.Context) string {
	if c.probeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.probeTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return StatusUnreachable
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return StatusUnreachable
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode == http.StatusOK {
		return StatusHealthy
	}
	return StatusUnhealthy
}
