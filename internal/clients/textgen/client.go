package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"ideaboard-backend/internal/logger"
	"ideaboard-backend/internal/pkg/httpx"
	"ideaboard-backend/internal/pkg/textutil"
)

// Options tunes a single generation call.
type Options struct {
	Temperature float64
	TopP        float64
	// EnableSearch asks the service to augment the reply with an external
	// web search; citations are returned when it does.
	EnableSearch bool
}

// Citation is provenance metadata attached to search-augmented replies.
type Citation struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url"`
}

type Reply struct {
	Text      string
	Citations []Citation
}

// Client is the generative-text API client used by every enrichment
// service. All returned text is passed through the upstream sanitizer.
type Client interface {
	GenerateText(ctx context.Context, system string, user string, opts Options) (Reply, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client

	maxRetries int
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	apiKey := strings.TrimSpace(os.Getenv("TEXTGEN_API_KEY"))
	if apiKey == "" || strings.EqualFold(apiKey, "your_api_key_here") {
		return nil, fmt.Errorf("missing TEXTGEN_API_KEY")
	}

	baseURL := strings.TrimSpace(os.Getenv("TEXTGEN_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(os.Getenv("TEXTGEN_MODEL"))
	if model == "" {
		model = "gpt-4.1-mini"
	}

	timeoutSec := 60
	if v := os.Getenv("TEXTGEN_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	maxRetries := 3
	if v := os.Getenv("TEXTGEN_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
			maxRetries = parsed
		}
	}

	return &client{
		log:        log.With("service", "TextGenClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
	}, nil
}

type textgenHTTPError struct {
	StatusCode int
	Body       string
}

func (e *textgenHTTPError) Error() string {
	return fmt.Sprintf("textgen http %d: %s", e.StatusCode, e.Body)
}

func (e *textgenHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &textgenHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *client) do(ctx context.Context, method, path string, body any, out any) error {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("textgen decode error: %w", uErr)
			}
			return nil
		}

		if !httpx.IsRetryableError(err) {
			return err
		}
		if attempt == c.maxRetries {
			return err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("TextGen request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		time.Sleep(sleepFor)
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}

type responsesRequest struct {
	Model string `json:"model"`

	Input []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"input"`

	Temperature float64          `json:"temperature,omitempty"`
	TopP        float64          `json:"top_p,omitempty"`
	Tools       []map[string]any `json:"tools,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type        string `json:"type"`
			Text        string `json:"text,omitempty"`
			Annotations []struct {
				Type  string `json:"type"`
				Title string `json:"title,omitempty"`
				URL   string `json:"url,omitempty"`
			} `json:"annotations,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
}

func (c *client) GenerateText(ctx context.Context, system string, user string, opts Options) (Reply, error) {
	var out Reply

	req := responsesRequest{
		Model: c.model,
		Input: []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}{
			{Role: "system", Content: strings.TrimSpace(system)},
			{Role: "user", Content: user},
		},
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
	}
	if opts.EnableSearch {
		req.Tools = []map[string]any{{"type": "web_search"}}
	}

	var resp responsesResponse
	if err := c.do(ctx, "POST", "/v1/responses", req, &resp); err != nil {
		return out, err
	}
	if resp.Refusal != "" {
		return out, fmt.Errorf("model refused: %s", textutil.SanitizeUpstream(resp.Refusal))
	}

	var text strings.Builder
	for _, item := range resp.Output {
		if item.Type != "message" || item.Role != "assistant" {
			continue
		}
		for _, part := range item.Content {
			if part.Type != "output_text" || part.Text == "" {
				continue
			}
			text.WriteString(part.Text)
			for _, a := range part.Annotations {
				if a.Type != "url_citation" || strings.TrimSpace(a.URL) == "" {
					continue
				}
				out.Citations = append(out.Citations, Citation{
					Title: textutil.SanitizeUpstream(a.Title),
					URL:   textutil.SanitizeUpstream(a.URL),
				})
			}
		}
	}

	out.Text = textutil.SanitizeUpstream(text.String())
	if strings.TrimSpace(out.Text) == "" {
		return out, fmt.Errorf("no output text found in response")
	}
	return out, nil
}
