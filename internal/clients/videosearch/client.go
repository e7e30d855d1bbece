package videosearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"ideaboard-backend/internal/logger"
	"ideaboard-backend/internal/pkg/httpx"
	"ideaboard-backend/internal/pkg/textutil"
	"ideaboard-backend/internal/types"
)

// Client queries the video-search service for candidate competing videos.
type Client interface {
	Search(ctx context.Context, query string, limit int) ([]types.CompetingVideo, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client

	maxRetries int
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	apiKey := strings.TrimSpace(os.Getenv("VIDEOSEARCH_API_KEY"))
	if apiKey == "" || strings.EqualFold(apiKey, "your_api_key_here") {
		return nil, fmt.Errorf("missing VIDEOSEARCH_API_KEY")
	}

	baseURL := strings.TrimSpace(os.Getenv("VIDEOSEARCH_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://serpapi.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeoutSec := 30
	if v := os.Getenv("VIDEOSEARCH_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	return &client{
		log:        log.With("service", "VideoSearchClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: 2,
	}, nil
}

type videoSearchHTTPError struct {
	StatusCode int
	Body       string
}

func (e *videoSearchHTTPError) Error() string {
	return fmt.Sprintf("videosearch http %d: %s", e.StatusCode, e.Body)
}

func (e *videoSearchHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

type searchResponse struct {
	VideoResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Channel struct {
			Name        string `json:"name"`
			Subscribers string `json:"subscribers"`
		} `json:"channel"`
		Views         json.Number `json:"views"`
		ViewsText     string      `json:"views_text"`
		PublishedDate string      `json:"published_date"`
		Thumbnail     struct {
			Static string `json:"static"`
		} `json:"thumbnail"`
		Description string `json:"description"`
	} `json:"video_results"`
}

func (c *client) Search(ctx context.Context, query string, limit int) ([]types.CompetingVideo, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query required")
	}
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("engine", "youtube")
	params.Set("search_query", query)
	params.Set("num", strconv.Itoa(limit))
	params.Set("api_key", c.apiKey)

	raw, err := c.get(ctx, "/search?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("videosearch decode error: %w", err)
	}

	now := time.Now()
	videos := make([]types.CompetingVideo, 0, limit)
	for _, item := range resp.VideoResults {
		if len(videos) >= limit {
			break
		}
		viewsText := strings.TrimSpace(item.ViewsText)
		if viewsText == "" && item.Views.String() != "" {
			viewsText = item.Views.String()
		}
		video := types.CompetingVideo{
			Title:               textutil.SanitizeUpstream(item.Title),
			Link:                textutil.SanitizeUpstream(item.Link),
			Channel:             textutil.SanitizeUpstream(item.Channel.Name),
			ViewCountText:       textutil.SanitizeUpstream(viewsText),
			SubscriberCountText: textutil.SanitizeUpstream(item.Channel.Subscribers),
			PublishedText:       textutil.SanitizeUpstream(item.PublishedDate),
			Thumbnail:           textutil.SanitizeUpstream(item.Thumbnail.Static),
			Description:         textutil.SanitizeUpstream(item.Description),
		}
		if at := textutil.ParseRelativeAge(video.PublishedText, now); !at.IsZero() {
			video.PublishedAt = &at
		}
		videos = append(videos, video)
	}

	c.log.Debug("Video search completed", "query", query, "results", len(videos))
	return videos, nil
}

func (c *client) get(ctx context.Context, path string) ([]byte, error) {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		var raw []byte
		if err == nil {
			raw, err = io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if err == nil && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
				err = &videoSearchHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
			}
		}
		if err == nil {
			return raw, nil
		}

		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			return nil, err
		}

		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 10*time.Second))
		c.log.Warn("Video search retrying",
			"attempt", attempt+1,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		time.Sleep(sleepFor)
		backoff *= 2
	}

	return nil, fmt.Errorf("unreachable retry loop")
}
