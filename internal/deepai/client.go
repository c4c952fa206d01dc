// Package deepai talks to the DeepAI text-to-image endpoint.
package deepai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL = "https://api.deepai.org"
	text2ImgPath   = "/api/text2img"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *resty.Client
	backoffs   []time.Duration
}

type text2ImgResponse struct {
	OutputURL string `json:"output_url"`
}

type Option func(*Client)

// WithBackoffs sets the waits between download attempts.
func WithBackoffs(backoffs ...time.Duration) Option {
	return func(c *Client) { c.backoffs = backoffs }
}

func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	c := &Client{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(apiKey),
		httpClient: resty.New().
			SetHeader("User-Agent", "genr8-backend/1.0").
			SetTimeout(timeout),
		backoffs: []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// GenerateImage submits prompt and returns the URL of the generated image.
// No request is issued when the key is missing or the prompt is blank.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrMissingCredential
	}
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Api-Key", c.apiKey).
		SetMultipartFormData(map[string]string{"text": prompt}).
		Post(c.baseURL + text2ImgPath)
	if err != nil {
		return "", &NetworkError{Err: err}
	}
	if !resp.IsSuccess() {
		return "", &HTTPError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var result text2ImgResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if result.OutputURL == "" {
		return "", ErrMalformedResponse
	}
	return result.OutputURL, nil
}

// DownloadFile fetches the bytes behind a generated image URL.
func (c *Client) DownloadFile(ctx context.Context, downloadURL string) ([]byte, string, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(downloadURL)
	if err != nil {
		return nil, "", &NetworkError{Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, "", &HTTPError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return resp.Body(), resp.Header().Get("Content-Type"), nil
}

// DownloadWithRetry retries DownloadFile with the client's backoff schedule.
func (c *Client) DownloadWithRetry(ctx context.Context, downloadURL string) ([]byte, string, error) {
	var (
		data        []byte
		contentType string
	)
	err := RetryWithBackoff(ctx, c.backoffs, func() error {
		var err error
		data, contentType, err = c.DownloadFile(ctx, downloadURL)
		return err
	})
	return data, contentType, err
}

// RetryWithBackoff runs fn once plus once per backoff entry, sleeping between
// attempts, until it succeeds or ctx is done.
func RetryWithBackoff(ctx context.Context, backoffs []time.Duration, fn func() error) error {
	attempts := len(backoffs) + 1

	var lastErr error
	for i := 0; i < attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if i == len(backoffs) {
			break
		}
		timer := time.NewTimer(backoffs[i])
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled after %d attempts: %w", i+1, ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
