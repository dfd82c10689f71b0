package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"
)

// ScreenshotFetcher retrieves a screenshot by URL. Both the decoded image
// and the raw encoded bytes are returned: the OCR engine consumes the bytes
// directly while the shape detector works on the pixels.
type ScreenshotFetcher interface {
	FetchScreenshot(ctx context.Context, screenshotURL string) (image.Image, []byte, error)
}

// HTTPScreenshotFetcher implements ScreenshotFetcher over plain HTTP with
// connection pooling tuned for one-shot image downloads.
type HTTPScreenshotFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPScreenshotFetcher creates an HTTP screenshot fetcher. maxBytes
// bounds the response body; screenshots beyond it are rejected.
func NewHTTPScreenshotFetcher(maxBytes int64) *HTTPScreenshotFetcher {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	return &HTTPScreenshotFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxBytes: maxBytes,
	}
}

// FetchScreenshot downloads and decodes the screenshot. Transient failures
// (connection errors, 5xx) are retried up to three attempts with linear
// backoff; 4xx responses fail immediately.
func (h *HTTPScreenshotFetcher) FetchScreenshot(ctx context.Context, screenshotURL string) (image.Image, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, screenshotURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/png, image/jpeg, */*")
	req.Header.Set("User-Agent", "Go-Screen-Perception/1.0")

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		resp, err := h.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status code %d", resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				// Client errors will not improve on retry.
				return nil, nil, fmt.Errorf("failed to fetch screenshot: %w", lastErr)
			}
			continue
		}

		raw, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if int64(len(raw)) > h.maxBytes {
			return nil, nil, fmt.Errorf("screenshot exceeds the %d byte limit", h.maxBytes)
		}

		img, _, err := image.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode screenshot: %w", err)
		}
		return img, raw, nil
	}

	return nil, nil, fmt.Errorf("failed to fetch screenshot after 3 attempts: %w", lastErr)
}
