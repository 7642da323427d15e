package careers

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/pipeboard/internal/utils"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	requestIDHeader = "X-Request-ID"
)

// getJSON makes a GET request and decodes the body into target.
func (c *Client) getJSON(ctx context.Context, url string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	req = c.setHeaders(req)

	return c.do(req, target)
}

// postJSON makes a POST request with a JSON body. target may be nil.
func (c *Client) postJSON(ctx context.Context, url string, payload any, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	return c.do(req, target)
}

func (c *Client) do(req *http.Request, target any) error {
	resp, err := c.request(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       utils.TruncateForLog(string(data), maxErrorBody),
		}
	}

	if target == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	return json.Unmarshal(data, target)
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("request_id", req.Header.Get(requestIDHeader)),
	)

	return c.HTTPClient.Do(req)
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	c.creds.Apply(req)
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set(requestIDHeader, uuid.NewString())

	return req
}
