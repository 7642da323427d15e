// Package careers is a thin client for the careers platform REST API: the
// active pipeline descriptor, pipeline boards and application stage moves.
package careers

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/pipeboard/internal/auth"
)

const (
	DefaultAPIURL = "http://localhost:8085"
	userAgent     = "spigell/pipeboard"
	// Error bodies are attached to StatusError up to this many runes.
	maxErrorBody = 256
)

type Client struct {
	creds      auth.Credentials
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(logger *zap.Logger, creds auth.Credentials) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		creds:  creds,
		APIURL: DefaultAPIURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.APIURL, "/") + path
}
