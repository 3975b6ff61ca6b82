package reference

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// HTTPSource fetches documents from an HTTP endpoint. When DataPath is set
// the document is the JSON value found at that path in the response body
type HTTPSource struct {
	client   *http.Client
	baseURL  string
	dataPath string
}

const (
	defaultHTTPTimeout = 10 * time.Second
	maxResponseSize    = 1 << 20
)

// NewHTTPSource creates an HTTPSource rooted at baseURL
func NewHTTPSource(baseURL, dataPath string) *HTTPSource {
	return &HTTPSource{
		client:   &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		dataPath: dataPath,
	}
}

func (s *HTTPSource) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// Fetch retrieves baseURL/key
func (s *HTTPSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, s.baseURL+"/"+key, nil,
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: %s returned %d",
			ErrUnavailable, key, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}
	if s.dataPath == "" {
		return body, nil
	}
	res := gjson.GetBytes(body, s.dataPath)
	if !res.Exists() {
		return nil, fmt.Errorf("%w: %s has no %q",
			ErrNotFound, key, s.dataPath)
	}
	return []byte(res.Raw), nil
}
