// Package queryclient provides the chat query adapter.
// Adapter implementing ports.QueryClient over HTTP.
package queryclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/0xcro3dile/polit/internal/domain/entities"
	"github.com/0xcro3dile/polit/internal/logging"
)

// DefaultURL is the query endpoint used when none is configured.
const DefaultURL = "http://localhost:8000/query"

// HTTPClient implements ports.QueryClient against a fixed query endpoint.
type HTTPClient struct {
	url    string
	client *http.Client
	logger *logging.Logger
}

// NewHTTPClient creates a query client. A nil httpClient means a client with
// no timeout; settlement is left entirely to the transport.
func NewHTTPClient(url string, httpClient *http.Client, logger *logging.Logger) *HTTPClient {
	if url == "" {
		url = DefaultURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &HTTPClient{
		url:    url,
		client: httpClient,
		logger: logger,
	}
}

// queryRequest is the query endpoint request body.
type queryRequest struct {
	Query string `json:"query"`
}

// Ask posts the query. Any status is accepted as long as the body decodes,
// so a server error with a JSON body yields a reply without a response field.
func (c *HTTPClient) Ask(ctx context.Context, query string) (*entities.QueryReply, error) {
	jsonData, err := json.Marshal(queryRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("query request failed", "url", c.url, "error", err)
		return nil, fmt.Errorf("calling query endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("query endpoint returned non-200", "status", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("query reply could not be read", "status", resp.StatusCode, "error", err)
		return nil, fmt.Errorf("reading response: %w", err)
	}

	reply, err := decodeReply(raw)
	if err != nil {
		c.logger.Warn("query reply did not decode", "status", resp.StatusCode, "error", err)
		return nil, err
	}

	c.logger.Debug("query answered", "status", resp.StatusCode, "has_response", reply.Response != nil)
	return reply, nil
}

// decodeReply fails only on unparseable or null bodies. A response field that
// is a number or true is rendered as text; anything else counts as absent.
func decodeReply(raw []byte) (*entities.QueryReply, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if v == nil {
		return nil, errors.New("decoding response: body is null")
	}

	reply := &entities.QueryReply{}
	fields, ok := v.(map[string]any)
	if !ok {
		return reply, nil
	}
	var text string
	switch r := fields["response"].(type) {
	case string:
		text = r
	case float64:
		if r != 0 {
			text = strconv.FormatFloat(r, 'f', -1, 64)
		}
	case bool:
		if r {
			text = "true"
		}
	}
	if text != "" {
		reply.Response = &text
	}
	return reply, nil
}
