package saleor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"saleor-stripe-app/internal/config"

	"github.com/pkg/errors"
)

const defaultTimeoutMs = 10_000

type graphQLRequest struct {
	Query     string `json:"query"`
	Variables any    `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// GraphQLErrors is returned when Saleor answers with a top level errors list.
type GraphQLErrors []string

func (e GraphQLErrors) Error() string {
	return fmt.Sprintf("saleor graphql errors: %v", []string(e))
}

// Client talks to the GraphQL API of any Saleor instance the app is installed in.
type Client struct {
	client *http.Client
	logger *slog.Logger
}

func NewClient(cfg config.Saleor, logger *slog.Logger) *Client {
	timeoutMs := cfg.TimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = defaultTimeoutMs
	}
	return &Client{
		client: &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
		logger: logger,
	}
}

func (c *Client) execute(ctx context.Context, apiURL, token, query string, variables, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return errors.Wrap(err, "marshalling graphql request")
	}

	respBody, err := c.post(ctx, apiURL, token, body)
	if err != nil {
		return err
	}

	var resp graphQLResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return errors.Wrap(err, "decoding graphql response")
	}
	if len(resp.Errors) > 0 {
		messages := make(GraphQLErrors, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			messages = append(messages, e.Message)
		}
		return messages
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(resp.Data, out), "decoding graphql data")
}

func (c *Client) post(ctx context.Context, url, token string, body []byte) ([]byte, error) {
	c.logger.DebugContext(ctx, "Sending graphql request", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		c.logger.ErrorContext(ctx, "Error creating request", "error", err)
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "Error sending graphql request", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.ErrorContext(ctx, "Error reading response body", "error", err)
		return nil, err
	}

	c.logger.DebugContext(ctx, "Received graphql response", "status", resp.Status)

	if resp.StatusCode >= 400 {
		c.logger.WarnContext(ctx, "Received error response", "status", resp.Status)
		return nil, fmt.Errorf("error response: %s", resp.Status)
	}

	return respBody, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "Error fetching", "url", url, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("error response: %s", resp.Status)
	}
	return body, nil
}
