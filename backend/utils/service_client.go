package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"
)

// ServiceClient calls another service's JSON API through a circuit breaker,
// forwarding the caller's bearer token.
type ServiceClient struct {
	Name    string
	BaseURL string
	HTTP    *http.Client
	Breaker *gobreaker.CircuitBreaker
	Retry   RetryPolicy
}

func NewServiceClient(name, baseURL string, httpClient *http.Client, breaker *gobreaker.CircuitBreaker) *ServiceClient {
	return &ServiceClient{
		Name:    name,
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    httpClient,
		Breaker: breaker,
		Retry:   DefaultRetryPolicy(),
	}
}

// Do sends one request and decodes the envelope's data into out (when non-nil).
// 4xx answers are returned as *RemoteError and never retried; transport
// failures and 5xx answers are retried per Retry.
func (c *ServiceClient) Do(ctx context.Context, method, path, token string, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("%w: encode request: %v", ErrPermanent, err)
		}
	}

	return Retry(ctx, c.Retry, func(ctx context.Context) error {
		result, err := c.Breaker.Execute(func() (interface{}, error) {
			return c.roundTrip(ctx, method, path, token, payload)
		})
		if err != nil {
			var remote *RemoteError
			if errors.As(err, &remote) && remote.StatusCode < 500 {
				return errors.Join(ErrPermanent, err)
			}
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return errors.Join(ErrPermanent, fmt.Errorf("%s unavailable: %w", c.Name, err))
			}
			return err
		}
		if out == nil {
			return nil
		}
		raw := result.(json.RawMessage)
		if len(raw) == 0 || string(raw) == "null" {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return errors.Join(ErrPermanent, fmt.Errorf("decode %s response: %w", c.Name, err))
		}
		return nil
	})
}

func (c *ServiceClient) roundTrip(ctx context.Context, method, path, token string, payload []byte) (json.RawMessage, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, errors.Join(ErrPermanent, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s %s: %w", c.Name, method, path, err)
	}
	defer resp.Body.Close()

	data, err := DecodeResponse[json.RawMessage](resp)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return *data, nil
}
