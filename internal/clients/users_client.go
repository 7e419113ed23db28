package clients

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// UsersClient talks to the remote Users service.
type UsersClient struct {
	baseURL string
	client  *http.Client
}

// NewUsersClient creates a new UsersClient. A zero timeout falls back to
// DefaultTimeout.
func NewUsersClient(baseURL string, timeout time.Duration) *UsersClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &UsersClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Exists checks whether a user exists in the Users service. A transport
// failure or timeout surfaces as ErrUnavailable, never as "user absent".
func (c *UsersClient) Exists(ctx context.Context, userID, token string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+userID, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build users request: %w", err)
	}
	setAuthHeader(req, token)

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("users service: %w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("users service: %w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}
}
