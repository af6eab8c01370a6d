// ABOUTME: Transparent access-token refresh for the SafePulse API client
// ABOUTME: One refresh and one replay per request; failures clear the session

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// refreshOnUnauthorized is the response stage that recovers from an
// expired access token.
//
//	non-401                       -> passed through
//	401, not retried              -> mark retried, refresh, replay once
//	401, retried                  -> passed through
//	refresh failed                -> session cleared, RefreshError returned
func (c *Client) refreshOnUnauthorized(ctx context.Context, req *Request, resp *Response, err error) (*Response, error) {
	if err != nil || resp.StatusCode != http.StatusUnauthorized || req.Retried {
		return resp, err
	}
	req.Retried = true

	access, err := c.refreshAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	retry := req.Clone()
	retry.Header.Set("Authorization", "Bearer "+access)
	return c.replay(ctx, retry)
}

// replay sends a retried request through the request stages and the
// transport only. The response stages after this one still run once, in
// the outer Do, on the replayed response.
func (c *Client) replay(ctx context.Context, req *Request) (*Response, error) {
	for _, stage := range c.requestStages {
		req = stage(ctx, req)
	}
	return c.send(ctx, req)
}

// refreshAccessToken exchanges the stored refresh token for a new access
// token. Concurrent callers holding the same refresh token share a single
// refresh call and its outcome. The shared call is detached from any one
// caller's context; each caller stops waiting when its own context ends.
func (c *Client) refreshAccessToken(ctx context.Context) (string, error) {
	refresh := c.store.RefreshToken()
	shared := context.WithoutCancel(ctx)

	ch := c.refreshGroup.DoChan(refresh, func() (interface{}, error) {
		access, err := c.postRefresh(shared, refresh)
		if err == nil {
			err = c.store.SetAccessToken(access)
		}
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		if err != nil {
			refreshErr := &RefreshError{Err: err}
			c.expireSession(refreshErr)
			return "", refreshErr
		}
		c.logger.Info("Access token refreshed")
		return access, nil
	})

	select {
	case <-ctx.Done():
		return "", c.handleRequestError(ctx, ctx.Err())
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("Joined in-flight token refresh")
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// postRefresh calls the refresh endpoint directly on the HTTP client so the
// call bypasses the pipeline.
func (c *Client) postRefresh(ctx context.Context, refresh string) (string, error) {
	if refresh == "" {
		return "", ErrNoRefreshToken
	}

	body, err := json.Marshal(refreshRequest{Refresh: refresh})
	if err != nil {
		return "", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RefreshPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", c.handleRequestError(ctx, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return "", newAPIError(
			&Request{Method: http.MethodPost, Path: RefreshPath},
			&Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: data},
		)
	}

	var out refreshResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("invalid refresh response: %w", err)
	}
	if out.Access == "" {
		return "", errors.New("refresh response has no access token")
	}
	return out.Access, nil
}

// expireSession clears the session and notifies subscribers.
func (c *Client) expireSession(cause error) {
	if err := c.store.Logout(); err != nil {
		c.logger.Error("Failed to clear session", "error", err)
	}
	c.logger.Warn("Session expired", "error", cause)

	c.mu.Lock()
	handlers := append([]func(error){}, c.expiredHandlers...)
	c.mu.Unlock()

	for _, fn := range handlers {
		fn(cause)
	}
}
