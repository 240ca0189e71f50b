package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"social-scheduler/domain/model"
	"social-scheduler/domain/publisher"
)

const defaultBaseURL = "https://api.twitter.com"

// Client publishes tweets via the v2 API. There is no page/organization
// concept; the posting target is always the authenticated user.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
	}
}

// NewClientWithBase is used by tests to point the client at a fake server.
func NewClientWithBase(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

func (c *Client) FetchIdentity(ctx context.Context, accessToken string) (*publisher.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/2/users/me", nil)
	if err != nil {
		return nil, publisher.NewError(model.PlatformTwitter, publisher.KindTransient, "building request", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, publisher.NewError(model.PlatformTwitter, publisher.KindTransient, "request failed", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, body)
	}
	var me struct {
		Data struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &me); err != nil {
		return nil, publisher.NewError(model.PlatformTwitter, publisher.KindTransient, "parsing identity", err)
	}
	if me.Data.ID == "" {
		return nil, publisher.NewError(model.PlatformTwitter, publisher.KindNoTarget, "identity lookup returned no user", nil)
	}
	return &publisher.Identity{TargetID: me.Data.ID, DisplayName: me.Data.Name, Handle: me.Data.Username}, nil
}

func (c *Client) ResolveTarget(ctx context.Context, accessToken string) (string, error) {
	identity, err := c.FetchIdentity(ctx, accessToken)
	if err != nil {
		return "", err
	}
	return identity.TargetID, nil
}

func (c *Client) Publish(ctx context.Context, accessToken, targetID, content, mediaURL string) (string, error) {
	text := content
	if mediaURL != "" {
		text = content + " " + mediaURL
	}
	raw, _ := json.Marshal(map[string]string{"text": text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/2/tweets", bytes.NewReader(raw))
	if err != nil {
		return "", publisher.NewError(model.PlatformTwitter, publisher.KindTransient, "building publish request", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", publisher.NewError(model.PlatformTwitter, publisher.KindTransient, "publish request failed", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, body)
	}
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	_ = json.Unmarshal(body, &created)
	return created.Data.ID, nil
}

func classifyStatus(status int, body []byte) error {
	msg := fmt.Sprintf("status %d: %s", status, truncate(body))
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return publisher.NewError(model.PlatformTwitter, publisher.KindAuthorization, msg, nil)
	}
	return publisher.NewError(model.PlatformTwitter, publisher.KindTransient, msg, nil)
}

func truncate(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
