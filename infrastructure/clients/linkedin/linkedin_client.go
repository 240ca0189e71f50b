package linkedin

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

const defaultBaseURL = "https://api.linkedin.com"

// Client publishes UGC posts on LinkedIn. When the member administers an
// organization the post is authored as that organization, otherwise as the
// member themselves.
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
	body, err := c.get(ctx, accessToken, "/v2/userinfo")
	if err != nil {
		return nil, err
	}
	var info struct {
		Sub  string `json:"sub"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, publisher.NewError(model.PlatformLinkedIn, publisher.KindTransient, "parsing userinfo", err)
	}
	if info.Sub == "" {
		return nil, publisher.NewError(model.PlatformLinkedIn, publisher.KindNoTarget, "userinfo returned no member id", nil)
	}
	return &publisher.Identity{
		TargetID:    "urn:li:person:" + info.Sub,
		DisplayName: info.Name,
	}, nil
}

// ResolveTarget prefers an administered organization over the personal
// profile, matching how company pages are posted to.
func (c *Client) ResolveTarget(ctx context.Context, accessToken string) (string, error) {
	body, err := c.get(ctx, accessToken, "/v2/organizationAcls?q=roleAssignee&role=ADMINISTRATOR&state=APPROVED")
	if err == nil {
		var acls struct {
			Elements []struct {
				Organization string `json:"organization"`
			} `json:"elements"`
		}
		if json.Unmarshal(body, &acls) == nil && len(acls.Elements) > 0 && acls.Elements[0].Organization != "" {
			return acls.Elements[0].Organization, nil
		}
	}
	identity, err := c.FetchIdentity(ctx, accessToken)
	if err != nil {
		return "", err
	}
	return identity.TargetID, nil
}

func (c *Client) Publish(ctx context.Context, accessToken, targetID, content, mediaURL string) (string, error) {
	media := []interface{}{}
	category := "NONE"
	if mediaURL != "" {
		category = "ARTICLE"
		media = append(media, map[string]interface{}{
			"status":      "READY",
			"originalUrl": mediaURL,
		})
	}
	payload := map[string]interface{}{
		"author":         targetID,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": map[string]interface{}{
				"shareCommentary":    map[string]string{"text": content},
				"shareMediaCategory": category,
				"media":              media,
			},
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}
	raw, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/ugcPosts", bytes.NewReader(raw))
	if err != nil {
		return "", publisher.NewError(model.PlatformLinkedIn, publisher.KindTransient, "building publish request", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", publisher.NewError(model.PlatformLinkedIn, publisher.KindTransient, "publish request failed", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, body)
	}
	if id := resp.Header.Get("X-RestLi-Id"); id != "" {
		return id, nil
	}
	var created struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &created)
	return created.ID, nil
}

func (c *Client) get(ctx context.Context, accessToken, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, publisher.NewError(model.PlatformLinkedIn, publisher.KindTransient, "building request", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, publisher.NewError(model.PlatformLinkedIn, publisher.KindTransient, "request failed", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, body)
	}
	return body, nil
}

func classifyStatus(status int, body []byte) error {
	msg := fmt.Sprintf("status %d: %s", status, truncate(body))
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return publisher.NewError(model.PlatformLinkedIn, publisher.KindAuthorization, msg, nil)
	default:
		return publisher.NewError(model.PlatformLinkedIn, publisher.KindTransient, msg, nil)
	}
}

func truncate(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
