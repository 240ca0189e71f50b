package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"social-scheduler/domain/model"
	"social-scheduler/domain/publisher"
)

const defaultBaseURL = "https://graph.facebook.com/v19.0"

// Client publishes to a Facebook page feed. Posting requires a page token;
// UpgradeToken swaps the short-lived user token from the OAuth exchange for
// the long-lived token of the first administered page.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
}

func NewClient(clientID, clientSecret string) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		baseURL:      defaultBaseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// NewClientWithBase is used by tests to point the client at a fake server.
func NewClientWithBase(baseURL, clientID, clientSecret string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{httpClient: httpClient, baseURL: baseURL, clientID: clientID, clientSecret: clientSecret}
}

// FetchIdentity describes the token holder. With a page token this is the
// page itself, which is also the posting target.
func (c *Client) FetchIdentity(ctx context.Context, accessToken string) (*publisher.Identity, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/me?fields=id,name&access_token=%s", c.baseURL, url.QueryEscape(accessToken)))
	if err != nil {
		return nil, err
	}
	var me struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &me); err != nil {
		return nil, publisher.NewError(model.PlatformFacebook, publisher.KindTransient, "parsing identity", err)
	}
	if me.ID == "" {
		return nil, publisher.NewError(model.PlatformFacebook, publisher.KindNoTarget, "identity lookup returned no id", nil)
	}
	return &publisher.Identity{TargetID: me.ID, DisplayName: me.Name}, nil
}

func (c *Client) ResolveTarget(ctx context.Context, accessToken string) (string, error) {
	identity, err := c.FetchIdentity(ctx, accessToken)
	if err != nil {
		return "", err
	}
	return identity.TargetID, nil
}

func (c *Client) Publish(ctx context.Context, accessToken, targetID, content, mediaURL string) (string, error) {
	form := url.Values{}
	form.Set("message", content)
	if mediaURL != "" {
		form.Set("link", mediaURL)
	}
	form.Set("access_token", accessToken)

	postURL := fmt.Sprintf("%s/%s/feed", c.baseURL, url.PathEscape(targetID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, postURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", publisher.NewError(model.PlatformFacebook, publisher.KindTransient, "building publish request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", publisher.NewError(model.PlatformFacebook, publisher.KindTransient, "publish request failed", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, body)
	}
	var created struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &created)
	return created.ID, nil
}

// UpgradeToken exchanges the short-lived user token for a long-lived one,
// then selects the first administered page and returns its posting token.
func (c *Client) UpgradeToken(ctx context.Context, accessToken string) (string, time.Time, error) {
	llURL := fmt.Sprintf("%s/oauth/access_token?grant_type=fb_exchange_token&client_id=%s&client_secret=%s&fb_exchange_token=%s",
		c.baseURL, url.QueryEscape(c.clientID), url.QueryEscape(c.clientSecret), url.QueryEscape(accessToken))
	body, err := c.get(ctx, llURL)
	if err != nil {
		return "", time.Time{}, err
	}
	var ll struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &ll); err != nil || ll.AccessToken == "" {
		return "", time.Time{}, publisher.NewError(model.PlatformFacebook, publisher.KindTransient, "parsing long-lived token", err)
	}
	// Facebook long-lived tokens default to ~60 days when expires_in is omitted.
	expiresIn := ll.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 60 * 24 * 3600
	}
	expiresAt := time.Now().Add(time.Duration(expiresIn) * time.Second).UTC()

	pagesURL := fmt.Sprintf("%s/me/accounts?access_token=%s", c.baseURL, url.QueryEscape(ll.AccessToken))
	body, err = c.get(ctx, pagesURL)
	if err != nil {
		return "", time.Time{}, err
	}
	var pages struct {
		Data []struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &pages); err != nil {
		return "", time.Time{}, publisher.NewError(model.PlatformFacebook, publisher.KindTransient, "parsing pages list", err)
	}
	if len(pages.Data) == 0 {
		return "", time.Time{}, publisher.NewError(model.PlatformFacebook, publisher.KindNoTarget, "no postable pages for this account", nil)
	}
	return pages.Data[0].AccessToken, expiresAt, nil
}

func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, publisher.NewError(model.PlatformFacebook, publisher.KindTransient, "building request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, publisher.NewError(model.PlatformFacebook, publisher.KindTransient, "request failed", err)
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
	// Graph API reports expired/revoked tokens as 400 with an OAuthException.
	if status == http.StatusUnauthorized || status == http.StatusForbidden ||
		(status == http.StatusBadRequest && strings.Contains(string(body), "OAuthException")) {
		return publisher.NewError(model.PlatformFacebook, publisher.KindAuthorization, msg, nil)
	}
	return publisher.NewError(model.PlatformFacebook, publisher.KindTransient, msg, nil)
}

func truncate(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
