package stub

import (
	"context"

	"social-scheduler/domain/model"
	"social-scheduler/domain/publisher"
)

// Client is the documented placeholder for platforms without a wire
// implementation yet. Every capability reports unsupported; the dispatcher
// degrades the affected post to failed instead of aborting the batch.
type Client struct {
	platform model.Platform
}

func NewClient(platform model.Platform) *Client {
	return &Client{platform: platform}
}

func (c *Client) err() error {
	return publisher.NewError(c.platform, publisher.KindUnsupported, "platform adapter not implemented", nil)
}

func (c *Client) FetchIdentity(ctx context.Context, accessToken string) (*publisher.Identity, error) {
	return nil, c.err()
}

func (c *Client) ResolveTarget(ctx context.Context, accessToken string) (string, error) {
	return "", c.err()
}

func (c *Client) Publish(ctx context.Context, accessToken, targetID, content, mediaURL string) (string, error) {
	return "", c.err()
}
