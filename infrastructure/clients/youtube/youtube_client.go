package youtube

import (
	"context"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"social-scheduler/domain/model"
	"social-scheduler/domain/publisher"
)

// Client resolves the connected YouTube channel identity. Publishing is
// deliberately unsupported: the Data API offers no endpoint for text/community
// posts, so the adapter is a documented stub for the publish capability and
// the dispatcher fails such posts without crashing the batch.
type Client struct {
	newService func(ctx context.Context, accessToken string) (*yt.Service, error)
}

func NewClient() *Client {
	return &Client{
		newService: func(ctx context.Context, accessToken string) (*yt.Service, error) {
			src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
			return yt.NewService(ctx, option.WithTokenSource(src))
		},
	}
}

func (c *Client) FetchIdentity(ctx context.Context, accessToken string) (*publisher.Identity, error) {
	svc, err := c.newService(ctx, accessToken)
	if err != nil {
		return nil, publisher.NewError(model.PlatformYouTube, publisher.KindTransient, "initializing youtube service", err)
	}
	resp, err := svc.Channels.List([]string{"snippet"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return nil, publisher.NewError(model.PlatformYouTube, publisher.KindAuthorization, "listing own channel", err)
	}
	if len(resp.Items) == 0 {
		return nil, publisher.NewError(model.PlatformYouTube, publisher.KindNoTarget, "no channel for this account", nil)
	}
	ch := resp.Items[0]
	identity := &publisher.Identity{TargetID: ch.Id}
	if ch.Snippet != nil {
		identity.DisplayName = ch.Snippet.Title
		identity.Handle = ch.Snippet.CustomUrl
	}
	return identity, nil
}

func (c *Client) ResolveTarget(ctx context.Context, accessToken string) (string, error) {
	identity, err := c.FetchIdentity(ctx, accessToken)
	if err != nil {
		return "", err
	}
	return identity.TargetID, nil
}

func (c *Client) Publish(ctx context.Context, accessToken, targetID, content, mediaURL string) (string, error) {
	return "", publisher.NewError(model.PlatformYouTube, publisher.KindUnsupported, "youtube text posts are not supported by the Data API", nil)
}
