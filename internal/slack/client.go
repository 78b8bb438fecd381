package slack

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slack-go/slack"
)

// ErrMissingToken is returned when no bot token is configured.
var ErrMissingToken = errors.New("slack: missing bot token")

// Client wraps the Slack Web API for the calls the bot makes.
type Client struct {
	api *slack.Client
}

// NewClient creates a client for token. Extra options are passed to slack.New.
func NewClient(token string, opts ...slack.Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	return &Client{api: slack.New(token, opts...)}, nil
}

// UserName returns the Slack handle for userID (users.info).
func (c *Client) UserName(ctx context.Context, userID string) (string, error) {
	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("users.info %s: %w", userID, err)
	}
	return user.Name, nil
}

// PostMessageContext posts to channelID.
func (c *Client) PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	return c.api.PostMessageContext(ctx, channelID, options...)
}

// AuthTest verifies the token and returns the bot's user ID.
func (c *Client) AuthTest(ctx context.Context) (string, error) {
	resp, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return "", fmt.Errorf("auth.test: %w", err)
	}
	return resp.UserID, nil
}
