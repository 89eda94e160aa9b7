package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sableworks/guildgate/internal/config"
	obstracing "github.com/sableworks/guildgate/internal/observability/tracing"
)

const (
	defaultTimeout = 10 * time.Second

	// Scopes requested during authorization: identify resolves the
	// user, guilds.join consents to the membership add.
	OAuthScope = "identify guilds.join"
)

// Client is a minimal Discord REST client covering the verification
// pipeline: OAuth code exchange, identity lookup, guild membership and
// role management. It is safe for concurrent use.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	redirectURI  string
	botToken     string
	httpClient   *http.Client
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.Discord.APIBase, "/"),
		clientID:     cfg.Discord.ClientID,
		clientSecret: cfg.Discord.ClientSecret,
		redirectURI:  cfg.Discord.RedirectURI,
		botToken:     cfg.Discord.BotToken,
		httpClient: obstracing.WrapHTTPClient(&http.Client{
			Timeout: defaultTimeout,
		}),
	}
}

// Identity is the remote user as reported by the identity endpoint.
// Immutable once fetched.
type Identity struct {
	ID       int64
	Username string
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

func (c *Client) botRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bot "+c.botToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func decodeSnowflakeID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed id %q: %w", raw, err)
	}
	return id, nil
}

func unmarshal(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
