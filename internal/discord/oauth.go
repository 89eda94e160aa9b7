package discord

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// AuthorizeURL builds the provider authorize redirect target for the
// login endpoint.
func (c *Client) AuthorizeURL() string {
	query := url.Values{}
	query.Set("client_id", c.clientID)
	query.Set("redirect_uri", c.redirectURI)
	query.Set("response_type", "code")
	query.Set("scope", OAuthScope)
	return c.baseURL + "/oauth2/authorize?" + query.Encode()
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}

// ExchangeCode exchanges a single-use authorization code for an access
// token. The token is returned to the caller and never stored or
// logged here.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURI)
	form.Set("scope", OAuthScope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return "", &TokenExchangeError{newAPIError("token exchange", status, []byte(err.Error()))}
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return "", &TokenExchangeError{newAPIError("token exchange", status, body)}
	}

	var token tokenResponse
	if err := unmarshal(body, &token); err != nil || strings.TrimSpace(token.AccessToken) == "" {
		return "", &TokenExchangeError{newAPIError("token exchange", status, []byte("response carried no access token"))}
	}
	return token.AccessToken, nil
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// FetchIdentity resolves the current user behind an access token.
func (c *Client) FetchIdentity(ctx context.Context, accessToken string) (Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/@me", nil)
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return Identity{}, &IdentityFetchError{newAPIError("identity fetch", status, []byte(err.Error()))}
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return Identity{}, &IdentityFetchError{newAPIError("identity fetch", status, body)}
	}

	var user userResponse
	if err := unmarshal(body, &user); err != nil {
		return Identity{}, &IdentityFetchError{newAPIError("identity fetch", status, body)}
	}
	id, err := decodeSnowflakeID(user.ID)
	if err != nil {
		return Identity{}, &IdentityFetchError{newAPIError("identity fetch", status, []byte(err.Error()))}
	}
	return Identity{ID: id, Username: user.Username}, nil
}

// BotIdentity authenticates the privileged bot credential. Used by the
// bot runtime at startup; failure means the credential is unusable.
func (c *Client) BotIdentity(ctx context.Context) (Identity, error) {
	req, err := c.botRequest(ctx, http.MethodGet, "/users/@me", nil)
	if err != nil {
		return Identity{}, err
	}

	status, body, err := c.do(req)
	if err != nil {
		return Identity{}, err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return Identity{}, newAPIError("bot identity", status, body)
	}

	var user userResponse
	if err := unmarshal(body, &user); err != nil {
		return Identity{}, err
	}
	id, err := decodeSnowflakeID(user.ID)
	if err != nil {
		return Identity{}, err
	}
	return Identity{ID: id, Username: user.Username}, nil
}
