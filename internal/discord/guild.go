package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Guild is the managed community space.
type Guild struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Role is a named permission tag within a guild.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Member is a user's membership record within a guild.
type Member struct {
	User  userResponse `json:"user"`
	Nick  string       `json:"nick"`
	Roles []string     `json:"roles"`
}

// DisplayName is the member's nickname, falling back to the username.
func (m Member) DisplayName() string {
	if m.Nick != "" {
		return m.Nick
	}
	return m.User.Username
}

// GetGuild resolves a guild by id using the bot credential.
func (c *Client) GetGuild(ctx context.Context, guildID string) (Guild, error) {
	req, err := c.botRequest(ctx, http.MethodGet, "/guilds/"+url.PathEscape(guildID), nil)
	if err != nil {
		return Guild{}, err
	}

	status, body, err := c.do(req)
	if err != nil {
		return Guild{}, err
	}
	if status != http.StatusOK {
		return Guild{}, newAPIError("guild fetch", status, body)
	}

	var guild Guild
	if err := unmarshal(body, &guild); err != nil {
		return Guild{}, err
	}
	return guild, nil
}

// GetGuildRoles lists the guild's roles using the bot credential.
func (c *Client) GetGuildRoles(ctx context.Context, guildID string) ([]Role, error) {
	req, err := c.botRequest(ctx, http.MethodGet, "/guilds/"+url.PathEscape(guildID)+"/roles", nil)
	if err != nil {
		return nil, err
	}

	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, newAPIError("role list", status, body)
	}

	var roles []Role
	if err := unmarshal(body, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// AddGuildMember joins a user to the guild. The bot credential
// authorizes the addition; the user's access token proves consent.
// Returns true when the membership was newly created, false when the
// user was already a member. Both are success: a returning user
// re-verifying must not error.
func (c *Client) AddGuildMember(ctx context.Context, guildID string, userID int64, accessToken string) (bool, error) {
	payload, err := json.Marshal(map[string]string{"access_token": accessToken})
	if err != nil {
		return false, err
	}

	path := fmt.Sprintf("/guilds/%s/members/%d", url.PathEscape(guildID), userID)
	req, err := c.botRequest(ctx, http.MethodPut, path, bytes.NewReader(payload))
	if err != nil {
		return false, err
	}

	status, body, err := c.do(req)
	if err != nil {
		return false, err
	}
	switch status {
	case http.StatusCreated:
		return true, nil
	case http.StatusNoContent:
		return false, nil
	default:
		return false, newAPIError("member add", status, body)
	}
}

// GetGuildMember resolves a user's membership record. A 404 maps to
// ErrMemberNotFound so callers can distinguish the propagation-delay
// case from transport faults.
func (c *Client) GetGuildMember(ctx context.Context, guildID string, userID int64) (Member, error) {
	path := fmt.Sprintf("/guilds/%s/members/%d", url.PathEscape(guildID), userID)
	req, err := c.botRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return Member{}, err
	}

	status, body, err := c.do(req)
	if err != nil {
		return Member{}, err
	}
	switch status {
	case http.StatusOK:
		var member Member
		if err := unmarshal(body, &member); err != nil {
			return Member{}, err
		}
		return member, nil
	case http.StatusNotFound:
		return Member{}, ErrMemberNotFound
	default:
		return Member{}, newAPIError("member fetch", status, body)
	}
}

// AddMemberRole attaches a role to a member. Idempotent on the remote
// side: re-applying an already-held role is a no-op success.
func (c *Client) AddMemberRole(ctx context.Context, guildID string, userID int64, roleID, reason string) error {
	path := fmt.Sprintf("/guilds/%s/members/%d/roles/%s", url.PathEscape(guildID), userID, url.PathEscape(roleID))
	req, err := c.botRequest(ctx, http.MethodPut, path, nil)
	if err != nil {
		return err
	}
	if reason != "" {
		req.Header.Set("X-Audit-Log-Reason", reason)
	}

	status, body, err := c.do(req)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return newAPIError("role add", status, body)
	}
	return nil
}
