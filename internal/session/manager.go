package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sableworks/guildgate/internal/config"
	"github.com/sableworks/guildgate/internal/verification/domain"
)

const DefaultCookieName = "_gg_session"

// payload is the signed cookie body. The remote identity is immutable
// once fetched; the session only caches it across requests.
type payload struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	IssuedAt int64  `json:"iat"`
	Expires  int64  `json:"exp"`
}

// Manager signs and verifies the web session cookie. Sessions hold the
// verified identity only; access tokens are never stored here.
type Manager struct {
	cookieName string
	secure     bool
	secret     []byte
	ttl        time.Duration
}

func NewManager(cfg config.Config) *Manager {
	return &Manager{
		cookieName: DefaultCookieName,
		secure:     cfg.AuthCookieSecure,
		secret:     []byte(cfg.SessionSecret),
		ttl:        cfg.SessionTTL,
	}
}

func (m *Manager) CookieName() string {
	return m.cookieName
}

// Set stores the verified identity in a signed cookie.
func (m *Manager) Set(c *gin.Context, identity domain.Identity) error {
	now := time.Now().UTC()
	body, err := json.Marshal(payload{
		UserID:   identity.UserID,
		Username: identity.Username,
		IssuedAt: now.Unix(),
		Expires:  now.Add(m.ttl).Unix(),
	})
	if err != nil {
		return err
	}

	encoded := base64.RawURLEncoding.EncodeToString(body)
	value := encoded + "." + m.sign(encoded)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, value, int(m.ttl.Seconds()), "/", "", m.secure, true)
	return nil
}

// Get returns the session identity when the cookie is present, signed
// correctly and not expired.
func (m *Manager) Get(c *gin.Context) (domain.Identity, bool) {
	raw, err := c.Cookie(m.cookieName)
	if err != nil || strings.TrimSpace(raw) == "" {
		return domain.Identity{}, false
	}

	encoded, signature, found := strings.Cut(raw, ".")
	if !found || !hmac.Equal([]byte(m.sign(encoded)), []byte(signature)) {
		return domain.Identity{}, false
	}

	body, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return domain.Identity{}, false
	}
	var data payload
	if err := json.Unmarshal(body, &data); err != nil {
		return domain.Identity{}, false
	}
	if data.Expires <= time.Now().UTC().Unix() {
		return domain.Identity{}, false
	}
	return domain.Identity{UserID: data.UserID, Username: data.Username}, true
}

func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, "", -1, "/", "", m.secure, true)
}

func (m *Manager) sign(encoded string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
