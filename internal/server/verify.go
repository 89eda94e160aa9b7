package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	settingsdomain "github.com/sableworks/guildgate/internal/settings/domain"
)

// Index renders the landing page, with the verified identity when a
// session is present.
func (s *Server) Index(c *gin.Context) {
	identity, ok := s.sessions.Get(c)
	c.HTML(http.StatusOK, "index.html", gin.H{
		"LoggedIn": ok,
		"Username": identity.Username,
	})
}

// Login redirects the browser to the identity provider's authorize
// endpoint.
func (s *Server) Login(c *gin.Context) {
	c.Redirect(http.StatusFound, s.discord.AuthorizeURL())
}

// Callback drives the verification pipeline: token exchange, identity
// fetch, membership enrollment, role-grant hand-off. The success page
// is rendered before the role grant runs; grant failures are never
// visible here.
func (s *Server) Callback(c *gin.Context) {
	code := c.Query("code")

	identity, err := s.verificationSvc.Verify(c.Request.Context(), code)
	if err != nil {
		status, payload := mapError(err)
		c.HTML(status, "error.html", gin.H{
			"Message": payload.Message,
		})
		return
	}

	if err := s.sessions.Set(c, *identity); err != nil {
		AbortWithError(c, err)
		return
	}

	welcome, _ := s.settingsSvc.Get(c.Request.Context(), settingsdomain.KeyWelcomeMessage)
	c.HTML(http.StatusOK, "success.html", gin.H{
		"Username": identity.Username,
		"Welcome":  welcome,
	})
}

// Logout clears the session cookie.
func (s *Server) Logout(c *gin.Context) {
	s.sessions.Clear(c)
	c.Redirect(http.StatusFound, "/")
}
