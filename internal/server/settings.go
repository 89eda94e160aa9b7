package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ListSettings returns all admin settings.
func (s *Server) ListSettings(c *gin.Context) {
	all, err := s.settingsSvc.All(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": all})
}

// UpdateSetting upserts one setting.
func (s *Server) UpdateSetting(c *gin.Context) {
	var req struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Key) == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.settingsSvc.Set(c.Request.Context(), req.Key, req.Value); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
