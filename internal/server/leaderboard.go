package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sableworks/guildgate/internal/leaderboard/domain"
)

// ListLeaderboard returns the top standings. Public read.
func (s *Server) ListLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	standings, err := s.leaderboardSvc.Top(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"standings": standings})
}

// RecordLeaderboardEntry scores an activity for the session user.
func (s *Server) RecordLeaderboardEntry(c *gin.Context) {
	identity, ok := SessionIdentity(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req struct {
		Score int64 `json:"score"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	entry, err := s.leaderboardSvc.Record(c.Request.Context(), domain.RecordRequest{
		UserID:   identity.UserID,
		Username: identity.Username,
		Score:    req.Score,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// DeleteLeaderboardEntries removes a user's rows. Users may only
// delete their own.
func (s *Server) DeleteLeaderboardEntries(c *gin.Context) {
	identity, ok := SessionIdentity(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if userID != identity.UserID {
		AbortWithError(c, ErrForbidden)
		return
	}

	if err := s.leaderboardSvc.DeleteByUser(c.Request.Context(), userID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
