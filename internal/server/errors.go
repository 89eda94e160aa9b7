package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sableworks/guildgate/internal/discord"
	leaderboarddomain "github.com/sableworks/guildgate/internal/leaderboard/domain"
	verificationdomain "github.com/sableworks/guildgate/internal/verification/domain"
	"gorm.io/gorm"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrTooManyRequest = errors.New("too_many_requests")
	ErrInternal       = errors.New("internal_error")
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ErrorHandlingMiddleware renders the last gin error after the handler
// chain when nothing has been written yet.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// mapError folds errors into the response taxonomy. Upstream auth
// faults keep the provider's diagnostic text; everything unknown is an
// opaque 500.
func mapError(err error) (int, errorPayload) {
	var exchangeErr *discord.TokenExchangeError
	if errors.As(err, &exchangeErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "upstream_auth_fault",
			Message: exchangeErr.Error(),
		}
	}
	var identityErr *discord.IdentityFetchError
	if errors.As(err, &identityErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "upstream_auth_fault",
			Message: identityErr.Error(),
		}
	}

	switch {
	case errors.Is(err, verificationdomain.ErrMissingCode):
		return http.StatusBadRequest, errorPayload{
			Type:    "client_input_fault",
			Message: err.Error(),
		}
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: "invalid request",
		}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, leaderboarddomain.ErrEntryNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrTooManyRequest):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the request logger's error fields.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	return payload.Type, payload.Type
}
