package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bakkerme/reddit-proxy/internal/sources/reddit"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeInvalidRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{
		Success: false,
		Error:   "Invalid request",
		Message: message,
	})
}

// writeFetchError maps a classified fetch failure onto the client-visible
// status and payload. Both the single-source and multi-source handlers go
// through here, so the mapping cannot drift between them.
func (s *Server) writeFetchError(c echo.Context, err error) error {
	var fetchErr *reddit.FetchError
	if !errors.As(err, &fetchErr) {
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Success: false,
			Error:   "Server error",
			Message: err.Error(),
		})
	}

	switch fetchErr.Classification {
	case reddit.ClassificationBlocked:
		return c.JSON(http.StatusTooManyRequests, errorResponse{
			Success: false,
			Error:   "REDDIT_BLOCKED",
			Message: fetchErr.Message,
			Details: fetchErr.Detail,
		})
	case reddit.ClassificationUpstream:
		status := fetchErr.StatusCode
		if status < 400 {
			status = http.StatusBadGateway
		}
		return c.JSON(status, errorResponse{
			Success: false,
			Error:   "Reddit API error",
			Message: fetchErr.Message,
			Details: fetchErr.Detail,
		})
	case reddit.ClassificationTimeout:
		return c.JSON(http.StatusRequestTimeout, errorResponse{
			Success: false,
			Error:   "Timeout",
			Message: fetchErr.Message,
		})
	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Success: false,
			Error:   "Server error",
			Message: fetchErr.Message,
		})
	}
}
