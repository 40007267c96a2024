package helper

import (
	"errors"
	"net/http"

	"todosync/internal/core/domain"
	"todosync/internal/core/model/response"

	"github.com/gin-gonic/gin"
)

const (
	MsgUnauthorized     = "Unauthorized: No token provided or incorrect format."
	MsgTokenExpired     = "Unauthorized: Token expired."
	MsgInvalidToken     = "Forbidden: Invalid token."
	MsgNotOwner         = "Forbidden: You do not own this todo."
	MsgTodoNotFound     = "Todo not found."
	MsgTodoDeleted      = "Todo deleted successfully."
	MsgNothingPending   = "No pending todos to summarize."
	MsgGenerationFailed = "Failed to generate summary with AI."
	MsgDeliveryFailed   = "Failed to send summary to Slack."
	MsgSummarizeFailed  = "Failed to process summarize request."
	MsgInvalidJSON      = "Invalid JSON body."
	MsgRunning          = "Todo API is running!"
	MsgInternalError    = "Internal server error."
	MsgAddTodoFailed    = "Failed to add todo."
	MsgFetchTodosFailed = "Failed to fetch todos."
	MsgUpdateTodoFailed = "Failed to update todo."
	MsgDeleteTodoFailed = "Failed to delete todo."
)

func SendSuccess(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, data)
}

func SendMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, response.MessageResponse{Message: message})
}

func SendError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, response.ErrorResponse{Error: message})
}

func SendBadRequestError(c *gin.Context, message string) {
	SendError(c, http.StatusBadRequest, message)
}

func SendNotFoundError(c *gin.Context, message string) {
	SendError(c, http.StatusNotFound, message)
}

func SendInternalError(c *gin.Context, message string) {
	SendError(c, http.StatusInternalServerError, message)
}

// SendAuthError answers 401 for missing, malformed or expired credentials and 403 for invalid ones.
func SendAuthError(c *gin.Context, err error) {
	var authErr *domain.AuthError
	if !errors.As(err, &authErr) {
		SendError(c, http.StatusForbidden, MsgInvalidToken)
		return
	}

	switch authErr.Reason {
	case domain.AuthMissingCredential, domain.AuthMalformedCredential:
		SendError(c, http.StatusUnauthorized, MsgUnauthorized)
	case domain.AuthExpiredCredential:
		SendError(c, http.StatusUnauthorized, MsgTokenExpired)
	default:
		SendError(c, http.StatusForbidden, MsgInvalidToken)
	}
}

// SendDomainError maps err onto the HTTP error taxonomy. fallback is the message used for
// storage and unexpected failures so internal details never reach the client. It returns the
// status it wrote.
func SendDomainError(c *gin.Context, err error, fallback string) int {
	var (
		authErr       *domain.AuthError
		validationErr *domain.ValidationError
		upstreamErr   *domain.UpstreamError
	)

	status := http.StatusInternalServerError

	switch {
	case errors.As(err, &authErr):
		SendAuthError(c, err)
		return c.Writer.Status()
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		SendError(c, status, validationErr.Message)
	case errors.Is(err, domain.ErrTodoNotFound):
		status = http.StatusNotFound
		SendNotFoundError(c, MsgTodoNotFound)
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
		SendError(c, status, MsgNotOwner)
	case errors.Is(err, domain.ErrNothingToSummarize):
		status = http.StatusNotFound
		SendMessage(c, status, MsgNothingPending)
	case errors.As(err, &upstreamErr):
		message := MsgGenerationFailed
		if upstreamErr.Stage == domain.StageDelivery {
			message = MsgDeliveryFailed
		}
		SendInternalError(c, message)
	default:
		if fallback == "" {
			fallback = MsgInternalError
		}
		SendInternalError(c, fallback)
	}

	return status
}
