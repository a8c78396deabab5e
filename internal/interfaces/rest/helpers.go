package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jroneil/MI-Tool/internal/interfaces/middleware"
	"github.com/jroneil/MI-Tool/pkg/auth"
	"github.com/jroneil/MI-Tool/pkg/constants"
	"github.com/jroneil/MI-Tool/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RespondAppError sends a standardised JSON error response using pkg/errors.
// detail carries the field error list for record validation failures, otherwise the message.
func RespondAppError(c *gin.Context, err error) {
	code := errors.GetHTTPStatus(err)
	if code >= 500 && errors.GetErrorCode(err) == "UNKNOWN_ERROR" {
		err = errors.NewInternalError("unexpected failure", err)
	}
	resp := errors.ToResponse(err)

	if code >= 500 {
		requestID, _ := c.Get(constants.ContextKeyRequestID)
		logrus.WithError(err).WithFields(logrus.Fields{
			"status":     code,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"request_id": requestID,
		}).Error("❌ request error")
		resp.Message = "Internal server error"
	}

	var detail interface{} = resp.Message
	if resp.Details != nil {
		detail = resp.Details
	}

	c.AbortWithStatusJSON(code, gin.H{
		"detail":                detail,
		constants.ResponseError: resp.Message,
		constants.FieldMessage:  resp.Message,
		"code":                  resp.Code,
	})
}

// BindJSON binds JSON and returns true if successful. If failed, it sends bad request error.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondAppError(c, errors.NewValidationError("body", err.Error()))
		return false
	}
	return true
}

// parseID reads a positive integer path parameter
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		RespondAppError(c, errors.NewValidationError(name, "must be a positive integer"))
		return 0, false
	}
	return id, true
}

// currentUser returns the authenticated session or answers 401
func currentUser(c *gin.Context) (auth.UserSession, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		RespondAppError(c, errors.NewUnauthorizedError("Not authenticated"))
		return auth.UserSession{}, false
	}
	return user, true
}

func respondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
