package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jroneil/MI-Tool/internal/application/services"
	"github.com/jroneil/MI-Tool/pkg/errors"
)

type AuthHandler struct {
	svc AuthAPI
}

func NewAuthHandler(svc AuthAPI) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var in services.RegisterInput
	if !BindJSON(c, &in) {
		return
	}
	user, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Token handles POST /api/auth/token. It accepts the OAuth2 password form or JSON.
func (h *AuthHandler) Token(c *gin.Context) {
	var in services.LoginInput
	if err := c.ShouldBind(&in); err != nil {
		RespondAppError(c, errors.NewValidationError("body", err.Error()))
		return
	}
	if in.Identity() == "" {
		RespondAppError(c, errors.NewValidationError("username", "is required"))
		return
	}

	token, err := h.svc.Login(c.Request.Context(), in)
	if err != nil {
		if errors.IsUnauthorized(err) {
			c.Header("WWW-Authenticate", "Bearer")
		}
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	session, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.svc.Me(c.Request.Context(), session.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
