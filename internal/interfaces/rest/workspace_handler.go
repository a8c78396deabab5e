package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jroneil/MI-Tool/internal/application/services"
)

type WorkspaceHandler struct {
	svc WorkspaceAPI
}

func NewWorkspaceHandler(svc WorkspaceAPI) *WorkspaceHandler {
	return &WorkspaceHandler{svc: svc}
}

// ListMine handles GET /api/workspaces/me
func (h *WorkspaceHandler) ListMine(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	memberships, err := h.svc.ListMemberships(c.Request.Context(), user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, memberships)
}

// Create handles POST /api/workspaces
func (h *WorkspaceHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var in services.CreateWorkspaceInput
	if !BindJSON(c, &in) {
		return
	}
	ws, err := h.svc.CreateWorkspace(c.Request.Context(), user.ID, in)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ws)
}
