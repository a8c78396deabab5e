package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jroneil/MI-Tool/internal/application/services"
	"github.com/jroneil/MI-Tool/pkg/errors"
)

type ModelHandler struct {
	svc ModelAPI
}

func NewModelHandler(svc ModelAPI) *ModelHandler {
	return &ModelHandler{svc: svc}
}

// Create handles POST /api/models
func (h *ModelHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var in services.CreateModelInput
	if !BindJSON(c, &in) {
		return
	}
	m, err := h.svc.CreateModel(c.Request.Context(), user.ID, in)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// List handles GET /api/models?workspace_id=
func (h *ModelHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	workspaceID, err := strconv.ParseInt(c.Query("workspace_id"), 10, 64)
	if err != nil || workspaceID < 1 {
		RespondAppError(c, errors.NewValidationError("workspace_id", "is required"))
		return
	}
	list, err := h.svc.ListModels(c.Request.Context(), user.ID, workspaceID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Get handles GET /api/models/:id
func (h *ModelHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	m, err := h.svc.GetModel(c.Request.Context(), user.ID, id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// Update handles PUT and PATCH /api/models/:id; both are partial
func (h *ModelHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in services.UpdateModelInput
	if !BindJSON(c, &in) {
		return
	}
	m, err := h.svc.UpdateModel(c.Request.Context(), user.ID, id, in)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// Delete handles DELETE /api/models/:id
func (h *ModelHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteModel(c.Request.Context(), user.ID, id); err != nil {
		RespondAppError(c, err)
		return
	}
	respondNoContent(c)
}
