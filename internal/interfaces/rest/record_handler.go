package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jroneil/MI-Tool/internal/domain/models"
	"github.com/jroneil/MI-Tool/pkg/constants"
	"github.com/jroneil/MI-Tool/pkg/errors"
)

// RecordBody is the payload of record create and update
type RecordBody struct {
	Data models.Document `json:"data" binding:"required"`
}

// listParams are the query parameters of a record listing
type listParams struct {
	Skip        int     `form:"skip"`
	Limit       int     `form:"limit"`
	SortBy      string  `form:"sort_by"`
	SortOrder   string  `form:"sort_order"`
	FilterKey   string  `form:"filter_key"`
	FilterValue *string `form:"filter_value"`
}

type RecordHandler struct {
	svc RecordAPI
}

func NewRecordHandler(svc RecordAPI) *RecordHandler {
	return &RecordHandler{svc: svc}
}

// Create handles POST /api/models/:id/records
func (h *RecordHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	modelID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body RecordBody
	if !BindJSON(c, &body) {
		return
	}
	rec, err := h.svc.CreateRecord(c.Request.Context(), user.ID, modelID, body.Data)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// List handles GET /api/models/:id/records
func (h *RecordHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	modelID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var p listParams
	if err := c.ShouldBindQuery(&p); err != nil {
		RespondAppError(c, errors.NewValidationError("query", err.Error()))
		return
	}
	if _, present := c.GetQuery("limit"); present && p.Limit == 0 {
		RespondAppError(c, errors.NewValidationError("limit", "must be between 1 and 100"))
		return
	}

	page, err := h.svc.ListRecords(c.Request.Context(), user.ID, modelID, models.RecordListQuery{
		Skip:        p.Skip,
		Limit:       p.Limit,
		SortBy:      p.SortBy,
		SortOrder:   constants.SortOrder(p.SortOrder),
		FilterKey:   p.FilterKey,
		FilterValue: p.FilterValue,
	})
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get handles GET /api/records/:id
func (h *RecordHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rec, err := h.svc.GetRecord(c.Request.Context(), user.ID, id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Update handles PUT /api/records/:id
func (h *RecordHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body RecordBody
	if !BindJSON(c, &body) {
		return
	}
	rec, err := h.svc.UpdateRecord(c.Request.Context(), user.ID, id, body.Data)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Delete handles DELETE /api/records/:id
func (h *RecordHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteRecord(c.Request.Context(), user.ID, id); err != nil {
		RespondAppError(c, err)
		return
	}
	respondNoContent(c)
}
