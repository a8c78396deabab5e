package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jroneil/MI-Tool/pkg/fieldtypes"
)

// FieldTypes handles GET /api/fieldtypes
func FieldTypes(c *gin.Context) {
	c.JSON(http.StatusOK, fieldtypes.GetAllFieldTypes())
}

// Health handles GET /health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
