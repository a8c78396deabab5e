package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/jroneil/MI-Tool/internal/interfaces/middleware"
)

// NewRouter mounts every route under /api
func NewRouter(api API, corsOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Cors(corsOrigins))

	router.GET("/health", Health)

	authHandler := NewAuthHandler(api.Auth)
	workspaceHandler := NewWorkspaceHandler(api.Workspaces)
	modelHandler := NewModelHandler(api.Models)
	recordHandler := NewRecordHandler(api.Records)
	requireAuth := middleware.RequireAuth(api.Auth)

	apiGroup := router.Group("/api")
	apiGroup.GET("/fieldtypes", FieldTypes)

	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/token", authHandler.Token)
	authGroup.GET("/me", requireAuth, authHandler.Me)

	// /api/organizations is kept for older clients
	for _, prefix := range []string{"/workspaces", "/organizations"} {
		g := apiGroup.Group(prefix, requireAuth)
		g.GET("/me", workspaceHandler.ListMine)
		g.POST("", workspaceHandler.Create)
		g.POST("/", workspaceHandler.Create)
	}

	modelsGroup := apiGroup.Group("/models", requireAuth)
	modelsGroup.POST("", modelHandler.Create)
	modelsGroup.GET("", modelHandler.List)
	modelsGroup.GET("/:id", modelHandler.Get)
	modelsGroup.PUT("/:id", modelHandler.Update)
	modelsGroup.PATCH("/:id", modelHandler.Update)
	modelsGroup.DELETE("/:id", modelHandler.Delete)
	modelsGroup.POST("/:id/records", recordHandler.Create)
	modelsGroup.GET("/:id/records", recordHandler.List)

	recordsGroup := apiGroup.Group("/records", requireAuth)
	recordsGroup.GET("/:id", recordHandler.Get)
	recordsGroup.PUT("/:id", recordHandler.Update)
	recordsGroup.DELETE("/:id", recordHandler.Delete)

	return router
}
