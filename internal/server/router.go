// internal/server/router.go
package server

import (
	"github.com/gin-gonic/gin"
)

func (s *NutritionServer) newRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(requestLogger(s.log))
	r.Use(corsMiddleware(s.deps.Config.HTTP.CORSOrigins))
	r.Use(authenticate(s.deps.Accounts))

	r.GET("/healthcheck", s.handleHealth)

	api := r.Group("/api")
	{
		api.POST("/register", s.handleRegister)
		api.POST("/login", s.handleLogin)
	}

	protected := r.Group("/")
	protected.Use(requireAuth(s.deps.Config.Auth.Required))
	{
		protected.GET("/api/register", s.handleTargets)
		protected.PUT("/api/register", s.handleUpdateProfile)
		protected.POST("/api/send", s.handleSend)

		protected.POST("/api/add_food", s.handleAddFood)
		protected.POST("/api/update_food", s.handleUpdateFood)
		protected.DELETE("/api/delete_food", s.handleDeleteFood)

		protected.POST("/api/monthly", s.handleMonthly)
		protected.POST("/api/food/quarterly", s.handleQuarterly)
		protected.POST("/api/food/advice", s.handleAdvice)
		protected.POST("/api/food/get_day", s.handleGetDay)

		protected.GET("/mcp", s.handleMCPInfo)
		protected.POST("/mcp", s.handleMCP)
	}

	return r
}
