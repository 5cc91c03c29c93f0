package api

import (
	"obsmacros/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, ms *service.MacroService, d *service.Dispatcher, hs *service.HistoryStore, wsHub *WebSocketHub) {
	// Enable CORS
	router.Use(CORSMiddleware())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api")
	{
		macros := api.Group("/macros")
		{
			macros.GET("", func(c *gin.Context) {
				GetMacros(c, ms)
			})
			macros.POST("/:binding/trigger", func(c *gin.Context) {
				TriggerMacro(c, ms, d)
			})
			macros.DELETE("/:binding", func(c *gin.Context) {
				DeleteMacro(c, ms)
			})
		}

		api.POST("/config/save", func(c *gin.Context) {
			SaveConfig(c, ms)
		})

		if hs != nil {
			api.GET("/history", func(c *gin.Context) {
				GetHistory(c, hs)
			})
		}
	}

	// WebSocket route
	if wsHub != nil {
		router.GET("/ws", func(c *gin.Context) {
			HandleWebSocket(wsHub, c)
		})
	}
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
