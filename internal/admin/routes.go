package admin

import (
	"net/http"

	"wkchat/internal/auth"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, deps Deps, adminPassword string) {
	handler := NewHandler(deps)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.Use(auth.AdminAuthMiddleware(adminPassword))
	{
		api.GET("/providers", handler.ListProvidersHandler)
		api.GET("/models", handler.ListModelsHandler)
		api.GET("/models/:model/provider", handler.ModelProviderHandler)

		keys := api.Group("/keys")
		{
			keys.GET("", handler.ListKeysHandler)
			keys.POST("/check", handler.CheckAllKeysHandler)
			keys.GET("/:provider", handler.GetKeyHandler)
			keys.PUT("/:provider", handler.SaveKeyHandler)
			keys.DELETE("/:provider", handler.DeleteKeyHandler)
			keys.POST("/:provider/check", handler.CheckKeyHandler)
		}

		chats := api.Group("/chats")
		{
			chats.GET("", handler.ListChatsHandler)
			chats.POST("", handler.CreateChatHandler)
			chats.DELETE("/:id", handler.DeleteChatHandler)
			chats.GET("/:id/messages", handler.ListMessagesHandler)
		}

		api.POST("/messages", handler.SendMessageHandler)
	}
}
