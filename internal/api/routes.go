package api

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	{
		api.GET("/health", health)
		api.POST("/cards", h.createCard)
		api.GET("/artifacts/:name", h.downloadArtifact)
		api.GET("/markets/:code/qr", h.marketQR)

		users := api.Group("/users/:id")
		users.GET("/settings", h.getSettings)
		users.PUT("/background", h.setBackground)
		users.PUT("/colors", h.setColors)
		users.PUT("/username", h.setUsername)
		users.PUT("/avatar", h.setAvatar)
	}
}
