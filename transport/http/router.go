package http

import (
	"log"

	"github.com/gin-gonic/gin"
)

// SetupRouter sets up the Gin router
func SetupRouter(h *Handlers, logger *log.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.RecoveryWithWriter(logger.Writer()), CORSMiddleware())

	// Preflight for every path; CORSMiddleware answers it.
	router.OPTIONS("/*path", func(c *gin.Context) {})

	router.GET("/healthz", h.Health)

	wallet := router.Group("/", WalletRecovery(logger))
	{
		wallet.POST("/functions/v1/metamask-auth", h.WalletLogin)
		wallet.POST("/auth/wallet", h.WalletLogin)
	}

	if h.arcade != nil {
		router.GET("/functions/v1/arcade-api", h.ArcadeGames)
	}

	if h.auth != nil {
		auth := router.Group("/auth/v1")
		{
			auth.POST("/token/refresh", h.Refresh)
			auth.POST("/logout", h.Logout)
		}

		api := router.Group("/auth/v1")
		api.Use(AuthMiddleware(h.auth))
		{
			api.GET("/user", h.Me)
		}
	}

	return router
}
