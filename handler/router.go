package handler

import (
	"net/http"
	"time"

	"github.com/V10L1/modulo-assinatura/config"
	"github.com/V10L1/modulo-assinatura/middleware"
	"github.com/gin-gonic/gin"
)

// NewRouter wires middleware and routes for the signature request API
func NewRouter(requests *RequestHandler, suggestions *SuggestionHandler, rateLimit config.RateLimitConfig) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS())
	router.Use(middleware.NoStore("/api"))
	router.Use(middleware.RateLimit(rateLimit))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api")
	{
		api.GET("/requests", requests.List)
		api.POST("/requests", requests.Create)
		api.GET("/requests/:id", requests.Get)
		api.GET("/requests/:id/signers/:signerId", requests.SigningView)
		api.POST("/requests/:id/signers/:signerId/sign", requests.Sign)
		api.POST("/requests/:id/signers/:signerId/decline", requests.Decline)
		api.POST("/suggestions", suggestions.Suggest)
	}

	return router
}
