package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/zahel-sys/sigc-auth/internal/config"
	"github.com/zahel-sys/sigc-auth/internal/http/handler"
	httpmiddleware "github.com/zahel-sys/sigc-auth/internal/http/middleware"
	"github.com/zahel-sys/sigc-auth/internal/middleware"
)

// NewRouter wires Gin routes and middleware.
func NewRouter(cfg config.Config, authHandler *handler.AuthHandler, authMiddleware *httpmiddleware.Auth, rateLimiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(nil))
	if rateLimiter != nil {
		r.Use(rateLimiter.Handler())
	}
	r.Use(middleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.PUT("/password", authMiddleware.ValidateJWT, authHandler.ChangePassword)
		// Legacy clients still call the POST route.
		authGroup.POST("/change-password", authMiddleware.ValidateJWT, authHandler.ChangePassword)
		authGroup.GET("/me", authMiddleware.ValidateJWT, authHandler.Me)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
