package httpserver

import (
	"context"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"obsidian-inbox-bot/internal/model"
	"obsidian-inbox-bot/internal/ratelimit"
	"obsidian-inbox-bot/pkg/response"
)

func (srv *HTTPServer) mapHandlers() error {
	srv.registerMiddlewares()
	srv.registerSystemRoutes()
	srv.registerDomainRoutes()
	return nil
}

func (srv *HTTPServer) registerMiddlewares() {
	srv.gin.Use(gin.Recovery())

	ctx := context.Background()
	if srv.environment == string(model.EnvironmentProduction) {
		srv.l.Infof(ctx, "Running in production mode")
	} else {
		srv.l.Infof(ctx, "Running in %s mode", srv.environment)
	}
}

func (srv *HTTPServer) registerSystemRoutes() {
	srv.gin.GET("/health", srv.healthCheck)
	srv.gin.GET("/ready", srv.readyCheck)
	srv.gin.GET("/live", srv.liveCheck)

	srv.gin.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))
}

func (srv *HTTPServer) registerDomainRoutes() {
	ctx := context.Background()

	if srv.telegramHandler == nil {
		srv.l.Infof(ctx, "Telegram handler not configured, skipping webhook route")
		return
	}

	handlers := []gin.HandlerFunc{}
	if srv.webhookLimiter != nil {
		handlers = append(handlers, sourceRateLimit(srv.webhookLimiter))
	}
	handlers = append(handlers, srv.telegramHandler.HandleWebhook)

	srv.gin.POST("/webhook/telegram", handlers...)
	srv.l.Infof(ctx, "Telegram webhook route registered at POST /webhook/telegram")
}

// sourceRateLimit rejects requests exceeding the per-source budget with 429.
func sourceRateLimit(limiter *ratelimit.SourceLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			response.TooManyRequests(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
