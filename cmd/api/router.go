package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"blog-backend/internal/shared/middleware"
	"blog-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.CORS(c.Config.CORS.Origins),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupAuthorRoutes(v1, c)
		setupBlogPostRoutes(v1, c)
	}

	return router
}

// ========================================
// AUTHOR ROUTES
// ========================================
func setupAuthorRoutes(v1 *gin.RouterGroup, c *container.Container) {
	authRequired := middleware.AuthMiddleware(c.JWTManager, c.AuthorRepo)

	authors := v1.Group("/authors")
	{
		authors.POST("/register", c.AuthorHandler.Register)
		authors.POST("", c.AuthorHandler.Register) // legacy alias

		authors.POST("/login", c.AuthorHandler.Login)
		authors.GET("/googleLogin", c.AuthorHandler.GoogleLogin)
		authors.GET("/googleRedirect", c.AuthorHandler.GoogleRedirect)

		authors.GET("", authRequired, c.AuthorHandler.List)
		authors.GET("/:id", authRequired, c.AuthorHandler.GetByID)
		authors.PUT("/:id", authRequired, c.AuthorHandler.Update)
		authors.DELETE("/:id", authRequired, c.AuthorHandler.Delete)
	}
}

// ========================================
// BLOG POST ROUTES
// ========================================
func setupBlogPostRoutes(v1 *gin.RouterGroup, c *container.Container) {
	authRequired := middleware.AuthMiddleware(c.JWTManager, c.AuthorRepo)

	posts := v1.Group("/blogPosts")
	{
		posts.GET("", c.BlogPostHandler.List)
		posts.POST("", authRequired, c.BlogPostHandler.Create)
		posts.GET("/me/stories", authRequired, c.BlogPostHandler.MyStories)

		posts.GET("/:id", c.BlogPostHandler.GetByID)
		posts.PUT("/:id", authRequired, c.BlogPostHandler.Update)
		posts.DELETE("/:id", authRequired, c.BlogPostHandler.Delete)

		posts.POST("/:id/uploadCover", authRequired, c.BlogPostHandler.UploadCover)
		posts.GET("/:id/pdf", c.BlogPostHandler.ExportPDF)

		posts.POST("/:id/comments", authRequired, c.BlogPostHandler.AddComment)
		posts.GET("/:id/comments", c.BlogPostHandler.ListComments)
		posts.GET("/:id/comments/:commentId", c.BlogPostHandler.GetComment)
		posts.PUT("/:id/comments/:commentId", authRequired, c.BlogPostHandler.UpdateComment)
		posts.DELETE("/:id/comments/:commentId", authRequired, c.BlogPostHandler.DeleteComment)

		// Likes stay public; the liking author travels in the body.
		posts.POST("/:id/likes", c.BlogPostHandler.ToggleLike)
	}
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "ok"
		if err := c.DB.HealthCheck(checkCtx); err != nil {
			dbStatus = "down"
		}

		cacheStatus := "ok"
		if err := c.Cache.Ping(checkCtx); err != nil {
			cacheStatus = "down"
		}

		status := http.StatusOK
		if dbStatus != "ok" || cacheStatus != "ok" {
			status = http.StatusServiceUnavailable
		}

		ctx.JSON(status, gin.H{
			"status":   "up",
			"database": dbStatus,
			"cache":    cacheStatus,
			"version":  c.Config.App.Version,
		})
	}
}
