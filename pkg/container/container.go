// Package container wires the full dependency graph: config, infrastructure,
// repositories, services and handlers, in that order.
package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"blog-backend/internal/config"
	authorDomain "blog-backend/internal/domains/author"
	authorHandler "blog-backend/internal/domains/author/handler"
	authorRepo "blog-backend/internal/domains/author/repository"
	authorService "blog-backend/internal/domains/author/service"
	blogpostDomain "blog-backend/internal/domains/blogpost"
	blogpostHandler "blog-backend/internal/domains/blogpost/handler"
	blogpostRepo "blog-backend/internal/domains/blogpost/repository"
	blogpostService "blog-backend/internal/domains/blogpost/service"
	infraCache "blog-backend/internal/infrastructure/cache"
	"blog-backend/internal/infrastructure/database"
	"blog-backend/internal/infrastructure/oauth"
	"blog-backend/internal/infrastructure/pdf"
	"blog-backend/internal/infrastructure/queue"
	"blog-backend/internal/infrastructure/storage"
	"blog-backend/pkg/cache"
	"blog-backend/pkg/jwt"
)

// Container holds every singleton the application needs.
type Container struct {
	Config *config.Config

	// Infrastructure
	DB             *database.PostgresDB
	Cache          cache.Cache
	Storage        *storage.MinIOStorage
	ImageProcessor *storage.ImageProcessor
	QueueClient    *queue.Client
	JWTManager     *jwt.Manager
	Google         *oauth.GoogleProvider
	PDFRenderer    *pdf.Renderer

	// Repositories
	AuthorRepo   authorDomain.Repository
	BlogPostRepo blogpostDomain.Repository

	// Services
	AuthorService   authorDomain.Service
	BlogPostService blogpostDomain.Service

	// Handlers
	AuthorHandler   *authorHandler.AuthorHandler
	BlogPostHandler *blogpostHandler.BlogPostHandler
}

// NewContainer builds the dependency graph. Order matters: config first, then
// infrastructure, then repositories, services and handlers.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.Config = cfg
	log.Printf("[Container] Config loaded (environment: %s)", cfg.App.Environment)

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("database health check: %w", err)
	}
	c.DB = db
	log.Println("[Container] Database connected")

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Ping(ctx); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	c.Cache = redisCache
	log.Println("[Container] Redis connected")

	minioStorage, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("connect to object storage: %w", err)
	}
	c.Storage = minioStorage
	c.ImageProcessor = storage.NewImageProcessor()
	log.Println("[Container] Object storage ready")

	c.QueueClient = queue.NewClient(cfg.Redis.Host)
	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	c.Google = oauth.NewGoogleProvider(
		cfg.Google.ClientID,
		cfg.Google.ClientSecret,
		cfg.Google.RedirectURL,
	)
	c.PDFRenderer = pdf.NewRenderer()

	c.AuthorRepo = authorRepo.NewPostgresRepository(db.Pool, c.Cache)
	c.BlogPostRepo = blogpostRepo.NewPostgresRepository(db.Pool, c.Cache)

	c.AuthorService = authorService.NewAuthorService(c.AuthorRepo, c.JWTManager)
	c.BlogPostService = blogpostService.NewBlogPostService(
		c.BlogPostRepo,
		c.AuthorRepo,
		c.Storage,
		c.ImageProcessor,
		c.PDFRenderer,
		c.QueueClient,
	)

	c.AuthorHandler = authorHandler.NewAuthorHandler(c.AuthorService, c.Google, cfg.Frontend.URL)
	c.BlogPostHandler = blogpostHandler.NewBlogPostHandler(c.BlogPostService)

	log.Println("[Container] Ready")

	return c, nil
}

// Cleanup releases the container's connections in reverse order.
func (c *Container) Cleanup() {
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			log.Printf("[Container] Queue client close failed: %v", err)
		}
	}
	if closer, ok := c.Cache.(interface{ Close() error }); ok && closer != nil {
		if err := closer.Close(); err != nil {
			log.Printf("[Container] Redis close failed: %v", err)
		}
	}
	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Pool.Close()
	}
	log.Println("[Container] Cleaned up")
}
