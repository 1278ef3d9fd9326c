package main

import (
	"github.com/hibiken/asynq"

	"blog-backend/internal/domains/blogpost/job"
	"blog-backend/internal/infrastructure/queue"
	"blog-backend/pkg/container"
)

// HandlerRegistry holds the worker's task handlers.
type HandlerRegistry struct {
	coverProcess *job.CoverProcessHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		coverProcess: job.NewCoverProcessHandler(c.Storage, c.ImageProcessor),
	}
}

func (r *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.Handle(queue.TypeCoverProcess, r.coverProcess)
}
