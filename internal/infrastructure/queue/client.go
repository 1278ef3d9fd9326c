package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"blog-backend/pkg/logger"
)

// Task types handled by the worker.
const (
	TypeCoverProcess = "cover:process"
)

// Queue names by priority.
const (
	QueueDefault = "default"
	QueueLow     = "low"
)

// CoverProcessPayload asks the worker to build resized variants of the
// original cover stored at Key.
type CoverProcessPayload struct {
	PostID uuid.UUID `json:"post_id"`
	Key    string    `json:"key"`
}

// Client enqueues background tasks over Redis.
type Client struct {
	client *asynq.Client
}

func NewClient(redisAddr string) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr}),
	}
}

// EnqueueCoverProcess queues variant generation for a freshly uploaded cover.
func (c *Client) EnqueueCoverProcess(ctx context.Context, postID uuid.UUID, key string) error {
	payload, err := json.Marshal(CoverProcessPayload{PostID: postID, Key: key})
	if err != nil {
		return fmt.Errorf("marshal cover payload: %w", err)
	}

	task := asynq.NewTask(TypeCoverProcess, payload)

	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		return fmt.Errorf("enqueue cover task: %w", err)
	}

	logger.Info("cover task enqueued", map[string]interface{}{
		"task_id": info.ID,
		"post_id": postID.String(),
	})

	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
