// Package job holds the background task handlers for the blogpost domain.
package job

import (
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/hibiken/asynq"

	"blog-backend/internal/infrastructure/queue"
	"blog-backend/pkg/logger"
)

// ObjectStore is the slice of storage the cover job needs.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
}

// VariantProcessor renders the resized variants of an original image.
type VariantProcessor interface {
	ProcessImage(data []byte) (map[string][]byte, error)
}

// CoverProcessHandler builds the resized cover variants next to the original
// object. Variants live under the same prefix, keyed by variant name.
type CoverProcessHandler struct {
	store     ObjectStore
	processor VariantProcessor
}

func NewCoverProcessHandler(store ObjectStore, processor VariantProcessor) *CoverProcessHandler {
	return &CoverProcessHandler{
		store:     store,
		processor: processor,
	}
}

func (h *CoverProcessHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.CoverProcessPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal cover payload: %w", err)
	}

	original, err := h.store.Download(ctx, payload.Key)
	if err != nil {
		return fmt.Errorf("download original cover: %w", err)
	}

	variants, err := h.processor.ProcessImage(original)
	if err != nil {
		return fmt.Errorf("process cover image: %w", err)
	}

	prefix := path.Dir(payload.Key)

	for name, data := range variants {
		key := prefix + "/" + name + ".jpg"
		if _, err := h.store.Upload(ctx, key, data, "image/jpeg"); err != nil {
			return fmt.Errorf("upload cover variant %s: %w", name, err)
		}
	}

	logger.Info("cover variants generated", map[string]interface{}{
		"post_id":  payload.PostID.String(),
		"variants": len(variants),
	})

	return nil
}
