package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Publisher publishes a scheduled post once its time has come, provided it is
// still scheduled for at.
type Publisher interface {
	PublishScheduled(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

type Worker struct {
	posts Publisher
}

func NewWorker(posts Publisher) *Worker {
	return &Worker{posts: posts}
}

// Register adds the worker's handlers to mux.
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskTypePublishPost, w.HandlePublishPostTask)
}

func (w *Worker) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.PostID == uuid.Nil {
		return fmt.Errorf("missing post id: %w", asynq.SkipRetry)
	}

	published, err := w.posts.PublishScheduled(ctx, payload.PostID, payload.PublishAt)
	if err != nil {
		return err
	}
	if !published {
		slog.Info("scheduled publish skipped", "post_id", payload.PostID)
	}
	return nil
}
