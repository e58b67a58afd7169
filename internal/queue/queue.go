package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskTypePublishPost = "post:publish"

type PublishPostPayload struct {
	PostID    uuid.UUID `json:"post_id"`
	PublishAt time.Time `json:"publish_at"`
}

// TaskEnqueuer is the part of *asynq.Client the scheduler needs.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Scheduler queues delayed publish tasks for posts.
type Scheduler struct {
	client TaskEnqueuer
}

func NewScheduler(client TaskEnqueuer) *Scheduler {
	return &Scheduler{client: client}
}

// SchedulePublish enqueues a publish task that runs at the given time. The
// task id includes the time, so rescheduling queues a fresh task and a
// duplicate request for the same time is a no-op.
func (s *Scheduler) SchedulePublish(ctx context.Context, postID uuid.UUID, at time.Time) error {
	payload := PublishPostPayload{PostID: postID, PublishAt: at.UTC()}
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypePublishPost, taskPayload)
	_, err = s.client.EnqueueContext(ctx, task,
		asynq.ProcessAt(at),
		asynq.TaskID(publishTaskID(postID, at)),
		asynq.MaxRetry(5),
	)
	if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return fmt.Errorf("enqueue publish task: %w", err)
	}

	slog.Info("publish task scheduled", "post_id", postID, "publish_at", payload.PublishAt)
	return nil
}

func publishTaskID(postID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("%s:%s:%d", TaskTypePublishPost, postID, at.Unix())
}
