package ping

import (
	"context"
	"encoding/json"
	"time"

	"github.com/typograph/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
)

type taskPayload struct {
	ArticleID  string   `json:"article_id"`
	ArticleURL string   `json:"article_url"`
	URLs       []string `json:"urls"`
}

// Worker drains queued ping dispatches. Per-URL failures are part of the
// task result, not task failures; a task fails only when the article cannot
// be loaded at all.
type Worker struct {
	svc      *Service
	queue    *taskqueue.Service
	logger   *zap.Logger
	interval time.Duration
}

func NewWorker(svc *Service, queue *taskqueue.Service, logger *zap.Logger) *Worker {
	return &Worker{svc: svc, queue: queue, logger: logger, interval: 5 * time.Second}
}

// Run polls for pending dispatch tasks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	for {
		task, err := w.queue.ClaimPending(ctx, taskqueue.TypePingDispatch)
		if err != nil {
			w.logger.Warn("claim ping task", zap.Error(err))
			return
		}
		if task == nil {
			return
		}

		var payload taskPayload
		if err := json.Unmarshal(task.Payload, &payload); err != nil {
			_ = w.queue.UpdateStatus(ctx, task.ID, taskqueue.TaskFailed, nil, err.Error())
			continue
		}

		results, err := w.svc.Dispatch(ctx, payload.ArticleID, payload.ArticleURL, payload.URLs)
		if err != nil {
			_ = w.queue.UpdateStatus(ctx, task.ID, taskqueue.TaskFailed, nil, err.Error())
			continue
		}
		_ = w.queue.UpdateStatus(ctx, task.ID, taskqueue.TaskCompleted, results, "")
	}
}
