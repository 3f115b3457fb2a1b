package ping

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/typograph/core/internal/models"
	"github.com/typograph/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Result is the per-URL outcome of one dispatch. Skipped URLs were already
// notified in an earlier dispatch and did not touch the network.
type Result struct {
	URL     string `json:"url"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Service fans out link notifications for an article. Each URL is handled
// independently: one dead endpoint never aborts the batch, and only a
// successful send persists a Ping row, so a later dispatch retries exactly
// the failed URLs.
type Service struct {
	db        *gorm.DB
	transport Transport
	queue     *taskqueue.Service
	logger    *zap.Logger
}

func NewService(db *gorm.DB, transport Transport, queue *taskqueue.Service, logger *zap.Logger) *Service {
	return &Service{db: db, transport: transport, queue: queue, logger: logger}
}

// Dispatch notifies every target URL of the article's public URL. The caller
// must have rendered content current (the payload derives from it). There
// are no in-call retries.
func (s *Service) Dispatch(ctx context.Context, articleID, articleURL string, targets []string) ([]Result, error) {
	var a models.ArticleModel
	if err := s.db.First(&a, "id = ?", articleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("article %s not found", articleID)
		}
		return nil, err
	}

	var existing []models.PingModel
	if err := s.db.Where("article_id = ?", articleID).Find(&existing).Error; err != nil {
		return nil, err
	}
	notified := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		notified[p.URL] = struct{}{}
	}

	results := make([]Result, 0, len(targets))
	for _, raw := range targets {
		url := strings.TrimSpace(raw)
		if url == "" {
			continue
		}
		if _, ok := notified[url]; ok {
			results = append(results, Result{URL: url, Skipped: true})
			continue
		}

		if err := s.transport.Send(ctx, url, articleURL, a.Title); err != nil {
			s.logger.Warn("ping failed",
				zap.String("article_id", articleID),
				zap.String("url", url),
				zap.Error(err),
			)
			results = append(results, Result{URL: url, Error: err.Error()})
			continue
		}

		row := models.PingModel{ArticleID: articleID, URL: url}
		if err := s.db.Create(&row).Error; err != nil {
			// lost a race with a concurrent dispatch; the notification went
			// out, so treat it as done
			s.logger.Warn("ping record exists",
				zap.String("article_id", articleID),
				zap.String("url", url),
				zap.Error(err),
			)
		}
		notified[url] = struct{}{}
		results = append(results, Result{URL: url})
	}
	return results, nil
}

// DispatchAsync queues the dispatch on the task queue so the network fan-out
// runs on a worker holding no storage transaction.
func (s *Service) DispatchAsync(ctx context.Context, articleID, articleURL string, targets []string) (*taskqueue.Task, error) {
	if s.queue == nil {
		return nil, errors.New("task queue not configured")
	}
	return s.queue.Enqueue(ctx, taskqueue.TypePingDispatch, taskPayload{
		ArticleID:  articleID,
		ArticleURL: articleURL,
		URLs:       targets,
	})
}

// ListByArticle returns the article's persisted pings oldest first.
func (s *Service) ListByArticle(articleID string) ([]models.PingModel, error) {
	var pings []models.PingModel
	err := s.db.Where("article_id = ?", articleID).Order("created_at ASC").Find(&pings).Error
	return pings, err
}
