package app

import (
	"github.com/typograph/core/internal/middleware"
	"github.com/typograph/core/internal/modules/article"
	"github.com/typograph/core/internal/modules/auth"
	"github.com/typograph/core/internal/modules/category"
	"github.com/typograph/core/internal/modules/ping"
	"github.com/typograph/core/internal/modules/tag"
	"github.com/typograph/core/internal/modules/tasks"
	"github.com/typograph/core/internal/pkg/taskqueue"
)

func (a *App) registerRoutes(queue *taskqueue.Service) *ping.Service {
	api := a.router.Group("/api/v1")
	authMW := middleware.Auth()

	articleSvc := article.NewService(a.db, a.cfg.Blog)
	article.NewHandler(articleSvc, a.cfg.Blog.PageSize).RegisterRoutes(api, authMW)

	pingSvc := ping.NewService(a.db, ping.NewXMLRPCTransport(), queue, a.logger)
	ping.NewHandler(pingSvc, articleSvc, a.cfg.Blog.URL).RegisterRoutes(api, authMW)

	tag.NewHandler(tag.NewService(a.db), articleSvc).RegisterRoutes(api)
	category.NewHandler(category.NewService(a.db)).RegisterRoutes(api, authMW)
	auth.NewHandler(auth.NewService(a.db)).RegisterRoutes(api)

	if queue != nil {
		tasks.NewHandler(queue).RegisterRoutes(api, authMW)
	}

	return pingSvc
}
