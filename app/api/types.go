package api

import (
	"context"

	"github.com/lysyi3m/jsonfeed-views/app/database"
	"github.com/lysyi3m/jsonfeed-views/app/jsonfeed"
	"github.com/lysyi3m/jsonfeed-views/app/site"
	"github.com/lysyi3m/jsonfeed-views/app/source"
	"github.com/lysyi3m/jsonfeed-views/app/tasks"
	"github.com/lysyi3m/jsonfeed-views/app/views"
)

type ExecutorInterface interface {
	Execute(ctx context.Context, view *views.View, page int) (*views.Result, error)
}

var _ ExecutorInterface = (*views.Executor)(nil)

type Handler struct {
	viewCache   *views.Cache
	executor    ExecutorInterface
	urls        *site.URLs
	site        jsonfeed.Site
	sourceCache *source.Cache
	sourceRepo  database.SourceRepository
	nodeRepo    database.NodeRepository
	scheduler   tasks.TaskSchedulerInterface
}
