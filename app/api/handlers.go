package api

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/jsonfeed-views/app/database"
	"github.com/lysyi3m/jsonfeed-views/app/jsonfeed"
	"github.com/lysyi3m/jsonfeed-views/app/site"
	"github.com/lysyi3m/jsonfeed-views/app/source"
	"github.com/lysyi3m/jsonfeed-views/app/tasks"
	"github.com/lysyi3m/jsonfeed-views/app/views"
)

const pageParam = "page"

func NewHandler(viewCache *views.Cache, executor ExecutorInterface, urls *site.URLs, siteInfo jsonfeed.Site,
	sourceCache *source.Cache, sourceRepo database.SourceRepository, nodeRepo database.NodeRepository,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		viewCache:   viewCache,
		executor:    executor,
		urls:        urls,
		site:        siteInfo,
		sourceCache: sourceCache,
		sourceRepo:  sourceRepo,
		nodeRepo:    nodeRepo,
		scheduler:   scheduler,
	}
}

func (h *Handler) GetFeed(c *gin.Context) {
	name := c.Param("name")

	view, ok := h.lookupView(c, name)
	if !ok {
		return
	}

	element := view.PagerElement()
	page := 0
	if element != nil {
		page = views.CurrentPage(c.Query(pageParam), *element)
	}

	result, err := h.executor.Execute(c.Request.Context(), view, page)
	if err != nil {
		slog.Error("Query error", "view", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	display, err := h.display(view)
	if err != nil {
		slog.Error("Display URL error", "view", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	env := jsonfeed.Env{
		Fields: result,
		URLs:   h.urls,
		Tokens: result,
		Site:   h.site,
	}
	if element != nil {
		env.Pager = views.NewRequestPager(h.urls, view.FeedPath(), c.Request.URL.Query(), *element, result.PagerState())
	}

	data, err := view.Serializer().Render(display, result.Len(), env)
	if err != nil {
		slog.Error("Feed render error", "view", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("X-Feed-Items", strconv.Itoa(result.Len()))
	c.Header("X-View-Name", name)
	c.Data(http.StatusOK, "application/json", data)
}

// GetPage renders the page display of a view. Its head advertises the JSON
// feed, carrying over the request query except the page parameter.
func (h *Handler) GetPage(c *gin.Context) {
	name := c.Param("name")

	view, ok := h.lookupView(c, name)
	if !ok {
		return
	}

	if !view.Page.Enabled {
		c.Status(http.StatusNotFound)
		return
	}

	element := view.PagerElement()
	page := 0
	if element != nil {
		page = views.CurrentPage(c.Query(pageParam), *element)
	}

	result, err := h.executor.Execute(c.Request.Context(), view, page)
	if err != nil {
		slog.Error("Query error", "view", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	data, err := h.pageData(c.Request.URL.Query(), view, result)
	if err != nil {
		slog.Error("Page render error", "view", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := pageTemplate.Execute(c.Writer, data); err != nil {
		slog.Error("Page template error", "view", name, "error", err)
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp":     time.Now().In(time.Local).Format(time.RFC3339),
		"views":         h.viewCache.GetViewCount(),
		"invalid_views": len(h.viewCache.GetProblems()),
		"sources":       h.sourceCache.GetConfigCount(),
	}

	if nodeCount, err := h.nodeRepo.GetNodeCount(); err == nil {
		health["nodes"] = nodeCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListViews(c *gin.Context) {
	valid := h.viewCache.GetViews()
	problems := h.viewCache.GetProblems()
	names := h.viewCache.Names()

	list := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		info := map[string]interface{}{
			"name":  name,
			"valid": false,
		}

		if view, ok := valid[name]; ok {
			info["valid"] = true
			info["title"] = view.Title
			info["plugin"] = view.Serializer().Mapper().Plugin()
			if feedURL, err := h.urls.AbsoluteURL(view.FeedPath()); err == nil {
				info["feed_url"] = feedURL
			}
			if view.Page.Enabled {
				if pageURL, err := h.urls.AbsoluteURL(view.PagePath()); err == nil {
					info["page_url"] = pageURL
				}
			}
		} else {
			info["problems"] = problems[name]
		}

		list = append(list, info)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"views":   list,
		"total":   len(list),
		"invalid": len(problems),
	})
}

func (h *Handler) APIReloadView(c *gin.Context) {
	name := c.Param("name")

	view, err := h.viewCache.LoadView(name)
	var cfgErr *jsonfeed.ConfigurationError
	if errors.As(err, &cfgErr) {
		slog.Warn("View configuration invalid", "view", name, "problems", cfgErr.Problems)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    "Invalid view configuration",
			"problems": cfgErr.Problems,
		})
		return
	}
	if err != nil {
		slog.Error("Error reloading view", "view", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Failed to reload view",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "View reloaded",
		"view": gin.H{
			"name":  view.Name,
			"title": view.Title,
		},
	})
}

func (h *Handler) APIListSources(c *gin.Context) {
	configs := h.sourceCache.GetConfigs()

	list := make([]map[string]interface{}, 0, len(configs))
	for _, config := range configs {
		info := map[string]interface{}{
			"name":             config.Name,
			"url":              config.URL,
			"enabled":          config.Settings.Enabled,
			"max_items":        config.Settings.MaxItems,
			"refresh_interval": config.Settings.RefreshDuration().String(),
			"extract_content":  config.Settings.ExtractContent,
			"filters":          len(config.Filters),
		}

		if record, err := h.sourceRepo.GetSource(config.Name); err == nil && record != nil {
			info["title"] = record.Title
			info["last_fetched_at"] = record.LastFetchedAt
			info["next_fetch_at"] = record.NextFetchAt
		}

		list = append(list, info)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": list,
		"total":   len(list),
	})
}

func (h *Handler) APIReloadSource(c *gin.Context) {
	name := c.Param("name")

	config, err := h.sourceCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading source", "source", name, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Failed to reload source",
			"details": err.Error(),
		})
		return
	}

	syncTask := tasks.NewSyncSourceTask(config, h.sourceRepo)
	if err := h.scheduler.EnqueueTask(syncTask); err != nil {
		slog.Error("Error enqueueing sync task", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue sync task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Source reloaded and sync task enqueued",
		"task": gin.H{
			"id":   syncTask.ID,
			"type": syncTask.Type,
		},
	})
}

func (h *Handler) APIImportSource(c *gin.Context) {
	name := c.Param("name")

	if _, err := h.sourceCache.GetConfig(name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source not found"})
		return
	}

	if err := h.scheduler.EnqueueImport(name); err != nil {
		slog.Error("Error enqueueing import task", "source", name, "error", err)
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Failed to enqueue import task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Import enqueued",
	})
}

// lookupView answers 404 for unknown views and 503 for views that failed
// validation.
func (h *Handler) lookupView(c *gin.Context, name string) (*views.View, bool) {
	view, err := h.viewCache.GetView(name)
	if err == nil {
		return view, true
	}

	var cfgErr *jsonfeed.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		slog.Warn("View misconfigured", "view", name, "problems", cfgErr.Problems)
		c.Status(http.StatusServiceUnavailable)
	case errors.Is(err, views.ErrViewNotFound):
		c.Status(http.StatusNotFound)
	default:
		slog.Error("View lookup error", "view", name, "error", err)
		c.Status(http.StatusInternalServerError)
	}
	return nil, false
}

func (h *Handler) display(view *views.View) (jsonfeed.Display, error) {
	feedURL, err := h.urls.AbsoluteURL(view.FeedPath())
	if err != nil {
		return jsonfeed.Display{}, err
	}

	display := jsonfeed.Display{Title: view.Title, FeedURL: feedURL}
	if view.HasLinkDisplay() {
		display.LinkDisplayURL, err = h.urls.AbsoluteURL(view.PagePath())
		if err != nil {
			return jsonfeed.Display{}, err
		}
	}
	return display, nil
}

func (h *Handler) pageData(query url.Values, view *views.View, result *views.Result) (*pageData, error) {
	display, err := h.display(view)
	if err != nil {
		return nil, err
	}

	feedQuery := url.Values{}
	for k, v := range query {
		if k != pageParam {
			feedQuery[k] = v
		}
	}
	href, err := h.urls.Route(view.FeedPath(), feedQuery)
	if err != nil {
		return nil, err
	}

	title := view.Serializer().Title(display, h.site)
	link := jsonfeed.NewHeadLink(title, href)

	data := &pageData{
		Title:    title,
		FeedLink: &link,
	}

	labels := view.FieldLabels()
	for _, field := range view.Fields {
		data.Columns = append(data.Columns, pageColumn{ID: field.ID, Label: labels[field.ID]})
	}

	for rowIndex := 0; rowIndex < result.Len(); rowIndex++ {
		cells := make([]template.HTML, 0, len(view.Fields))
		for _, field := range view.Fields {
			value, err := result.FieldValue(rowIndex, field.ID)
			if err != nil {
				return nil, err
			}
			if field.Type == views.FieldTypeHTML {
				cells = append(cells, template.HTML(value))
			} else {
				cells = append(cells, template.HTML(template.HTMLEscapeString(value)))
			}
		}
		data.Rows = append(data.Rows, cells)
	}

	if element := view.PagerElement(); element != nil {
		pager := views.NewRequestPager(h.urls, view.PagePath(), query, *element, result.PagerState())
		state := result.PagerState()
		if state.CurrentPage > 0 {
			if data.PrevURL, err = pager.PageURL(*element, state.CurrentPage-1); err != nil {
				return nil, err
			}
		}
		if state.CurrentPage < state.TotalPages-1 {
			if data.NextURL, err = pager.PageURL(*element, state.CurrentPage+1); err != nil {
				return nil, err
			}
		}
	}

	return data, nil
}
