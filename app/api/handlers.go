package api

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"newsalert/app/alert"
	"newsalert/app/database"
	"newsalert/app/ingest"
	"newsalert/app/tasks"
)

func NewHandler(articleRepo database.ArticleRepository, filterRepo database.FilterRepository,
	alertRepo database.AlertRepository, dispatchRepo database.DispatchRepository,
	dispatcher *alert.Dispatcher, processor *alert.Processor,
	sourceCache *ingest.SourceCache, newsClient *ingest.NewsAPIClient,
	rssFetcher *ingest.RSSFetcher, extractor *ingest.ContentExtractor,
	scheduler tasks.TaskSchedulerInterface, lookback time.Duration) *Handler {
	return &Handler{
		articleRepo:  articleRepo,
		filterRepo:   filterRepo,
		alertRepo:    alertRepo,
		dispatchRepo: dispatchRepo,
		matcher:      alert.NewMatcher(),
		dispatcher:   dispatcher,
		processor:    processor,
		sourceCache:  sourceCache,
		newsClient:   newsClient,
		rssFetcher:   rssFetcher,
		extractor:    extractor,
		scheduler:    scheduler,
		lookback:     lookback,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if count, err := h.articleRepo.GetArticleCount(c.Request.Context()); err == nil {
		health["articles"] = count
	}

	health["loaded_sources"] = h.sourceCache.GetSourceCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats := map[string]interface{}{
		"sources": h.sourceCache.GetSourceCount(),
	}

	if count, err := h.articleRepo.GetArticleCount(ctx); err == nil {
		stats["articles"] = count
	}

	if filters, err := h.filterRepo.ListFilters(ctx); err == nil {
		stats["filters"] = len(filters)
	}

	if alerts, err := h.alertRepo.GetActiveAlerts(ctx); err == nil {
		stats["active_alerts"] = len(alerts)
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIListArticles(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	articles, err := h.articleRepo.ListArticles(c.Request.Context(),
		c.Query("source"), c.Query("category"), c.Query("keyword"), limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	out := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, toArticleResponse(a))
	}

	c.JSON(http.StatusOK, gin.H{"articles": out, "total": len(out)})
}

func (h *Handler) APIFetchArticles(c *gin.Context) {
	sources := h.sourceCache.GetEnabledSources()
	if len(sources) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "No enabled ingestion sources configured"})
		return
	}

	enqueued := make([]gin.H, 0, len(sources))
	for _, source := range sources {
		task := tasks.NewFetchNewsTask(source, h.newsClient, h.rssFetcher, h.extractor, h.articleRepo)
		if err := h.scheduler.EnqueueTask(task); err != nil {
			slog.Error("Error enqueueing fetch task", "source", source.Name, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to enqueue fetch task",
				"details": err.Error(),
			})
			return
		}
		enqueued = append(enqueued, gin.H{"id": task.ID, "source": source.Name})
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Fetch tasks enqueued successfully",
		"tasks":   enqueued,
	})
}

func (h *Handler) APIListFilters(c *gin.Context) {
	filters, err := h.filterRepo.ListFilters(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "list_filters", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	out := make([]filterResponse, 0, len(filters))
	for _, f := range filters {
		out = append(out, toFilterResponse(f))
	}

	c.JSON(http.StatusOK, gin.H{"filters": out, "total": len(out)})
}

func (h *Handler) APICreateFilter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	filter := database.Filter{
		Name:       req.Name,
		Keywords:   req.Keywords,
		Sources:    req.Sources,
		Categories: req.Categories,
		IsActive:   true,
	}
	if req.IsActive != nil {
		filter.IsActive = *req.IsActive
	}

	created, err := h.filterRepo.CreateFilter(c.Request.Context(), filter)
	if err != nil {
		slog.Error("Database error", "operation", "create_filter", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, toFilterResponse(*created))
}

func (h *Handler) APIGetFilter(c *gin.Context) {
	filter, ok := h.loadFilter(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, toFilterResponse(*filter))
}

func (h *Handler) APIUpdateFilter(c *gin.Context) {
	filter, ok := h.loadFilter(c)
	if !ok {
		return
	}

	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	filter.Name = req.Name
	filter.Keywords = req.Keywords
	filter.Sources = req.Sources
	filter.Categories = req.Categories
	if req.IsActive != nil {
		filter.IsActive = *req.IsActive
	}

	updated, err := h.filterRepo.UpdateFilter(c.Request.Context(), *filter)
	if err != nil {
		slog.Error("Database error", "operation", "update_filter", "filter", filter.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, toFilterResponse(*updated))
}

func (h *Handler) APIDeleteFilter(c *gin.Context) {
	filter, ok := h.loadFilter(c)
	if !ok {
		return
	}

	if err := h.filterRepo.DeleteFilter(c.Request.Context(), filter.ID); err != nil {
		slog.Error("Database error", "operation", "delete_filter", "filter", filter.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// APIApplyFilter previews a filter against recently published articles
// without touching any alert state. An optional days value widens or
// narrows the window.
func (h *Handler) APIApplyFilter(c *gin.Context) {
	filter, ok := h.loadFilter(c)
	if !ok {
		return
	}

	lookback, ok := h.lookbackFromBody(c)
	if !ok {
		return
	}

	since := time.Now().UTC().Add(-lookback)
	articles, err := h.articleRepo.GetPublishedSince(c.Request.Context(), since)
	if err != nil {
		slog.Error("Database error", "operation", "get_articles", "filter", filter.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	matched := make([]articleResponse, 0)
	for _, a := range articles {
		if h.matcher.Matches(a, *filter) {
			matched = append(matched, toArticleResponse(a))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"filter":     toFilterResponse(*filter),
		"candidates": len(articles),
		"matched":    len(matched),
		"articles":   matched,
	})
}

func (h *Handler) APIListAlerts(c *gin.Context) {
	alerts, err := h.alertRepo.ListAlerts(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "list_alerts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	out := make([]alertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAlertResponse(a))
	}

	c.JSON(http.StatusOK, gin.H{"alerts": out, "total": len(out)})
}

func (h *Handler) APICreateAlert(c *gin.Context) {
	var req alertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if !alert.Frequency(req.Frequency).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid frequency", "message": "Must be one of: immediate, hourly, daily"})
		return
	}

	filter, err := h.filterRepo.GetFilter(c.Request.Context(), req.FilterID)
	if err != nil {
		slog.Error("Database error", "operation", "get_filter", "filter", req.FilterID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if filter == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Filter not found"})
		return
	}

	a := database.Alert{
		Email:     req.Email,
		FilterID:  req.FilterID,
		Frequency: req.Frequency,
		IsActive:  true,
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}

	created, err := h.alertRepo.CreateAlert(c.Request.Context(), a)
	if err != nil {
		slog.Error("Database error", "operation", "create_alert", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, toAlertResponse(*created))
}

func (h *Handler) APIGetAlert(c *gin.Context) {
	a, ok := h.loadAlert(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, toAlertResponse(*a))
}

func (h *Handler) APIUpdateAlert(c *gin.Context) {
	a, ok := h.loadAlert(c)
	if !ok {
		return
	}

	var req alertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if !alert.Frequency(req.Frequency).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid frequency", "message": "Must be one of: immediate, hourly, daily"})
		return
	}

	a.Email = req.Email
	a.FilterID = req.FilterID
	a.Frequency = req.Frequency
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}

	updated, err := h.alertRepo.UpdateAlert(c.Request.Context(), *a)
	if err != nil {
		slog.Error("Database error", "operation", "update_alert", "alert", a.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, toAlertResponse(*updated))
}

func (h *Handler) APIDeleteAlert(c *gin.Context) {
	a, ok := h.loadAlert(c)
	if !ok {
		return
	}

	if err := h.alertRepo.DeleteAlert(c.Request.Context(), a.ID); err != nil {
		slog.Error("Database error", "operation", "delete_alert", "alert", a.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// APITestAlert sends the alert's current matches to its email address,
// ignoring cadence. A successful send advances last_dispatched_at like any
// other delivery.
func (h *Handler) APITestAlert(c *gin.Context) {
	a, ok := h.loadAlert(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	now := time.Now().UTC()

	filter, err := h.filterRepo.GetFilter(ctx, a.FilterID)
	if err != nil {
		slog.Error("Database error", "operation", "get_filter", "alert", a.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if filter == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Alert references a missing filter"})
		return
	}

	articles, err := h.articleRepo.GetPublishedSince(ctx, now.Add(-h.lookback))
	if err != nil {
		slog.Error("Database error", "operation", "get_articles", "alert", a.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	matched := make([]database.Article, 0, alert.DispatchCap)
	for _, article := range articles {
		if h.matcher.Matches(article, *filter) {
			matched = append(matched, article)
			if len(matched) == alert.DispatchCap {
				break
			}
		}
	}

	if len(matched) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"status":  alert.StatusSkippedNoMatch,
			"message": "No matching articles in the lookback window",
		})
		return
	}

	outcome := h.dispatcher.Dispatch(ctx, *a, *filter, matched, now)

	status := http.StatusOK
	if outcome.Status == alert.StatusFailed {
		status = http.StatusBadGateway
	}

	c.JSON(status, gin.H{
		"status":   outcome.Status,
		"reason":   outcome.Reason,
		"articles": len(matched),
	})
}

func (h *Handler) APIListDispatches(c *gin.Context) {
	alertID := c.Query("alert_id")

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	dispatches, err := h.dispatchRepo.ListDispatches(c.Request.Context(), alertID, limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_dispatches", "alert", alertID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	out := make([]dispatchResponse, 0, len(dispatches))
	for _, d := range dispatches {
		out = append(out, toDispatchResponse(d))
	}

	c.JSON(http.StatusOK, gin.H{"dispatches": out, "total": len(out)})
}

// APIProcessAlerts runs one synchronous batch over all active alerts and
// returns the per-alert results. An optional days value overrides the
// configured lookback window.
func (h *Handler) APIProcessAlerts(c *gin.Context) {
	lookback, ok := h.lookbackFromBody(c)
	if !ok {
		return
	}

	summary, err := h.processor.Run(c.Request.Context(), lookback, time.Now().UTC())
	if err != nil {
		slog.Error("Alert processing run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Alert processing failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// lookbackFromBody reads an optional {"days": n} request body, falling back
// to the configured lookback. An empty body is fine.
func (h *Handler) lookbackFromBody(c *gin.Context) (time.Duration, bool) {
	var req lookbackRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return 0, false
	}

	if req.Days == nil {
		return h.lookback, true
	}
	if *req.Days < 1 || *req.Days > 90 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid days parameter", "message": "Must be between 1 and 90"})
		return 0, false
	}

	return time.Duration(*req.Days) * 24 * time.Hour, true
}

func (h *Handler) loadFilter(c *gin.Context) (*database.Filter, bool) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing filter id parameter"})
		return nil, false
	}

	filter, err := h.filterRepo.GetFilter(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "get_filter", "filter", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}
	if filter == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Filter not found"})
		return nil, false
	}

	return filter, true
}

func (h *Handler) loadAlert(c *gin.Context) (*database.Alert, bool) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing alert id parameter"})
		return nil, false
	}

	a, err := h.alertRepo.GetAlert(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "get_alert", "alert", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
		return nil, false
	}

	return a, true
}

func toArticleResponse(a database.Article) articleResponse {
	return articleResponse{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		URL:         a.URL,
		Source:      a.Source,
		Author:      a.Author,
		PublishedAt: a.PublishedAt.Format(time.RFC3339),
		ImageURL:    a.ImageURL,
		Category:    a.Category,
		Keywords:    a.Keywords,
	}
}

func toFilterResponse(f database.Filter) filterResponse {
	return filterResponse{
		ID:         f.ID,
		Name:       f.Name,
		Keywords:   f.Keywords,
		Sources:    f.Sources,
		Categories: f.Categories,
		IsActive:   f.IsActive,
		CreatedAt:  f.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  f.UpdatedAt.Format(time.RFC3339),
	}
}

func toAlertResponse(a database.Alert) alertResponse {
	resp := alertResponse{
		ID:        a.ID,
		Email:     a.Email,
		FilterID:  a.FilterID,
		Frequency: a.Frequency,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
	if a.LastDispatchedAt != nil {
		formatted := a.LastDispatchedAt.Format(time.RFC3339)
		resp.LastDispatchedAt = &formatted
	}
	return resp
}

func toDispatchResponse(d database.Dispatch) dispatchResponse {
	return dispatchResponse{
		ID:           d.ID,
		AlertID:      d.AlertID,
		Outcome:      d.Outcome,
		ErrorMessage: d.ErrorMessage,
		DispatchedAt: d.DispatchedAt.Format(time.RFC3339),
		ArticleIDs:   d.ArticleIDs,
	}
}
