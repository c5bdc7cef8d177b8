package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aki307/frext/middleware"
	"github.com/aki307/frext/model"
	"github.com/aki307/frext/service"
	"github.com/gin-gonic/gin"
)

// ResultHandler serves history, saved results and usage for the signed-in user
type ResultHandler struct {
	store        *service.ResultStore
	accounts     *service.Accounts
	monthlyQuota int
}

func NewResultHandler(store *service.ResultStore, accounts *service.Accounts, monthlyQuota int) *ResultHandler {
	return &ResultHandler{store: store, accounts: accounts, monthlyQuota: monthlyQuota}
}

var validStatuses = map[string]bool{
	model.StatusPending:    true,
	model.StatusProcessing: true,
	model.StatusCompleted:  true,
	model.StatusFailed:     true,
}

func queryInt(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (h *ResultHandler) History(c *gin.Context) {
	page, okPage := queryInt(c, "page")
	limit, okLimit := queryInt(c, "limit")
	if !okPage || !okLimit {
		fail(c, http.StatusBadRequest, "page and limit must be non-negative integers")
		return
	}
	status := c.Query("status")
	if status != "" && !validStatuses[status] {
		fail(c, http.StatusBadRequest, "Unknown status")
		return
	}

	result := h.store.List(middleware.GetUserID(c), service.HistoryFilter{
		Page:       page,
		Limit:      limit,
		Status:     status,
		TemplateID: c.Query("templateId"),
	})
	ok(c, http.StatusOK, &result, "")
}

func (h *ResultHandler) Save(c *gin.Context) {
	var rec model.ProcessingRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}
	if rec.Status != "" && !validStatuses[rec.Status] {
		fail(c, http.StatusBadRequest, "Unknown status")
		return
	}

	saved := h.store.Save(middleware.GetUserID(c), rec)
	ok(c, http.StatusOK, &saved, "Result saved")
}

func (h *ResultHandler) Get(c *gin.Context) {
	rec, found := h.store.Get(middleware.GetUserID(c), c.Param("id"))
	if !found {
		fail(c, http.StatusNotFound, "Result not found")
		return
	}
	ok(c, http.StatusOK, &rec, "")
}

func (h *ResultHandler) Profile(c *gin.Context) {
	user, found := h.accounts.Lookup(middleware.GetUserID(c))
	if !found {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	ok(c, http.StatusOK, &user, "")
}

func (h *ResultHandler) UsageStats(c *gin.Context) {
	stats := h.store.Stats(middleware.GetUserID(c), h.monthlyQuota, time.Now())
	ok(c, http.StatusOK, &stats, "")
}
