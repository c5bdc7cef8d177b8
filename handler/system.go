package handler

import (
	"net/http"
	"time"

	"github.com/aki307/frext/model"
	"github.com/gin-gonic/gin"
)

type SystemHandler struct {
	version string
}

func NewSystemHandler(version string) *SystemHandler {
	return &SystemHandler{version: version}
}

func (h *SystemHandler) Health(c *gin.Context) {
	ok(c, http.StatusOK, &model.HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
	}, "")
}

func (h *SystemHandler) Info(c *gin.Context) {
	ok(c, http.StatusOK, &model.SystemInfo{
		Version:   h.version,
		OCREngine: "frext-mock-ocr",
		GPTModel:  "frext-mock-gpt",
		Status:    "operational",
	}, "")
}
