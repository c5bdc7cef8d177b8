package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aki307/frext/model"
	"github.com/aki307/frext/pkg/logger"
	"github.com/aki307/frext/service"
	"github.com/aki307/frext/upload"
	"github.com/gin-gonic/gin"
)

type ProcessHandler struct {
	processor *service.Processor
	catalog   *service.Catalog
	validator upload.Validator
}

func NewProcessHandler(processor *service.Processor, catalog *service.Catalog, maxSize int64) *ProcessHandler {
	return &ProcessHandler{
		processor: processor,
		catalog:   catalog,
		validator: upload.Validator{MaxSize: maxSize},
	}
}

// readImage validates the multipart "image" part and the optional
// templateId and JSON options fields. It writes the error response itself.
func (h *ProcessHandler) readImage(c *gin.Context) (service.OCRInput, bool) {
	header, err := c.FormFile("image")
	if err != nil {
		fail(c, http.StatusBadRequest, "No image provided")
		return service.OCRInput{}, false
	}

	file, err := header.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "Failed to read file")
		return service.OCRInput{}, false
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, "Failed to read file")
		return service.OCRInput{}, false
	}

	if _, err := h.validator.Validate(header.Filename, header.Size, head[:n]); err != nil {
		status := http.StatusUnsupportedMediaType
		if errors.Is(err, upload.ErrTooLarge) {
			status = http.StatusRequestEntityTooLarge
		} else if errors.Is(err, upload.ErrEmpty) {
			status = http.StatusBadRequest
		}
		fail(c, status, err.Error())
		return service.OCRInput{}, false
	}

	in := service.OCRInput{
		FileName:   header.Filename,
		Size:       header.Size,
		TemplateID: c.PostForm("templateId"),
	}
	if raw := c.PostForm("options"); raw != "" {
		var opts model.ProcessingOptions
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			fail(c, http.StatusBadRequest, "Invalid options")
			return service.OCRInput{}, false
		}
		in.Options = &opts
	}
	return in, true
}

func processFailure(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrTemplateNotFound):
		fail(c, http.StatusNotFound, "Template not found")
	case errors.Is(err, service.ErrTemplateInactive), errors.Is(err, service.ErrEmptyText):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		fail(c, http.StatusGatewayTimeout, "Processing was interrupted")
	default:
		logger.Error(c.Request.Context(), op+".error", "error", err)
		fail(c, http.StatusInternalServerError, "Processing failed")
	}
}

func (h *ProcessHandler) OCR(c *gin.Context) {
	in, valid := h.readImage(c)
	if !valid {
		return
	}

	res, err := h.processor.OCR(c.Request.Context(), in)
	if err != nil {
		processFailure(c, "ocr", err)
		return
	}
	h.catalog.RecordUsage(in.TemplateID)

	ok(c, http.StatusOK, res, "")
}

type GPTRequest struct {
	Text       string                   `json:"text" binding:"required"`
	TemplateID string                   `json:"templateId"`
	Options    *model.ProcessingOptions `json:"options"`
}

func (h *ProcessHandler) GPT(c *gin.Context) {
	var req GPTRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	res, err := h.processor.GPT(c.Request.Context(), req.Text, req.TemplateID)
	if err != nil {
		processFailure(c, "gpt", err)
		return
	}

	ok(c, http.StatusOK, res, "")
}

// Complete runs OCR and GPT in one request
func (h *ProcessHandler) Complete(c *gin.Context) {
	in, valid := h.readImage(c)
	if !valid {
		return
	}
	ctx := c.Request.Context()

	ocr, err := h.processor.OCR(ctx, in)
	if err != nil {
		processFailure(c, "ocr", err)
		return
	}
	gpt, err := h.processor.GPT(ctx, ocr.ExtractedText, in.TemplateID)
	if err != nil {
		processFailure(c, "gpt", err)
		return
	}
	h.catalog.RecordUsage(in.TemplateID)

	logger.Info(ctx, "process.complete", "file", in.FileName, "template_id", in.TemplateID)
	ok(c, http.StatusOK, &model.CompleteResult{OCRResult: ocr, GPTResult: gpt}, "Processing complete")
}
