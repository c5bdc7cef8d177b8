package handler

import (
	"net/http"

	"github.com/aki307/frext/service"
	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	catalog *service.Catalog
}

func NewTemplateHandler(catalog *service.Catalog) *TemplateHandler {
	return &TemplateHandler{catalog: catalog}
}

// List returns all templates, or those of ?category=
func (h *TemplateHandler) List(c *gin.Context) {
	templates := h.catalog.List(c.Query("category"))
	ok(c, http.StatusOK, &templates, "")
}

func (h *TemplateHandler) Get(c *gin.Context) {
	tpl, found := h.catalog.Get(c.Param("id"))
	if !found {
		fail(c, http.StatusNotFound, "Template not found")
		return
	}
	ok(c, http.StatusOK, &tpl, "")
}
