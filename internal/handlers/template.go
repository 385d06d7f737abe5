package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/stagelight/showreel-backend/internal/domain/catalog"
	"github.com/stagelight/showreel-backend/internal/platform/apierr"
	"github.com/stagelight/showreel-backend/internal/services"
)

type TemplateHandler struct {
	templateService services.TemplateService
}

func NewTemplateHandler(templateService services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// POST /api/templates
func (h *TemplateHandler) Create(c *gin.Context) {
	var tpl types.ThumbnailTemplate
	if err := c.ShouldBindJSON(&tpl); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeInvalidTemplate, err)
		return
	}
	created, err := h.templateService.Create(c.Request.Context(), &tpl)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"template": created})
}

// GET /api/templates/:id
func (h *TemplateHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	tpl, err := h.templateService.GetByID(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"template": tpl})
}

// GET /api/templates/show/:showId
func (h *TemplateHandler) ActiveForShow(c *gin.Context) {
	showID, ok := parseIDParam(c, "showId")
	if !ok {
		return
	}
	templates, err := h.templateService.ActiveForShow(c.Request.Context(), showID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"templates": templates})
}

// GET /api/templates/:id/preview?format=
func (h *TemplateHandler) Preview(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	preview, err := h.templateService.PreviewLayout(c.Request.Context(), id, c.Query("format"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, preview)
}

// DELETE /api/templates/:id
func (h *TemplateHandler) Deactivate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.templateService.Deactivate(c.Request.Context(), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deactivated": true})
}
