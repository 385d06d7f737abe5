package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stagelight/showreel-backend/internal/platform/apierr"
	"github.com/stagelight/showreel-backend/internal/services"
)

type CompositionHandler struct {
	compositionService services.CompositionService
	generatorService   services.GeneratorService
}

func NewCompositionHandler(compositionService services.CompositionService, generatorService services.GeneratorService) *CompositionHandler {
	return &CompositionHandler{
		compositionService: compositionService,
		generatorService:   generatorService,
	}
}

// POST /api/compositions
func (h *CompositionHandler) Create(c *gin.Context) {
	var req services.CreateCompositionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	comp, err := h.compositionService.Create(c.Request.Context(), req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"composition": comp})
}

// GET /api/compositions/:id
func (h *CompositionHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	comp, err := h.compositionService.GetWithAssets(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"composition": comp})
}

// POST /api/compositions/:id/assets
func (h *CompositionHandler) BindAsset(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.BindAssetInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeInvalidRole, err)
		return
	}
	binding, err := h.compositionService.BindAsset(c.Request.Context(), id, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"binding": binding})
}

// DELETE /api/compositions/:id/assets/:role
func (h *CompositionHandler) UnbindAsset(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.compositionService.UnbindAsset(c.Request.Context(), id, c.Param("role")); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"unbound": true})
}

// POST /api/compositions/:id/validate
func (h *CompositionHandler) Validate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.compositionService.Validate(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

type generateRequest struct {
	Formats []string `json:"formats"`
}

// POST /api/compositions/:id/generate
func (h *CompositionHandler) Generate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req generateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, apierr.CodeInvalidFormat, err)
			return
		}
	}
	result, err := h.generatorService.Generate(c.Request.Context(), id, req.Formats)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

// POST /api/compositions/:id/regenerate
func (h *CompositionHandler) Regenerate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.generatorService.Regenerate(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

// GET /api/compositions/:id/status
func (h *CompositionHandler) Status(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	state, err := h.generatorService.Status(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, state)
}
