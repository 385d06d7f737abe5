package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stagelight/showreel-backend/internal/platform/apierr"
	"github.com/stagelight/showreel-backend/internal/services"
)

type AssetHandler struct {
	assetRoleService services.AssetRoleService
}

func NewAssetHandler(assetRoleService services.AssetRoleService) *AssetHandler {
	return &AssetHandler{assetRoleService: assetRoleService}
}

func scopeContextFromQuery(c *gin.Context) (services.ScopeContext, error) {
	sc := services.ScopeContext{IncludeGlobal: true}
	if raw := c.Query("include_global"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return sc, fmt.Errorf("invalid include_global: %s", raw)
		}
		sc.IncludeGlobal = v
	}
	if raw := c.Query("show_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return sc, fmt.Errorf("invalid show_id: %s", raw)
		}
		sc.ShowID = &id
	}
	if raw := c.Query("episode_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return sc, fmt.Errorf("invalid episode_id: %s", raw)
		}
		sc.EpisodeID = &id
	}
	return sc, nil
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid %s: %s", name, c.Param(name)))
		return uuid.Nil, false
	}
	return id, true
}

// GET /api/assets/eligible?role=&show_id=&episode_id=
func (h *AssetHandler) Eligible(c *gin.Context) {
	sc, err := scopeContextFromQuery(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeMissingContext, err)
		return
	}
	assets, err := h.assetRoleService.GetEligibleAssets(c.Request.Context(), c.Query("role"), sc)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"assets": assets})
}

// GET /api/assets/:id/can-use?role=&show_id=&episode_id=
func (h *AssetHandler) CanUse(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	sc, err := scopeContextFromQuery(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeMissingContext, err)
		return
	}
	result, err := h.assetRoleService.CanAssetBeUsedFor(c.Request.Context(), id, c.Query("role"), sc)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

// GET /api/assets/category/:category?show_id=&episode_id=
func (h *AssetHandler) ByCategory(c *gin.Context) {
	sc, err := scopeContextFromQuery(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeMissingContext, err)
		return
	}
	assets, err := h.assetRoleService.GetAssetsByCategory(c.Request.Context(), c.Param("category"), sc)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"assets": assets})
}

type updateRoleRequest struct {
	AssetRole *string `json:"asset_role"`
}

// PUT /api/assets/:id/role
func (h *AssetHandler) UpdateRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeInvalidRole, err)
		return
	}
	asset, err := h.assetRoleService.UpdateAssetRole(c.Request.Context(), id, req.AssetRole)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"asset": asset})
}

type updateScopeRequest struct {
	AssetScope string     `json:"asset_scope"`
	ShowID     *uuid.UUID `json:"show_id,omitempty"`
	EpisodeID  *uuid.UUID `json:"episode_id,omitempty"`
}

// PUT /api/assets/:id/scope
func (h *AssetHandler) UpdateScope(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateScopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeInvalidScope, err)
		return
	}
	asset, err := h.assetRoleService.UpdateAssetScope(c.Request.Context(), id, req.AssetScope, services.ScopeContext{
		ShowID:    req.ShowID,
		EpisodeID: req.EpisodeID,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"asset": asset})
}

// GET /api/assets/roles
func (h *AssetHandler) Roles(c *gin.Context) {
	stats, err := h.assetRoleService.RoleUsageStats(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"roles": stats})
}

// GET /api/assets/roles/:role/stats
func (h *AssetHandler) RoleStats(c *gin.Context) {
	usage, err := h.assetRoleService.RoleUsageFor(c.Request.Context(), c.Param("role"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, usage)
}

// GET /api/assets/:id/suggest-role
func (h *AssetHandler) SuggestRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	role, err := h.assetRoleService.SuggestRole(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"suggested_role": role})
}
