package handler

import (
	"github.com/bitfantasy/goldassay/internal/assay/entity"
	"github.com/bitfantasy/goldassay/internal/assay/service"
	"github.com/gin-gonic/gin"
)

// TemplateHandler 表单模板
type TemplateHandler struct {
	sessions *service.SessionService
}

func NewTemplateHandler(sessions *service.SessionService) *TemplateHandler {
	return &TemplateHandler{sessions: sessions}
}

// List GET /templates
func (h *TemplateHandler) List(c *gin.Context) {
	sess, err := h.sessions.Get(c.Request.Context(), GetUserID(c), GetSessionID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": sess.View().Templates})
}

// CreateTemplateRequest from_draft 为 true 时用当前草稿生成模板，忽略其余字段
type CreateTemplateRequest struct {
	FromDraft   bool     `json:"from_draft"`
	ItemName    string   `json:"item_name"`
	GrossWeight *float64 `json:"gross_weight"`
	Gold        *float64 `json:"gold"`
}

// Create POST /templates
func (h *TemplateHandler) Create(c *gin.Context) {
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid template: "+err.Error())
		return
	}
	sess, err := h.sessions.Get(c.Request.Context(), GetUserID(c), GetSessionID(c))
	if err != nil {
		RespondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if req.FromDraft {
		view, err := sess.SaveDraftAsTemplate(ctx)
		if err != nil {
			RespondError(c, err)
			return
		}
		Created(c, view)
		return
	}

	view, err := sess.SaveTemplate(ctx, &entity.Template{
		ItemName:    req.ItemName,
		GrossWeight: req.GrossWeight,
		Gold:        req.Gold,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, view)
}
