package handler

import (
	"net/http"
	"strings"

	"github.com/bitfantasy/goldassay/internal/assay/engine"
	"github.com/bitfantasy/goldassay/internal/assay/service"
	"github.com/gin-gonic/gin"
)

// SessionHandler 表单编辑会话
type SessionHandler struct {
	svc    *service.SessionService
	photos *service.PhotoService
}

func NewSessionHandler(svc *service.SessionService, photos *service.PhotoService) *SessionHandler {
	return &SessionHandler{svc: svc, photos: photos}
}

func (h *SessionHandler) session(c *gin.Context) (*engine.Session, bool) {
	sess, err := h.svc.Get(c.Request.Context(), GetUserID(c), GetSessionID(c))
	if err != nil {
		RespondError(c, err)
		return nil, false
	}
	return sess, true
}

func respondView(c *gin.Context, view *engine.View, err error) {
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, view)
}

// Get GET /session
func (h *SessionHandler) Get(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	Success(c, sess.View())
}

// New POST /session/new
func (h *SessionHandler) New(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	view, err := sess.NewForm(c.Request.Context())
	respondView(c, view, err)
}

// LoadRequest 按列表位置加载
type LoadRequest struct {
	Index *int `json:"index" binding:"required"`
}

// Load POST /session/load
func (h *SessionHandler) Load(c *gin.Context) {
	var req LoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "index is required")
		return
	}
	sess, ok := h.session(c)
	if !ok {
		return
	}
	view, err := sess.LoadAt(*req.Index)
	respondView(c, view, err)
}

// SelectRequest 按ID选择
type SelectRequest struct {
	ID string `json:"id" binding:"required"`
}

// Select POST /session/select
func (h *SessionHandler) Select(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "id is required")
		return
	}
	sess, ok := h.session(c)
	if !ok {
		return
	}
	view, err := sess.Select(c.Request.Context(), req.ID)
	respondView(c, view, err)
}

// Next POST /session/next
func (h *SessionHandler) Next(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	view, err := sess.Next()
	respondView(c, view, err)
}

// Previous POST /session/previous
func (h *SessionHandler) Previous(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	view, err := sess.Previous()
	respondView(c, view, err)
}

// SearchRequest 搜索
type SearchRequest struct {
	Query string `json:"query"`
}

// Search POST /session/search
func (h *SessionHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid search request")
		return
	}
	sess, ok := h.session(c)
	if !ok {
		return
	}
	view, err := sess.Search(c.Request.Context(), req.Query)
	respondView(c, view, err)
}

// Refresh POST /session/refresh
func (h *SessionHandler) Refresh(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	view, err := sess.Refresh(c.Request.Context())
	respondView(c, view, err)
}

// FieldRequest 修改单个字段；数值字段传空串表示清空
type FieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// UpdateField PATCH /session/field
func (h *SessionHandler) UpdateField(c *gin.Context) {
	var req FieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "field is required")
		return
	}
	sess, ok := h.session(c)
	if !ok {
		return
	}
	view, err := sess.UpdateField(engine.Field(req.Field), req.Value)
	respondView(c, view, err)
}

// ApplyTemplateRequest 套用模板
type ApplyTemplateRequest struct {
	TemplateID string `json:"template_id" binding:"required"`
}

// ApplyTemplate POST /session/template
func (h *SessionHandler) ApplyTemplate(c *gin.Context) {
	var req ApplyTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "template_id is required")
		return
	}
	sess, ok := h.session(c)
	if !ok {
		return
	}
	view, err := sess.ApplyTemplate(req.TemplateID)
	respondView(c, view, err)
}

// Save POST /session/save
func (h *SessionHandler) Save(c *gin.Context) {
	h.commit(c, engine.IntentSave)
}

// Print POST /session/print
func (h *SessionHandler) Print(c *gin.Context) {
	h.commit(c, engine.IntentSaveAndPrint)
}

func (h *SessionHandler) commit(c *gin.Context, intent engine.Intent) {
	result, err := h.svc.Commit(c.Request.Context(), GetUserID(c), GetSessionID(c), intent)
	if err != nil {
		RespondError(c, err)
		return
	}
	if result.Created {
		Created(c, result)
		return
	}
	Success(c, result)
}

// UploadPhoto POST /session/photo (multipart, 字段 file)
func (h *SessionHandler) UploadPhoto(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if !sess.IsEditable() {
		RespondError(c, engine.ErrLocked)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "photo file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "read upload: "+err.Error())
		return
	}
	defer file.Close()

	ref, err := h.photos.Upload(c.Request.Context(), GetUserID(c), fileHeader.Filename, file, fileHeader.Size)
	if err != nil {
		RespondError(c, err)
		return
	}
	view, err := sess.UpdateField(engine.FieldPhoto, ref)
	respondView(c, view, err)
}

// Photo GET /session/photo 当前草稿的照片
func (h *SessionHandler) Photo(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	ref := sess.Draft().Photo
	switch {
	case ref == "":
		NotFound(c, "form has no photo")
	case strings.HasPrefix(ref, service.PhotoURLPrefix):
		c.Redirect(http.StatusFound, ref)
	default:
		data, contentType, err := service.DecodeDataURL(ref)
		if err != nil {
			RespondError(c, err)
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}
