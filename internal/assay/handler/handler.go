package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bitfantasy/goldassay/internal/assay/engine"
	"github.com/bitfantasy/goldassay/internal/assay/repository"
	"github.com/bitfantasy/goldassay/internal/assay/service"
	"github.com/bitfantasy/goldassay/internal/assay/sse"
	"github.com/gin-gonic/gin"
)

// 业务错误码；HTTP 状态码取 code/100
const (
	CodeBadRequest   = 40000
	CodeUnauthorized = 40100
	CodeForbidden    = 40300
	CodeNotFound     = 40400
	CodeLocked       = 40900
	CodeNoMoreForms  = 40901
	CodeConflict     = 40902
	CodeValidation   = 42200
	CodeInternal     = 50000
)

// Handlers 处理器集合
type Handlers struct {
	Auth     *AuthHandler
	Session  *SessionHandler
	Template *TemplateHandler
	Report   *ReportHandler
	Admin    *AdminHandler
	Photo    *PhotoHandler
	SSE      *SSEHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services, hub *sse.Hub) *Handlers {
	return &Handlers{
		Auth:     NewAuthHandler(svc.Auth, svc.Session),
		Session:  NewSessionHandler(svc.Session, svc.Photo),
		Template: NewTemplateHandler(svc.Session),
		Report:   NewReportHandler(svc.Report),
		Admin:    NewAdminHandler(svc.Admin, svc.User),
		Photo:    NewPhotoHandler(svc.Photo),
		SSE:      NewSSEHandler(hub),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse 列表响应结构
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination 计算总页数
func NewPagination(page, pageSize int, total int64) *Pagination {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      int(total),
		TotalPages: totalPages,
	}
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	ErrorWithData(c, code, message, nil)
}

// ErrorWithData 带数据的错误响应（例如校验明细）
func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = http.StatusInternalServerError
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, CodeBadRequest, message)
}

// Unauthorized 未授权响应
func Unauthorized(c *gin.Context, message string) {
	Error(c, CodeUnauthorized, message)
}

// Forbidden 禁止访问响应
func Forbidden(c *gin.Context, message string) {
	Error(c, CodeForbidden, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, CodeNotFound, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, CodeInternal, message)
}

// RespondError 把领域错误映射为响应
func RespondError(c *gin.Context, err error) {
	var verr *engine.ValidationError
	var serr *engine.StoreError
	switch {
	case errors.As(err, &verr):
		ErrorWithData(c, CodeValidation, verr.Error(), gin.H{"violations": verr.Violations})
	case errors.Is(err, engine.ErrLocked):
		Error(c, CodeLocked, err.Error())
	case errors.Is(err, engine.ErrNoMoreForms):
		Error(c, CodeNoMoreForms, err.Error())
	case errors.Is(err, engine.ErrReadOnlyField), errors.Is(err, engine.ErrUnknownField):
		BadRequest(c, err.Error())
	case errors.Is(err, engine.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrUsernameTaken):
		Error(c, CodeConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrUnsupportedPhoto), errors.Is(err, service.ErrPhotoTooLarge):
		BadRequest(c, err.Error())
	case errors.As(err, &serr):
		InternalError(c, "storage unavailable, please retry")
	default:
		InternalError(c, err.Error())
	}
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) string {
	return c.GetString("user_id")
}

// GetSessionID 从上下文获取登录会话ID
func GetSessionID(c *gin.Context) string {
	return c.GetString("session_id")
}

// GetPagination 从请求获取分页参数
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = service.DefaultPageSize

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= service.MaxPageSize {
			pageSize = v
		}
	}

	return page, pageSize
}
