package handler

import (
	"github.com/bitfantasy/goldassay/internal/assay/service"
	"github.com/gin-gonic/gin"
)

// AdminHandler 管理端处理器
type AdminHandler struct {
	svc   *service.AdminService
	users *service.UserService
}

func NewAdminHandler(svc *service.AdminService, users *service.UserService) *AdminHandler {
	return &AdminHandler{svc: svc, users: users}
}

// CreateUser POST /admin/users
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "username and password are required")
		return
	}
	user, err := h.users.CreateUser(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, user)
}

// ListUsers GET /admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		InternalError(c, "list users: "+err.Error())
		return
	}
	Success(c, gin.H{"items": users})
}

// ListForms GET /admin/forms
func (h *AdminHandler) ListForms(c *gin.Context) {
	var q service.WorkflowQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		BadRequest(c, "invalid query: "+err.Error())
		return
	}
	q.Page, q.PageSize = GetPagination(c)

	rows, total, err := h.svc.ListForms(c.Request.Context(), q)
	if err != nil {
		InternalError(c, "list forms: "+err.Error())
		return
	}
	Success(c, ListResponse{
		Items:      rows,
		Pagination: NewPagination(q.Page, q.PageSize, total),
	})
}

// DeleteForm DELETE /admin/forms/:id
func (h *AdminHandler) DeleteForm(c *gin.Context) {
	if err := h.svc.DeleteForm(c.Request.Context(), GetUserID(c), c.Param("id")); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

// ListAuditLogs GET /admin/audit-logs
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	page, pageSize := GetPagination(c)
	logs, total, err := h.svc.ListAuditLogs(c.Request.Context(), page, pageSize)
	if err != nil {
		InternalError(c, "list audit logs: "+err.Error())
		return
	}
	Success(c, ListResponse{
		Items:      logs,
		Pagination: NewPagination(page, pageSize, total),
	})
}
