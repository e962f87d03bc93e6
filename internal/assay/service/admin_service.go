package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/bitfantasy/goldassay/internal/assay/engine"
	"github.com/bitfantasy/goldassay/internal/assay/entity"
	"github.com/bitfantasy/goldassay/internal/assay/repository"
	"github.com/bitfantasy/goldassay/internal/assay/sse"
	"go.uber.org/zap"
)

// AdminService 管理端：流程监控、删除表单、审计日志
type AdminService struct {
	formRepo  *repository.FormRepository
	auditRepo *repository.AuditLogRepository
	userRepo  *repository.UserRepository
	store     engine.FormStore
	hub       *sse.Hub
	logger    *zap.Logger
}

func NewAdminService(formRepo *repository.FormRepository, auditRepo *repository.AuditLogRepository, userRepo *repository.UserRepository, store engine.FormStore, hub *sse.Hub, logger *zap.Logger) *AdminService {
	return &AdminService{
		formRepo:  formRepo,
		auditRepo: auditRepo,
		userRepo:  userRepo,
		store:     store,
		hub:       hub,
		logger:    logger,
	}
}

// WorkflowQuery 流程监控查询条件
type WorkflowQuery struct {
	Username string `form:"username"`
	SortBy   string `form:"sort_by"`
	Order    string `form:"order"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ListForms 所有用户的表单，可按用户名过滤
func (s *AdminService) ListForms(ctx context.Context, q WorkflowQuery) ([]entity.FormWithUser, int64, error) {
	rows, err := s.formRepo.ListWithUsers(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list forms: %w", err)
	}

	if name := strings.TrimSpace(q.Username); name != "" {
		filtered := rows[:0]
		for _, r := range rows {
			if strings.Contains(strings.ToLower(r.Username), strings.ToLower(name)) {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	desc := !strings.EqualFold(q.Order, "asc")
	slices.SortStableFunc(rows, func(a, b entity.FormWithUser) int {
		var c int
		switch q.SortBy {
		case SortByDate:
			c = compareFormTime(a.Form, b.Form)
		case SortByUsername:
			c = strings.Compare(a.Username, b.Username)
		default:
			c = cmp.Compare(a.FormNumber, b.FormNumber)
		}
		if desc {
			return -c
		}
		return c
	})

	return paginate(rows, q.Page, q.PageSize), int64(len(rows)), nil
}

// DeleteForm 删除任意用户的表单
func (s *AdminService) DeleteForm(ctx context.Context, actorID, formID string) error {
	form, err := s.formRepo.FindByID(ctx, formID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteForm(ctx, formID); err != nil {
		return err
	}

	subject := fmt.Sprintf("Form %d", form.FormNumber)
	if err := s.auditRepo.LogAction(ctx, entity.AuditActionDeleteForm, actorID, subject); err != nil {
		s.logger.Warn("Failed to record form deletion", zap.String("form_id", formID), zap.Error(err))
	}

	if s.hub != nil {
		s.hub.PublishFormUpdate(sse.FormUpdate{
			FormID:     formID,
			FormNumber: form.FormNumber,
			UserID:     form.UserID,
			Action:     sse.ActionDeleted,
		})
	}
	s.logger.Info("Form deleted by admin",
		zap.String("form_id", formID),
		zap.String("owner", form.UserID),
		zap.String("actor", actorID))
	return nil
}

// ListAuditLogs 审计日志
func (s *AdminService) ListAuditLogs(ctx context.Context, page, pageSize int) ([]entity.AuditLog, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.auditRepo.List(ctx, page, pageSize)
}

// ListUsers 用户列表
func (s *AdminService) ListUsers(ctx context.Context) ([]entity.User, error) {
	return s.userRepo.List(ctx)
}
