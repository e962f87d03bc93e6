package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/goldassay/internal/assay/engine"
	"github.com/bitfantasy/goldassay/internal/assay/entity"
	"go.uber.org/zap"
)

const errorLogTimeout = 2 * time.Second

var (
	_ engine.FormStore = (*Store)(nil)
	_ engine.ErrorSink = (*Store)(nil)
)

// Store 表单会话使用的持久化适配器
type Store struct {
	repos  *Repositories
	logger *zap.Logger
}

// NewStore 创建持久化适配器
func NewStore(repos *Repositories, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{repos: repos, logger: logger}
}

func (s *Store) NextFormNumber(ctx context.Context, userID string) (int, error) {
	return s.repos.Form.NextFormNumber(ctx, userID)
}

func (s *Store) ListForms(ctx context.Context, userID string) ([]entity.Form, error) {
	return s.repos.Form.ListByUser(ctx, userID)
}

// UpsertForm 落库前再次统一净重和K数，保证冗余列一致
func (s *Store) UpsertForm(ctx context.Context, form *entity.Form) (string, error) {
	form.NetWeight = engine.ComputeNetWeight(form.GrossWeight)
	form.Karat = engine.ComputeKarat(form.Gold)
	id, err := s.repos.Form.Upsert(ctx, form)
	if errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("update form %s: %w", form.ID, engine.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("upsert form %d: %w", form.FormNumber, err)
	}
	return id, nil
}

func (s *Store) DeleteForm(ctx context.Context, id string) error {
	return s.repos.Form.Delete(ctx, id)
}

func (s *Store) ListTemplates(ctx context.Context, userID string) ([]entity.Template, error) {
	return s.repos.Template.ListByUser(ctx, userID)
}

func (s *Store) InsertTemplate(ctx context.Context, tmpl *entity.Template) (string, error) {
	tmpl.NetWeight = engine.ComputeNetWeight(tmpl.GrossWeight)
	tmpl.Karat = engine.ComputeKarat(tmpl.Gold)
	if err := s.repos.Template.Create(ctx, tmpl); err != nil {
		return "", fmt.Errorf("insert template: %w", err)
	}
	return tmpl.ID, nil
}

func (s *Store) RecordAudit(ctx context.Context, action, userID, subject string, at time.Time) error {
	return s.repos.AuditLog.Create(ctx, &entity.AuditLog{
		Action:    action,
		UserID:    userID,
		Subject:   subject,
		Timestamp: at,
	})
}

// LogError 写 error_logs；请求被取消也照写，失败只记 zap
func (s *Store) LogError(ctx context.Context, message string, at time.Time) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), errorLogTimeout)
	defer cancel()
	if err := s.repos.ErrorLog.Create(ctx, message, at); err != nil {
		s.logger.Warn("Failed to write error log", zap.String("message", message), zap.Error(err))
	}
}
