package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/bitfantasy/goldassay/internal/assay/engine"
	"github.com/bitfantasy/goldassay/internal/assay/entity"
	"github.com/bitfantasy/goldassay/internal/assay/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrUsernameTaken 用户名已存在
var ErrUsernameTaken = errors.New("username already exists")

const (
	minPasswordLength = 8
	maxUsernameLength = 64
)

// 用户校验信息
const (
	MsgUsernameRequired = "Username is required"
	MsgUsernameTooLong  = "Username must be at most 64 characters"
	MsgWeakPassword     = "Password must be at least 8 characters and contain letters and digits"
)

// UserService 用户服务
type UserService struct {
	userRepo  *repository.UserRepository
	auditRepo *repository.AuditLogRepository
	logger    *zap.Logger
}

func NewUserService(userRepo *repository.UserRepository, auditRepo *repository.AuditLogRepository, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, auditRepo: auditRepo, logger: logger}
}

// CreateUserInput 创建用户请求
type CreateUserInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	IsAdmin  bool   `json:"is_admin"`
}

// CreateUser 管理员创建用户
func (s *UserService) CreateUser(ctx context.Context, actorID string, input *CreateUserInput) (*entity.User, error) {
	username := strings.TrimSpace(input.Username)
	if violations := validateCredentials(username, input.Password); len(violations) > 0 {
		return nil, &engine.ValidationError{Violations: violations}
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	user, err := s.create(ctx, username, input.Password, input.IsAdmin)
	if err != nil {
		return nil, err
	}

	if err := s.auditRepo.LogAction(ctx, entity.AuditActionCreateUser, actorID, username); err != nil {
		s.logger.Warn("Failed to record user creation", zap.String("username", username), zap.Error(err))
	}
	return user, nil
}

// EnsureDefaultAdmin 首次启动创建默认管理员，已存在则跳过
func (s *UserService) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if exists {
		return nil
	}
	if _, err := s.create(ctx, username, password, true); err != nil {
		return err
	}
	s.logger.Info("Default admin created", zap.String("username", username))
	return nil
}

// ListUsers 用户列表
func (s *UserService) ListUsers(ctx context.Context) ([]entity.User, error) {
	return s.userRepo.List(ctx)
}

func (s *UserService) create(ctx context.Context, username, password string, isAdmin bool) (*entity.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &entity.User{
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func validateCredentials(username, password string) []engine.Violation {
	var violations []engine.Violation
	switch {
	case username == "":
		violations = append(violations, engine.Violation{Field: "username", Message: MsgUsernameRequired})
	case len(username) > maxUsernameLength:
		violations = append(violations, engine.Violation{Field: "username", Message: MsgUsernameTooLong})
	}
	if !strongPassword(password) {
		violations = append(violations, engine.Violation{Field: "password", Message: MsgWeakPassword})
	}
	return violations
}

func strongPassword(p string) bool {
	if len(p) < minPasswordLength {
		return false
	}
	var letter, digit bool
	for _, r := range p {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}
