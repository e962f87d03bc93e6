package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/goldassay/internal/assay/entity"
	"github.com/bitfantasy/goldassay/internal/assay/repository"
	"github.com/bitfantasy/goldassay/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials 用户名或密码错误
var ErrInvalidCredentials = errors.New("invalid username or password")

const sessionKeyPrefix = "assay:session:"

// AuthService 认证服务
type AuthService struct {
	userRepo  *repository.UserRepository
	auditRepo *repository.AuditLogRepository
	rdb       *redis.Client
	cfg       *config.Config
	logger    *zap.Logger
}

// NewAuthService 创建认证服务
func NewAuthService(userRepo *repository.UserRepository, auditRepo *repository.AuditLogRepository, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		auditRepo: auditRepo,
		rdb:       rdb,
		cfg:       cfg,
		logger:    logger,
	}
}

// LoginResult 登录结果
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"`
	SessionID   string       `json:"session_id"`
	User        *entity.User `json:"user"`
}

// Login 校验用户名密码并签发 token
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	sid := uuid.New().String()
	token, err := s.generateToken(user, sid)
	if err != nil {
		return nil, err
	}

	// 存储会话到Redis
	if s.rdb != nil {
		if err := s.rdb.Set(ctx, sessionKeyPrefix+sid, user.ID, s.sessionTTL()).Err(); err != nil {
			return nil, fmt.Errorf("store session: %w", err)
		}
	}

	if err := s.auditRepo.LogAction(ctx, entity.AuditActionLogin, user.ID, user.Username); err != nil {
		s.logger.Warn("Failed to record login", zap.String("user_id", user.ID), zap.Error(err))
	}

	return &LoginResult{
		AccessToken: token,
		ExpiresIn:   int64(s.cfg.JWT.AccessTokenExpire.Seconds()),
		SessionID:   sid,
		User:        user,
	}, nil
}

func (s *AuthService) generateToken(user *entity.User, sid string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"uid":      user.ID,
		"username": user.Username,
		"is_admin": user.IsAdmin,
		"sid":      sid,
		"iss":      s.cfg.JWT.Issuer,
		"iat":      now.Unix(),
		"exp":      now.Add(s.cfg.JWT.AccessTokenExpire).Unix(),
		"jti":      uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) sessionTTL() time.Duration {
	if s.cfg.Redis.SessionTTL > 0 {
		return s.cfg.Redis.SessionTTL
	}
	return s.cfg.JWT.AccessTokenExpire
}

// SessionActive token 对应的会话是否未登出；未启用 Redis 时只依赖 token 过期
func (s *AuthService) SessionActive(ctx context.Context, sid string) bool {
	if s.rdb == nil {
		return true
	}
	n, err := s.rdb.Exists(ctx, sessionKeyPrefix+sid).Result()
	if err != nil {
		s.logger.Warn("Session lookup failed", zap.String("sid", sid), zap.Error(err))
		return false
	}
	return n > 0
}

// Logout 登出
func (s *AuthService) Logout(ctx context.Context, sid string) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, sessionKeyPrefix+sid).Err()
}

// GetCurrentUser 获取当前用户
func (s *AuthService) GetCurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}
