package service

import (
	"github.com/bitfantasy/goldassay/internal/assay/repository"
	"github.com/bitfantasy/goldassay/internal/assay/sse"
	"github.com/bitfantasy/goldassay/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// 分页默认值
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Services 服务集合
type Services struct {
	Auth    *AuthService
	User    *UserService
	Session *SessionService
	Report  *ReportService
	Admin   *AdminService
	Photo   *PhotoService
}

// NewServices 创建服务集合；rdb 为 nil 时登录会话只在进程内有效
func NewServices(repos *repository.Repositories, rdb *redis.Client, hub *sse.Hub, cfg *config.Config, logger *zap.Logger) *Services {
	store := repository.NewStore(repos, logger)

	// 初始化MinIO客户端
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			logger.Warn("MinIO unavailable, photos will be stored inline", zap.Error(err))
			minioClient = nil
		}
	}

	return &Services{
		Auth:    NewAuthService(repos.User, repos.AuditLog, rdb, cfg, logger),
		User:    NewUserService(repos.User, repos.AuditLog, logger),
		Session: NewSessionService(store, hub, logger),
		Report:  NewReportService(repos.Form),
		Admin:   NewAdminService(repos.Form, repos.AuditLog, repos.User, store, hub, logger),
		Photo:   NewPhotoService(minioClient, cfg.MinIO.Bucket, logger),
	}
}

// normalizePage 规范化分页参数
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// paginate 截取第 page 页
func paginate[T any](rows []T, page, pageSize int) []T {
	page, pageSize = normalizePage(page, pageSize)
	start := (page - 1) * pageSize
	if start >= len(rows) {
		return []T{}
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
