package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/bitfantasy/goldassay/internal/assay/engine"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// PhotoURLPrefix 照片对象的访问前缀
const PhotoURLPrefix = engine.PhotoURLPrefix

// MaxPhotoSize 照片大小上限
const MaxPhotoSize = 5 << 20

var (
	ErrUnsupportedPhoto = errors.New("photo must be a png, jpg or jpeg file")
	ErrPhotoTooLarge    = errors.New("photo exceeds 5 MB")
	ErrPhotoStorageOff  = errors.New("photo storage is not configured")
)

var photoContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// PhotoService 照片存储：配置了 MinIO 时存对象，否则返回 data URL
type PhotoService struct {
	minioClient *minio.Client
	bucketName  string
	logger      *zap.Logger
}

func NewPhotoService(minioClient *minio.Client, bucketName string, logger *zap.Logger) *PhotoService {
	return &PhotoService{
		minioClient: minioClient,
		bucketName:  bucketName,
		logger:      logger,
	}
}

// Upload 保存照片，返回写入表单 photo 字段的引用
func (s *PhotoService) Upload(ctx context.Context, userID, fileName string, reader io.Reader, fileSize int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	contentType, ok := photoContentTypes[ext]
	if !ok {
		return "", ErrUnsupportedPhoto
	}
	if fileSize > MaxPhotoSize {
		return "", ErrPhotoTooLarge
	}

	if s.minioClient == nil {
		data, err := io.ReadAll(io.LimitReader(reader, MaxPhotoSize+1))
		if err != nil {
			return "", fmt.Errorf("read photo: %w", err)
		}
		if len(data) > MaxPhotoSize {
			return "", ErrPhotoTooLarge
		}
		return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
	}

	objectName := fmt.Sprintf("photos/%s/%s%s", time.Now().Format("2006/01/02"), uuid.New().String()[:8], ext)
	_, err := s.minioClient.PutObject(ctx, s.bucketName, objectName, reader, fileSize, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"uploaded-by": userID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}
	s.logger.Info("Photo uploaded", zap.String("object", objectName), zap.String("user_id", userID))
	return PhotoURLPrefix + objectName, nil
}

// Open 读取 MinIO 中的照片
func (s *PhotoService) Open(ctx context.Context, objectName string) (io.ReadCloser, string, error) {
	if s.minioClient == nil {
		return nil, "", ErrPhotoStorageOff
	}
	objectName = strings.TrimPrefix(objectName, "/")
	if !strings.HasPrefix(objectName, "photos/") || strings.Contains(objectName, "..") {
		return nil, "", ErrUnsupportedPhoto
	}
	object, err := s.minioClient.GetObject(ctx, s.bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("get photo: %w", err)
	}
	info, err := object.Stat()
	if err != nil {
		object.Close()
		return nil, "", fmt.Errorf("stat photo: %w", err)
	}
	return object, info.ContentType, nil
}

// DecodeDataURL 解析内联照片，供证书渲染使用
func DecodeDataURL(ref string) ([]byte, string, error) {
	meta, payload, ok := strings.Cut(ref, ",")
	if !ok || !strings.HasPrefix(meta, "data:") || !strings.HasSuffix(meta, ";base64") {
		return nil, "", ErrUnsupportedPhoto
	}
	contentType := strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
	if !allowedPhotoType(contentType) {
		return nil, "", ErrUnsupportedPhoto
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode photo: %w", err)
	}
	return data, contentType, nil
}

func allowedPhotoType(contentType string) bool {
	for _, t := range photoContentTypes {
		if t == contentType {
			return true
		}
	}
	return false
}
