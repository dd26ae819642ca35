package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/storefront/internal/config"
	"github.com/storefront/internal/logger"
	"github.com/storefront/internal/objstore"

	"github.com/google/uuid"
)

const mediaURLPrefix = "/media/"

// UploadedFile 上传结果
type UploadedFile struct {
	URL          string `json:"url"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalname"`
	MimeType     string `json:"mimetype"`
	Size         int64  `json:"size"`
}

// UploadService 媒体上传服务
type UploadService struct {
	cfg   config.UploadConfig
	store objstore.Store
}

// NewUploadService 创建媒体上传服务
func NewUploadService(cfg config.UploadConfig, store objstore.Store) *UploadService {
	return &UploadService{cfg: cfg, store: store}
}

// MaxFiles 单次最多文件数
func (s *UploadService) MaxFiles() int {
	return s.cfg.MaxFiles
}

// SaveFiles 先整体校验再逐个写入
func (s *UploadService) SaveFiles(ctx context.Context, files []*multipart.FileHeader) ([]UploadedFile, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files uploaded", ErrUploadInvalid)
	}
	if s.cfg.MaxFiles > 0 && len(files) > s.cfg.MaxFiles {
		return nil, fmt.Errorf("%w: at most %d files", ErrUploadInvalid, s.cfg.MaxFiles)
	}
	types := make([]string, len(files))
	for i, file := range files {
		contentType, err := s.validate(file)
		if err != nil {
			return nil, err
		}
		types[i] = contentType
	}

	uploaded := make([]UploadedFile, 0, len(files))
	for i, file := range files {
		item, err := s.save(ctx, file, types[i])
		if err != nil {
			return uploaded, fmt.Errorf("%w: %w", ErrUploadFailed, err)
		}
		uploaded = append(uploaded, *item)
	}
	return uploaded, nil
}

// Open 读取已上传的媒体
func (s *UploadService) Open(ctx context.Context, filename string) (io.ReadCloser, objstore.ObjectInfo, error) {
	return s.store.Open(ctx, filename)
}

func (s *UploadService) validate(file *multipart.FileHeader) (string, error) {
	if s.cfg.MaxSize > 0 && file.Size > s.cfg.MaxSize {
		return "", fmt.Errorf("%w: file exceeds %d MB", ErrUploadInvalid, s.cfg.MaxSize/1024/1024)
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if len(s.cfg.AllowedExtensions) > 0 {
		if ext == "" || !isAllowedExtension(ext, s.cfg.AllowedExtensions) {
			return "", fmt.Errorf("%w: extension not allowed: %s", ErrUploadInvalid, ext)
		}
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// 读取文件头部识别 MIME 类型
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}
	sniffed := http.DetectContentType(buffer[:n])
	declared := declaredContentType(file)

	if len(s.cfg.AllowedTypes) == 0 {
		return firstNonEmpty(declared, sniffed), nil
	}
	// .mov 等容器无法嗅探，允许声明类型命中
	if isAllowedType(sniffed, s.cfg.AllowedTypes) {
		return sniffed, nil
	}
	if isAllowedType(declared, s.cfg.AllowedTypes) {
		return declared, nil
	}
	return "", fmt.Errorf("%w: file type not allowed: %s", ErrUploadInvalid, sniffed)
}

func (s *UploadService) save(ctx context.Context, file *multipart.FileHeader, contentType string) (*UploadedFile, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	filename := uuid.New().String() + strings.ToLower(filepath.Ext(file.Filename))
	if err := s.store.Put(ctx, filename, src, file.Size, contentType); err != nil {
		return nil, err
	}
	logger.Infow("media_uploaded", "filename", filename, "size", file.Size, "content_type", contentType)
	return &UploadedFile{
		URL:          mediaURLPrefix + filename,
		Filename:     filename,
		OriginalName: file.Filename,
		MimeType:     contentType,
		Size:         file.Size,
	}, nil
}

func declaredContentType(file *multipart.FileHeader) string {
	raw := file.Header.Get("Content-Type")
	if raw == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(mediaType)
}

func isAllowedType(contentType string, allowed []string) bool {
	if contentType == "" {
		return false
	}
	for _, t := range allowed {
		if strings.EqualFold(contentType, strings.TrimSpace(t)) {
			return true
		}
	}
	return false
}

func isAllowedExtension(ext string, allowed []string) bool {
	for _, allowedExt := range allowed {
		normalized := strings.ToLower(strings.TrimSpace(allowedExt))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if strings.EqualFold(ext, normalized) {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
