package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// UploadConfig 上传配置
type UploadConfig struct {
	MaxFileSize    int64            // 最大文件大小（字节）
	AllowedFormats []string         // 允许的文件格式
	Normalize      *NormalizeConfig // 归一化配置
}

// DefaultUploadConfig 默认上传配置
var DefaultUploadConfig = &UploadConfig{
	MaxFileSize:    10 * 1024 * 1024, // 10MB
	AllowedFormats: []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
	Normalize:      DefaultNormalizeConfig,
}

// FileUploader 文件上传预处理器
// 本服务不落盘：图片在内存中校验、归一化后转发给托管后端存储。
type FileUploader struct {
	config *UploadConfig
}

// NewFileUploader 创建文件上传器实例
func NewFileUploader(uploadConfig ...*UploadConfig) *FileUploader {
	cfg := DefaultUploadConfig
	if len(uploadConfig) > 0 && uploadConfig[0] != nil {
		cfg = uploadConfig[0]
	}
	return &FileUploader{config: cfg}
}

// PrepareImage 校验并归一化单个上传文件
func (fu *FileUploader) PrepareImage(file *multipart.FileHeader) (*NormalizedImage, error) {
	// 验证文件大小
	if file.Size > fu.config.MaxFileSize {
		return nil, fmt.Errorf("file %s exceeds maximum allowed size of %d bytes", file.Filename, fu.config.MaxFileSize)
	}

	// 验证文件格式
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !fu.isAllowedFormat(ext) {
		return nil, fmt.Errorf("file format %s is not allowed", ext)
	}

	// 打开文件
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", file.Filename, err)
	}
	defer src.Close()

	// 归一化（解码失败只影响该文件）
	return NormalizeImage(src, file.Filename, fu.config.Normalize)
}

// isAllowedFormat 检查文件格式是否允许
func (fu *FileUploader) isAllowedFormat(ext string) bool {
	for _, allowed := range fu.config.AllowedFormats {
		if strings.EqualFold(ext, allowed) {
			return true
		}
	}
	return false
}
