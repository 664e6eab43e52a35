package utils

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// NormalizeConfig 图片归一化配置
type NormalizeConfig struct {
	MaxWidth  int // 最大宽度
	MaxHeight int // 最大高度
	Quality   int // JPEG质量（1-100）
}

// DefaultNormalizeConfig 默认归一化配置
var DefaultNormalizeConfig = &NormalizeConfig{
	MaxWidth:  1200,
	MaxHeight: 1200,
	Quality:   92,
}

// NormalizedImage 归一化后的图片
type NormalizedImage struct {
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Data     []byte `json:"-"`
}

// NormalizeImage 归一化任意图片
// 解码为位图后等比缩放到不超过配置的最大尺寸（不放大），
// 统一重编码为JPEG。解码再编码的过程同时丢弃了原始元数据。
// 解码失败只导致该文件失败，由调用方决定如何展示。
func NormalizeImage(r io.Reader, originalName string, normalizeConfig ...*NormalizeConfig) (*NormalizedImage, error) {
	cfg := DefaultNormalizeConfig
	if len(normalizeConfig) > 0 && normalizeConfig[0] != nil {
		cfg = normalizeConfig[0]
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", originalName, err)
	}

	// 等比缩放，只缩小不放大
	bounds := img.Bounds()
	if bounds.Dx() > cfg.MaxWidth || bounds.Dy() > cfg.MaxHeight {
		img = imaging.Fit(img, cfg.MaxWidth, cfg.MaxHeight, imaging.Lanczos)
		bounds = img.Bounds()
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(cfg.Quality)); err != nil {
		return nil, fmt.Errorf("failed to encode image %s: %w", originalName, err)
	}

	return &NormalizedImage{
		FileName: normalizedFileName(originalName),
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Data:     buf.Bytes(),
	}, nil
}

// normalizedFileName 生成归一化后的文件名（统一.jpg后缀）
func normalizedFileName(originalName string) string {
	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	if base == "" {
		base = "image"
	}
	return fmt.Sprintf("%s_%s.jpg", base, uuid.NewString()[:8])
}
