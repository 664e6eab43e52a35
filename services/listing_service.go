package services

import (
	"context"
	"errors"
	"mime/multipart"

	"fleamarket_go/backend"
	"fleamarket_go/middleware"
	"fleamarket_go/models"
	"fleamarket_go/utils"

	"go.uber.org/zap"
)

var ErrTooManyImages = errors.New("a listing can have at most 10 images")

// ListingService 商品发布服务
type ListingService struct {
	client   *backend.Client
	uploader *utils.FileUploader
}

// NewListingService 创建商品发布服务实例
func NewListingService(client ...*backend.Client) *ListingService {
	c := backend.Get()
	if len(client) > 0 && client[0] != nil {
		c = client[0]
	}
	return &ListingService{
		client:   c,
		uploader: utils.NewFileUploader(),
	}
}

// Create 创建商品发布
func (ls *ListingService) Create(ctx context.Context, input models.ListingInput) (*models.Listing, error) {
	if len(input.Images) > models.MaxListingImages {
		return nil, ErrTooManyImages
	}
	input.Title = utils.SanitizeString(input.Title)
	input.Description = utils.SanitizeString(input.Description)

	return ls.client.CreateListing(ctx, input)
}

// Update 编辑商品发布
func (ls *ListingService) Update(ctx context.Context, listingID string, input models.ListingInput) (*models.Listing, error) {
	if len(input.Images) > models.MaxListingImages {
		return nil, ErrTooManyImages
	}
	input.Title = utils.SanitizeString(input.Title)
	input.Description = utils.SanitizeString(input.Description)

	return ls.client.UpdateListing(ctx, listingID, input)
}

// UploadFailure 单个文件的上传失败记录
type UploadFailure struct {
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}

// UploadReport 批量上传结果
type UploadReport struct {
	URLs    []string        `json:"urls"`
	Failed  []UploadFailure `json:"failed,omitempty"`
	Skipped int             `json:"skipped,omitempty"` // 超出容量被跳过的文件数
}

// UploadImages 批量上传商品图片
// 按剩余容量截断后逐个串行处理：校验、归一化、上传，
// 每个文件等待自己的网络往返完成后再处理下一个。
// 单个文件失败（解码失败、上传失败）记录后继续，不中断批次。
func (ls *ListingService) UploadImages(ctx context.Context, files []*multipart.FileHeader, existingCount int) *UploadReport {
	report := &UploadReport{}

	capacity := models.MaxListingImages - existingCount
	if capacity < 0 {
		capacity = 0
	}
	if len(files) > capacity {
		report.Skipped = len(files) - capacity
		files = files[:capacity]
	}

	for _, file := range files {
		image, err := ls.uploader.PrepareImage(file)
		if err != nil {
			report.Failed = append(report.Failed, UploadFailure{FileName: file.Filename, Reason: err.Error()})
			middleware.WarnLogger("image normalization failed",
				zap.String("file", file.Filename),
				zap.Error(err),
			)
			continue
		}

		url, err := ls.client.UploadImage(ctx, image.FileName, image.Data)
		if err != nil {
			report.Failed = append(report.Failed, UploadFailure{FileName: file.Filename, Reason: err.Error()})
			middleware.WarnLogger("image upload failed",
				zap.String("file", file.Filename),
				zap.Error(err),
			)
			continue
		}

		report.URLs = append(report.URLs, url)
	}

	return report
}
