package services

import (
	"context"
	"errors"
	"strings"

	"fleamarket_go/backend"
	"fleamarket_go/middleware"
	"fleamarket_go/models"
	"fleamarket_go/utils"

	"go.uber.org/zap"
)

var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// ReviewService 评价服务
type ReviewService struct {
	client *backend.Client
}

// NewReviewService 创建评价服务实例
func NewReviewService(client ...*backend.Client) *ReviewService {
	c := backend.Get()
	if len(client) > 0 && client[0] != nil {
		c = client[0]
	}
	return &ReviewService{client: c}
}

// Submit 提交评价
// 评分不在1-5范围内时本地拒绝，不发起任何网络请求；
// 空评论以null发送。
func (rs *ReviewService) Submit(ctx context.Context, input models.SubmitReviewInput) error {
	if input.Rating < 1 || input.Rating > 5 {
		return ErrInvalidRating
	}

	payload := models.ReviewPayload{
		RevieweeID:     input.RevieweeID,
		ConversationID: input.ConversationID,
		Rating:         input.Rating,
	}

	comment := strings.TrimSpace(utils.SanitizeString(input.Comment))
	if comment != "" {
		payload.Comment = &comment
	}

	return rs.client.SubmitReview(ctx, payload)
}

// HasReviewed 查询是否已评价过对方
// 静默失败：查询出错只记日志，按未评价处理，不打断评价提示流程。
func (rs *ReviewService) HasReviewed(ctx context.Context, revieweeID, conversationID string) bool {
	reviewed, err := rs.client.CheckReviewed(ctx, revieweeID, conversationID)
	if err != nil {
		middleware.WarnLogger("failed to check review status",
			zap.String("reviewee_id", revieweeID),
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
		return false
	}
	return reviewed
}
