package backend

import (
	"context"
	"net/http"
	"net/url"

	"fleamarket_go/models"
)

// reviewCheckResponse 评价状态查询响应
type reviewCheckResponse struct {
	Reviewed bool `json:"reviewed"`
}

// CheckReviewed 查询当前用户是否已评价过对方
func (c *Client) CheckReviewed(ctx context.Context, revieweeID, conversationID string) (bool, error) {
	query := url.Values{}
	query.Set("reviewee_id", revieweeID)
	query.Set("conversation_id", conversationID)

	var result reviewCheckResponse
	if err := c.do(ctx, http.MethodGet, "/reviews/check?"+query.Encode(), nil, &result); err != nil {
		return false, err
	}
	return result.Reviewed, nil
}

// SubmitReview 提交评价
func (c *Client) SubmitReview(ctx context.Context, payload models.ReviewPayload) error {
	return c.doAction(ctx, http.MethodPost, "/reviews", payload)
}
