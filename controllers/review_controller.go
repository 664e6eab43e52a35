package controllers

import (
	"errors"

	"fleamarket_go/models"
	"fleamarket_go/services"
	"fleamarket_go/utils"

	"github.com/gin-gonic/gin"
)

// ReviewController 评价控制器
type ReviewController struct {
	reviewService *services.ReviewService
}

// NewReviewController 创建评价控制器实例
func NewReviewController() *ReviewController {
	return &ReviewController{
		reviewService: services.NewReviewService(),
	}
}

// CheckReview 查询当前用户是否已评价过对方
// 查询失败按未评价处理（静默失败），评价提示流程不受影响。
func (rc *ReviewController) CheckReview(c *gin.Context) {
	revieweeID := c.Query("reviewee_id")
	conversationID := c.Query("conversation_id")
	if revieweeID == "" || conversationID == "" {
		utils.ValidationError(c, "reviewee_id and conversation_id are required")
		return
	}

	reviewed := rc.reviewService.HasReviewed(c, revieweeID, conversationID)

	utils.Success(c, gin.H{"reviewed": reviewed})
}

// SubmitReview 提交评价
// @Summary 提交评价
// @Description 评分1-5，评论可选；空评论以null提交
// @Tags reviews
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body models.SubmitReviewInput true "评价内容"
// @Success 200 {object} utils.Response
// @Router /api/reviews [post]
func (rc *ReviewController) SubmitReview(c *gin.Context) {
	var input models.SubmitReviewInput
	if err := utils.BindAndValidate(c, &input); err != nil {
		utils.ValidationError(c, err.Error())
		return
	}

	if err := rc.reviewService.Submit(c, input); err != nil {
		if errors.Is(err, services.ErrInvalidRating) {
			utils.ValidationError(c, err.Error())
			return
		}
		handleBackendError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "review submitted", nil)
}
