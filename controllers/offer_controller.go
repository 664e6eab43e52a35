package controllers

import (
	"errors"
	"time"

	"fleamarket_go/backend"
	"fleamarket_go/config"
	"fleamarket_go/middleware"
	"fleamarket_go/models"
	"fleamarket_go/services"
	"fleamarket_go/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OfferController 报价控制器
type OfferController struct {
	offerService *services.OfferService
}

// NewOfferController 创建报价控制器实例
func NewOfferController() *OfferController {
	return &OfferController{
		offerService: services.NewOfferService(),
	}
}

// CounterOfferRequest 还价请求结构
// counter_amount保留用户输入的原始文本，由议价分发器解析校验。
type CounterOfferRequest struct {
	CounterAmount string `json:"counter_amount" binding:"required" validate:"posamount"`
}

// offerView 报价展示视图（叠加徽章和剩余时间）
type offerView struct {
	models.Offer
	Badge         models.StatusBadge `json:"badge"`
	TimeRemaining string             `json:"time_remaining"`
}

func toOfferViews(offers []models.Offer, now time.Time) []offerView {
	views := make([]offerView, 0, len(offers))
	for _, offer := range offers {
		views = append(views, offerView{
			Offer:         offer,
			Badge:         offer.Badge(now),
			TimeRemaining: offer.TimeRemaining(now),
		})
	}
	return views
}

// handleBackendError 将后端调用错误映射为响应
func handleBackendError(c *gin.Context, err error) {
	if errors.Is(err, backend.ErrMissingSession) {
		utils.Unauthorized(c, "")
		return
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		middleware.ErrorLogger("backend request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", apiErr.StatusCode),
			zap.String("reason", apiErr.Message),
		)
		utils.UpstreamError(c, apiErr.Message)
		return
	}

	middleware.ErrorLogger("backend request failed",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	utils.UpstreamError(c, "")
}

// GetSentOffers 获取我发出的报价列表
// @Summary 获取我发出的报价列表
// @Tags offers
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.Response
// @Router /api/offers/sent [get]
func (oc *OfferController) GetSentOffers(c *gin.Context) {
	offers, err := oc.offerService.GetSentOffers(c)
	if err != nil {
		handleBackendError(c, err)
		return
	}

	utils.Success(c, gin.H{"offers": toOfferViews(offers, time.Now())})
}

// GetReceivedOffers 获取我收到的报价（卖家收件箱分组视图）
// @Summary 获取我收到的报价
// @Description 活跃/历史两个分区，按商品分组，未读组在前
// @Tags offers
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.Response
// @Router /api/offers/received [get]
func (oc *OfferController) GetReceivedOffers(c *gin.Context) {
	grouped, err := oc.offerService.GetReceivedOffers(c)
	if err != nil {
		handleBackendError(c, err)
		return
	}

	utils.Success(c, grouped)
}

// negotiate 议价动作的公共处理
// 动作成功后重新拉取对应一侧的列表返回（组件不持有权威状态，父视图总是重新拉取）：
// 卖家侧返回分组收件箱，买家侧返回发出的报价列表。
func (oc *OfferController) negotiate(c *gin.Context, action string, counterAmount string) {
	userID := c.GetString("user_id")
	if !utils.APIRateLimit(c, userID, 30, time.Minute) {
		utils.TooManyRequests(c)
		return
	}

	offerID := c.Param("id")
	fromSent := false
	offer, err := oc.offerService.FindReceived(c, offerID)
	if errors.Is(err, services.ErrOfferNotFound) {
		offer, err = oc.offerService.FindSent(c, offerID)
		fromSent = true
	}
	if err != nil {
		if errors.Is(err, services.ErrOfferNotFound) {
			utils.NotFound(c, "Offer not found")
			return
		}
		handleBackendError(c, err)
		return
	}

	input := services.NegotiateInput{Action: action, CounterAmount: counterAmount}
	if err := oc.offerService.Negotiate(c, offer, input); err != nil {
		if services.IsOfferValidationError(err) {
			utils.ValidationError(c, err.Error())
			return
		}
		if errors.Is(err, services.ErrActionInFlight) {
			utils.Error(c, utils.CodeError, err.Error())
			return
		}
		handleBackendError(c, err)
		return
	}

	if fromSent {
		offers, err := oc.offerService.GetSentOffers(c)
		if err != nil {
			handleBackendError(c, err)
			return
		}
		utils.Success(c, gin.H{"offers": toOfferViews(offers, time.Now())})
		return
	}

	grouped, err := oc.offerService.GetReceivedOffers(c)
	if err != nil {
		handleBackendError(c, err)
		return
	}

	utils.Success(c, grouped)
}

// AcceptOffer 接受报价
func (oc *OfferController) AcceptOffer(c *gin.Context) {
	oc.negotiate(c, services.ActionAccept, "")
}

// DeclineOffer 拒绝报价
func (oc *OfferController) DeclineOffer(c *gin.Context) {
	oc.negotiate(c, services.ActionDecline, "")
}

// CounterOffer 还价
// @Summary 还价
// @Description 金额必须落在标价的10%到100%之间，最多三轮
// @Tags offers
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "报价ID"
// @Param request body CounterOfferRequest true "还价金额"
// @Success 200 {object} utils.Response
// @Router /api/offers/{id}/counter [put]
func (oc *OfferController) CounterOffer(c *gin.Context) {
	var req CounterOfferRequest
	if err := utils.BindAndValidate(c, &req); err != nil {
		utils.ValidationError(c, "please enter a valid amount")
		return
	}

	oc.negotiate(c, services.ActionCounter, req.CounterAmount)
}

// DeleteOffer 买家撤回pending状态的报价
func (oc *OfferController) DeleteOffer(c *gin.Context) {
	userID := c.GetString("user_id")
	offerID := c.Param("id")

	offer, err := oc.offerService.FindSent(c, offerID)
	if err != nil {
		if errors.Is(err, services.ErrOfferNotFound) {
			utils.NotFound(c, "Offer not found")
			return
		}
		handleBackendError(c, err)
		return
	}

	// 只有买家本人可以撤回
	if offer.BuyerID != userID {
		utils.Forbidden(c, "You don't have permission to withdraw this offer")
		return
	}

	if err := oc.offerService.Withdraw(c, offer); err != nil {
		if services.IsOfferValidationError(err) {
			utils.ValidationError(c, err.Error())
			return
		}
		handleBackendError(c, err)
		return
	}

	offers, err := oc.offerService.GetSentOffers(c)
	if err != nil {
		handleBackendError(c, err)
		return
	}

	utils.Success(c, gin.H{"offers": toOfferViews(offers, time.Now())})
}

// MarkListingRead 标记某个商品下的全部报价为已读
// 展开分组时触发；标记是fire-and-forget的，展开/收起本身已经乐观完成，
// 这里立即返回成功，由前端随后重新拉取。
func (oc *OfferController) MarkListingRead(c *gin.Context) {
	listingID := c.Param("id")
	token := c.GetString(config.SessionTokenKey)

	oc.offerService.MarkListingRead(token, listingID)

	utils.SuccessWithMessage(c, "marked as read", nil)
}
