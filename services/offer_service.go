package services

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"fleamarket_go/backend"
	"fleamarket_go/config"
	"fleamarket_go/middleware"
	"fleamarket_go/models"

	"go.uber.org/zap"
)

// 议价动作常量
const (
	ActionAccept  = "accept"
	ActionDecline = "decline"
	ActionCounter = "counter"
)

var (
	ErrInvalidAction       = errors.New("unknown offer action")
	ErrActionInFlight      = errors.New("a request for this offer is already in progress")
	ErrInvalidCounterInput = errors.New("please enter a valid amount")
	ErrOfferNotFound       = errors.New("offer not found")
	ErrNotPendingOffer     = errors.New("only a pending offer can be withdrawn")
)

// OfferService 报价服务
// 不持有任何权威状态：动作成功后由调用方重新拉取列表。
type OfferService struct {
	client *backend.Client
	// 进行中的动作标记，防止重复提交；不做请求取消或去重
	inFlight sync.Map
	now      func() time.Time
}

// NewOfferService 创建报价服务实例
func NewOfferService(client ...*backend.Client) *OfferService {
	c := backend.Get()
	if len(client) > 0 && client[0] != nil {
		c = client[0]
	}
	return &OfferService{
		client: c,
		now:    time.Now,
	}
}

// ==================== 分组与排序 ====================

// OfferGroup 按商品分组的报价
type OfferGroup struct {
	Listing   models.ListingSummary `json:"listing"`
	Offers    []models.Offer        `json:"offers"`
	HasUnread bool                  `json:"has_unread"`

	// 组内最新报价时间，组间排序的次级键，必须跟随分组一起移动
	latest time.Time
}

// GroupedOffers 卖家收件箱视图：活跃和历史两个独立分区
type GroupedOffers struct {
	Active []OfferGroup `json:"active"`
	Past   []OfferGroup `json:"past"`
}

// GroupReceivedOffers 将扁平报价列表整理成卖家收件箱视图
// 1. 按状态分成活跃（pending/countered）和历史两个分区，各自独立分组；
// 2. 分区内按listing.id分组，保留首次出现的商品信息；
// 3. 组间排序：含未读报价的组在前，其余按组内最新创建时间倒序；
// 4. 组内排序：未读在前，其余按创建时间倒序。
// 纯函数，排序结果是卖家收件箱体验的承诺。
func GroupReceivedOffers(offers []models.Offer) *GroupedOffers {
	var active, past []models.Offer
	for _, offer := range offers {
		if offer.IsActive() {
			active = append(active, offer)
		} else {
			past = append(past, offer)
		}
	}

	return &GroupedOffers{
		Active: groupByListing(active),
		Past:   groupByListing(past),
	}
}

// groupByListing 按商品分组并排序
func groupByListing(offers []models.Offer) []OfferGroup {
	groups := []OfferGroup{}
	index := make(map[string]int)

	for _, offer := range offers {
		if i, exists := index[offer.Listing.ID]; exists {
			groups[i].Offers = append(groups[i].Offers, offer)
		} else {
			index[offer.Listing.ID] = len(groups)
			groups = append(groups, OfferGroup{
				Listing: offer.Listing,
				Offers:  []models.Offer{offer},
			})
		}
	}

	// 组内排序：未读在前，再按创建时间倒序
	for gi := range groups {
		groupOffers := groups[gi].Offers
		sort.Slice(groupOffers, func(i, j int) bool {
			if groupOffers[i].IsRead != groupOffers[j].IsRead {
				return !groupOffers[i].IsRead
			}
			return groupOffers[i].CreatedAt.After(groupOffers[j].CreatedAt)
		})

		for _, offer := range groupOffers {
			if !offer.IsRead {
				groups[gi].HasUnread = true
			}
			if offer.CreatedAt.After(groups[gi].latest) {
				groups[gi].latest = offer.CreatedAt
			}
		}
	}

	// 组间排序：未读组在前，再按组内最新报价时间倒序
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].HasUnread != groups[j].HasUnread {
			return groups[i].HasUnread
		}
		return groups[i].latest.After(groups[j].latest)
	})

	return groups
}

// ==================== 议价动作 ====================

// NegotiateInput 议价动作输入
// CounterAmount是用户输入的原始文本，还价时在这里解析校验。
type NegotiateInput struct {
	Action        string
	CounterAmount string
}

// Negotiate 议价动作分发
// 所有本地校验（轮数上限、金额区间、状态检查）都在发起网络请求之前完成，
// 校验失败直接返回错误，不产生任何后端调用。
func (s *OfferService) Negotiate(ctx context.Context, offer *models.Offer, input NegotiateInput) error {
	key := offer.ID + ":" + input.Action
	if _, loaded := s.inFlight.LoadOrStore(key, struct{}{}); loaded {
		return ErrActionInFlight
	}
	defer s.inFlight.Delete(key)

	now := s.now()

	switch input.Action {
	case ActionAccept:
		if offer.IsExpired(now) {
			return models.ErrOfferExpired
		}
		if !offer.IsActive() {
			return models.ErrOfferNotActive
		}
		return s.client.AcceptOffer(ctx, offer.ID)

	case ActionDecline:
		if !offer.IsActive() {
			return models.ErrOfferNotActive
		}
		return s.client.DeclineOffer(ctx, offer.ID)

	case ActionCounter:
		if err := offer.CanCounter(now); err != nil {
			return err
		}
		amount, err := parseAmountInput(input.CounterAmount)
		if err != nil {
			return err
		}
		if err := offer.ValidateAmount(amount); err != nil {
			return err
		}
		return s.client.CounterOffer(ctx, offer.ID, amount)

	default:
		return ErrInvalidAction
	}
}

// parseAmountInput 解析用户输入的金额文本
func parseAmountInput(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, ErrInvalidCounterInput
	}
	amount, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || amount <= 0 {
		return 0, ErrInvalidCounterInput
	}
	return amount, nil
}

// ==================== 列表与查找 ====================

// GetSentOffers 获取我发出的报价
func (s *OfferService) GetSentOffers(ctx context.Context) ([]models.Offer, error) {
	return s.client.GetSentOffers(ctx)
}

// GetReceivedOffers 获取我收到的报价（分组视图）
func (s *OfferService) GetReceivedOffers(ctx context.Context) (*GroupedOffers, error) {
	offers, err := s.client.GetReceivedOffers(ctx)
	if err != nil {
		return nil, err
	}
	return GroupReceivedOffers(offers), nil
}

// FindReceived 在收到的报价中查找指定报价
func (s *OfferService) FindReceived(ctx context.Context, offerID string) (*models.Offer, error) {
	offers, err := s.client.GetReceivedOffers(ctx)
	if err != nil {
		return nil, err
	}
	return findOffer(offers, offerID)
}

// FindSent 在发出的报价中查找指定报价
func (s *OfferService) FindSent(ctx context.Context, offerID string) (*models.Offer, error) {
	offers, err := s.client.GetSentOffers(ctx)
	if err != nil {
		return nil, err
	}
	return findOffer(offers, offerID)
}

func findOffer(offers []models.Offer, offerID string) (*models.Offer, error) {
	for i := range offers {
		if offers[i].ID == offerID {
			return &offers[i], nil
		}
	}
	return nil, ErrOfferNotFound
}

// ==================== 撤回与已读 ====================

// Withdraw 买家撤回报价（仅限pending且对方尚未回应）
func (s *OfferService) Withdraw(ctx context.Context, offer *models.Offer) error {
	if offer.Status != models.OfferStatusPending {
		return ErrNotPendingOffer
	}
	return s.client.DeleteOffer(ctx, offer.ID)
}

// MarkListingRead 将某个商品下的全部报价标记为已读
// 展开含未读报价的分组时触发，fire-and-forget：
// 失败只记日志不重试，也不阻塞展开/收起本身。
func (s *OfferService) MarkListingRead(token, listingID string) {
	go func() {
		ctx, cancel := context.WithTimeout(config.WithSessionToken(context.Background(), token), 10*time.Second)
		defer cancel()

		if err := s.client.MarkOffersRead(ctx, listingID); err != nil {
			middleware.WarnLogger("failed to mark offers as read",
				zap.String("listing_id", listingID),
				zap.Error(err),
			)
		}
	}()
}

// IsOfferValidationError 是否为本地校验错误（未发起网络请求）
func IsOfferValidationError(err error) bool {
	return errors.Is(err, models.ErrRoundLimitReached) ||
		errors.Is(err, models.ErrOfferNotActive) ||
		errors.Is(err, models.ErrOfferExpired) ||
		errors.Is(err, models.ErrAmountOutOfRange) ||
		errors.Is(err, ErrInvalidCounterInput) ||
		errors.Is(err, ErrInvalidAction) ||
		errors.Is(err, ErrNotPendingOffer)
}
