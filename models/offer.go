package models

import (
	"errors"
	"fmt"
	"time"
)

// 报价状态常量
const (
	OfferStatusPending   = "pending"   // 等待对方回应
	OfferStatusCountered = "countered" // 已还价
	OfferStatusAccepted  = "accepted"  // 已接受
	OfferStatusDeclined  = "declined"  // 已拒绝
	OfferStatusExpired   = "expired"   // 已过期
)

// 议价规则常量
const (
	// MaxCounterRounds 最多还价轮数，达到后只能接受或拒绝
	MaxCounterRounds = 3
	// MinOfferRatio 报价金额下限为标价的10%
	MinOfferRatio = 0.1
)

var (
	ErrRoundLimitReached = errors.New("counter limit reached, you can only accept or decline")
	ErrOfferNotActive    = errors.New("offer is no longer active")
	ErrOfferExpired      = errors.New("offer has expired")
	ErrAmountOutOfRange  = errors.New("offer amount must be between 10% and 100% of the listing price")
)

// Offer 报价模型（由托管后端下发，携带冗余的listing信息）
type Offer struct {
	ID            string         `json:"id"`
	Listing       ListingSummary `json:"listing"`
	BuyerID       string         `json:"buyer_id"`
	SellerID      string         `json:"seller_id"`
	Amount        float64        `json:"amount"`
	CounterAmount *float64       `json:"counter_amount,omitempty"`
	Status        string         `json:"status"`
	Round         int            `json:"round"`
	IsRead        bool           `json:"is_read"`
	Message       string         `json:"message,omitempty"`
	ExpiresAt     time.Time      `json:"expires_at"`
	CreatedAt     time.Time      `json:"created_at"`
}

// NegotiationState 议价状态（显式状态视图）
// status字符串加round整数本质上是一个小状态机，
// 在判定动作合法性时统一走这里，避免出现非法组合。
type NegotiationState int

const (
	StatePending NegotiationState = iota
	StateCountered
	StateCounterLocked // 还价轮数已用完，只剩接受/拒绝
	StateAccepted
	StateDeclined
	StateExpired
)

// NegotiationState 计算报价当前所处的议价状态
// 过期判定是展示层的叠加逻辑：超过expires_at即视为过期，
// 不管后端存储的status是什么。
func (o *Offer) NegotiationState(now time.Time) NegotiationState {
	if !o.ExpiresAt.IsZero() && !now.Before(o.ExpiresAt) {
		return StateExpired
	}

	switch o.Status {
	case OfferStatusPending:
		return StatePending
	case OfferStatusCountered:
		if o.Round >= MaxCounterRounds {
			return StateCounterLocked
		}
		return StateCountered
	case OfferStatusAccepted:
		return StateAccepted
	case OfferStatusDeclined:
		return StateDeclined
	case OfferStatusExpired:
		return StateExpired
	default:
		// 未知状态按pending处理
		return StatePending
	}
}

// IsActive 是否仍在议价中（只有pending和countered是活跃状态）
func (o *Offer) IsActive() bool {
	return o.Status == OfferStatusPending || o.Status == OfferStatusCountered
}

// IsExpired 是否已过期（客户端展示用，非权威判定）
func (o *Offer) IsExpired(now time.Time) bool {
	return !o.ExpiresAt.IsZero() && !now.Before(o.ExpiresAt)
}

// CanCounter 当前是否还允许还价
func (o *Offer) CanCounter(now time.Time) error {
	switch o.NegotiationState(now) {
	case StateExpired:
		return ErrOfferExpired
	case StateAccepted, StateDeclined:
		return ErrOfferNotActive
	case StateCounterLocked:
		return ErrRoundLimitReached
	}
	if o.Round >= MaxCounterRounds {
		return ErrRoundLimitReached
	}
	return nil
}

// ValidateAmount 校验报价/还价金额是否落在允许区间内
// 区间为 [0.1 × 标价, 标价]，校验失败不应发起任何网络请求。
func (o *Offer) ValidateAmount(amount float64) error {
	if amount <= 0 {
		return ErrAmountOutOfRange
	}
	min := o.Listing.Price * MinOfferRatio
	if amount < min || amount > o.Listing.Price {
		return ErrAmountOutOfRange
	}
	return nil
}

// StatusBadge 状态徽章结构
type StatusBadge struct {
	Label string `json:"label"`
	Class string `json:"class"`
}

// statusBadges 状态到徽章的映射
var statusBadges = map[string]StatusBadge{
	OfferStatusPending:   {Label: "Pending", Class: "badge-pending"},
	OfferStatusCountered: {Label: "Countered", Class: "badge-countered"},
	OfferStatusAccepted:  {Label: "Accepted", Class: "badge-accepted"},
	OfferStatusDeclined:  {Label: "Declined", Class: "badge-declined"},
	OfferStatusExpired:   {Label: "Expired", Class: "badge-expired"},
}

// OfferStatusBadge 获取状态对应的徽章，未知状态回退到pending样式
func OfferStatusBadge(status string) StatusBadge {
	if badge, exists := statusBadges[status]; exists {
		return badge
	}
	return statusBadges[OfferStatusPending]
}

// TimeRemaining 计算剩余有效时间的展示文本
// 不足一小时向下取整；已过期显示 Expired。
func (o *Offer) TimeRemaining(now time.Time) string {
	remaining := o.ExpiresAt.Sub(now)
	if remaining <= 0 {
		return "Expired"
	}

	hours := int(remaining.Hours())
	if hours >= 24 {
		return fmt.Sprintf("%dd %dh", hours/24, hours%24)
	}
	return fmt.Sprintf("%dh", hours)
}

// Badge 当前报价的展示徽章（过期叠加优先）
func (o *Offer) Badge(now time.Time) StatusBadge {
	if o.IsActive() && o.IsExpired(now) {
		return statusBadges[OfferStatusExpired]
	}
	return OfferStatusBadge(o.Status)
}
