package backend

import (
	"context"
	"fmt"
	"net/http"

	"fleamarket_go/models"
)

// offersResponse 报价列表响应
type offersResponse struct {
	Offers []models.Offer `json:"offers"`
}

// GetSentOffers 获取我发出的报价列表（买家视角）
func (c *Client) GetSentOffers(ctx context.Context) ([]models.Offer, error) {
	var result offersResponse
	if err := c.do(ctx, http.MethodGet, "/offers/sent", nil, &result); err != nil {
		return nil, err
	}
	return result.Offers, nil
}

// GetReceivedOffers 获取我收到的报价列表（卖家视角）
func (c *Client) GetReceivedOffers(ctx context.Context) ([]models.Offer, error) {
	var result offersResponse
	if err := c.do(ctx, http.MethodGet, "/offers/received", nil, &result); err != nil {
		return nil, err
	}
	return result.Offers, nil
}

// AcceptOffer 接受报价
func (c *Client) AcceptOffer(ctx context.Context, offerID string) error {
	return c.doAction(ctx, http.MethodPut, fmt.Sprintf("/offers/%s/accept", offerID), nil)
}

// DeclineOffer 拒绝报价
func (c *Client) DeclineOffer(ctx context.Context, offerID string) error {
	return c.doAction(ctx, http.MethodPut, fmt.Sprintf("/offers/%s/decline", offerID), nil)
}

// counterBody 还价请求体
type counterBody struct {
	CounterAmount float64 `json:"counter_amount"`
}

// CounterOffer 还价
func (c *Client) CounterOffer(ctx context.Context, offerID string, amount float64) error {
	return c.doAction(ctx, http.MethodPut, fmt.Sprintf("/offers/%s/counter", offerID), counterBody{CounterAmount: amount})
}

// DeleteOffer 买家撤回pending状态的报价
func (c *Client) DeleteOffer(ctx context.Context, offerID string) error {
	return c.doAction(ctx, http.MethodDelete, fmt.Sprintf("/offers/%s", offerID), nil)
}

// MarkOffersRead 批量标记某个商品下的报价为已读
func (c *Client) MarkOffersRead(ctx context.Context, listingID string) error {
	return c.doAction(ctx, http.MethodPut, fmt.Sprintf("/offers/mark-read/%s", listingID), nil)
}
