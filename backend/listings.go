package backend

import (
	"context"
	"fmt"
	"net/http"

	"fleamarket_go/models"
)

// listingResponse 单个商品响应
type listingResponse struct {
	Listing models.Listing `json:"listing"`
}

// CreateListing 创建商品发布
func (c *Client) CreateListing(ctx context.Context, input models.ListingInput) (*models.Listing, error) {
	var result listingResponse
	if err := c.do(ctx, http.MethodPost, "/listings", input, &result); err != nil {
		return nil, err
	}
	return &result.Listing, nil
}

// UpdateListing 编辑商品发布
func (c *Client) UpdateListing(ctx context.Context, listingID string, input models.ListingInput) (*models.Listing, error) {
	var result listingResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/listings/%s", listingID), input, &result); err != nil {
		return nil, err
	}
	return &result.Listing, nil
}
